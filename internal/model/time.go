package model

import "time"

// 受理する日時入力フォーマット。完全なタイムスタンプと日付のみの2系統。
var flexibleTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseFlexibleTime はAPIパラメータの日時文字列をパースする。
// RFC3339タイムスタンプ、秒精度のローカルタイムスタンプ、日付のみの
// いずれかを受理し、それ以外はInvalidInputエラーを返す。
func ParseFlexibleTime(s string) (time.Time, *APIError) {
	for _, layout := range flexibleTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, NewInvalidInputError(
		"Invalid date format. Use ISO 8601 format (e.g., 2023-12-25 or 2023-12-25T14:30:00).",
	)
}
