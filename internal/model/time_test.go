package model

import (
	"testing"
	"time"
)

func TestParseFlexibleTime_AcceptedFormats(t *testing.T) {
	cases := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-01", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-01T10:30:00", time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)},
		{"2024-01-01T10:30:00Z", time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		got, apiErr := ParseFlexibleTime(tc.input)
		if apiErr != nil {
			t.Errorf("ParseFlexibleTime(%q) がエラーを返した: %v", tc.input, apiErr)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("ParseFlexibleTime(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseFlexibleTime_InvalidInput(t *testing.T) {
	for _, input := range []string{"invalid", "2024/01/01", "01-01-2024", ""} {
		_, apiErr := ParseFlexibleTime(input)
		if apiErr == nil {
			t.Errorf("ParseFlexibleTime(%q) はエラーを返すべき", input)
			continue
		}
		if apiErr.Code != ErrCodeInvalidInput {
			t.Errorf("ParseFlexibleTime(%q) のCode = %s, want %s", input, apiErr.Code, ErrCodeInvalidInput)
		}
	}
}
