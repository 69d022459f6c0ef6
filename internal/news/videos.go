// Package news は動画とニュース見出しのコンテンツフィードを提供する。
// 動画は固定データセット、見出しは固定データセットまたはRSSフィードを
// ソースとする。
package news

import (
	"time"

	"github.com/hitoshi/dayboard/internal/model"
)

// VideoProvider は動画フィードの固定データセットプロバイダ。
type VideoProvider struct {
	now func() time.Time // テスト用に差し替え可能
}

// NewVideoProvider はVideoProviderの新しいインスタンスを生成する。
func NewVideoProvider() *VideoProvider {
	return &VideoProvider{now: time.Now}
}

// List は動画の一覧を返す。channelsとcategoriesが指定された場合は
// いずれも完全一致でフィルタする。
func (p *VideoProvider) List(channels, categories []string) []model.Video {
	now := p.now()
	videos := []model.Video{
		{
			ID:          "video1",
			Title:       "Latest Tech Trends 2023",
			Channel:     "TechWorld",
			PublishedAt: now.Add(-3 * time.Hour).Format(time.RFC3339),
			URL:         "https://youtube.com/watch?v=abc123",
			Thumbnail:   "https://i.ytimg.com/vi/abc123/hqdefault.jpg",
			Category:    "tech",
		},
		{
			ID:          "video2",
			Title:       "Breaking News: Market Update",
			Channel:     "FinanceToday",
			PublishedAt: now.Add(-5 * time.Hour).Format(time.RFC3339),
			URL:         "https://youtube.com/watch?v=def456",
			Thumbnail:   "https://i.ytimg.com/vi/def456/hqdefault.jpg",
			Category:    "finance",
		},
		{
			ID:          "video3",
			Title:       "New Music Release Roundup",
			Channel:     "MusicTrends",
			PublishedAt: now.Add(-8 * time.Hour).Format(time.RFC3339),
			URL:         "https://youtube.com/watch?v=ghi789",
			Thumbnail:   "https://i.ytimg.com/vi/ghi789/hqdefault.jpg",
			Category:    "music",
		},
	}

	filtered := make([]model.Video, 0, len(videos))
	for _, v := range videos {
		if len(channels) > 0 && !contains(channels, v.Channel) {
			continue
		}
		if len(categories) > 0 && !contains(categories, v.Category) {
			continue
		}
		filtered = append(filtered, v)
	}
	return filtered
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
