package news

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/dayboard/internal/model"
)

// headline は公開時刻による絞り込み用の内部表現。
type headline struct {
	model.Headline
	publishedAt time.Time
}

// HeadlineProvider はニュース見出しのプロバイダ。
// feedURLが設定されていればRSSフィードを取得し、
// 未設定または取得失敗時は固定データセットにフォールバックする。
type HeadlineProvider struct {
	feedURL string
	parser  *gofeed.Parser
	logger  *slog.Logger
	now     func() time.Time // テスト用に差し替え可能
}

// NewHeadlineProvider はHeadlineProviderの新しいインスタンスを生成する。
func NewHeadlineProvider(feedURL string, logger *slog.Logger) *HeadlineProvider {
	return &HeadlineProvider{
		feedURL: feedURL,
		parser:  gofeed.NewParser(),
		logger:  logger,
		now:     time.Now,
	}
}

// List は直近hours時間以内に公開された見出しを返す。
// topicsが指定された場合はトピックの完全一致でフィルタする。
func (p *HeadlineProvider) List(ctx context.Context, topics []string, hours int) []model.Headline {
	all := p.fetch(ctx)

	cutoff := p.now().Add(-time.Duration(hours) * time.Hour)

	filtered := make([]model.Headline, 0, len(all))
	for _, h := range all {
		if !h.publishedAt.After(cutoff) {
			continue
		}
		if len(topics) > 0 && !contains(topics, h.Topic) {
			continue
		}
		filtered = append(filtered, h.Headline)
	}
	return filtered
}

func (p *HeadlineProvider) fetch(ctx context.Context) []headline {
	if p.feedURL == "" {
		return p.mockHeadlines()
	}

	feed, err := p.parser.ParseURLWithContext(p.feedURL, ctx)
	if err != nil {
		p.logger.Error("failed to fetch headlines feed, falling back to fixture data",
			slog.String("feed_url", p.feedURL),
			slog.String("error", err.Error()),
		)
		return p.mockHeadlines()
	}

	headlines := make([]headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		published := p.now()
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		}

		topic := ""
		if len(item.Categories) > 0 {
			topic = strings.ToLower(item.Categories[0])
		}

		id := item.GUID
		if id == "" {
			id = item.Link
		}

		headlines = append(headlines, headline{
			Headline: model.Headline{
				ID:          id,
				Title:       item.Title,
				Source:      feed.Title,
				PublishedAt: published.Format(time.RFC3339),
				URL:         item.Link,
				Topic:       topic,
			},
			publishedAt: published,
		})
	}
	return headlines
}

// mockHeadlines はフィード未設定時の固定データセット。
func (p *HeadlineProvider) mockHeadlines() []headline {
	now := p.now()
	entries := []struct {
		id, title, source, url, topic string
		age                           time.Duration
	}{
		{"news1", "New AI Breakthrough Announced", "Tech Times", "https://techtimes.com/ai-breakthrough", "technology", 2 * time.Hour},
		{"news2", "Housing Market Shows Signs of Recovery", "Economy Daily", "https://economydaily.com/housing-recovery", "real estate", 6 * time.Hour},
		{"news3", "Central Bank Announces New Interest Rates", "Financial Post", "https://financialpost.com/interest-rates", "economy", 10 * time.Hour},
	}

	headlines := make([]headline, 0, len(entries))
	for _, e := range entries {
		published := now.Add(-e.age)
		headlines = append(headlines, headline{
			Headline: model.Headline{
				ID:          e.id,
				Title:       e.title,
				Source:      e.source,
				PublishedAt: published.Format(time.RFC3339),
				URL:         e.url,
				Topic:       e.topic,
			},
			publishedAt: published,
		})
	}
	return headlines
}
