package model

// Video はコンテンツフィードの動画を表す。
type Video struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	PublishedAt string `json:"publishedAt"` // ISO-8601
	URL         string `json:"url"`
	Thumbnail   string `json:"thumbnail"`
	Category    string `json:"category"`
}

// Headline はニュースフィードの見出しを表す。
type Headline struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"` // ISO-8601
	URL         string `json:"url"`
	Topic       string `json:"topic"`
}
