package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/hitoshi/dayboard/internal/model"
)

// VideoServiceInterface は動画ハンドラーが必要とするサービスインターフェース。
type VideoServiceInterface interface {
	// List は動画一覧をチャンネル・カテゴリでフィルタして返す。
	List(channels, categories []string) []model.Video
}

// HeadlineServiceInterface は見出しハンドラーが必要とするサービスインターフェース。
type HeadlineServiceInterface interface {
	// List は直近hours時間の見出しをトピックでフィルタして返す。
	List(ctx context.Context, topics []string, hours int) []model.Headline
}

// ContentHandler は認証不要のコンテンツフィードのHTTPハンドラー。
type ContentHandler struct {
	videos    VideoServiceInterface
	headlines HeadlineServiceInterface
}

// NewContentHandler はContentHandlerを生成する。
func NewContentHandler(videos VideoServiceInterface, headlines HeadlineServiceInterface) *ContentHandler {
	return &ContentHandler{
		videos:    videos,
		headlines: headlines,
	}
}

// ListVideos は動画一覧を返す。
// GET /videos?channels=a,b&categories=x,y
func (h *ContentHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	channels := splitParam(r.URL.Query().Get("channels"))
	categories := splitParam(r.URL.Query().Get("categories"))

	writeJSON(w, http.StatusOK, h.videos.List(channels, categories))
}

// ListHeadlines はニュース見出し一覧を返す。
// GET /headlines?topics=a,b&hours=24
func (h *ContentHandler) ListHeadlines(w http.ResponseWriter, r *http.Request) {
	topics := splitParam(r.URL.Query().Get("topics"))

	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			hours = n
		}
	}

	writeJSON(w, http.StatusOK, h.headlines.List(r.Context(), topics, hours))
}

// splitParam はカンマ区切りのクエリパラメータを空白除去して分割する。
func splitParam(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
