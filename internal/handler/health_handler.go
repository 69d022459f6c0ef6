package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/dayboard/internal/model"
)

// statusConfigured / statusNotConfigured はヘルスレポートの設定状態の表記。
const (
	statusConfigured    = "configured"
	statusNotConfigured = "not configured"
)

// version はヘルスレポートに含まれるAPIのバージョン表記。
const version = "1.0.0"

// StatusReporter は各上流サービスの設定状態を報告するインターフェース。
type StatusReporter interface {
	Configured() bool
}

// TokenProber はトークン取得を試行できる状態レポーターのインターフェース。
// ヘルスチェックでは未設定報告の前に一度取得を試みて状態を最新化する。
type TokenProber interface {
	StatusReporter
	Token(ctx context.Context) (string, bool)
}

// UserDirectoryInterface はヘルスレポート用のユーザーディレクトリのインターフェース。
type UserDirectoryInterface interface {
	Load(ctx context.Context) map[string]model.AuthorizedUser
}

// HealthHandler はヘルスチェックエンドポイントのHTTPハンドラー。
type HealthHandler struct {
	jira      StatusReporter
	graph     TokenProber
	calendar  StatusReporter
	directory UserDirectoryInterface
	// newsConfigured はRSSフィードが設定されているかどうか。
	newsConfigured bool
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(jira StatusReporter, graph TokenProber, calendar StatusReporter, directory UserDirectoryInterface, newsConfigured bool) *HealthHandler {
	return &HealthHandler{
		jira:           jira,
		graph:          graph,
		calendar:       calendar,
		directory:      directory,
		newsConfigured: newsConfigured,
	}
}

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status      string            `json:"status"`
	Version     string            `json:"version"`
	Services    map[string]string `json:"services"`
	Features    map[string]string `json:"features"`
	UsersLoaded int               `json:"users_loaded"`
}

// Health はサービス全体と各コラボレーターの状態を返す。
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	// 未設定と報告する前に一度トークン取得を試みて状態を最新化する
	if !h.graph.Configured() {
		h.graph.Token(r.Context())
	}

	calendarStatus := asStatus(h.calendar.Configured())

	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: version,
		Services: map[string]string{
			"jira":             asStatus(h.jira.Configured()),
			"microsoft_graph":  asStatus(h.graph.Configured()),
			"general_calendar": calendarStatus,
			"youtube":          statusNotConfigured,
			"news":             asStatus(h.newsConfigured),
		},
		Features: map[string]string{
			"create_calendar": calendarStatus,
		},
		UsersLoaded: len(h.directory.Load(r.Context())),
	})
}

func asStatus(configured bool) string {
	if configured {
		return statusConfigured
	}
	return statusNotConfigured
}
