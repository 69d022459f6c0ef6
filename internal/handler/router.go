package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/dayboard/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	Authenticator     middleware.Authenticator
	RateLimiter       *middleware.RateLimiter

	// コンテンツフィード
	Videos    VideoServiceInterface
	Headlines HeadlineServiceInterface

	// ダッシュボード集約
	Tasks        TaskServiceInterface
	MailCalendar MailCalendarServiceInterface
	Creator      EventCreatorInterface
	RetryDelay   time.Duration

	// ヘルスレポート
	JiraStatus     StatusReporter
	GraphTokens    TokenProber
	CalendarStatus StatusReporter
	Directory      UserDirectoryInterface
	NewsConfigured bool

	// メトリクス公開エンドポイント
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → CORS →（保護ルートのみ）APIKey → RateLimit(General)
//
// /health、/videos、/headlines、/metricsは認証不要。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	healthHandler := NewHealthHandler(deps.JiraStatus, deps.GraphTokens, deps.CalendarStatus, deps.Directory, deps.NewsConfigured)
	contentHandler := NewContentHandler(deps.Videos, deps.Headlines)
	dashboardHandler := NewDashboardHandler(deps.Tasks, deps.MailCalendar, deps.Creator, deps.Logger, deps.RetryDelay)
	authHandler := NewAuthHandler()

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Health)
	r.Get("/videos", contentHandler.ListVideos)
	r.Get("/headlines", contentHandler.ListHeadlines)

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: APIKey → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAPIKeyMiddleware(deps.Authenticator))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/tasks", dashboardHandler.ListTasks)
		r.Get("/important", dashboardHandler.ListImportantEmails)
		r.Get("/events", dashboardHandler.ListEvents)
		r.Get("/auth-test", authHandler.AuthTest)

		r.Get("/daily", dashboardHandler.GetDaily)
		// POST /daily - 予定作成（作成専用レート制限を追加）
		r.With(deps.RateLimiter.CreateMiddleware()).Post("/daily", dashboardHandler.CreateEvent)
	})

	return r
}
