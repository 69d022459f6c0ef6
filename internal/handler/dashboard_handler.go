package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/dayboard/internal/calendarwrite"
	"github.com/hitoshi/dayboard/internal/middleware"
	"github.com/hitoshi/dayboard/internal/model"
	"github.com/hitoshi/dayboard/internal/retry"
)

const (
	// defaultTaskLimit はタスク一覧の既定の最大件数。
	defaultTaskLimit = 5
	// defaultEmailHours はメール取得の既定の遡り時間。
	defaultEmailHours = 72
	// defaultEventWindowDays は予定取得の既定の期間（本日から）。
	defaultEventWindowDays = 3
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	// ListOpenTasks はオープンなタスクを更新日時の新しい順で返す。
	ListOpenTasks(ctx context.Context, limit int) ([]model.Task, error)
}

// MailCalendarServiceInterface はメール・カレンダー読み取りのサービスインターフェース。
type MailCalendarServiceInterface interface {
	// ListRecentEmails は直近windowHours時間のメールを返す。
	ListRecentEmails(ctx context.Context, senders []string, windowHours int) ([]model.Email, error)
	// ListEvents は期間内の予定を開始時刻順で返す。
	ListEvents(ctx context.Context, start, end time.Time) ([]model.Event, error)
}

// EventCreatorInterface は予定作成のサービスインターフェース。
type EventCreatorInterface interface {
	CreateEvent(ctx context.Context, req calendarwrite.CreateEventRequest) (*calendarwrite.CreatedEvent, error)
}

// DashboardHandler は認証必須のダッシュボード集約エンドポイントのHTTPハンドラー。
type DashboardHandler struct {
	tasks        TaskServiceInterface
	mailCalendar MailCalendarServiceInterface
	creator      EventCreatorInterface
	logger       *slog.Logger
	retryDelay   time.Duration
}

// NewDashboardHandler はDashboardHandlerを生成する。
// retryDelayは空結果時の再試行までの待機時間。
func NewDashboardHandler(tasks TaskServiceInterface, mailCalendar MailCalendarServiceInterface, creator EventCreatorInterface, logger *slog.Logger, retryDelay time.Duration) *DashboardHandler {
	return &DashboardHandler{
		tasks:        tasks,
		mailCalendar: mailCalendar,
		creator:      creator,
		logger:       logger,
		retryDelay:   retryDelay,
	}
}

// ListTasks はオープンなタスク一覧を返す。
// GET /tasks?limit=5
func (h *DashboardHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	limit := defaultTaskLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	tasks, err := h.tasks.ListOpenTasks(r.Context(), limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// ListImportantEmails は重要なメール一覧を返す。
// 成功したが空の結果は一度だけ再試行する。
// GET /important?priorityContacts=a@x.com,b@y.com&hours=72
func (h *DashboardHandler) ListImportantEmails(w http.ResponseWriter, r *http.Request) {
	senders := splitParam(r.URL.Query().Get("priorityContacts"))

	hours := defaultEmailHours
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			hours = n
		}
	}

	emails, err := retry.OnEmpty(r.Context(), h.logger, h.retryDelay, "emails",
		func(ctx context.Context) ([]model.Email, error) {
			return h.mailCalendar.ListRecentEmails(ctx, senders, hours)
		})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, emails)
}

// ListEvents は期間内の予定一覧を返す。
// 成功したが空の結果は一度だけ再試行する。
// GET /events?startDate=2024-01-01&endDate=2024-01-04
func (h *DashboardHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	start, end, apiErr := h.parseEventWindow(r)
	if apiErr != nil {
		middleware.WriteValidationError(w, apiErr.Message)
		return
	}

	events, err := retry.OnEmpty(r.Context(), h.logger, h.retryDelay, "events",
		func(ctx context.Context) ([]model.Event, error) {
			return h.mailCalendar.ListEvents(ctx, start, end)
		})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

// dailyResponse はGET /dailyの複合レスポンス。
type dailyResponse struct {
	Emails []model.Email `json:"emails"`
	Events []model.Event `json:"events"`
}

// GetDaily はメールと予定をまとめて返す。
// GET /daily?priorityContacts=...&emailHours=72&startDate=...&endDate=...
func (h *DashboardHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	senders := splitParam(r.URL.Query().Get("priorityContacts"))

	hours := defaultEmailHours
	if v := r.URL.Query().Get("emailHours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			hours = n
		}
	}

	start, end, apiErr := h.parseEventWindow(r)
	if apiErr != nil {
		middleware.WriteValidationError(w, apiErr.Message)
		return
	}

	emails, err := retry.OnEmpty(r.Context(), h.logger, h.retryDelay, "emails",
		func(ctx context.Context) ([]model.Email, error) {
			return h.mailCalendar.ListRecentEmails(ctx, senders, hours)
		})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	events, err := retry.OnEmpty(r.Context(), h.logger, h.retryDelay, "events",
		func(ctx context.Context) ([]model.Event, error) {
			return h.mailCalendar.ListEvents(ctx, start, end)
		})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dailyResponse{Emails: emails, Events: events})
}

// createEventResponse はPOST /dailyの成功レスポンス。
type createEventResponse struct {
	Success bool                        `json:"success"`
	Event   *calendarwrite.CreatedEvent `json:"event"`
}

// CreateEvent は予定を作成する。
// POST /daily
func (h *DashboardHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req calendarwrite.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteValidationError(w, "Invalid JSON body")
		return
	}

	created, err := h.creator.CreateEvent(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createEventResponse{
		Success: true,
		Event:   created,
	})
}

// parseEventWindow はstartDate/endDateクエリを解釈する。
// 未指定の場合は本日からdefaultEventWindowDays日間を使用する。
func (h *DashboardHandler) parseEventWindow(r *http.Request) (time.Time, time.Time, *model.APIError) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	start := today
	if v := r.URL.Query().Get("startDate"); v != "" {
		parsed, apiErr := model.ParseFlexibleTime(v)
		if apiErr != nil {
			return time.Time{}, time.Time{}, apiErr
		}
		start = parsed
	}

	end := start.AddDate(0, 0, defaultEventWindowDays)
	if v := r.URL.Query().Get("endDate"); v != "" {
		parsed, apiErr := model.ParseFlexibleTime(v)
		if apiErr != nil {
			return time.Time{}, time.Time{}, apiErr
		}
		end = parsed
	}

	return start, end, nil
}

// writeServiceError はサービス層のエラーをHTTPレスポンスへ変換する。
// 入力検証エラーのみ説明文単体のフォーマットを使用する。
func (h *DashboardHandler) writeServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code == model.ErrCodeInvalidInput {
			middleware.WriteValidationError(w, apiErr.Message)
			return
		}
		middleware.WriteErrorResponse(w, middleware.StatusForError(apiErr), apiErr)
		return
	}

	h.logger.Error("unexpected service error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}
