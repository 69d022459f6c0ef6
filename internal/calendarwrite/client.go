// Package calendarwrite は汎用カレンダー書き込みサービス（Webhook）への
// 予定作成アダプタを提供する。
package calendarwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/dayboard/internal/metrics"
	"github.com/hitoshi/dayboard/internal/model"
)

// serviceName はメトリクスのサービスラベル。
const serviceName = "general_calendar"

// writeTimeout は書き込みサービスの応答待ちの上限。
// 読み取り系より長いのは、下流でカレンダープロバイダへの伝播を待つため。
const writeTimeout = 30 * time.Second

// CreateEventRequest は予定作成リクエストのボディ。
type CreateEventRequest struct {
	Title     string   `json:"title"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Location  string   `json:"location,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
}

// Validate は必須フィールドと時刻の整合性を検証する。
func (r CreateEventRequest) Validate() *model.APIError {
	if r.Title == "" {
		return model.NewInvalidInputError("title is required")
	}
	if r.StartTime == "" {
		return model.NewInvalidInputError("start_time is required")
	}
	if r.EndTime == "" {
		return model.NewInvalidInputError("end_time is required")
	}

	start, apiErr := model.ParseFlexibleTime(r.StartTime)
	if apiErr != nil {
		return apiErr
	}
	end, apiErr := model.ParseFlexibleTime(r.EndTime)
	if apiErr != nil {
		return apiErr
	}

	if !end.After(start) {
		return model.NewInvalidInputError("end_time must be after start_time")
	}
	return nil
}

// CreatedEvent は書き込みサービスが返す作成済み予定の情報。
type CreatedEvent struct {
	AppointmentID string `json:"appointment_id"`
	WebLink       string `json:"web_link"`
}

// webhookResponse は書き込みサービスの応答エンベロープ。
type webhookResponse struct {
	Success bool          `json:"success"`
	Event   *CreatedEvent `json:"event"`
	Error   string        `json:"error"`
}

// Client はWebhook形式の書き込みサービスのアダプタ。
type Client struct {
	httpClient *http.Client
	webhookURL string
	logger     *slog.Logger
	metrics    metrics.Recorder
}

// NewClient はClientの新しいインスタンスを生成する。
// webhookURLが空の場合は未設定として扱う。
func NewClient(webhookURL string, logger *slog.Logger, rec metrics.Recorder) *Client {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Client{
		httpClient: &http.Client{Timeout: writeTimeout},
		webhookURL: webhookURL,
		logger:     logger,
		metrics:    rec,
	}
}

// Configured は書き込み先が設定されているかを返す。ヘルスレポート用。
func (c *Client) Configured() bool {
	return c.webhookURL != ""
}

// CreateEvent は予定を書き込みサービスへ送信する。
// 検証エラーはinvalid_input、未設定はnot_configured、
// 送信・応答の失敗はupstream_failureとして返す。
// 読み取り系と異なり、失敗は空結果に吸収せず呼び出し側へ伝える。
func (c *Client) CreateEvent(ctx context.Context, req CreateEventRequest) (*CreatedEvent, error) {
	if apiErr := req.Validate(); apiErr != nil {
		return nil, apiErr
	}

	if !c.Configured() {
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeNotConfigured)
		return nil, model.NewNotConfiguredError("calendar creation")
	}

	started := time.Now()
	requestID := uuid.New().String()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, model.NewUpstreamFailureError(fmt.Sprintf("failed to encode event: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return nil, model.NewUpstreamFailureError(fmt.Sprintf("failed to build request: %v", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("calendar write request failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()),
		)
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return nil, model.NewUpstreamFailureError("calendar service is unreachable")
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstreamLatency(serviceName, time.Since(started))

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("calendar write returned non-200 status",
			slog.String("request_id", requestID),
			slog.Int("http_status", resp.StatusCode),
		)
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return nil, model.NewUpstreamFailureError(fmt.Sprintf("calendar service returned status %d", resp.StatusCode))
	}

	var envelope webhookResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return nil, model.NewUpstreamFailureError("calendar service returned an invalid response")
	}

	if !envelope.Success || envelope.Event == nil {
		reason := envelope.Error
		if reason == "" {
			reason = "calendar service rejected the event"
		}
		c.logger.Error("calendar write rejected",
			slog.String("request_id", requestID),
			slog.String("reason", reason),
		)
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return nil, model.NewUpstreamFailureError(reason)
	}

	c.logger.Info("calendar event created",
		slog.String("request_id", requestID),
		slog.String("appointment_id", envelope.Event.AppointmentID),
	)
	c.metrics.RecordUpstream(serviceName, metrics.OutcomeSuccess)

	return envelope.Event, nil
}
