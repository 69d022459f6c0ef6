package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hitoshi/dayboard/internal/metrics"
	"github.com/hitoshi/dayboard/internal/model"
	"github.com/hitoshi/dayboard/internal/security"
)

const (
	// defaultBaseURL はMicrosoft Graph APIのエンドポイント。
	defaultBaseURL = "https://graph.microsoft.com/v1.0"
	// maxEmailsPerRequest は1回のメール取得の最大件数。
	maxEmailsPerRequest = 50
	// serviceName はメトリクスのサービスラベル。
	serviceName = "microsoft_graph"
)

// Client はMicrosoft Graphのメール・カレンダー読み取りアダプタ。
// 上流のレスポンス形状を内部の正規化スキーマに変換する。
type Client struct {
	httpClient *http.Client
	tokens     *TokenCache
	userEmail  string
	sanitizer  *security.SnippetSanitizer
	logger     *slog.Logger
	metrics    metrics.Recorder
	baseURL    string // テスト用にエンドポイントを差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(tokens *TokenCache, userEmail string, httpClient *http.Client, logger *slog.Logger, rec metrics.Recorder) *Client {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Client{
		httpClient: httpClient,
		tokens:     tokens,
		userEmail:  userEmail,
		sanitizer:  security.NewSnippetSanitizer(),
		logger:     logger,
		metrics:    rec,
		baseURL:    defaultBaseURL,
	}
}

// Configured は対象ユーザーと資格情報が揃っているかを返す。ヘルスレポート用。
func (c *Client) Configured() bool {
	return c.userEmail != "" && c.tokens.Configured()
}

// --- 上流レスポンス形状 ---

type graphEmailAddress struct {
	Address string `json:"address"`
}

type graphRecipient struct {
	EmailAddress graphEmailAddress `json:"emailAddress"`
}

type graphMessage struct {
	ID               string          `json:"id"`
	Subject          string          `json:"subject"`
	ReceivedDateTime string          `json:"receivedDateTime"`
	IsRead           bool            `json:"isRead"`
	BodyPreview      string          `json:"bodyPreview"`
	From             *graphRecipient `json:"from"`
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphLocation struct {
	DisplayName string `json:"displayName"`
}

type graphEvent struct {
	ID        string           `json:"id"`
	Subject   string           `json:"subject"`
	Start     graphDateTime    `json:"start"`
	End       graphDateTime    `json:"end"`
	Location  *graphLocation   `json:"location"`
	Attendees []graphRecipient `json:"attendees"`
}

// ListRecentEmails は直近windowHours時間のメールを新しい順で最大50件返す。
// sendersが指定された場合は送信者アドレスのOR条件で絞り込む。
// トークンが得られない場合はnot_configuredエラーを返す。
// 上流の失敗（非200・トランスポートエラー）はログとメトリクスに記録し、
// 空のスライスに吸収する。呼び出し側はHTTP上「メールなし」と区別できない。
func (c *Client) ListRecentEmails(ctx context.Context, senders []string, windowHours int) ([]model.Email, error) {
	token, ok := c.tokens.Token(ctx)
	if !ok {
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeNotConfigured)
		return nil, model.NewNotConfiguredError("microsoft graph")
	}

	since := time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour)
	filter := fmt.Sprintf("receivedDateTime ge %s", since.Format("2006-01-02T15:04:05Z"))

	if len(senders) > 0 {
		clauses := make([]string, 0, len(senders))
		for _, s := range senders {
			clauses = append(clauses, fmt.Sprintf("from/emailAddress/address eq '%s'", s))
		}
		filter = fmt.Sprintf("(%s) and (%s)", filter, strings.Join(clauses, " or "))
	}

	q := url.Values{}
	q.Set("$top", fmt.Sprintf("%d", maxEmailsPerRequest))
	q.Set("$orderby", "receivedDateTime desc")
	q.Set("$filter", filter)
	q.Set("$select", "id,subject,receivedDateTime,isRead,bodyPreview,from")

	reqURL := fmt.Sprintf("%s/users/%s/messages?%s", c.baseURL, url.PathEscape(c.userEmail), q.Encode())

	var payload struct {
		Value []graphMessage `json:"value"`
	}
	if !c.get(ctx, reqURL, token, "emails", &payload) {
		return []model.Email{}, nil
	}

	emails := make([]model.Email, 0, len(payload.Value))
	for _, msg := range payload.Value {
		subject := msg.Subject
		if subject == "" {
			subject = "(No Subject)"
		}
		sender := ""
		if msg.From != nil {
			sender = msg.From.EmailAddress.Address
		}
		emails = append(emails, model.Email{
			ID:         msg.ID,
			Subject:    subject,
			Sender:     sender,
			ReceivedAt: msg.ReceivedDateTime,
			Read:       msg.IsRead,
			Snippet:    c.sanitizer.Sanitize(msg.BodyPreview),
		})
	}

	c.recordResult(len(emails))
	return emails, nil
}

// ListEvents は指定範囲のカレンダー予定を開始時刻順で返す。
// 単純な等価フィルタではなくcalendarView（範囲展開ビュー)を使用するため、
// 繰り返し予定は個々のインスタンスに展開されて返る。
// トークンが得られない場合はnot_configuredエラーを返す。
func (c *Client) ListEvents(ctx context.Context, start, end time.Time) ([]model.Event, error) {
	token, ok := c.tokens.Token(ctx)
	if !ok {
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeNotConfigured)
		return nil, model.NewNotConfiguredError("microsoft graph")
	}

	q := url.Values{}
	q.Set("startDateTime", start.UTC().Format("2006-01-02T15:04:05Z"))
	q.Set("endDateTime", end.UTC().Format("2006-01-02T15:04:05Z"))
	q.Set("$orderby", "start/dateTime")
	q.Set("$select", "id,subject,start,end,location,attendees")

	reqURL := fmt.Sprintf("%s/users/%s/calendarView?%s", c.baseURL, url.PathEscape(c.userEmail), q.Encode())

	var payload struct {
		Value []graphEvent `json:"value"`
	}
	if !c.get(ctx, reqURL, token, "events", &payload) {
		return []model.Event{}, nil
	}

	events := make([]model.Event, 0, len(payload.Value))
	for _, ev := range payload.Value {
		title := ev.Subject
		if title == "" {
			title = "(No Title)"
		}
		location := "No location"
		if ev.Location != nil && ev.Location.DisplayName != "" {
			location = ev.Location.DisplayName
		}
		attendees := make([]string, 0, len(ev.Attendees))
		for _, a := range ev.Attendees {
			if a.EmailAddress.Address != "" {
				attendees = append(attendees, a.EmailAddress.Address)
			}
		}
		events = append(events, model.Event{
			ID:        ev.ID,
			Title:     title,
			Start:     ev.Start.DateTime,
			End:       ev.End.DateTime,
			Location:  location,
			Attendees: attendees,
		})
	}

	c.recordResult(len(events))
	return events, nil
}

// get は認証付きGETを実行してJSONをデコードする。
// 失敗時はログとメトリクスに記録してfalseを返す（エラーは伝播しない）。
func (c *Client) get(ctx context.Context, reqURL, token, operation string, out any) bool {
	started := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("failed to build graph request",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("graph request failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return false
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstreamLatency(serviceName, time.Since(started))

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("graph returned non-200 status",
			slog.String("operation", operation),
			slog.Int("http_status", resp.StatusCode),
		)
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return false
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("failed to decode graph response",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
		)
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return false
	}

	return true
}

// recordResult は正常応答の結果件数をメトリクスに記録する。
func (c *Client) recordResult(count int) {
	if count == 0 {
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeEmpty)
		return
	}
	c.metrics.RecordUpstream(serviceName, metrics.OutcomeSuccess)
}
