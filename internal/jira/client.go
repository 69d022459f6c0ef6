// Package jira はJira Cloudの課題をダッシュボードのタスクに正規化する
// アダプタを提供する。
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hitoshi/dayboard/internal/metrics"
	"github.com/hitoshi/dayboard/internal/model"
)

// serviceName はメトリクスのサービスラベル。
const serviceName = "jira"

// openStatusClause は「オープンなタスク」とみなすステータスのJQL条件。
// インスタンスによりステータス名の表記が揺れるため大文字表記を使用する
// （JiraのJQLはステータス名の大文字小文字を区別しない）。
const openStatusClause = "status in ('TO DO', 'IN PROGRESS')"

// Config はJiraアダプタの設定を保持する。
type Config struct {
	BaseURL    string
	Email      string
	APIKey     string
	ProjectKey string
	// DemoMode が有効な場合、未設定時に固定のサンプルデータを返す。
	// 無効な場合はnot_configuredエラーを返す。両者を混在させてはならない。
	DemoMode bool
	// Diagnostic が有効な場合、0件時に診断用の広いクエリを発行して
	// ステータス名の実態をログに残す。返却結果には影響しない。
	Diagnostic bool
}

// Client はJira REST APIのアダプタ。
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *slog.Logger
	metrics    metrics.Recorder
	now        func() time.Time // テスト用に差し替え可能
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger, rec metrics.Recorder) *Client {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
		metrics:    rec,
		now:        time.Now,
	}
}

// Configured は接続に必要な設定が揃っているかを返す。ヘルスレポート用。
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != "" && c.cfg.Email != "" && c.cfg.APIKey != "" && c.cfg.ProjectKey != ""
}

// --- 上流レスポンス形状 ---

type issueNamed struct {
	Name string `json:"name"`
}

type issueAssignee struct {
	DisplayName string `json:"displayName"`
}

type issueFields struct {
	Summary  string         `json:"summary"`
	Status   *issueNamed    `json:"status"`
	Priority *issueNamed    `json:"priority"`
	Assignee *issueAssignee `json:"assignee"`
	Updated  string         `json:"updated"`
}

type issue struct {
	Key    string      `json:"key"`
	Fields issueFields `json:"fields"`
}

type searchResult struct {
	Issues []issue `json:"issues"`
}

// ListOpenTasks は設定されたプロジェクトのオープンなタスクを
// 更新日時の新しい順で最大limit件返す。
//
// 未設定時の挙動はデプロイプロファイルで決まる:
// DemoModeならサンプルデータ、それ以外はnot_configuredエラー。
// 上流の失敗（非200・トランスポートエラー）はログとメトリクスに記録し、
// 空のスライスに吸収する。呼び出し側はHTTP上「タスクなし」と区別できない。
func (c *Client) ListOpenTasks(ctx context.Context, limit int) ([]model.Task, error) {
	if !c.Configured() {
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeNotConfigured)
		if c.cfg.DemoMode {
			c.logger.Info("jira is not configured, serving demo tasks")
			return demoTasks(c.now(), limit), nil
		}
		return nil, model.NewNotConfiguredError("jira")
	}

	jql := fmt.Sprintf("project = %s AND %s ORDER BY updated DESC", c.cfg.ProjectKey, openStatusClause)

	result, ok := c.search(ctx, jql, limit)
	if !ok {
		return []model.Task{}, nil
	}

	// 0件時の診断クエリ: ステータス名の揺れを調べるためのログ専用パス。
	// 本番の返却結果には決して影響させない。
	if len(result.Issues) == 0 && c.cfg.Diagnostic {
		c.logStatusInventory(ctx)
	}

	tasks := make([]model.Task, 0, len(result.Issues))
	for _, is := range result.Issues {
		tasks = append(tasks, c.normalize(is))
	}

	if len(tasks) == 0 {
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeEmpty)
	} else {
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeSuccess)
	}

	return tasks, nil
}

// normalize はJiraの課題を内部スキーマのタスクに変換する。
// 欠落フィールドには既定値を補う: priority "Medium"、assignee "Unassigned"、
// status "To Do"。更新日時がパースできない場合は現在時刻にフォールバックし、
// リクエスト全体は失敗させない。
func (c *Client) normalize(is issue) model.Task {
	title := is.Fields.Summary
	if title == "" {
		title = "No Title"
	}

	status := "To Do"
	if is.Fields.Status != nil && is.Fields.Status.Name != "" {
		status = is.Fields.Status.Name
	}

	priority := "Medium"
	if is.Fields.Priority != nil && is.Fields.Priority.Name != "" {
		priority = is.Fields.Priority.Name
	}

	assignee := "Unassigned"
	if is.Fields.Assignee != nil && is.Fields.Assignee.DisplayName != "" {
		assignee = is.Fields.Assignee.DisplayName
	}

	updated := c.now().UTC().Format(time.RFC3339)
	if is.Fields.Updated != "" {
		// Jiraは "2023-10-23T15:23:30.123+0000" 形式を返す
		if t, err := time.Parse("2006-01-02T15:04:05.000-0700", is.Fields.Updated); err == nil {
			updated = t.Format(time.RFC3339)
		} else if t, err := time.Parse(time.RFC3339, is.Fields.Updated); err == nil {
			updated = t.Format(time.RFC3339)
		}
	}

	return model.Task{
		ID:       is.Key,
		Title:    title,
		Status:   status,
		Priority: priority,
		Assignee: assignee,
		Updated:  updated,
	}
}

// search はJQL検索を実行する。失敗時はログとメトリクスに記録してfalseを返す。
func (c *Client) search(ctx context.Context, jql string, limit int) (*searchResult, bool) {
	started := time.Now()

	q := url.Values{}
	q.Set("jql", jql)
	q.Set("maxResults", strconv.Itoa(limit))
	q.Set("fields", "summary,status,priority,assignee,updated")

	reqURL := fmt.Sprintf("%s/rest/api/2/search?%s", c.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("failed to build jira request", slog.String("error", err.Error()))
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return nil, false
	}
	req.SetBasicAuth(c.cfg.Email, c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("jira request failed", slog.String("error", err.Error()))
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return nil, false
	}
	defer resp.Body.Close()

	c.metrics.RecordUpstreamLatency(serviceName, time.Since(started))

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("jira returned non-200 status",
			slog.Int("http_status", resp.StatusCode),
		)
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return nil, false
	}

	var result searchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.logger.Error("failed to decode jira response", slog.String("error", err.Error()))
		c.metrics.RecordUpstream(serviceName, metrics.OutcomeError)
		return nil, false
	}

	return &result, true
}

// logStatusInventory はステータスフィルタを外した広いクエリを発行し、
// プロジェクトで実際に使われているステータス名をログに残す。診断専用。
func (c *Client) logStatusInventory(ctx context.Context) {
	jql := fmt.Sprintf("project = %s ORDER BY updated DESC", c.cfg.ProjectKey)

	result, ok := c.search(ctx, jql, 10)
	if !ok {
		return
	}

	statuses := make(map[string]struct{})
	for _, is := range result.Issues {
		if is.Fields.Status != nil && is.Fields.Status.Name != "" {
			statuses[is.Fields.Status.Name] = struct{}{}
		}
	}

	names := make([]string, 0, len(statuses))
	for name := range statuses {
		names = append(names, name)
	}

	c.logger.Info("jira diagnostic: status inventory",
		slog.Int("issues_sampled", len(result.Issues)),
		slog.Any("statuses", names),
	)
}
