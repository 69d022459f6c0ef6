// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 上流呼び出しの結果分類。
// 読み取り系アダプタは上流障害をHTTPレスポンス上は空結果に吸収するため、
// 「本当に空」と「上流が壊れた」はこのラベルでのみ区別できる。
const (
	OutcomeSuccess       = "success"
	OutcomeEmpty         = "empty"
	OutcomeError         = "error"
	OutcomeNotConfigured = "not_configured"
)

// Recorder はメトリクス収集のインターフェース。
// アダプタやキャッシュ層から利用する。
type Recorder interface {
	RecordUpstream(service string, outcome string)
	RecordUpstreamLatency(service string, duration time.Duration)
	RecordAuthFailure(reason string)
	RecordDirectoryRefresh(outcome string)
	SetDirectoryUsers(count int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec
	authFailures     *prometheus.CounterVec
	directoryRefresh *prometheus.CounterVec
	directoryUsers   prometheus.Gauge
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dayboard_upstream_requests_total",
			Help: "上流サービス呼び出しの結果別合計数",
		}, []string{"service", "outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dayboard_upstream_latency_seconds",
			Help:    "上流サービス呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"service"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dayboard_auth_failures_total",
			Help: "認証失敗の理由別合計数",
		}, []string{"reason"}),
		directoryRefresh: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dayboard_directory_refresh_total",
			Help: "ユーザーディレクトリ再読込の結果別合計数",
		}, []string{"outcome"}),
		directoryUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dayboard_directory_users",
			Help: "キャッシュ中の認可済みユーザー数",
		}),
	}

	reg.MustRegister(
		c.upstreamRequests,
		c.upstreamLatency,
		c.authFailures,
		c.directoryRefresh,
		c.directoryUsers,
	)

	return c
}

// RecordUpstream は上流呼び出しの結果を記録する。
func (c *Collector) RecordUpstream(service string, outcome string) {
	c.upstreamRequests.WithLabelValues(service, outcome).Inc()
}

// RecordUpstreamLatency は上流呼び出しのレイテンシを記録する。
func (c *Collector) RecordUpstreamLatency(service string, duration time.Duration) {
	c.upstreamLatency.WithLabelValues(service).Observe(duration.Seconds())
}

// RecordAuthFailure は認証失敗を記録する。
func (c *Collector) RecordAuthFailure(reason string) {
	c.authFailures.WithLabelValues(reason).Inc()
}

// RecordDirectoryRefresh はユーザーディレクトリ再読込の結果を記録する。
func (c *Collector) RecordDirectoryRefresh(outcome string) {
	c.directoryRefresh.WithLabelValues(outcome).Inc()
}

// SetDirectoryUsers はキャッシュ中のユーザー数を記録する。
func (c *Collector) SetDirectoryUsers(count int) {
	c.directoryUsers.Set(float64(count))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ Recorder = (*Collector)(nil)

// Nop は何も記録しないRecorder。テストおよび未配線時のデフォルト用。
type Nop struct{}

func (Nop) RecordUpstream(string, string)               {}
func (Nop) RecordUpstreamLatency(string, time.Duration) {}
func (Nop) RecordAuthFailure(string)                    {}
func (Nop) RecordDirectoryRefresh(string)               {}
func (Nop) SetDirectoryUsers(int)                       {}

var _ Recorder = Nop{}
