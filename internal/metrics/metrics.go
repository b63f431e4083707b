// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 操作結果のラベル値。
const (
	OutcomeOK     = "ok"     // 成功
	OutcomeAbsent = "absent" // 該当行なし（正常な不在）
	OutcomeError  = "error"  // 伝播するエラー
)

// MetricsCollector はストア操作のメトリクス収集インターフェース。
// アダプタ層から操作ごとに1回呼び出される。
type MetricsCollector interface {
	RecordOperation(operation, outcome string, duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	opsTotal   *prometheus.CounterVec
	opsLatency *prometheus.HistogramVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		opsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "idstore_operations_total",
			Help: "ストア操作の実行回数（操作名・結果別）",
		}, []string{"operation", "outcome"}),
		opsLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "idstore_operation_duration_seconds",
			Help:    "ストア操作のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	reg.MustRegister(
		c.opsTotal,
		c.opsLatency,
	)

	return c
}

// RecordOperation は操作の結果とレイテンシを記録する。
func (c *Collector) RecordOperation(operation, outcome string, duration time.Duration) {
	c.opsTotal.WithLabelValues(operation, outcome).Inc()
	c.opsLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
