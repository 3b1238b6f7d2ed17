// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// rating.MetricsRecorderとmiddleware.HTTPStatusRecorderを実装する。
type Collector struct {
	finalizeTotal   prometheus.Counter
	finalizeLatency prometheus.Histogram
	decayDaysTotal  prometheus.Counter
	liveRecalcTotal prometheus.Counter
	finalDPS        prometheus.Histogram
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		finalizeTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rankman_finalize_total",
			Help: "日次確定の合計数",
		}),
		finalizeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rankman_finalize_latency_seconds",
			Help:    "日次確定処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		decayDaysTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rankman_inactivity_decay_days_total",
			Help: "非活動減衰が適用された日数の合計",
		}),
		liveRecalcTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rankman_live_recalc_total",
			Help: "暫定レーティング再計算の合計数",
		}),
		finalDPS: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rankman_final_dps",
			Help:    "確定された日次パフォーマンススコアの分布",
			Buckets: prometheus.LinearBuckets(-100, 20, 11),
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rankman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.finalizeTotal,
		c.finalizeLatency,
		c.decayDaysTotal,
		c.liveRecalcTotal,
		c.finalDPS,
		c.httpStatus,
	)

	return c
}

// RecordFinalization は日次確定の完了とレイテンシを記録する。
func (c *Collector) RecordFinalization(duration time.Duration) {
	c.finalizeTotal.Inc()
	c.finalizeLatency.Observe(duration.Seconds())
}

// RecordInactivityDecay は非活動減衰の適用日数を記録する。
func (c *Collector) RecordInactivityDecay(days int) {
	c.decayDaysTotal.Add(float64(days))
}

// RecordLiveRecalc は暫定レーティング再計算を記録する。
func (c *Collector) RecordLiveRecalc() {
	c.liveRecalcTotal.Inc()
}

// RecordFinalDPS は確定されたDPSの値を記録する。
func (c *Collector) RecordFinalDPS(dps int) {
	c.finalDPS.Observe(float64(dps))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
