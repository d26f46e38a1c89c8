package services

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService 指标服务
type MetricsService struct {
	documentsIngested *prometheus.CounterVec
	chunksStored      prometheus.Counter
	queriesTotal      *prometheus.CounterVec
	retrievalFailures prometheus.Counter
	answerDuration    prometheus.Histogram
}

// NewMetricsService 创建指标服务并注册指标
func NewMetricsService() *MetricsService {
	return &MetricsService{
		documentsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_documents_ingested_total",
				Help: "Total number of documents processed by the ingestion pipeline",
			},
			[]string{"status"}, // status: ok, rejected, failed
		),
		chunksStored: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "assistant_chunks_stored_total",
				Help: "Total number of chunks upserted into the vector store",
			},
		),
		queriesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assistant_queries_total",
				Help: "Total number of chat queries answered",
			},
			[]string{"provider"},
		),
		retrievalFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "assistant_retrieval_failures_total",
				Help: "Total number of queries that retrieved no context",
			},
		),
		answerDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "assistant_answer_duration_seconds",
				Help:    "End to end duration of answering a chat query",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

// RecordIngestion 记录一次文档摄取结果
func (ms *MetricsService) RecordIngestion(status string, chunks int) {
	ms.documentsIngested.WithLabelValues(status).Inc()
	if chunks > 0 {
		ms.chunksStored.Add(float64(chunks))
	}
}

// RecordQuery 记录一次问答
func (ms *MetricsService) RecordQuery(provider string, numContexts int, elapsed time.Duration) {
	ms.queriesTotal.WithLabelValues(provider).Inc()
	if numContexts == 0 {
		ms.retrievalFailures.Inc()
	}
	ms.answerDuration.Observe(elapsed.Seconds())
}

// Handler 返回Prometheus指标的HTTP处理器
func (ms *MetricsService) Handler() http.Handler {
	return promhttp.Handler()
}

// ServeHTTP 实现http.Handler接口
func (ms *MetricsService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ms.Handler().ServeHTTP(w, r)
}
