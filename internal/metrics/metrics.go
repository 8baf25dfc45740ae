package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lessonplanner",
			Name:      "generations_total",
			Help:      "Lesson plan generations by source kind and result branch",
		},
		[]string{"source", "branch"},
	)

	degradations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lessonplanner",
			Name:      "degradations_total",
			Help:      "Degraded pipeline outcomes by reason",
		},
		[]string{"reason"},
	)

	stageLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lessonplanner",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	webFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lessonplanner",
			Name:      "web_fetches_total",
			Help:      "Web page fetches by result (ok or failure class)",
		},
		[]string{"result"},
	)

	pdfPages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lessonplanner",
			Name:      "pdf_pages_total",
			Help:      "PDF pages seen by result (extracted, skipped)",
		},
		[]string{"result"},
	)

	bindFields = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lessonplanner",
			Name:      "bind_fields_total",
			Help:      "Template field bindings by outcome (labeled, bracketed, unfilled)",
		},
		[]string{"outcome"},
	)

	updates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lessonplanner",
			Name:      "telegram_updates_total",
			Help:      "Incoming Telegram updates by kind",
		},
		[]string{"kind"},
	)
)

var once sync.Once

// Init registers collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(generations, degradations, stageLatency, webFetches, pdfPages, bindFields, updates)
	})
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func IncGeneration(source, branch string) { generations.WithLabelValues(source, branch).Inc() }
func IncDegradation(reason string)        { degradations.WithLabelValues(reason).Inc() }

func ObserveStage(stage string, dur time.Duration) {
	stageLatency.WithLabelValues(stage).Observe(dur.Seconds())
}

func IncWebFetch(result string) { webFetches.WithLabelValues(result).Inc() }

func AddPDFPages(extracted, skipped int) {
	pdfPages.WithLabelValues("extracted").Add(float64(extracted))
	pdfPages.WithLabelValues("skipped").Add(float64(skipped))
}

func AddBindings(labeled, bracketed, unfilled int) {
	bindFields.WithLabelValues("labeled").Add(float64(labeled))
	bindFields.WithLabelValues("bracketed").Add(float64(bracketed))
	bindFields.WithLabelValues("unfilled").Add(float64(unfilled))
}

func IncUpdate(kind string) { updates.WithLabelValues(kind).Inc() }
