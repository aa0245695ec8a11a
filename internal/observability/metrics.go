package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	tasksCompletedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rotation_service",
		Subsystem: "ledger",
		Name:      "tasks_completed_total",
		Help:      "Number of cleaning tasks validated as completed, by building.",
	}, []string{"building_id"})

	tasksMissedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rotation_service",
		Subsystem: "ledger",
		Name:      "tasks_missed_total",
		Help:      "Number of cleaning tasks marked as missed, by building.",
	}, []string{"building_id"})

	schedulesGeneratedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "rotation_service",
		Subsystem: "engine",
		Name:      "schedules_generated_total",
		Help:      "Number of weekly rotation schedules regenerated.",
	})

	badgesAwardedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rotation_service",
		Subsystem: "badges",
		Name:      "awarded_total",
		Help:      "Number of badges awarded, by badge type.",
	}, []string{"badge_type"})

	lastScheduleGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "rotation_service",
		Subsystem: "engine",
		Name:      "last_schedule_generated_timestamp_seconds",
		Help:      "Unix timestamp of the most recent schedule regeneration.",
	})
)

func init() {
	prometheus.MustRegister(tasksCompletedCounter, tasksMissedCounter, schedulesGeneratedCounter, badgesAwardedCounter, lastScheduleGauge)
}

// RecordTaskCompleted increments the completion counter.
func RecordTaskCompleted(buildingID string) {
	tasksCompletedCounter.WithLabelValues(buildingID).Inc()
}

// RecordTaskMissed increments the miss counter.
func RecordTaskMissed(buildingID string) {
	tasksMissedCounter.WithLabelValues(buildingID).Inc()
}

// RecordScheduleGenerated updates the regeneration counter and watermark.
func RecordScheduleGenerated(ts time.Time) {
	schedulesGeneratedCounter.Inc()
	if !ts.IsZero() {
		lastScheduleGauge.Set(float64(ts.Unix()))
	}
}

// RecordBadgeAwarded increments the badge counter.
func RecordBadgeAwarded(badgeType string) {
	badgesAwardedCounter.WithLabelValues(badgeType).Inc()
}
