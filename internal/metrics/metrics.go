// Package metrics exports engine progress as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/julianstephens/habitquest/internal/engine"
	"github.com/julianstephens/habitquest/internal/models"
)

const namespace = "habitquest"

var xpSources = map[models.RewardKind]models.XPSource{
	models.RewardTaskXP:     models.XPSourceTask,
	models.RewardHabitBonus: models.XPSourceHabitBonus,
	models.RewardDailyBonus: models.XPSourceDailyBonus,
}

// Recorder is an engine.Observer backed by its own registry
type Recorder struct {
	registry *prometheus.Registry

	xpAwarded    *prometheus.CounterVec
	rewardEvents *prometheus.CounterVec
	tierReached  *prometheus.CounterVec

	xpTotal        prometheus.Gauge
	level          prometheus.Gauge
	globalStreak   prometheus.Gauge
	day            prometheus.Gauge
	slotsAvailable prometheus.Gauge
	slotsUsed      prometheus.Gauge
}

var _ engine.Observer = (*Recorder)(nil)

// New creates a recorder with Go runtime collectors registered
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		xpAwarded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "xp_awarded_total",
			Help:      "XP awarded, by source.",
		}, []string{"source"}),
		rewardEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reward_events_total",
			Help:      "Reward events emitted, by kind.",
		}, []string{"kind"}),
		tierReached: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mastery_tier_changes_total",
			Help:      "Mastery tier changes, by the tier reached.",
		}, []string{"tier"}),
		xpTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "xp",
			Help:      "Lifetime XP.",
		}),
		level: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "level",
			Help:      "Current level.",
		}),
		globalStreak: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "global_streak_days",
			Help:      "Consecutive days on which every active habit was completed.",
		}),
		day: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "day_index",
			Help:      "Day index the engine is currently on.",
		}),
		slotsAvailable: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "habit_slots_available",
			Help:      "Habit slots available at the current global streak.",
		}),
		slotsUsed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "habit_slots_used",
			Help:      "Active habits occupying a slot.",
		}),
	}
}

// Observe counts the events and refreshes the gauges from the summary
func (r *Recorder) Observe(events []models.RewardEvent, summary engine.Summary) {
	for _, ev := range events {
		r.rewardEvents.WithLabelValues(string(ev.Kind)).Inc()
		if source, ok := xpSources[ev.Kind]; ok {
			r.xpAwarded.WithLabelValues(string(source)).Add(float64(ev.Amount))
		}
		if ev.Kind == models.RewardMasteryTierShift {
			r.tierReached.WithLabelValues(string(ev.Tier)).Inc()
		}
	}
	r.Sync(summary)
}

// Sync sets the gauges without counting any events
func (r *Recorder) Sync(summary engine.Summary) {
	r.xpTotal.Set(float64(summary.XPTotal))
	r.level.Set(float64(summary.Level))
	r.globalStreak.Set(float64(summary.GlobalStreak))
	r.day.Set(float64(summary.Day))
	r.slotsAvailable.Set(float64(summary.Slots.Available))
	r.slotsUsed.Set(float64(summary.Slots.Used))
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
