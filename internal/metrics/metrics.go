package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "godfield"

// Метки
const (
	LabelKind    = "kind"
	LabelOutcome = "outcome"
	LabelCause   = "cause"
	LabelPlanet  = "planet"
	LabelAction  = "action"
)

// Исходы защиты
const (
	DefenseNormal  = "normal"
	DefenseReflect = "reflect"
	DefenseFlick   = "flick"
	DefenseBlock   = "block"
)

// Combat Metrics
var (
	AttacksQueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attacks_queued_total",
			Help:      "Attacks put on the room queue, by first piece kind.",
		},
		[]string{LabelKind},
	)

	Defenses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "defenses_total",
			Help:      "Resolved defenses by outcome.",
		},
		[]string{LabelOutcome},
	)

	CountersSpawned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counters_spawned_total",
			Help:      "Forced counter attacks spawned by COUNTER pieces.",
		},
	)

	Deaths = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deaths_total",
			Help:      "Death pipeline outcomes.",
		},
		[]string{LabelCause},
	)

	AssistantTriggers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_triggers_total",
			Help:      "Assistant attacks injected at inning end.",
		},
		[]string{LabelPlanet},
	)
)

// Room Metrics
var (
	Innings = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "innings_total",
			Help:      "Innings started across all rooms.",
		},
	)

	RoomsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Rooms currently running.",
		},
	)

	CommandRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_rejections_total",
			Help:      "Client commands rejected before reaching the engine.",
		},
		[]string{LabelAction},
	)

	Timeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turn_timeouts_total",
			Help:      "Human turns decided by a bot after the timeout.",
		},
	)
)
