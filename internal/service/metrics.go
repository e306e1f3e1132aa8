package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gamesStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ronin_games_started_total",
		Help: "Total number of save slots started.",
	})
	choicesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ronin_choices_total",
			Help: "Total number of choices submitted, by outcome.",
		},
		[]string{"outcome"}, // applied, ignored, rejected
	)
	endingsReachedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ronin_endings_reached_total",
			Help: "Total number of endings reached, by ending scene.",
		},
		[]string{"scene"},
	)
	itemsCollectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ronin_items_collected_total",
		Help: "Total number of items added to inventories.",
	})
	gameResetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ronin_game_resets_total",
		Help: "Total number of save slot resets.",
	})
	eventPublishFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ronin_event_publish_failures_total",
		Help: "Total number of game events that could not be published.",
	})
)
