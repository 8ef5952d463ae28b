package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegisterPoolMetrics exposes pgxpool statistics as Prometheus gauges.
func RegisterPoolMetrics(pool *pgxpool.Pool, service string) {
	labels := prometheus.Labels{"service": service}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "db_pool_total_conns",
		Help:        "Total connections in the pool.",
		ConstLabels: labels,
	}, func() float64 {
		return float64(pool.Stat().TotalConns())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "db_pool_idle_conns",
		Help:        "Idle connections in the pool.",
		ConstLabels: labels,
	}, func() float64 {
		return float64(pool.Stat().IdleConns())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "db_pool_acquired_conns",
		Help:        "Connections currently acquired from the pool.",
		ConstLabels: labels,
	}, func() float64 {
		return float64(pool.Stat().AcquiredConns())
	})
}
