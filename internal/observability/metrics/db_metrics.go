package metrics

import (
	"database/sql"
	"log"

	"github.com/prometheus/client_golang/prometheus"
)

func registerDBMetrics(db *sql.DB, logger *log.Logger) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "movement_records",
			Help: "Total movement history records",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM movement_records")
		},
	))

	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "issued_commitments",
			Help: "Commitments currently holding allocation balance",
		},
		func() float64 {
			return queryCount(db, logger, "SELECT COUNT(*) FROM commitments WHERE status NOT IN ('draft', 'cancelled')")
		},
	))
}

func queryCount(db *sql.DB, logger *log.Logger, query string) float64 {
	if db == nil {
		return 0
	}
	var count int64
	if err := db.QueryRow(query).Scan(&count); err != nil {
		if logger != nil {
			logger.Printf("metrics query failed: %v", err)
		}
		return 0
	}
	if count < 0 {
		return 0
	}
	return float64(count)
}
