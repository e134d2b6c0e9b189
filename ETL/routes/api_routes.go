package routes

import (
	"net/http"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes настраивает маршруты API статуса ETL и метрик
func SetupRoutes(router *mux.Router, repo models.ETLLogRepository, gatherer prometheus.Gatherer) {
	// Сводка по состоянию ETL
	router.HandleFunc("/api/etl/status", GetStatusHandler(repo)).Methods(http.MethodGet)

	// Журнал запусков за период
	router.HandleFunc("/api/etl/runs", GetRunsHandler(repo)).Methods(http.MethodGet)

	// Метрики Prometheus
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}
