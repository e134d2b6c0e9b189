package routes

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/LilVoxy/crm_warehouse/ETL/models"
)

const defaultRunsPeriodDays = 7

// RunsResponse структура ответа API для журнала запусков
type RunsResponse struct {
	Days int                `json:"days"`
	Runs []models.ETLRunLog `json:"runs"`
}

// GetStatusHandler возвращает сводку о состоянии ETL
func GetStatusHandler(repo models.ETLLogRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		monitor, err := repo.GetETLStateMonitor()
		if err != nil {
			http.Error(w, "Ошибка при получении состояния ETL", http.StatusInternalServerError)
			return
		}
		writeJSON(w, monitor)
	}
}

// GetRunsHandler возвращает запуски ETL за последние days дней (по умолчанию 7)
func GetRunsHandler(repo models.ETLLogRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days := defaultRunsPeriodDays
		if s := r.URL.Query().Get("days"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				http.Error(w, "Неверный формат параметра days", http.StatusBadRequest)
				return
			}
			days = n
		}

		runs, err := repo.GetETLRunStats(days)
		if err != nil {
			http.Error(w, "Ошибка при получении журнала запусков", http.StatusInternalServerError)
			return
		}
		if runs == nil {
			runs = []models.ETLRunLog{}
		}
		writeJSON(w, RunsResponse{Days: days, Runs: runs})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Ошибка при формировании ответа", http.StatusInternalServerError)
	}
}
