package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"gymsystem/database"
	"gymsystem/services"
	"gymsystem/utils"
)

// DashboardController обрабатывает запросы панели статистики
type DashboardController struct {
	dashboardService *services.DashboardService
	reportService    *services.ReportService
}

// NewDashboardController создает новый экземпляр DashboardController
func NewDashboardController(db *database.Database) *DashboardController {
	return &DashboardController{
		dashboardService: services.NewDashboardService(db.DB),
		reportService:    services.NewReportService(),
	}
}

// GetDashboard обрабатывает запрос на получение статистики панели
func (c *DashboardController) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := c.dashboardService.GetStats(time.Now())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(stats)
}

// ExportDashboard обрабатывает запрос на выгрузку статистики в XML
func (c *DashboardController) ExportDashboard(w http.ResponseWriter, r *http.Request) {
	now := time.Now()

	stats, err := c.dashboardService.GetStats(now)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	report, err := c.reportService.BuildDashboardXML(stats, now)
	if err != nil {
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", `attachment; filename="dashboard.xml"`)
	w.WriteHeader(http.StatusOK)
	w.Write(report)
}

// GetMetrics обрабатывает запрос на получение метрик приложения
func (c *DashboardController) GetMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(utils.GetMetrics().Snapshot())
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *DashboardController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/dashboard", c.GetDashboard).Methods("GET")
	router.HandleFunc("/dashboard/export", c.ExportDashboard).Methods("GET")
	router.HandleFunc("/metrics", c.GetMetrics).Methods("GET")
}
