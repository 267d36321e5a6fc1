package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gymsystem/database"
	"gymsystem/services"
)

// AthleteController обрабатывает запросы, связанные с атлетами
type AthleteController struct {
	athleteService *services.AthleteService
}

// NewAthleteController создает новый экземпляр AthleteController
func NewAthleteController(db *database.Database, email *services.EmailService) *AthleteController {
	return &AthleteController{
		athleteService: services.NewAthleteService(db.DB, email),
	}
}

// ListAthletes обрабатывает запрос на получение списка атлетов с фильтрами
func (c *AthleteController) ListAthletes(w http.ResponseWriter, r *http.Request) {
	query := services.ListAthletesQuery{
		FeeStatus: r.URL.Query().Get("fee_status"),
		GymType:   r.URL.Query().Get("gym_type"),
		GymTime:   r.URL.Query().Get("gym_time"),
		Search:    r.URL.Query().Get("search"),
		Ordering:  r.URL.Query().Get("ordering"),
	}

	athletes, err := c.athleteService.List(query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(athletes)
}

// GetAthlete обрабатывает запрос на получение атлета по ID
func (c *AthleteController) GetAthlete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid athlete ID", http.StatusBadRequest)
		return
	}

	athlete, err := c.athleteService.GetByID(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(athlete)
}

// CreateAthlete обрабатывает запрос на регистрацию атлета
func (c *AthleteController) CreateAthlete(w http.ResponseWriter, r *http.Request) {
	// Создаем DTO для запроса
	var dto services.CreateAthleteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Регистрируем атлета
	athlete, err := c.athleteService.Create(dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(athlete)
}

// UpdateAthlete обрабатывает запрос на частичное обновление атлета
func (c *AthleteController) UpdateAthlete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid athlete ID", http.StatusBadRequest)
		return
	}

	// Создаем DTO для запроса
	var dto services.UpdateAthleteDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Обновляем атлета
	athlete, err := c.athleteService.Update(id, dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(athlete)
}

// DeleteAthlete обрабатывает запрос на удаление атлета
func (c *AthleteController) DeleteAthlete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid athlete ID", http.StatusBadRequest)
		return
	}

	if err := c.athleteService.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RenewAthlete обрабатывает запрос на продление членства
func (c *AthleteController) RenewAthlete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid athlete ID", http.StatusBadRequest)
		return
	}

	// Создаем DTO для запроса
	var dto services.RenewDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Продлеваем членство
	result, err := c.athleteService.Renew(id, dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// ToggleAthleteStatus обрабатывает запрос на переключение активности
func (c *AthleteController) ToggleAthleteStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid athlete ID", http.StatusBadRequest)
		return
	}

	athlete, err := c.athleteService.ToggleStatus(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(athlete)
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *AthleteController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/athletes", c.ListAthletes).Methods("GET")
	router.HandleFunc("/athletes", c.CreateAthlete).Methods("POST")
	router.HandleFunc("/athletes/{id}", c.GetAthlete).Methods("GET")
	router.HandleFunc("/athletes/{id}", c.UpdateAthlete).Methods("PUT")
	router.HandleFunc("/athletes/{id}", c.DeleteAthlete).Methods("DELETE")
	router.HandleFunc("/athletes/{id}/renew", c.RenewAthlete).Methods("POST")
	router.HandleFunc("/athletes/{id}/toggle-status", c.ToggleAthleteStatus).Methods("POST")
}

// parseIDParam извлекает числовой ID из пути запроса
func parseIDParam(r *http.Request) (uint, error) {
	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// writeServiceError сопоставляет ошибку бизнес-логики со статусом HTTP
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrAthleteNotFound),
		errors.Is(err, services.ErrShelfNotFound),
		errors.Is(err, services.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrShelfConflict),
		errors.Is(err, services.ErrShelfNumberBusy):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, services.ErrWrongPassword):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
