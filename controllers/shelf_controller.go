package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"gymsystem/database"
	"gymsystem/services"
)

// ShelfController обрабатывает запросы, связанные со шкафчиками
type ShelfController struct {
	shelfService *services.ShelfService
}

// NewShelfController создает новый экземпляр ShelfController
func NewShelfController(db *database.Database) *ShelfController {
	return &ShelfController{
		shelfService: services.NewShelfService(db.DB),
	}
}

// ListShelves обрабатывает запрос на получение списка шкафчиков
func (c *ShelfController) ListShelves(w http.ResponseWriter, r *http.Request) {
	shelves, err := c.shelfService.List()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(shelves)
}

// GetShelf обрабатывает запрос на получение шкафчика по ID
func (c *ShelfController) GetShelf(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid shelf ID", http.StatusBadRequest)
		return
	}

	shelf, err := c.shelfService.GetByID(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(shelf)
}

// CreateShelf обрабатывает запрос на создание шкафчика
func (c *ShelfController) CreateShelf(w http.ResponseWriter, r *http.Request) {
	// Создаем DTO для запроса
	var dto services.CreateShelfDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Создаем шкафчик
	shelf, err := c.shelfService.Create(dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(shelf)
}

// UpdateShelf обрабатывает запрос на частичное обновление шкафчика
func (c *ShelfController) UpdateShelf(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid shelf ID", http.StatusBadRequest)
		return
	}

	// Создаем DTO для запроса
	var dto services.UpdateShelfDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Обновляем шкафчик
	shelf, err := c.shelfService.Update(id, dto)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(shelf)
}

// DeleteShelf обрабатывает запрос на удаление шкафчика
func (c *ShelfController) DeleteShelf(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "Invalid shelf ID", http.StatusBadRequest)
		return
	}

	if err := c.shelfService.Delete(id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RegisterRoutes регистрирует маршруты контроллера
func (c *ShelfController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/shelves", c.ListShelves).Methods("GET")
	router.HandleFunc("/shelves", c.CreateShelf).Methods("POST")
	router.HandleFunc("/shelves/{id}", c.GetShelf).Methods("GET")
	router.HandleFunc("/shelves/{id}", c.UpdateShelf).Methods("PUT")
	router.HandleFunc("/shelves/{id}", c.DeleteShelf).Methods("DELETE")
}
