package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"gymsystem/config"
	"gymsystem/controllers"
	"gymsystem/database"
	"gymsystem/middleware"
	"gymsystem/services"
)

// healthHandler возвращает состояние сервиса
func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

func main() {
	// Инициализируем конфигурацию
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Инициализируем подключение к базе данных и выполняем миграции
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Ошибка подключения к базе данных: %v", err)
	}

	// Создаем учетную запись администратора, если ее еще нет
	userService := services.NewUserService(db)
	if err := userService.EnsureAdmin(cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Fatalf("Ошибка создания администратора: %v", err)
	}

	// Инициализируем сервис email
	emailService := services.NewEmailService(cfg)

	// Создаем роутер
	router := mux.NewRouter()
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.RateLimitMiddleware)

	// Инициализируем контроллеры
	authController := controllers.NewAuthController(db, cfg)
	athleteController := controllers.NewAthleteController(db, emailService)
	shelfController := controllers.NewShelfController(db)
	dashboardController := controllers.NewDashboardController(db)

	// Публичные маршруты
	router.HandleFunc("/health", healthHandler).Methods("GET")
	router.HandleFunc("/api/auth/signIn", authController.SignIn).Methods("POST")

	// Защищенные маршруты
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))
	protected.Use(middleware.LoggingMiddleware)

	athleteController.RegisterRoutes(protected)
	shelfController.RegisterRoutes(protected)
	dashboardController.RegisterRoutes(protected)
	authController.RegisterRoutes(protected)

	// Запускаем сервер
	port := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на порту %s", port)
	if err := http.ListenAndServe(port, router); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
