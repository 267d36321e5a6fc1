package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"gymsystem/config"
	"gymsystem/database"
	"gymsystem/middleware"
	"gymsystem/services"
)

type AuthController struct {
	userHandler *services.UserService
	validate    *validator.Validate
	config      *config.Config
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type SignInResponse struct {
	Token string `json:"token"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func NewAuthController(db *database.Database, cfg *config.Config) *AuthController {
	return &AuthController{
		userHandler: services.NewUserService(db),
		validate:    validator.New(),
		config:      cfg,
	}
}

// SignIn обрабатывает вход администратора
func (c *AuthController) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Валидация запроса
	if err := c.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		http.Error(w, validationErrors.Error(), http.StatusBadRequest)
		return
	}

	// Ищем пользователя по email
	user, err := c.userHandler.FindByEmail(req.Email)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	// Проверяем пароль
	if !c.userHandler.VerifyPassword(user, req.Password) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	// Создаем JWT токен
	expirationTime := time.Now().Add(time.Duration(c.config.JWT.ExpiresIn) * time.Hour)
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(c.config.JWT.SecretKey))
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	response := SignInResponse{
		Token: tokenString,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// ChangePassword обрабатывает смену пароля; неверный старый пароль
// ничего не изменяет
func (c *AuthController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	// Получаем ID пользователя из контекста (установлен middleware)
	userID, _, err := middleware.GetUserFromContext(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Валидация запроса
	if err := c.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		http.Error(w, validationErrors.Error(), http.StatusBadRequest)
		return
	}

	// Меняем пароль
	if err := c.userHandler.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrWrongPassword) {
			http.Error(w, "Wrong old password", http.StatusUnauthorized)
			return
		}
		writeServiceError(w, err)
		return
	}

	// Отправляем ответ
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Password changed successfully",
	})
}

// GetJWTKey возвращает ключ для JWT
func (c *AuthController) GetJWTKey() string {
	return c.config.JWT.SecretKey
}

// RegisterRoutes регистрирует защищенные маршруты контроллера
func (c *AuthController) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/change-password", c.ChangePassword).Methods("POST")
}
