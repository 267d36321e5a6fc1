package services

import (
	"errors"

	"gorm.io/gorm"

	"gymsystem/database"
	"gymsystem/models"
	"gymsystem/utils"
)

// UserService предоставляет методы для работы с учетными записями
type UserService struct {
	db *database.Database
}

type UserDTO struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type CreateUserRequest struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
}

func NewUserService(db *database.Database) *UserService {
	return &UserService{db: db}
}

// CreateUserInternal создает нового пользователя
func (h *UserService) CreateUserInternal(req CreateUserRequest) (*models.User, error) {
	// Проверяем, существует ли пользователь с таким email
	var existingUser models.User
	if err := h.db.DB.Where("LOWER(email) = LOWER(?)", req.Email).First(&existingUser).Error; err == nil {
		return nil, errors.New("user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Хешируем пароль
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	// Создаем нового пользователя
	user := &models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  hashedPassword,
	}

	if err := h.db.CreateUser(user); err != nil {
		return nil, err
	}

	return user, nil
}

// FindByEmail ищет пользователя по email (игнорируя регистр и пробелы)
func (h *UserService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := h.db.DB.Where("LOWER(TRIM(email)) = LOWER(TRIM(?))", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// VerifyPassword проверяет пароль пользователя
func (h *UserService) VerifyPassword(user *models.User, password string) bool {
	return utils.CheckPasswordHash(password, user.Password)
}

// ChangePassword меняет пароль пользователя после проверки старого.
// Неверный старый пароль ничего не изменяет.
func (h *UserService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	user, err := h.db.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !h.VerifyPassword(user, oldPassword) {
		return ErrWrongPassword
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := h.db.DB.Model(user).Update("password", hashedPassword).Error; err != nil {
		return errors.New("не удалось обновить пароль")
	}
	return nil
}

// EnsureAdmin создает учетную запись администратора по умолчанию,
// если в базе еще нет ни одного пользователя
func (h *UserService) EnsureAdmin(email, password string) error {
	count, err := h.db.CountUsers()
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	_, err = h.CreateUserInternal(CreateUserRequest{
		FirstName: "Gym",
		LastName:  "Admin",
		Email:     email,
		Password:  password,
	})
	return err
}
