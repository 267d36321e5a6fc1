package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"gymsystem/models"
	"gymsystem/utils"
)

// CreateShelfDTO представляет данные для создания шкафчика
type CreateShelfDTO struct {
	ShelfNumber string `json:"shelf_number" validate:"required,min=1,max=10"`
}

// UpdateShelfDTO представляет данные для частичного обновления шкафчика.
// Закрепление и освобождение выполняются через операции с атлетом,
// здесь меняются только номер и параметры аренды; параметры аренды
// принимаются только у закрепленного шкафчика.
type UpdateShelfDTO struct {
	ShelfNumber  *string  `json:"shelf_number" validate:"omitempty,min=1,max=10"`
	LockerMonths *int     `json:"locker_months" validate:"omitempty,gt=0"`
	LockerPrice  *float64 `json:"locker_price" validate:"omitempty,gte=0"`
	LockerEnd    *string  `json:"locker_end_date" validate:"omitempty,datetime=2006-01-02"`
}

// ShelfDTO представляет шкафчик в ответе
type ShelfDTO struct {
	ID                uint     `json:"id"`
	ShelfNumber       string   `json:"shelf_number"`
	Status            string   `json:"status"`
	AssignedAthleteID *uint    `json:"assigned_athlete_id"`
	AthleteName       *string  `json:"athlete_name"`
	DurationMonths    *int     `json:"duration_months"`
	Price             *float64 `json:"price"`
	StartDate         *string  `json:"start_date"`
	EndDate           *string  `json:"end_date"`
}

// ShelfService предоставляет методы для работы со шкафчиками
type ShelfService struct {
	db        *gorm.DB
	validator *validator.Validate
}

// NewShelfService создает новый экземпляр ShelfService
func NewShelfService(db *gorm.DB) *ShelfService {
	return &ShelfService{
		db:        db,
		validator: validator.New(),
	}
}

// Create создает новый свободный шкафчик
func (s *ShelfService) Create(dto CreateShelfDTO) (*ShelfDTO, error) {
	// Валидируем DTO
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}

	shelf := &models.Shelf{
		ShelfNumber: dto.ShelfNumber,
		Status:      models.ShelfStatusAvailable,
	}

	if err := s.db.Create(shelf).Error; err != nil {
		// Номер шкафчика уникален на уровне схемы
		if isUniqueViolation(err) {
			return nil, ErrShelfNumberBusy
		}
		return nil, errors.New("не удалось создать шкафчик")
	}

	result := s.toShelfDTO(shelf)
	return &result, nil
}

// GetByID возвращает шкафчик по ID
func (s *ShelfService) GetByID(id uint) (*ShelfDTO, error) {
	var shelf models.Shelf
	if err := s.db.First(&shelf, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShelfNotFound
		}
		return nil, errors.New("ошибка при поиске шкафчика")
	}

	result := s.toShelfDTO(&shelf)
	return &result, nil
}

// List возвращает все шкафчики
func (s *ShelfService) List() ([]ShelfDTO, error) {
	var shelves []models.Shelf
	if err := s.db.Order("shelf_number").Find(&shelves).Error; err != nil {
		return nil, errors.New("ошибка при поиске шкафчиков")
	}

	result := make([]ShelfDTO, 0, len(shelves))
	for i := range shelves {
		result = append(result, s.toShelfDTO(&shelves[i]))
	}
	return result, nil
}

// Update выполняет частичное обновление шкафчика
func (s *ShelfService) Update(id uint, dto UpdateShelfDTO) (*ShelfDTO, error) {
	// Валидируем DTO
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}

	var shelf models.Shelf
	if err := s.db.First(&shelf, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShelfNotFound
		}
		return nil, errors.New("ошибка при поиске шкафчика")
	}

	// Параметры аренды существуют только у закрепленного шкафчика
	hasLockerFields := dto.LockerMonths != nil || dto.LockerPrice != nil || dto.LockerEnd != nil
	if hasLockerFields && shelf.Status != models.ShelfStatusAssigned {
		return nil, ErrShelfConflict
	}

	if dto.ShelfNumber != nil {
		shelf.ShelfNumber = *dto.ShelfNumber
	}
	if dto.LockerMonths != nil {
		shelf.DurationMonths = dto.LockerMonths
	}
	if dto.LockerPrice != nil {
		shelf.Price = dto.LockerPrice
	}
	if dto.LockerEnd != nil {
		parsed, err := parseOptionalDate(*dto.LockerEnd)
		if err != nil {
			return nil, fmt.Errorf("%w: неверный формат locker_end_date", ErrValidation)
		}
		shelf.EndDate = parsed
	}
	shelf.UpdatedAt = time.Now()

	if err := s.db.Save(&shelf).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrShelfNumberBusy
		}
		return nil, errors.New("не удалось обновить шкафчик")
	}

	result := s.toShelfDTO(&shelf)
	return &result, nil
}

// Delete удаляет шкафчик; занятый шкафчик удалить нельзя
func (s *ShelfService) Delete(id uint) error {
	var shelf models.Shelf
	if err := s.db.First(&shelf, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShelfNotFound
		}
		return errors.New("ошибка при поиске шкафчика")
	}

	if shelf.Status == models.ShelfStatusAssigned {
		return ErrShelfConflict
	}

	if err := s.db.Delete(&shelf).Error; err != nil {
		return errors.New("не удалось удалить шкафчик")
	}
	return nil
}

// toShelfDTO конвертирует модель в DTO, подтягивая имя атлета
func (s *ShelfService) toShelfDTO(shelf *models.Shelf) ShelfDTO {
	dto := ShelfDTO{
		ID:                shelf.ID,
		ShelfNumber:       shelf.ShelfNumber,
		Status:            string(shelf.Status),
		AssignedAthleteID: shelf.AssignedAthleteID,
		DurationMonths:    shelf.DurationMonths,
		Price:             shelf.Price,
	}
	if shelf.StartDate != nil {
		formatted := shelf.StartDate.Format(dateLayout)
		dto.StartDate = &formatted
	}
	if shelf.EndDate != nil {
		formatted := shelf.EndDate.Format(dateLayout)
		dto.EndDate = &formatted
	}
	if shelf.AssignedAthleteID != nil {
		var athlete models.Athlete
		if err := s.db.First(&athlete, *shelf.AssignedAthleteID).Error; err == nil {
			dto.AthleteName = &athlete.FullName
		}
	}
	return dto
}

// assignShelfTx закрепляет шкафчик за атлетом внутри открытой транзакции.
// Возвращает false без ошибки, если шкафчик не существует (для вызывающего
// это no-op). Занятый шкафчик дает ErrShelfConflict: переход выполняется
// охраняемым UPDATE по условию status = 'available', поэтому из двух
// конкурирующих закреплений выигрывает ровно одно.
func assignShelfTx(tx *gorm.DB, shelfID, athleteID uint, months *int, price *float64, endDate *time.Time) (bool, error) {
	var shelf models.Shelf
	if err := tx.First(&shelf, shelfID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, errors.New("ошибка при поиске шкафчика")
	}

	startDate := truncateToDay(time.Now())

	res := tx.Model(&models.Shelf{}).
		Where("id = ? AND status = ?", shelfID, models.ShelfStatusAvailable).
		Updates(map[string]interface{}{
			"status":              models.ShelfStatusAssigned,
			"assigned_athlete_id": athleteID,
			"duration_months":     months,
			"price":               price,
			"start_date":          startDate,
			"end_date":            endDate,
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			utils.GetMetrics().RecordShelfOperation("conflict", res.Error)
			return false, ErrShelfConflict
		}
		return false, errors.New("не удалось закрепить шкафчик")
	}
	if res.RowsAffected == 0 {
		// Шкафчик существует, но уже занят
		utils.GetMetrics().RecordShelfOperation("conflict", nil)
		return false, ErrShelfConflict
	}

	utils.GetMetrics().RecordShelfOperation("assign", nil)
	return true, nil
}

// releaseShelfTx освобождает шкафчик внутри открытой транзакции: статус
// возвращается в available, обратная ссылка и параметры аренды очищаются
func releaseShelfTx(tx *gorm.DB, shelfID uint) error {
	res := tx.Model(&models.Shelf{}).
		Where("id = ?", shelfID).
		Updates(map[string]interface{}{
			"status":              models.ShelfStatusAvailable,
			"assigned_athlete_id": nil,
			"duration_months":     nil,
			"price":               nil,
			"start_date":          nil,
			"end_date":            nil,
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return errors.New("не удалось освободить шкафчик")
	}

	utils.GetMetrics().RecordShelfOperation("release", nil)
	return nil
}

// isUniqueViolation распознает нарушение уникального ограничения
// (postgres и sqlite сообщают о нем по-разному)
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
