package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"gymsystem/models"
	"gymsystem/utils"
)

// CreateAthleteDTO представляет данные для регистрации атлета
type CreateAthleteDTO struct {
	FullName        string   `json:"full_name" validate:"required,min=2,max=100"`
	FatherName      string   `json:"father_name" validate:"omitempty,max=100"`
	GymType         string   `json:"gym_type" validate:"required,oneof=fitness bodybuilding"`
	GymTime         string   `json:"gym_time" validate:"required,oneof=morning afternoon night"`
	Discount        float64  `json:"discount" validate:"gte=0"`
	FeeDeadlineDate string   `json:"fee_deadline_date" validate:"omitempty,datetime=2006-01-02"`
	ContactNumber   string   `json:"contact_number" validate:"omitempty,max=15"`
	Notes           string   `json:"notes"`
	ShelfID         *uint    `json:"shelf_id"`
	LockerMonths    *int     `json:"locker_months" validate:"omitempty,gt=0"`
	LockerPrice     *float64 `json:"locker_price" validate:"omitempty,gte=0"`
	LockerEndDate   string   `json:"locker_end_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateAthleteDTO представляет данные для частичного обновления атлета.
// Отсутствующее в запросе поле никогда не изменяется; shelf_id со значением 0
// освобождает текущий шкафчик.
type UpdateAthleteDTO struct {
	FullName        *string  `json:"full_name" validate:"omitempty,min=2,max=100"`
	FatherName      *string  `json:"father_name" validate:"omitempty,max=100"`
	GymType         *string  `json:"gym_type" validate:"omitempty,oneof=fitness bodybuilding"`
	GymTime         *string  `json:"gym_time" validate:"omitempty,oneof=morning afternoon night"`
	Discount        *float64 `json:"discount" validate:"omitempty,gte=0"`
	FeeStartDate    *string  `json:"fee_start_date" validate:"omitempty,datetime=2006-01-02"`
	FeeDeadlineDate *string  `json:"fee_deadline_date" validate:"omitempty,datetime=2006-01-02"`
	ContactNumber   *string  `json:"contact_number" validate:"omitempty,max=15"`
	Notes           *string  `json:"notes"`
	IsActive        *bool    `json:"is_active"`
	ShelfID         *uint    `json:"shelf_id"`
	LockerMonths    *int     `json:"locker_months" validate:"omitempty,gt=0"`
	LockerPrice     *float64 `json:"locker_price" validate:"omitempty,gte=0"`
	LockerEndDate   *string  `json:"locker_end_date" validate:"omitempty,datetime=2006-01-02"`
}

// RenewDTO представляет данные для продления членства
type RenewDTO struct {
	DurationDays int `json:"duration_days" validate:"required,gt=0"`
}

// ListAthletesQuery представляет параметры фильтрации списка атлетов
type ListAthletesQuery struct {
	FeeStatus string
	GymType   string
	GymTime   string
	Search    string
	Ordering  string
}

// PaymentDTO представляет платеж в ответе
type PaymentDTO struct {
	ID          uint    `json:"id"`
	AthleteID   uint    `json:"athlete_id"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
	PaymentType string  `json:"payment_type"`
	Notes       string  `json:"notes"`
}

// AthleteDTO представляет атлета в ответе
type AthleteDTO struct {
	ID               uint         `json:"id"`
	FullName         string       `json:"full_name"`
	FatherName       string       `json:"father_name"`
	RegistrationDate string       `json:"registration_date"`
	FeeStartDate     string       `json:"fee_start_date"`
	FeeDeadlineDate  string       `json:"fee_deadline_date"`
	GymType          string       `json:"gym_type"`
	GymTime          string       `json:"gym_time"`
	Discount         float64      `json:"discount"`
	FinalFee         float64      `json:"final_fee"`
	ContactNumber    string       `json:"contact_number"`
	Notes            string       `json:"notes"`
	ShelfID          *uint        `json:"shelf_id"`
	IsActive         bool         `json:"is_active"`
	DaysLeft         int          `json:"days_left"`
	FeeStatus        string       `json:"fee_status"`
	Payments         []PaymentDTO `json:"payments"`
}

// RenewResultDTO представляет результат продления членства
type RenewResultDTO struct {
	Message string     `json:"message"`
	Athlete AthleteDTO `json:"athlete"`
	Payment PaymentDTO `json:"payment"`
}

const dateLayout = "2006-01-02"

// AthleteService предоставляет методы для работы с атлетами
type AthleteService struct {
	db        *gorm.DB
	validator *validator.Validate
	email     *EmailService
}

// NewAthleteService создает новый экземпляр AthleteService
func NewAthleteService(db *gorm.DB, email *EmailService) *AthleteService {
	return &AthleteService{
		db:        db,
		validator: validator.New(),
		email:     email,
	}
}

// Create регистрирует атлета: запись атлета, регистрационный платеж и
// (опционально) закрепление шкафчика выполняются в одной транзакции.
func (s *AthleteService) Create(dto CreateAthleteDTO) (*AthleteDTO, error) {
	// Валидируем DTO
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}

	today := truncateToDay(time.Now())

	// Срок оплаты: заданный или по умолчанию (+30 дней)
	deadline := DefaultFeeDeadline(today)
	if dto.FeeDeadlineDate != "" {
		parsed, err := time.Parse(dateLayout, dto.FeeDeadlineDate)
		if err != nil {
			return nil, fmt.Errorf("%w: неверный формат fee_deadline_date", ErrValidation)
		}
		deadline = parsed
	}

	athlete := &models.Athlete{
		FullName:         dto.FullName,
		FatherName:       dto.FatherName,
		RegistrationDate: today,
		FeeStartDate:     today,
		FeeDeadlineDate:  deadline,
		GymType:          models.GymType(dto.GymType),
		GymTime:          models.GymTime(dto.GymTime),
		Discount:         dto.Discount,
		FinalFee:         ComputeFinalFee(models.GymType(dto.GymType), dto.Discount),
		ContactNumber:    dto.ContactNumber,
		Notes:            dto.Notes,
		IsActive:         true,
	}

	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("ошибка при начале транзакции")
	}

	// Создаем атлета
	if err := tx.Create(athlete).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("не удалось создать атлета")
	}

	// Создаем регистрационный платеж
	payment := &models.Payment{
		AthleteID:   athlete.ID,
		Amount:      athlete.FinalFee,
		PaymentDate: today,
		PaymentType: models.PaymentTypeRegistration,
		Notes:       "Initial registration fee",
	}
	if err := tx.Create(payment).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("не удалось создать регистрационный платеж")
	}

	// Закрепляем шкафчик, если он запрошен
	if dto.ShelfID != nil && *dto.ShelfID != 0 {
		lockerEnd, err := parseOptionalDate(dto.LockerEndDate)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: неверный формат locker_end_date", ErrValidation)
		}
		assigned, err := assignShelfTx(tx, *dto.ShelfID, athlete.ID, dto.LockerMonths, dto.LockerPrice, lockerEnd)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if assigned {
			athlete.ShelfID = dto.ShelfID
			if err := tx.Model(athlete).Update("shelf_id", *dto.ShelfID).Error; err != nil {
				tx.Rollback()
				return nil, errors.New("не удалось закрепить шкафчик за атлетом")
			}
		}
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("ошибка при подтверждении транзакции")
	}

	utils.GetMetrics().RecordAthleteOperation("create", nil)

	// Отправляем уведомление (не влияет на результат запроса)
	if s.email != nil {
		if err := s.email.SendPaymentNotification(athlete.FullName, payment.Amount, string(payment.PaymentType)); err != nil {
			log.Printf("Ошибка отправки уведомления: %v", err)
		}
	}

	result := toAthleteDTO(athlete, []models.Payment{*payment}, today)
	return &result, nil
}

// GetByID возвращает атлета с его платежами
func (s *AthleteService) GetByID(id uint) (*AthleteDTO, error) {
	var athlete models.Athlete
	if err := s.db.Preload("Payments").First(&athlete, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, errors.New("ошибка при поиске атлета")
	}

	result := toAthleteDTO(&athlete, athlete.Payments, time.Now())
	return &result, nil
}

// List возвращает атлетов с фильтрацией по корзине оплаты, типу зала,
// смене и поисковой строке
func (s *AthleteService) List(query ListAthletesQuery) ([]AthleteDTO, error) {
	today := truncateToDay(time.Now())

	q := s.db.Model(&models.Athlete{}).Preload("Payments")

	if query.GymType != "" {
		q = q.Where("gym_type = ?", query.GymType)
	}
	if query.GymTime != "" {
		q = q.Where("gym_time = ?", query.GymTime)
	}

	// Фильтр по корзине оплаты: границы согласованы с ClassifyFeeStatus
	switch FeeStatus(query.FeeStatus) {
	case FeeStatusSafe:
		q = q.Where("fee_deadline_date >= ?", today.AddDate(0, 0, 16))
	case FeeStatusWarning:
		q = q.Where("fee_deadline_date >= ? AND fee_deadline_date <= ?",
			today.AddDate(0, 0, 6), today.AddDate(0, 0, 15))
	case FeeStatusCritical:
		q = q.Where("fee_deadline_date >= ? AND fee_deadline_date <= ?",
			today.AddDate(0, 0, 1), today.AddDate(0, 0, 5))
	case FeeStatusOverdue:
		q = q.Where("fee_deadline_date <= ?", today)
	}

	if query.Search != "" {
		pattern := "%" + query.Search + "%"
		q = q.Where("full_name LIKE ? OR father_name LIKE ? OR contact_number LIKE ?",
			pattern, pattern, pattern)
	}

	q = q.Order(orderingClause(query.Ordering))

	var athletes []models.Athlete
	if err := q.Find(&athletes).Error; err != nil {
		return nil, errors.New("ошибка при поиске атлетов")
	}

	result := make([]AthleteDTO, 0, len(athletes))
	for i := range athletes {
		result = append(result, toAthleteDTO(&athletes[i], athletes[i].Payments, today))
	}
	return result, nil
}

// Update выполняет частичное обновление атлета. Итоговая плата всегда
// пересчитывается из текущих значений gym_type и discount; смена шкафчика
// освобождает старый и закрепляет новый в той же транзакции.
func (s *AthleteService) Update(id uint, dto UpdateAthleteDTO) (*AthleteDTO, error) {
	// Валидируем DTO
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}

	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("ошибка при начале транзакции")
	}

	// Получаем атлета
	var athlete models.Athlete
	if err := tx.First(&athlete, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, errors.New("ошибка при поиске атлета")
	}

	// Применяем только явно переданные поля
	if dto.FullName != nil {
		athlete.FullName = *dto.FullName
	}
	if dto.FatherName != nil {
		athlete.FatherName = *dto.FatherName
	}
	if dto.GymType != nil {
		athlete.GymType = models.GymType(*dto.GymType)
	}
	if dto.GymTime != nil {
		athlete.GymTime = models.GymTime(*dto.GymTime)
	}
	if dto.Discount != nil {
		athlete.Discount = *dto.Discount
	}
	if dto.FeeStartDate != nil {
		parsed, err := time.Parse(dateLayout, *dto.FeeStartDate)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: неверный формат fee_start_date", ErrValidation)
		}
		athlete.FeeStartDate = parsed
	}
	if dto.FeeDeadlineDate != nil {
		parsed, err := time.Parse(dateLayout, *dto.FeeDeadlineDate)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("%w: неверный формат fee_deadline_date", ErrValidation)
		}
		athlete.FeeDeadlineDate = parsed
	}
	if dto.ContactNumber != nil {
		athlete.ContactNumber = *dto.ContactNumber
	}
	if dto.Notes != nil {
		athlete.Notes = *dto.Notes
	}
	if dto.IsActive != nil {
		athlete.IsActive = *dto.IsActive
	}

	// Пересчитываем итоговую плату из текущих значений
	athlete.FinalFee = ComputeFinalFee(athlete.GymType, athlete.Discount)
	athlete.UpdatedAt = time.Now()

	// Обрабатываем смену шкафчика
	if dto.ShelfID != nil {
		if err := s.reassignShelfTx(tx, &athlete, dto); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	// Сохраняем изменения
	if err := tx.Save(&athlete).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("не удалось обновить атлета")
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("ошибка при подтверждении транзакции")
	}

	return s.GetByID(athlete.ID)
}

// reassignShelfTx переводит атлета со старого шкафчика на новый внутри
// открытой транзакции. Значение 0 освобождает шкафчик без закрепления нового;
// несуществующий шкафчик оставляет ссылку атлета без изменений.
func (s *AthleteService) reassignShelfTx(tx *gorm.DB, athlete *models.Athlete, dto UpdateAthleteDTO) error {
	newShelfID := *dto.ShelfID

	// Освобождение без закрепления нового
	if newShelfID == 0 {
		if athlete.ShelfID != nil {
			if err := releaseShelfTx(tx, *athlete.ShelfID); err != nil {
				return err
			}
			athlete.ShelfID = nil
		}
		return nil
	}

	// Тот же шкафчик, ничего не делаем
	if athlete.ShelfID != nil && *athlete.ShelfID == newShelfID {
		return nil
	}

	lockerEnd, err := parseOptionalDatePtr(dto.LockerEndDate)
	if err != nil {
		return fmt.Errorf("%w: неверный формат locker_end_date", ErrValidation)
	}

	// Несуществующий шкафчик: ссылка атлета остается без изменений
	var shelf models.Shelf
	if err := tx.First(&shelf, newShelfID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return errors.New("ошибка при поиске шкафчика")
	}

	// Сначала освобождаем старый шкафчик, иначе уникальный индекс
	// assigned_athlete_id не даст закрепить новый
	if athlete.ShelfID != nil {
		if err := releaseShelfTx(tx, *athlete.ShelfID); err != nil {
			return err
		}
		athlete.ShelfID = nil
	}

	assigned, err := assignShelfTx(tx, newShelfID, athlete.ID, dto.LockerMonths, dto.LockerPrice, lockerEnd)
	if err != nil {
		return err
	}
	if assigned {
		athlete.ShelfID = &newShelfID
	}
	return nil
}

// Delete удаляет атлета; закрепленный шкафчик освобождается в той же
// транзакции, платежи удаляются каскадно на уровне схемы
func (s *AthleteService) Delete(id uint) error {
	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return errors.New("ошибка при начале транзакции")
	}

	// Получаем атлета
	var athlete models.Athlete
	if err := tx.First(&athlete, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAthleteNotFound
		}
		return errors.New("ошибка при поиске атлета")
	}

	// Освобождаем шкафчик до удаления, чтобы не осталось висящего закрепления
	if athlete.ShelfID != nil {
		if err := releaseShelfTx(tx, *athlete.ShelfID); err != nil {
			tx.Rollback()
			return err
		}
	}

	// Удаляем платежи атлета (дублирует каскад схемы для странных хранилищ)
	if err := tx.Where("athlete_id = ?", athlete.ID).Delete(&models.Payment{}).Error; err != nil {
		tx.Rollback()
		return errors.New("не удалось удалить платежи атлета")
	}

	// Удаляем атлета
	if err := tx.Delete(&athlete).Error; err != nil {
		tx.Rollback()
		return errors.New("не удалось удалить атлета")
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return errors.New("ошибка при подтверждении транзакции")
	}

	utils.GetMetrics().RecordAthleteOperation("delete", nil)
	return nil
}

// Renew продлевает членство: сдвигает даты оплаты и добавляет платеж
// за продление. Обе записи сохраняются атомарно.
func (s *AthleteService) Renew(id uint, dto RenewDTO) (*RenewResultDTO, error) {
	// Валидируем DTO
	if err := validateStruct(s.validator, dto); err != nil {
		return nil, err
	}

	today := truncateToDay(time.Now())

	// Начинаем транзакцию
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, errors.New("ошибка при начале транзакции")
	}

	// Получаем атлета
	var athlete models.Athlete
	if err := tx.First(&athlete, id).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, errors.New("ошибка при поиске атлета")
	}

	// Сумма: итоговая плата за каждый оплачиваемый месяц
	months := RenewalMonths(dto.DurationDays)
	amount := athlete.FinalFee * float64(months)

	// Сдвигаем даты оплаты
	athlete.FeeStartDate = today
	athlete.FeeDeadlineDate = today.AddDate(0, 0, dto.DurationDays)
	athlete.UpdatedAt = time.Now()

	if err := tx.Save(&athlete).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("не удалось обновить даты оплаты")
	}

	// Создаем платеж за продление
	payment := &models.Payment{
		AthleteID:   athlete.ID,
		Amount:      amount,
		PaymentDate: today,
		PaymentType: models.PaymentTypeRenewal,
		Notes:       fmt.Sprintf("Renewed for %d days", dto.DurationDays),
	}
	if err := tx.Create(payment).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("не удалось создать платеж за продление")
	}

	// Подтверждаем транзакцию
	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("ошибка при подтверждении транзакции")
	}

	utils.GetMetrics().RecordAthleteOperation("renew", nil)

	// Отправляем уведомление (не влияет на результат запроса)
	if s.email != nil {
		if err := s.email.SendPaymentNotification(athlete.FullName, payment.Amount, string(payment.PaymentType)); err != nil {
			log.Printf("Ошибка отправки уведомления: %v", err)
		}
	}

	athleteDTO, err := s.GetByID(athlete.ID)
	if err != nil {
		return nil, err
	}

	return &RenewResultDTO{
		Message: "Membership renewed successfully",
		Athlete: *athleteDTO,
		Payment: toPaymentDTO(payment),
	}, nil
}

// ToggleStatus переключает флаг активности атлета
func (s *AthleteService) ToggleStatus(id uint) (*AthleteDTO, error) {
	var athlete models.Athlete
	if err := s.db.First(&athlete, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, errors.New("ошибка при поиске атлета")
	}

	athlete.IsActive = !athlete.IsActive
	athlete.UpdatedAt = time.Now()

	if err := s.db.Save(&athlete).Error; err != nil {
		return nil, errors.New("не удалось обновить статус атлета")
	}

	return s.GetByID(athlete.ID)
}

// orderingClause преобразует параметр сортировки в SQL-выражение.
// Допустимы только известные поля; по умолчанию новые атлеты первыми.
func orderingClause(ordering string) string {
	desc := false
	if len(ordering) > 0 && ordering[0] == '-' {
		desc = true
		ordering = ordering[1:]
	}

	switch ordering {
	case "registration_date", "fee_deadline_date", "full_name", "is_active":
	default:
		return "registration_date DESC, id DESC"
	}

	if desc {
		return ordering + " DESC"
	}
	return ordering
}

// toAthleteDTO конвертирует модель в DTO; days_left и fee_status
// вычисляются от переданного "сегодня"
func toAthleteDTO(a *models.Athlete, payments []models.Payment, today time.Time) AthleteDTO {
	paymentDTOs := make([]PaymentDTO, 0, len(payments))
	for i := range payments {
		paymentDTOs = append(paymentDTOs, toPaymentDTO(&payments[i]))
	}

	return AthleteDTO{
		ID:               a.ID,
		FullName:         a.FullName,
		FatherName:       a.FatherName,
		RegistrationDate: a.RegistrationDate.Format(dateLayout),
		FeeStartDate:     a.FeeStartDate.Format(dateLayout),
		FeeDeadlineDate:  a.FeeDeadlineDate.Format(dateLayout),
		GymType:          string(a.GymType),
		GymTime:          string(a.GymTime),
		Discount:         a.Discount,
		FinalFee:         a.FinalFee,
		ContactNumber:    a.ContactNumber,
		Notes:            a.Notes,
		ShelfID:          a.ShelfID,
		IsActive:         a.IsActive,
		DaysLeft:         DaysLeft(a.FeeDeadlineDate, today),
		FeeStatus:        string(ClassifyFeeStatus(a.FeeDeadlineDate, today)),
		Payments:         paymentDTOs,
	}
}

// toPaymentDTO конвертирует платеж в DTO
func toPaymentDTO(p *models.Payment) PaymentDTO {
	return PaymentDTO{
		ID:          p.ID,
		AthleteID:   p.AthleteID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate.Format(dateLayout),
		PaymentType: string(p.PaymentType),
		Notes:       p.Notes,
	}
}

// parseOptionalDate парсит дату из строки; для пустой строки возвращает nil
func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// parseOptionalDatePtr то же самое для указателя на строку
func parseOptionalDatePtr(value *string) (*time.Time, error) {
	if value == nil {
		return nil, nil
	}
	return parseOptionalDate(*value)
}
