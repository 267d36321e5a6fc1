package services

import (
	"math"
	"time"

	"gymsystem/models"
)

// Базовые месячные тарифы по типу зала
const (
	BaseFeeFitness      = 1000.0
	BaseFeeBodybuilding = 700.0
)

// DefaultFeeDurationDays срок абонемента по умолчанию при регистрации
const DefaultFeeDurationDays = 30

// FeeStatus представляет статус оплаты по оставшимся дням
type FeeStatus string

const (
	FeeStatusSafe     FeeStatus = "safe"     // 16 и более дней
	FeeStatusWarning  FeeStatus = "warning"  // от 6 до 15 дней
	FeeStatusCritical FeeStatus = "critical" // от 1 до 5 дней
	FeeStatusOverdue  FeeStatus = "overdue"  // 0 дней и меньше
)

// BaseFee возвращает базовый тариф для типа зала
func BaseFee(gymType models.GymType) float64 {
	if gymType == models.GymTypeFitness {
		return BaseFeeFitness
	}
	return BaseFeeBodybuilding
}

// ComputeFinalFee вычисляет итоговую плату: base_fee(gym_type) - discount.
// Скидка больше базового тарифа не ограничивается, результат может быть
// нулевым или отрицательным.
func ComputeFinalFee(gymType models.GymType, discount float64) float64 {
	return BaseFee(gymType) - discount
}

// DefaultFeeDeadline возвращает срок оплаты по умолчанию: today + 30 дней.
// Используется только при создании атлета, если срок не задан явно.
func DefaultFeeDeadline(today time.Time) time.Time {
	return truncateToDay(today).AddDate(0, 0, DefaultFeeDurationDays)
}

// DaysLeft возвращает количество дней до срока оплаты. Вычисляется
// заново при каждом чтении и нигде не хранится.
func DaysLeft(deadline, today time.Time) int {
	return int(truncateToDay(deadline).Sub(truncateToDay(today)).Hours() / 24)
}

// ClassifyFeeStatus относит атлета к одной из четырех корзин по
// оставшимся дням. Корзины не пересекаются и покрывают все значения.
func ClassifyFeeStatus(deadline, today time.Time) FeeStatus {
	remaining := DaysLeft(deadline, today)
	switch {
	case remaining >= 16:
		return FeeStatusSafe
	case remaining >= 6:
		return FeeStatusWarning
	case remaining >= 1:
		return FeeStatusCritical
	default:
		return FeeStatusOverdue
	}
}

// RenewalMonths вычисляет количество оплачиваемых месяцев при продлении:
// max(1, round(duration_days / 30)), округление к ближайшему целому.
func RenewalMonths(durationDays int) int {
	months := int(math.Round(float64(durationDays) / 30.0))
	if months < 1 {
		return 1
	}
	return months
}

// truncateToDay отбрасывает время, оставляя только дату
func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
