package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"gymsystem/models"
)

// TrendEntry представляет точку графика выручки за месяц
type TrendEntry struct {
	Name   string  `json:"name"` // Аббревиатура месяца: Jan, Feb, ...
	Amount float64 `json:"amount"`
}

// DistributionEntry представляет элемент распределения для диаграмм
type DistributionEntry struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

// DashboardCounters представляет итоговые счетчики панели
type DashboardCounters struct {
	Total            int64   `json:"total"`
	Active           int64   `json:"active"`
	Inactive         int64   `json:"inactive"`
	Income           float64 `json:"income"`
	ShelvesTotal     int64   `json:"shelves_total"`
	ShelvesAvailable int64   `json:"shelves_available"`
}

// DashboardTrends представляет графики панели
type DashboardTrends struct {
	Revenue []TrendEntry `json:"revenue"`
}

// DashboardDistributions представляет распределения активных атлетов
type DashboardDistributions struct {
	Type   []DistributionEntry `json:"type"`
	Time   []DistributionEntry `json:"time"`
	Status []DistributionEntry `json:"status"`
}

// DashboardStats представляет полный ответ панели статистики
type DashboardStats struct {
	Stats         DashboardCounters      `json:"stats"`
	Trends        DashboardTrends        `json:"trends"`
	Distributions DashboardDistributions `json:"distributions"`
	Alerts        []AthleteDTO           `json:"alerts"`
}

// Окно графика выручки
const revenueTrendDays = 180

// Порог срочных уведомлений: осталось не больше трех дней
const criticalAlertDays = 3

// DashboardService вычисляет агрегированную статистику. Все запросы
// только читают данные и безопасны при параллельных записях.
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService создает новый экземпляр DashboardService
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// GetStats собирает статистику панели на переданную дату
func (s *DashboardService) GetStats(today time.Time) (*DashboardStats, error) {
	today = truncateToDay(today)
	stats := &DashboardStats{}

	// Счетчики атлетов
	if err := s.db.Model(&models.Athlete{}).Count(&stats.Stats.Total).Error; err != nil {
		return nil, errors.New("ошибка при подсчете атлетов")
	}
	if err := s.db.Model(&models.Athlete{}).Where("is_active = ?", true).Count(&stats.Stats.Active).Error; err != nil {
		return nil, errors.New("ошибка при подсчете активных атлетов")
	}
	stats.Stats.Inactive = stats.Stats.Total - stats.Stats.Active

	// Общий доход: сумма всех платежей, ноль при их отсутствии
	if err := s.db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.Stats.Income).Error; err != nil {
		return nil, errors.New("ошибка при подсчете дохода")
	}

	// Счетчики шкафчиков
	if err := s.db.Model(&models.Shelf{}).Count(&stats.Stats.ShelvesTotal).Error; err != nil {
		return nil, errors.New("ошибка при подсчете шкафчиков")
	}
	if err := s.db.Model(&models.Shelf{}).
		Where("status = ?", models.ShelfStatusAvailable).
		Count(&stats.Stats.ShelvesAvailable).Error; err != nil {
		return nil, errors.New("ошибка при подсчете свободных шкафчиков")
	}

	// График выручки за последние 180 дней
	revenue, err := s.revenueTrend(today)
	if err != nil {
		return nil, err
	}
	stats.Trends.Revenue = revenue

	// Распределения активных атлетов
	distributions, err := s.distributions()
	if err != nil {
		return nil, err
	}
	stats.Distributions = *distributions
	stats.Distributions.Status = []DistributionEntry{
		{Name: "Active", Value: stats.Stats.Active},
		{Name: "Inactive", Value: stats.Stats.Inactive},
	}

	// Срочные уведомления
	alerts, err := s.criticalAlerts(today)
	if err != nil {
		return nil, err
	}
	stats.Alerts = alerts

	return stats, nil
}

// revenueTrend суммирует платежи по календарным месяцам. Группировка
// выполняется в Go, чтобы не зависеть от диалекта SQL конкретного хранилища.
func (s *DashboardService) revenueTrend(today time.Time) ([]TrendEntry, error) {
	since := today.AddDate(0, 0, -revenueTrendDays)

	var payments []models.Payment
	if err := s.db.Where("payment_date >= ?", since).
		Order("payment_date").
		Find(&payments).Error; err != nil {
		return nil, errors.New("ошибка при получении платежей для графика")
	}

	trend := make([]TrendEntry, 0)
	lastKey := ""
	for i := range payments {
		key := payments[i].PaymentDate.Format("2006-01")
		if key != lastKey {
			trend = append(trend, TrendEntry{
				Name: payments[i].PaymentDate.Month().String()[:3],
			})
			lastKey = key
		}
		trend[len(trend)-1].Amount += payments[i].Amount
	}
	return trend, nil
}

// distributions считает активных атлетов по типу зала и смене
func (s *DashboardService) distributions() (*DashboardDistributions, error) {
	countBy := func(column string, value interface{}) (int64, error) {
		var count int64
		err := s.db.Model(&models.Athlete{}).
			Where(column+" = ? AND is_active = ?", value, true).
			Count(&count).Error
		return count, err
	}

	result := &DashboardDistributions{}

	typeEntries := []struct {
		label string
		value models.GymType
	}{
		{"Fitness", models.GymTypeFitness},
		{"Bodybuilding", models.GymTypeBodybuilding},
	}
	for _, entry := range typeEntries {
		count, err := countBy("gym_type", entry.value)
		if err != nil {
			return nil, errors.New("ошибка при подсчете распределения по типу зала")
		}
		result.Type = append(result.Type, DistributionEntry{Name: entry.label, Value: count})
	}

	timeEntries := []struct {
		label string
		value models.GymTime
	}{
		{"Morning", models.GymTimeMorning},
		{"Afternoon", models.GymTimeAfternoon},
		{"Night", models.GymTimeNight},
	}
	for _, entry := range timeEntries {
		count, err := countBy("gym_time", entry.value)
		if err != nil {
			return nil, errors.New("ошибка при подсчете распределения по смене")
		}
		result.Time = append(result.Time, DistributionEntry{Name: entry.label, Value: count})
	}

	return result, nil
}

// criticalAlerts возвращает активных атлетов, у которых осталось не больше
// трех дней, самые срочные первыми
func (s *DashboardService) criticalAlerts(today time.Time) ([]AthleteDTO, error) {
	var athletes []models.Athlete
	if err := s.db.Preload("Payments").
		Where("is_active = ? AND fee_deadline_date <= ?", true, today.AddDate(0, 0, criticalAlertDays)).
		Order("fee_deadline_date").
		Find(&athletes).Error; err != nil {
		return nil, errors.New("ошибка при поиске атлетов с истекающим сроком")
	}

	alerts := make([]AthleteDTO, 0, len(athletes))
	for i := range athletes {
		alerts = append(alerts, toAthleteDTO(&athletes[i], athletes[i].Payments, today))
	}
	return alerts, nil
}
