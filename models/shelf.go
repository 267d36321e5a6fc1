package models

import (
	"time"
)

// ShelfStatus представляет статус шкафчика
type ShelfStatus string

const (
	ShelfStatusAvailable ShelfStatus = "available" // Свободен
	ShelfStatusAssigned  ShelfStatus = "assigned"  // Закреплен за атлетом
)

// Shelf представляет шкафчик для хранения вещей.
// Инвариант: status == 'assigned' тогда и только тогда, когда установлен AssignedAthleteID.
type Shelf struct {
	ID                uint        `gorm:"primaryKey;autoIncrement"`
	ShelfNumber       string      `gorm:"column:shelf_number;unique;not null;size:10"`
	Status            ShelfStatus `gorm:"column:status;type:varchar(20);not null;default:'available'"`
	AssignedAthleteID *uint       `gorm:"column:assigned_athlete_id;unique"`
	// Параметры аренды: заполняются при закреплении, очищаются при освобождении
	DurationMonths *int       `gorm:"column:duration_months"`
	Price          *float64   `gorm:"column:price;type:decimal(10,2)"`
	StartDate      *time.Time `gorm:"column:start_date;type:date"`
	EndDate        *time.Time `gorm:"column:end_date;type:date"`
	CreatedAt      time.Time  `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

// TableName возвращает имя таблицы для модели Shelf
func (Shelf) TableName() string {
	return "shelves"
}
