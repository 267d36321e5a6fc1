package models

import (
	"time"
)

// PaymentType представляет тип платежа
type PaymentType string

const (
	PaymentTypeRegistration PaymentType = "registration" // Платеж при регистрации
	PaymentTypeRenewal      PaymentType = "renewal"      // Платеж при продлении
)

// Payment представляет платеж атлета. Записи только добавляются,
// бизнес-логика никогда их не изменяет и не удаляет.
type Payment struct {
	ID          uint        `gorm:"primaryKey;autoIncrement"`
	AthleteID   uint        `gorm:"column:athlete_id;not null;index"`
	Amount      float64     `gorm:"column:amount;type:decimal(10,2);not null"`
	PaymentDate time.Time   `gorm:"column:payment_date;type:date;not null"` // Устанавливается при создании
	PaymentType PaymentType `gorm:"column:payment_type;type:varchar(20);not null"`
	Notes       string      `gorm:"column:notes;type:text"`
	CreatedAt   time.Time   `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
}

// TableName возвращает имя таблицы для модели Payment
func (Payment) TableName() string {
	return "payments"
}
