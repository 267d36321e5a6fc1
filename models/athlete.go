package models

import (
	"time"
)

// GymType представляет тип зала
type GymType string

const (
	GymTypeFitness      GymType = "fitness"
	GymTypeBodybuilding GymType = "bodybuilding"
)

// GymTime представляет смену посещения
type GymTime string

const (
	GymTimeMorning   GymTime = "morning"
	GymTimeAfternoon GymTime = "afternoon"
	GymTimeNight     GymTime = "night"
)

// Athlete представляет атлета (члена зала)
type Athlete struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"`
	FullName         string    `gorm:"column:full_name;not null;size:100"`
	FatherName       string    `gorm:"column:father_name;size:100"`
	RegistrationDate time.Time `gorm:"column:registration_date;type:date;not null"` // Устанавливается один раз при создании
	FeeStartDate     time.Time `gorm:"column:fee_start_date;type:date;not null"`
	FeeDeadlineDate  time.Time `gorm:"column:fee_deadline_date;type:date;not null"`
	GymType          GymType   `gorm:"column:gym_type;type:varchar(20);not null"`
	GymTime          GymTime   `gorm:"column:gym_time;type:varchar(20);not null"`
	Discount         float64   `gorm:"column:discount;type:decimal(10,2);not null;default:0"`
	FinalFee         float64   `gorm:"column:final_fee;type:decimal(10,2);not null"` // Вычисляется: base_fee(gym_type) - discount
	ContactNumber    string    `gorm:"column:contact_number;size:15"`
	Notes            string    `gorm:"column:notes;type:text"`
	ShelfID          *uint     `gorm:"column:shelf_id"`
	IsActive         bool      `gorm:"column:is_active;not null;default:true"`
	Payments         []Payment `gorm:"foreignKey:AthleteID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

// TableName возвращает имя таблицы для модели Athlete
func (Athlete) TableName() string {
	return "athletes"
}
