package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gymsystem/config"
	"gymsystem/models"
)

// Database представляет подключение к базе данных
type Database struct {
	DB *gorm.DB
}

// Connect устанавливает соединение с базой данных и выполняет миграции
func Connect(cfg *config.Config) (*Database, error) {
	// Формируем строку подключения
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.DBName,
		cfg.DB.SSLMode,
	)

	// Настраиваем логгер
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	// Устанавливаем соединение
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %v", err)
	}

	// Настраиваем пул соединений
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пула соединений: %v", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Выполняем SQL миграции
	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("ошибка выполнения SQL миграций: %v", err)
	}

	// Выполняем автоматическую миграцию моделей
	if err := autoMigrate(db); err != nil {
		return nil, fmt.Errorf("ошибка автоматической миграции моделей: %v", err)
	}

	return &Database{DB: db}, nil
}

// Close закрывает подключение к базе данных
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// runMigrations выполняет SQL миграции
func runMigrations(cfg *config.Config) error {
	// Формируем URL для миграций
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.DBName,
		cfg.DB.SSLMode,
	)

	// Создаем экземпляр миграции
	m, err := migrate.New(
		"file://migrations",
		dsn,
	)
	if err != nil {
		return fmt.Errorf("ошибка создания миграции: %v", err)
	}

	// Выполняем миграции
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("ошибка выполнения миграций: %v", err)
	}

	return nil
}

// autoMigrate выполняет автоматическую миграцию моделей
func autoMigrate(db *gorm.DB) error {
	// Автоматическая миграция моделей
	err := db.AutoMigrate(
		&models.User{},
		&models.Shelf{},
		&models.Athlete{},
		&models.Payment{},
	)
	if err != nil {
		return fmt.Errorf("ошибка автоматической миграции: %v", err)
	}

	return nil
}

// Методы для работы с пользователями
func (d *Database) CreateUser(user *models.User) error {
	return d.DB.Create(user).Error
}

func (d *Database) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	err := d.DB.First(&user, id).Error
	return &user, err
}

// CountUsers возвращает количество пользователей
func (d *Database) CountUsers() (int64, error) {
	var count int64
	err := d.DB.Model(&models.User{}).Count(&count).Error
	return count, err
}
