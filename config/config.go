package config

import (
	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port int
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // в часах
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Admin struct {
		Email       string // Учетная запись администратора по умолчанию
		Password    string
		NotifyEmail string // Адрес для уведомлений о платежах; если пусто, уведомления выключены
	}
}

// NewConfig создает новый экземпляр конфигурации из переменных окружения
func NewConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Настройки сервера
	v.SetDefault("SERVER_PORT", 8080)

	// Настройки базы данных
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gym_db")
	v.SetDefault("DB_SSLMODE", "disable")

	// Настройки JWT
	v.SetDefault("JWT_SECRET_KEY", "your-secret-key-here")
	v.SetDefault("JWT_EXPIRES_IN", 24)

	// Настройки SMTP
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "your-email@gmail.com")
	v.SetDefault("SMTP_PASSWORD", "your-app-password")
	v.SetDefault("SMTP_FROM", "your-email@gmail.com")

	// Настройки администратора
	v.SetDefault("ADMIN_EMAIL", "admin@gym.local")
	v.SetDefault("ADMIN_PASSWORD", "admin12345")
	v.SetDefault("ADMIN_NOTIFY_EMAIL", "")

	cfg := &Config{}
	cfg.Server.Port = v.GetInt("SERVER_PORT")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")
	cfg.DB.SSLMode = v.GetString("DB_SSLMODE")

	cfg.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	cfg.JWT.ExpiresIn = v.GetInt("JWT_EXPIRES_IN")

	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	cfg.Admin.Email = v.GetString("ADMIN_EMAIL")
	cfg.Admin.Password = v.GetString("ADMIN_PASSWORD")
	cfg.Admin.NotifyEmail = v.GetString("ADMIN_NOTIFY_EMAIL")

	return cfg, nil
}
