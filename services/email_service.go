package services

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"gymsystem/config"
)

// EmailService предоставляет методы для отправки email
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	notify string // Адрес администратора для уведомлений; если пусто, отправка выключена
}

// NewEmailService создает новый экземпляр EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
		notify: cfg.Admin.NotifyEmail,
	}
}

// SendEmail отправляет email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("ошибка отправки email: %v", err)
	}

	return nil
}

// SendPaymentNotification отправляет администратору уведомление о платеже
func (s *EmailService) SendPaymentNotification(athleteName string, amount float64, paymentType string) error {
	if s.notify == "" {
		return nil
	}

	subject := "Уведомление о платеже"
	body := fmt.Sprintf(`
		<h2>Новый платеж</h2>
		<p>Атлет: %s</p>
		<p>Тип платежа: %s</p>
		<p>Сумма: %.2f</p>
		<p>Дата: %s</p>
	`, athleteName, paymentType, amount, time.Now().Format("02.01.2006 15:04:05"))

	return s.SendEmail(s.notify, subject, body)
}
