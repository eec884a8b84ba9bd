package services

import (
	"fmt"
	"math"
	"mietwerk/config"
	"time"

	"github.com/Rhymond/go-money"
	"gopkg.in/gomail.v2"
)

// EmailService provides methods for sending email
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	config *config.Config
}

// NewEmailService creates a new EmailService instance
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
		config: cfg,
	}
}

// SendEmail sends an email
func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}

	return nil
}

// SendRentAdjustmentNotification announces a rent adjustment to the tenant
func (s *EmailService) SendRentAdjustmentNotification(to, tenantName, address string, oldRent, newRent float64, effectiveDate time.Time) error {
	subject := "Mitteilung über Mietanpassung"
	body := fmt.Sprintf(`
		<h2>Mitteilung über Mietanpassung</h2>
		<p>Sehr geehrte/r %s,</p>
		<p>für das Mietobjekt %s ändert sich die monatliche Miete.</p>
		<p>Bisherige Miete: %s</p>
		<p>Neue Miete: %s</p>
		<p>Wirksam ab: %s</p>
	`, tenantName, address, formatEUR(oldRent), formatEUR(newRent), effectiveDate.Format("02.01.2006"))

	return s.SendEmail(to, subject, body)
}

// SendPlannedPeriodActivatedNotification informs the landlord that a planned
// rent period has taken effect
func (s *EmailService) SendPlannedPeriodActivatedNotification(to, address string, newRent float64, effectiveDate time.Time) error {
	subject := "Geplante Mietanpassung ist in Kraft getreten"
	body := fmt.Sprintf(`
		<h2>Geplante Mietanpassung ist in Kraft getreten</h2>
		<p>Mietobjekt: %s</p>
		<p>Neue Miete: %s</p>
		<p>Wirksam seit: %s</p>
	`, address, formatEUR(newRent), effectiveDate.Format("02.01.2006"))

	return s.SendEmail(to, subject, body)
}

// formatEUR renders an amount as a euro string with cent precision
func formatEUR(amount float64) string {
	return money.New(int64(math.Round(amount*100)), money.EUR).Display()
}
