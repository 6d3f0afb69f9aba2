package mailing

import (
	"foodia-handoff/internal/utils"
	"strconv"

	"gopkg.in/gomail.v2"
)

type (
	MailConfig struct {
		AppURL       string
		SMTPHost     string
		SMTPPort     string
		SMTPSender   string
		SMTPEmail    string
		SMTPPassword string
	}

	Mailer interface {
		Send(toEmail string, subject string, body string) error
	}

	smtpMailer struct {
		cfg MailConfig
	}
)

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

// Enabled reports whether an SMTP server is configured.
func (c MailConfig) Enabled() bool {
	return c.SMTPHost != "" && c.SMTPPort != ""
}

func NewMailer(cfg MailConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) message(toEmail string, subject string, body string) *gomail.Message {
	mailer := gomail.NewMessage()
	if m.cfg.SMTPSender != "" {
		mailer.SetAddressHeader("From", m.cfg.SMTPEmail, m.cfg.SMTPSender)
	} else {
		mailer.SetHeader("From", m.cfg.SMTPEmail)
	}
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)
	return mailer
}

func (m *smtpMailer) Send(toEmail string, subject string, body string) error {
	port, err := strconv.Atoi(m.cfg.SMTPPort)
	if err != nil {
		return err
	}
	dialer := gomail.NewDialer(
		m.cfg.SMTPHost,
		port,
		m.cfg.SMTPEmail,
		m.cfg.SMTPPassword,
	)

	return dialer.DialAndSend(m.message(toEmail, subject, body))
}
