package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/gomail.v2"
)

// Mail delivery is a thin collaborator: send(to, subject, body).
// Failures surface to the caller as ErrMailNotConfigured or the dialer error,
// distinguishable from any application-level error.

var ErrMailNotConfigured = errors.New("mail transport not configured")

var (
	mailDialer   *gomail.Dialer
	mailFrom     string
	mailDialerMu sync.Mutex
)

func init() {
	// Load env from .env
	godotenv.Load()
}

func getMailDialer() (*gomail.Dialer, string, error) {
	mailDialerMu.Lock()
	defer mailDialerMu.Unlock()

	if mailDialer != nil {
		return mailDialer, mailFrom, nil
	}

	host := strings.TrimSpace(os.Getenv("SMTP_HOST"))
	if host == "" {
		return nil, "", ErrMailNotConfigured
	}
	port := 587
	if v := strings.TrimSpace(os.Getenv("SMTP_PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			port = n
		}
	}
	user := os.Getenv("SMTP_USER")
	password := os.Getenv("SMTP_PASSWORD")

	from := strings.TrimSpace(os.Getenv("SMTP_FROM"))
	if from == "" {
		from = user
	}
	if from == "" {
		return nil, "", ErrMailNotConfigured
	}

	mailDialer = gomail.NewDialer(host, port, user, password)
	mailFrom = from
	return mailDialer, mailFrom, nil
}

// SendMail delivers a single plain-text message.
func SendMail(to string, subject string, body string) error {
	d, from, err := getMailDialer()
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return d.DialAndSend(m)
}
