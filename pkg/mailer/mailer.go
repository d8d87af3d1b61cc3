// Package mailer wraps the transactional email provider behind a small
// interface so services can be tested with a recording double.
package mailer

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Mailer delivers HTML notification emails.
type Mailer interface {
	SendBeautifulEmail(to, subject, htmlContent string) error
}

// Config SMTP 连接配置
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Client 基于 SMTP 的 Mailer 实现
type Client struct {
	cfg    *Config
	dialer *gomail.Dialer
	logger *logrus.Logger
}

func NewClient(cfg *Config, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

// SendBeautifulEmail wraps the content in the standard layout and delivers
// it synchronously. Delivery or verification failures surface as errors.
func (c *Client) SendBeautifulEmail(to, subject, htmlContent string) error {
	if to == "" {
		return fmt.Errorf("recipient address required")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", c.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", wrapLayout(htmlContent))

	if err := c.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	c.logger.Debugf("mailer: sent %q to %s", subject, to)
	return nil
}

// wrapLayout applies the shared outer layout around notification content.
func wrapLayout(content string) string {
	return `<!DOCTYPE html><html><body style="margin:0;padding:0;background:#f4f5f7;">` +
		`<div style="max-width:600px;margin:24px auto;padding:32px;background:#ffffff;` +
		`border-radius:8px;font-family:Helvetica,Arial,sans-serif;color:#172b4d;">` +
		content +
		`<hr style="border:none;border-top:1px solid #ebecf0;margin:24px 0;">` +
		`<p style="font-size:12px;color:#6b778c;">You are receiving this because a board automation matched this activity.</p>` +
		`</div></body></html>`
}
