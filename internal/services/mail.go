package services

import (
	"bytes"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email through the configured SMTP relay.
type Mailer interface {
	SendWelcome(toEmail, firstName string) error
}

const welcomeTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8" />
  <title>Welcome to MY STORE</title>
</head>
<body style="margin:0;padding:0;background:#f6f6f6;font-family:Arial,sans-serif;">
  <div style="max-width:600px;margin:0 auto;background:#ffffff;padding:30px;border-radius:6px;">
    <div style="text-align:center;">
      <div style="font-size:24px;font-weight:bold;margin-top:20px;color:#333;">Welcome to MY STORE, {{.FirstName}} 🎉</div>
      <div style="font-size:16px;color:#555;margin:10px 0 20px;">Thanks for joining us! You’re all set to start shopping.</div>
    </div>
    <div style="background:#f9f1e5;padding:15px;text-align:center;border-radius:6px;margin:20px 0;">
      <div>Here’s a special welcome gift:</div>
      <div style="font-size:22px;font-weight:bold;color:#333;letter-spacing:2px;">WELCOME10</div>
      <div>Get <strong>10% OFF</strong> on your first purchase</div>
    </div>
    <ul style="margin:20px 0;padding-left:20px;color:#444;">
      <li>Exclusive deals every day</li>
      <li>Fast &amp; secure checkout</li>
      <li>Easy returns and refunds</li>
      <li>Track orders in real-time</li>
    </ul>
    <p style="color:#555;margin-top:20px;">If you have any questions, feel free to reply to this email.</p>
    <div style="font-size:12px;color:#888;text-align:center;margin-top:30px;">
      © MY STORE — All rights reserved.<br/><br/>
      If you didn’t create this account, please ignore this email.
    </div>
  </div>
</body>
</html>`

// smtpMailer implements Mailer over gomail.
type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
	tpl    *template.Template
	logger *zap.SugaredLogger
}

// NewSMTPMailer creates the SMTP mailer and pre-parses the welcome
// template.
func NewSMTPMailer(host string, port int, username, password, from string, logger *zap.SugaredLogger) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
		tpl:    template.Must(template.New("welcome").Parse(welcomeTemplate)),
		logger: logger,
	}
}

func (m *smtpMailer) SendWelcome(toEmail, firstName string) error {
	var buf bytes.Buffer
	if err := m.tpl.Execute(&buf, struct{ FirstName string }{FirstName: firstName}); err != nil {
		return fmt.Errorf("mail: render welcome template: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Registration Successful!")
	msg.SetBody("text/html", buf.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Warnf("welcome email to %s failed: %v", toEmail, err)
		return fmt.Errorf("mail: send welcome: %w", err)
	}

	m.logger.Infof("welcome email sent to %s", toEmail)
	return nil
}
