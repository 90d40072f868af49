package services

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"whisperbox/internal/config"
	"whisperbox/internal/logging"
)

//go:generate mockgen -destination=mocks/email_service_mock.go -package=mocks whisperbox/internal/services EmailService

// EmailService delivers one-time codes. An error means the code did not reach
// the provider and must not be committed.
type EmailService interface {
	SendVerificationCode(ctx context.Context, to, username, code string) error
	SendPasswordResetCode(ctx context.Context, to, username, code, resetURL string) error
}

type emailMessage struct {
	to      string
	subject string
	html    string
	text    string
}

var (
	verificationHTML = template.Must(template.New("verification").Parse(`
		<h2>Hello, {{.Username}}!</h2>
		<p>Thanks for signing up. Use the code below to verify your account:</p>
		<p style="font-size:24px;letter-spacing:4px"><strong>{{.Code}}</strong></p>
		<p>The code expires in 30 minutes. If you did not sign up, ignore this email.</p>
	`))

	passwordResetHTML = template.Must(template.New("password_reset").Parse(`
		<h3>Password reset requested</h3>
		<p>Hi {{.Username}}, we received a request to reset the password for your account.</p>
		<p>Your reset code: <strong>{{.Code}}</strong></p>
		{{if .ResetURL}}<p>Enter it at <a href="{{.ResetURL}}">{{.ResetURL}}</a>.</p>{{end}}
		<p>If you did not request this change, you can ignore this email.</p>
	`))
)

type emailData struct {
	Username string
	Code     string
	ResetURL string
}

func renderHTML(tmpl *template.Template, data emailData) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s email: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}

func verificationMessage(to, username, code string) (emailMessage, error) {
	body, err := renderHTML(verificationHTML, emailData{Username: username, Code: code})
	if err != nil {
		return emailMessage{}, err
	}
	return emailMessage{
		to:      to,
		subject: "Your Whisperbox verification code",
		html:    body,
		text:    fmt.Sprintf("Hello, %s! Your Whisperbox verification code is %s.", username, code),
	}, nil
}

func passwordResetMessage(to, username, code, resetURL string) (emailMessage, error) {
	body, err := renderHTML(passwordResetHTML, emailData{Username: username, Code: code, ResetURL: resetURL})
	if err != nil {
		return emailMessage{}, err
	}
	text := fmt.Sprintf("Hi %s, your Whisperbox password reset code is %s.", username, code)
	if resetURL != "" {
		text += " Enter it at " + resetURL
	}
	return emailMessage{
		to:      to,
		subject: "Whisperbox password reset",
		html:    body,
		text:    text,
	}, nil
}

// NewEmailService picks the delivery backend named by cfg.Provider.
func NewEmailService(cfg config.EmailConfig, logger *zap.Logger) (EmailService, error) {
	logger = logger.Named("email")
	var sender messageSender
	switch cfg.Provider {
	case "smtp":
		sender = &smtpSender{
			dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
			from:   cfg.FromEmail,
			name:   cfg.FromName,
		}
	case "sendgrid":
		sender = &sendgridSender{
			client: sendgrid.NewSendClient(cfg.SendgridAPIKey),
			from:   mail.NewEmail(cfg.FromName, cfg.FromEmail),
		}
	case "log", "":
		sender = &logSender{logger: logger}
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
	return &emailService{sender: sender, logger: logger}, nil
}

type messageSender interface {
	send(ctx context.Context, msg emailMessage) error
}

type emailService struct {
	sender messageSender
	logger *zap.Logger
}

func (s *emailService) SendVerificationCode(ctx context.Context, to, username, code string) error {
	msg, err := verificationMessage(to, username, code)
	if err != nil {
		return err
	}
	if err := s.sender.send(ctx, msg); err != nil {
		s.logger.Warn("verification email failed", zap.String("to", logging.Mask(to)), zap.Error(err))
		return fmt.Errorf("send verification email: %w", err)
	}
	s.logger.Info("verification email sent", zap.String("to", logging.Mask(to)))
	return nil
}

func (s *emailService) SendPasswordResetCode(ctx context.Context, to, username, code, resetURL string) error {
	msg, err := passwordResetMessage(to, username, code, resetURL)
	if err != nil {
		return err
	}
	if err := s.sender.send(ctx, msg); err != nil {
		s.logger.Warn("password reset email failed", zap.String("to", logging.Mask(to)), zap.Error(err))
		return fmt.Errorf("send password reset email: %w", err)
	}
	s.logger.Info("password reset email sent", zap.String("to", logging.Mask(to)))
	return nil
}

// mailDialer is the part of *gomail.Dialer we use.
type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpSender struct {
	dialer mailDialer
	from   string
	name   string
}

func (s *smtpSender) send(ctx context.Context, msg emailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.name)
	m.SetHeader("To", msg.to)
	m.SetHeader("Subject", msg.subject)
	m.SetBody("text/plain", msg.text)
	m.AddAlternative("text/html", msg.html)

	return s.dialer.DialAndSend(m)
}

// sendgridClient is the part of *sendgrid.Client we use.
type sendgridClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type sendgridSender struct {
	client sendgridClient
	from   *mail.Email
}

func (s *sendgridSender) send(ctx context.Context, msg emailMessage) error {
	to := mail.NewEmail("", msg.to)
	resp, err := s.client.SendWithContext(ctx, mail.NewSingleEmail(s.from, msg.subject, to, msg.text, msg.html))
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// logSender writes the message to the log instead of delivering it. Used for
// local development only.
type logSender struct {
	logger *zap.Logger
}

func (s *logSender) send(_ context.Context, msg emailMessage) error {
	s.logger.Info("email (dry run)",
		zap.String("to", msg.to),
		zap.String("subject", msg.subject),
		zap.String("body", msg.text),
	)
	return nil
}
