package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/gomail.v2"

	"whisperbox/internal/config"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	if d.err != nil {
		return d.err
	}
	d.sent = append(d.sent, m...)
	return nil
}

type fakeSendgrid struct {
	last *mail.SGMailV3
	resp *rest.Response
	err  error
}

func (f *fakeSendgrid) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.last = email
	return f.resp, f.err
}

func TestNewEmailService_Providers(t *testing.T) {
	for _, provider := range []string{"smtp", "sendgrid", "log", ""} {
		svc, err := NewEmailService(config.EmailConfig{Provider: provider, FromEmail: "no-reply@example.com"}, zap.NewNop())
		require.NoError(t, err, provider)
		assert.NotNil(t, svc)
	}

	_, err := NewEmailService(config.EmailConfig{Provider: "carrier-pigeon"}, zap.NewNop())
	assert.Error(t, err)
}

func TestSMTPSender_SendsCode(t *testing.T) {
	dialer := &fakeDialer{}
	svc := &emailService{
		sender: &smtpSender{dialer: dialer, from: "no-reply@example.com", name: "Whisperbox"},
		logger: zap.NewNop(),
	}

	require.NoError(t, svc.SendVerificationCode(context.Background(), "alice@example.com", "alice", "048213"))
	require.Len(t, dialer.sent, 1)

	var buf bytes.Buffer
	_, err := dialer.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "048213")
	assert.Equal(t, []string{"alice@example.com"}, dialer.sent[0].GetHeader("To"))
}

func TestSMTPSender_Failure(t *testing.T) {
	dialer := &fakeDialer{err: errors.New("connection refused")}
	svc := &emailService{sender: &smtpSender{dialer: dialer}, logger: zap.NewNop()}

	err := svc.SendPasswordResetCode(context.Background(), "alice@example.com", "alice", "123456", "")
	assert.ErrorContains(t, err, "connection refused")
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	dialer := &fakeDialer{}
	svc := &emailService{sender: &smtpSender{dialer: dialer}, logger: zap.NewNop()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := svc.SendVerificationCode(ctx, "alice@example.com", "alice", "123456")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, dialer.sent)
}

func TestSendgridSender(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		client := &fakeSendgrid{resp: &rest.Response{StatusCode: http.StatusAccepted}}
		svc := &emailService{
			sender: &sendgridSender{client: client, from: mail.NewEmail("Whisperbox", "no-reply@example.com")},
			logger: zap.NewNop(),
		}

		err := svc.SendPasswordResetCode(context.Background(), "bob@example.com", "bob", "654321", "https://whisperbox.test/reset")
		require.NoError(t, err)
		require.NotNil(t, client.last)
		assert.Equal(t, "Whisperbox password reset", client.last.Subject)
		require.Len(t, client.last.Content, 2)
		assert.Contains(t, client.last.Content[1].Value, "https://whisperbox.test/reset")
	})

	t.Run("rejected", func(t *testing.T) {
		client := &fakeSendgrid{resp: &rest.Response{StatusCode: http.StatusUnauthorized, Body: "bad key"}}
		svc := &emailService{
			sender: &sendgridSender{client: client, from: mail.NewEmail("", "no-reply@example.com")},
			logger: zap.NewNop(),
		}

		err := svc.SendVerificationCode(context.Background(), "bob@example.com", "bob", "654321")
		assert.ErrorContains(t, err, "status 401")
	})
}

func TestPasswordResetMessage_EscapesLink(t *testing.T) {
	hostile := `https://whisperbox.app/x"><a href="https://evil.example/login">click</a>`

	msg, err := passwordResetMessage("alice@example.com", "alice", "123456", hostile)
	require.NoError(t, err)
	assert.NotContains(t, msg.html, `<a href="https://evil.example/login">`)
	assert.NotContains(t, msg.html, `x">`)
	assert.Contains(t, msg.html, "&#34;&gt;")
	assert.Equal(t, 1, strings.Count(msg.html, "<a "))
}

func TestPasswordResetMessage_NoLink(t *testing.T) {
	msg, err := passwordResetMessage("alice@example.com", "alice", "123456", "")
	require.NoError(t, err)
	assert.NotContains(t, msg.html, "<a ")
	assert.Contains(t, msg.html, "123456")
	assert.NotContains(t, msg.text, "Enter it at")
}

func TestVerificationMessage_EscapesUsername(t *testing.T) {
	msg, err := verificationMessage("alice@example.com", "<b>alice</b>", "048213")
	require.NoError(t, err)
	assert.Contains(t, msg.html, "&lt;b&gt;alice&lt;/b&gt;")
	assert.Contains(t, msg.html, "048213")
}

func TestLogSender_WritesCodeAndMasksSummary(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	svc, err := NewEmailService(config.EmailConfig{Provider: "log"}, zap.New(core))
	require.NoError(t, err)

	require.NoError(t, svc.SendVerificationCode(context.Background(), "carol@example.com", "carol", "000123"))

	dry := logs.FilterMessage("email (dry run)").All()
	require.Len(t, dry, 1)
	assert.Contains(t, dry[0].ContextMap()["body"], "000123")

	sent := logs.FilterMessage("verification email sent").All()
	require.Len(t, sent, 1)
	assert.Equal(t, "c***@example.com", sent[0].ContextMap()["to"])
}
