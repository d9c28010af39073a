package mail

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	gomail "github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Client отправляет письмо подтверждения регистрации со второй подписанной
// ссылкой-токеном. Отправка fire-and-forget относительно основной транзакции.
type Client struct {
	conf    SMTPConfig
	baseURL string
}

func NewClient(conf SMTPConfig, baseURL string) *Client {
	return &Client{conf: conf, baseURL: baseURL}
}

func (c *Client) SendVerification(ctx context.Context, email, username, token string) error {
	msg := gomail.NewMsg()
	if err := msg.From(c.conf.From); err != nil {
		return errors.Wrap(err, "setting mail sender")
	}
	if err := msg.To(email); err != nil {
		return errors.Wrap(err, "setting mail recipient")
	}
	msg.Subject("Email verification")
	msg.SetBodyString(gomail.TypeTextPlain, fmt.Sprintf(
		"Hello %s, thanks for choosing our services.\n"+
			"Please follow the link to confirm your registration:\n%s/auth/verification?token=%s\n",
		username, c.baseURL, token,
	))

	client, clientErr := gomail.NewClient(c.conf.Host,
		gomail.WithPort(c.conf.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(c.conf.Username),
		gomail.WithPassword(c.conf.Password),
	)
	if clientErr != nil {
		return errors.Wrap(clientErr, "creating smtp client")
	}

	if sendErr := client.DialAndSendWithContext(ctx, msg); sendErr != nil {
		return errors.Wrapf(sendErr, "sending verification mail to %s", email)
	}
	return nil
}

// LogMailer замена SMTP для окружений без почтового сервера:
// просто пишет ссылку подтверждения в лог.
type LogMailer struct {
	Logger *logrus.Logger
}

func (m *LogMailer) SendVerification(_ context.Context, email, username, token string) error {
	m.Logger.WithFields(logrus.Fields{
		"Email":    email,
		"Username": username,
	}).Infof("verification token: %s", token)
	return nil
}
