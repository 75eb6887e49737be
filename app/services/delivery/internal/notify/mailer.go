package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"DigiMart/app/common/snowflake"

	"github.com/wneessen/go-mail"
	"github.com/zeromicro/go-zero/core/logx"
)

var ErrMailTransport = errors.New("mail transport failed")

type Mail struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Mailer sends one composed mail and returns the transport's message id.
type Mailer interface {
	SendMail(ctx context.Context, m Mail) (string, error)
}

type SMTPConf struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

type SMTPMailer struct {
	client *mail.Client
}

func NewSMTPMailer(c SMTPConf) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(c.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if c.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(c.Timeout))
	}
	if c.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(c.Username),
			mail.WithPassword(c.Password))
	}
	client, err := mail.NewClient(c.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("new smtp client: %w", err)
	}
	return &SMTPMailer{client: client}, nil
}

func (s *SMTPMailer) SendMail(ctx context.Context, m Mail) (string, error) {
	msg, err := buildMsg(m)
	if err != nil {
		return "", err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMailTransport, err)
	}
	return messageID(msg), nil
}

func buildMsg(m Mail) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("%w: sender %q: %v", ErrMailTransport, m.From, err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("%w: recipient %q: %v", ErrMailTransport, m.To, err)
	}
	msg.Subject(m.Subject)
	msg.SetMessageID()
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)
	return msg, nil
}

func messageID(msg *mail.Msg) string {
	if ids := msg.GetGenHeader(mail.HeaderMessageID); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// LogMailer is used when no SMTP host is configured. The mail is validated
// and logged, never sent.
type LogMailer struct{}

func (LogMailer) SendMail(ctx context.Context, m Mail) (string, error) {
	msg, err := buildMsg(m)
	if err != nil {
		return "", err
	}
	id := messageID(msg)
	if id == "" {
		id = fmt.Sprintf("<%s@digimart.local>", snowflake.NextString())
	}
	logx.WithContext(ctx).Infow("mail not sent, no smtp host configured",
		logx.Field("to", m.To),
		logx.Field("subject", m.Subject),
		logx.Field("messageId", id))
	return id, nil
}
