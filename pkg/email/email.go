// Package email delivers transactional mail (admin invitations,
// billing notices) through Postmark, with a file-based sender for
// local development.
package email

import (
	"context"
	"errors"
	"regexp"
)

var (
	ErrFailedToSend  = errors.New("failed to send email")
	ErrInvalidConfig = errors.New("invalid email config")
	ErrInvalidParams = errors.New("invalid email params")
)

// Config holds sender identity and Postmark credentials. Tokens are
// optional so development environments can run the dev sender.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required,notEmpty"`
	SupportEmail         string `env:"SUPPORT_EMAIL,required,notEmpty"`
}

// Message is a single outbound transactional email.
type Message struct {
	To       string
	Subject  string
	BodyHTML string
	Tag      string
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func (m Message) validate() error {
	switch {
	case !emailPattern.MatchString(m.To):
		return errors.Join(ErrInvalidParams, errors.New("invalid recipient address"))
	case m.Subject == "":
		return errors.Join(ErrInvalidParams, errors.New("subject is required"))
	case m.BodyHTML == "":
		return errors.Join(ErrInvalidParams, errors.New("body is required"))
	}
	return nil
}

// Sender sends transactional email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
