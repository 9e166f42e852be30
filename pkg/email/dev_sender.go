package email

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender writes emails to disk instead of sending them, so local
// development never needs Postmark credentials.
type DevSender struct {
	dir string
}

// NewDevSender returns a sender that saves each message as an HTML
// file under dir. The directory is created on first send.
func NewDevSender(dir string) *DevSender {
	return &DevSender{dir: dir}
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

func (s *DevSender) Send(_ context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToSend, err)
	}

	name := msg.Tag
	if name == "" {
		name = msg.Subject
	}
	name = strings.ToLower(unsafeFilenameChars.ReplaceAllString(strings.ReplaceAll(name, " ", "_"), ""))
	if name == "" {
		name = "email"
	}

	file := fmt.Sprintf("%s_%s.html", time.Now().Format("2006_01_02_150405"), name)
	body := fmt.Sprintf("<!-- to: %s | subject: %s -->\n%s", msg.To, msg.Subject, msg.BodyHTML)
	if err := os.WriteFile(filepath.Join(s.dir, file), []byte(body), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToSend, err)
	}
	return nil
}
