package mailer

import (
	"fmt"
	"os"

	"github.com/wneessen/go-mail"
)

// PresentationType is the MIME type of .pptx attachments.
const PresentationType mail.ContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// Message is one outgoing report email.
type Message struct {
	From       string
	To         []string
	Subject    string
	Body       string
	Attachment string
}

// Compose builds a multipart/mixed message: a UTF-8 text body followed by the
// attachment under its base file name.
func Compose(m Message) (*mail.Msg, error) {
	if len(m.To) == 0 {
		return nil, ErrNoRecipients
	}

	msg := mail.NewMsg()
	msg.SetCharset(mail.CharsetUTF8)
	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(m.To...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextPlain, m.Body)

	if m.Attachment != "" {
		// AttachFile drops files it cannot stat without reporting it.
		if _, err := os.Stat(m.Attachment); err != nil {
			return nil, fmt.Errorf("attachment: %w", err)
		}
		msg.AttachFile(m.Attachment, mail.WithFileContentType(PresentationType))
	}
	return msg, nil
}
