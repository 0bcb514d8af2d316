package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"net/textproto"
	"sort"
	"strings"

	"github.com/camuig/krx-stock-report/internal/config"
	"github.com/camuig/krx-stock-report/internal/logger"
)

var ErrNoRecipients = errors.New("no recipients")

// Session is the subset of an SMTP client conversation the mailer drives.
// *smtp.Client satisfies it.
type Session interface {
	StartTLS(*tls.Config) error
	Auth(smtp.Auth) error
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Dialer opens a session to addr. host is used for TLS verification.
type Dialer func(ctx context.Context, addr, host string) (Session, error)

// RecipientErrors maps each refused recipient to the server's reply.
type RecipientErrors map[string]string

func (e RecipientErrors) Error() string {
	addrs := make([]string, 0, len(e))
	for a := range e {
		addrs = append(addrs, a)
	}
	sort.Strings(addrs)
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a + ": " + e[a]
	}
	return "recipients refused: " + strings.Join(parts, "; ")
}

// Result reports who accepted the message.
type Result struct {
	Accepted []string
	Refused  RecipientErrors
}

// WriterToMsg is what Send needs from a composed message.
type WriterToMsg interface {
	WriteTo(w io.Writer) (int64, error)
}

type Mailer struct {
	addr     string
	host     string
	username string
	password string
	strict   bool
	dial     Dialer
	logger   *logger.Logger
}

func NewMailer(cfg *config.Config, log *logger.Logger) *Mailer {
	return &Mailer{
		addr:     cfg.SMTPAddr(),
		host:     cfg.SMTP.Host,
		username: cfg.SMTP.Username,
		password: cfg.SMTP.Password,
		strict:   cfg.SMTP.StrictRecipients,
		dial:     DialSMTP,
		logger:   log,
	}
}

// WithDialer replaces how sessions are opened.
func (m *Mailer) WithDialer(d Dialer) *Mailer {
	m.dial = d
	return m
}

// DialSMTP connects over TCP and reads the server greeting.
func DialSMTP(ctx context.Context, addr, host string) (Session, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	c, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// Send delivers body from sender to every recipient over one session:
// STARTTLS, AUTH PLAIN, MAIL, RCPT per recipient, DATA, QUIT.
//
// A recipient the server refuses is recorded in Result.Refused and the
// message still goes to the rest. Send fails when every recipient is refused,
// or when any is refused and the mailer is strict.
func (m *Mailer) Send(ctx context.Context, from string, to []string, body WriterToMsg) (Result, error) {
	var res Result
	if len(to) == 0 {
		return res, ErrNoRecipients
	}

	s, err := m.dial(ctx, m.addr, m.host)
	if err != nil {
		return res, fmt.Errorf("connect to %s: %w", m.addr, err)
	}
	defer s.Close()

	if err := s.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
		return res, fmt.Errorf("starttls: %w", err)
	}
	if err := s.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
		return res, fmt.Errorf("auth: %w", err)
	}
	if err := s.Mail(from); err != nil {
		return res, fmt.Errorf("mail from: %w", err)
	}

	for _, rcpt := range to {
		err := s.Rcpt(rcpt)
		if err == nil {
			res.Accepted = append(res.Accepted, rcpt)
			continue
		}
		var reply *textproto.Error
		if !errors.As(err, &reply) {
			return res, fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
		if res.Refused == nil {
			res.Refused = RecipientErrors{}
		}
		res.Refused[rcpt] = fmt.Sprintf("%d %s", reply.Code, reply.Msg)
	}

	if len(res.Accepted) == 0 {
		return res, res.Refused
	}
	if len(res.Refused) > 0 {
		if m.strict {
			return res, res.Refused
		}
		m.logger.Warn("some recipients refused", "refused", res.Refused.Error(), "accepted", len(res.Accepted))
	}

	w, err := s.Data()
	if err != nil {
		return res, fmt.Errorf("data: %w", err)
	}
	if _, err := body.WriteTo(w); err != nil {
		w.Close()
		return res, fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return res, fmt.Errorf("finish data: %w", err)
	}
	if err := s.Quit(); err != nil {
		return res, fmt.Errorf("quit: %w", err)
	}

	m.logger.Info("report sent", "recipients", len(res.Accepted))
	return res, nil
}

// SendMessage composes msg and sends it.
func (m *Mailer) SendMessage(ctx context.Context, msg Message) (Result, error) {
	composed, err := Compose(msg)
	if err != nil {
		return Result{}, err
	}
	return m.Send(ctx, msg.From, msg.To, composed)
}
