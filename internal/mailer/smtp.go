package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/yoockh/recruitportal/internal/pipeline"
	"github.com/yoockh/recruitportal/internal/utils"
)

// Per-command limits for one session. Both stay under the dispatcher lease so a
// stalled server cannot outlive the claim on its row.
const (
	commandTimeout    = 30 * time.Second
	submissionTimeout = time.Minute
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // envelope and header address
	// ImplicitTLS dials TLS directly (port 465) instead of STARTTLS.
	ImplicitTLS bool
}

type SMTPNotifier struct {
	cfg      SMTPConfig
	branding Branding
	now      func() time.Time
}

func NewSMTPNotifier(cfg SMTPConfig, b Branding) *SMTPNotifier {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPNotifier{cfg: cfg, branding: b, now: time.Now}
}

func (n *SMTPNotifier) Send(ctx context.Context, kind pipeline.EmailKind, recipientEmail, recipientName string, data map[string]string) error {
	const op = "SMTPNotifier.Send"

	if recipientEmail == "" {
		return utils.E(utils.CodeInvalidArgument, op, "recipient email is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return utils.E(utils.CodeTimeout, op, "context done before send", err)
	}

	subject, body, err := Render(n.branding, kind, recipientName, data)
	if err != nil {
		return utils.E(utils.CodeInvalidArgument, op, "failed to render template", err)
	}

	msg, err := Compose(n.cfg.From, n.branding.SenderName, recipientEmail, recipientName, subject, body, n.now())
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to compose message", err)
	}

	if err := n.deliver(ctx, recipientEmail, msg); err != nil {
		if ctx.Err() != nil {
			return utils.E(utils.CodeTimeout, op, "smtp session timed out", err)
		}
		return utils.E(utils.CodeUnavailable, op, "smtp delivery failed", err)
	}
	return nil
}

// deliver runs one SMTP session bound to ctx. Cancelling ctx closes the
// connection, which fails whatever command is in flight.
func (n *SMTPNotifier) deliver(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	tlsConfig := &tls.Config{ServerName: n.cfg.Host}

	var (
		conn net.Conn
		err  error
	)
	if n.cfg.ImplicitTLS {
		conn, err = (&tls.Dialer{Config: tlsConfig}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	var c *smtp.Client
	if n.cfg.ImplicitTLS {
		c = smtp.NewClient(conn)
	} else if c, err = smtp.NewClientStartTLS(conn, tlsConfig); err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()
	c.CommandTimeout = commandTimeout
	c.SubmissionTimeout = submissionTimeout

	if n.cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("smtp: server does not support AUTH")
		}
		if err := c.Auth(sasl.NewPlainClient("", n.cfg.Username, n.cfg.Password)); err != nil {
			return err
		}
	}
	if err := c.SendMail(n.cfg.From, []string{to}, bytes.NewReader(msg)); err != nil {
		return err
	}
	return c.Quit()
}

// Compose builds a single-part HTML RFC 5322 message.
func Compose(fromAddr, fromName, toAddr, toName, subject, htmlBody string, at time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(at)
	h.SetAddressList("From", []*mail.Address{{Name: fromName, Address: fromAddr}})
	h.SetAddressList("To", []*mail.Address{{Name: toName, Address: toAddr}})
	h.SetSubject(subject)
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write([]byte(htmlBody)); err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
