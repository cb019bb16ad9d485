package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"net/url"
	"strings"
	"time"
)

// SMTPSender envia correos via SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	useTLS   bool
	resetURL string
}

func NewSMTPSender(host string, port int, username, password, from, fromName string, useTLS bool, resetURL string) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
		useTLS:   useTLS,
		resetURL: strings.TrimSpace(resetURL),
	}, nil
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, toEmail string, secret string, expiresAt time.Time) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(s.from, s.fromName, toEmail, "Password reset", resetBody(s.resetURL, secret, expiresAt))
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if s.useTLS {
		conn, err := tls.Dial("tcp", addr, &tls.Config{
			ServerName: s.host,
		})
		if err != nil {
			return err
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.host)
		if err != nil {
			return err
		}
		defer client.Quit()

		if auth != nil {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
		if err := client.Mail(s.from); err != nil {
			return err
		}
		if err := client.Rcpt(toEmail); err != nil {
			return err
		}
		writer, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := writer.Write([]byte(msg)); err != nil {
			_ = writer.Close()
			return err
		}
		return writer.Close()
	}

	return smtp.SendMail(addr, auth, s.from, []string{toEmail}, []byte(msg))
}

func resetBody(resetURL, secret string, expiresAt time.Time) string {
	var b strings.Builder
	b.WriteString("We received a request to reset your password.\n\n")
	if resetURL != "" {
		link := resetURL
		if strings.Contains(link, "?") {
			link += "&token=" + url.QueryEscape(secret)
		} else {
			link += "?token=" + url.QueryEscape(secret)
		}
		fmt.Fprintf(&b, "Open this link to choose a new password:\n%s\n\n", link)
	} else {
		fmt.Fprintf(&b, "Your reset code is %s\n\n", secret)
	}
	fmt.Fprintf(&b, "It expires at %s UTC. If you did not ask for this, ignore this email.\n",
		expiresAt.UTC().Format(time.RFC3339))
	return b.String()
}

func buildMessage(from, fromName, to, subject, body string) string {
	fromHeader := from
	if strings.TrimSpace(fromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}

	headers := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
	}

	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}
