package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

type MailMessage struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers one message. The contact flow only cares whether it failed.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// httpMailer talks to a Resend-style transactional mail API.
type httpMailer struct {
	url    string
	apiKey string
	from   string
	client *http.Client
}

func newHTTPMailer(url, apiKey, from string) *httpMailer {
	return &httpMailer{url: url, apiKey: apiKey, from: from, client: &http.Client{Timeout: 15 * time.Second}}
}

func (m *httpMailer) Send(ctx context.Context, msg MailMessage) error {
	from := msg.From
	if from == "" {
		from = m.from
	}
	payload := map[string]any{
		"from":    from,
		"to":      []string{msg.To},
		"subject": msg.Subject,
		"html":    msg.HTML,
		"text":    msg.Text,
	}
	if msg.ReplyTo != "" {
		payload["reply_to"] = msg.ReplyTo
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("mail api: status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}
	return nil
}

// logMailer stands in when no mail API key is configured.
type logMailer struct {
	log *slog.Logger
}

func (m logMailer) Send(_ context.Context, msg MailMessage) error {
	m.log.Info("mail delivery disabled, dropping message", "to", msg.To, "subject", msg.Subject)
	return nil
}

var contactEmailTmpl = template.Must(template.New("contact").Parse(`<h2>New contact form submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
{{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>
{{end}}<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong></p>
<p style="white-space: pre-wrap">{{.Message}}</p>
<hr>
<p style="color:#888">Received {{.CreatedAt.Format "Jan 2, 2006 15:04 MST"}}</p>
`))

func contactEmail(to string, c *ContactSubmission) (MailMessage, error) {
	var b bytes.Buffer
	if err := contactEmailTmpl.Execute(&b, c); err != nil {
		return MailMessage{}, err
	}
	return MailMessage{
		To:      to,
		ReplyTo: c.Email,
		Subject: "New Contact Form Submission: " + c.Subject,
		HTML:    b.String(),
		Text:    fmt.Sprintf("From: %s <%s>\nSubject: %s\n\n%s", c.Name, c.Email, c.Subject, c.Message),
	}, nil
}

// notifier sends contact notifications off the request path. Failures are
// logged and counted, never returned.
type notifier struct {
	mailer  Mailer
	to      string
	timeout time.Duration
	log     *slog.Logger
	wg      sync.WaitGroup
}

func newNotifier(m Mailer, to string, log *slog.Logger) *notifier {
	return &notifier{mailer: m, to: to, timeout: 30 * time.Second, log: log}
}

func (n *notifier) contactReceived(c *ContactSubmission) {
	if n.to == "" {
		n.log.Debug("no notification mailbox configured", "contact_id", c.ID)
		return
	}
	msg, err := contactEmail(n.to, c)
	if err != nil {
		n.log.Warn("render contact email", "contact_id", c.ID, "err", err)
		notificationsTotal.WithLabelValues("failed").Inc()
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				n.log.Error("panic sending contact email", "contact_id", c.ID, "err", rec)
				notificationsTotal.WithLabelValues("failed").Inc()
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.mailer.Send(ctx, msg); err != nil {
			n.log.Warn("contact email failed", "contact_id", c.ID, "err", err)
			notificationsTotal.WithLabelValues("failed").Inc()
			return
		}
		n.log.Info("contact email sent", "contact_id", c.ID)
		notificationsTotal.WithLabelValues("sent").Inc()
	}()
}

// Wait blocks until in-flight notifications finish.
func (n *notifier) Wait() {
	n.wg.Wait()
}
