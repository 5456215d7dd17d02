package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"strings"

	"github.com/matthewbaird/intake/internal/types"
)

// Email messages.
const (
	MsgNoRecipients = "Please select at least one user to email."
	MsgNoSubject    = "Please enter an email subject."
	MsgEmailSent    = "Email sent successfully!"
)

// SubjectFor is the default subject of a lead's summary email.
func SubjectFor(leadName string) string { return "Intake Form Summary - " + leadName }

// RecipientOptions lists the active users as "Name (Email)" picker entries.
func RecipientOptions(users []types.User) []types.Option {
	out := make([]types.Option, 0, len(users))
	for _, u := range users {
		if !u.Active {
			continue
		}
		out = append(out, types.Option{Label: fmt.Sprintf("%s (%s)", u.Name(), u.Email), Value: u.ID})
	}
	return out
}

var emailTemplate = template.Must(template.New("summary").Parse(
	`<div style="font-family: Arial, sans-serif; max-width: 800px;">` +
		`<h2 style="color: #0176d3; border-bottom: 2px solid #0176d3; padding-bottom: 10px;">Intake Form Summary - {{.LeadName}}</h2>` +
		`{{range .Sections}}{{if not .WebOnly}}` +
		`<div style="margin-bottom: 20px; border: 1px solid #e5e5e5; border-radius: 5px;">` +
		`<h3 style="background-color: #f4f6f9; color: #0176d3; margin: 0; padding: 10px; border-bottom: 1px solid #e5e5e5;">{{.Title}}</h3>` +
		`<div style="padding: 15px;">{{range .Items}}<p><strong>{{.Label}}:</strong> {{.Value}}</p>{{end}}</div></div>` +
		`{{end}}{{end}}</div>`))

// EmailBody renders the emailed digest. Values are HTML-escaped.
func EmailBody(s Summary) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, s); err != nil {
		return "", fmt.Errorf("render summary email: %w", err)
	}
	return buf.String(), nil
}

// Email is a composed summary email awaiting recipients.
type Email struct {
	LeadID  string   `json:"leadId"`
	UserIDs []string `json:"userIds"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Compose fills subject and body from a summary.
func Compose(leadID string, s Summary) (Email, error) {
	body, err := EmailBody(s)
	if err != nil {
		return Email{}, err
	}
	return Email{LeadID: leadID, UserIDs: []string{}, Subject: SubjectFor(s.LeadName), Body: body}, nil
}

// Validate reports the first missing piece, recipients before subject.
func (e Email) Validate() error {
	if len(e.UserIDs) == 0 {
		return &ValidationError{Messages: []string{MsgNoRecipients}}
	}
	if strings.TrimSpace(e.Subject) == "" {
		return &ValidationError{Messages: []string{MsgNoSubject}}
	}
	return nil
}

// Message is what a Mailer delivers.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers messages.
type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct{}

func (LogMailer) Send(_ context.Context, m Message) error {
	log.Printf("intake: mail %q to %s (%d bytes)", m.Subject, strings.Join(m.To, ", "), len(m.HTML))
	return nil
}

// UserLookup resolves recipients.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (types.User, error)
}

// ErrNoAddress is returned when a chosen recipient has no email address.
var ErrNoAddress = errors.New("intake: recipient has no email address")

// SendEmail validates e, resolves its recipients and hands it to m.
func SendEmail(ctx context.Context, users UserLookup, m Mailer, e Email) error {
	if err := e.Validate(); err != nil {
		return err
	}
	to := make([]string, 0, len(e.UserIDs))
	for _, id := range e.UserIDs {
		u, err := users.GetUser(ctx, id)
		if err != nil {
			return fmt.Errorf("get recipient %s: %w", id, err)
		}
		if u.Email == "" {
			return fmt.Errorf("%w: %s", ErrNoAddress, u.Name())
		}
		to = append(to, u.Email)
	}
	if err := m.Send(ctx, Message{To: to, Subject: e.Subject, HTML: e.Body}); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}
