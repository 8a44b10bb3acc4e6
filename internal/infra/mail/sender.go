package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templates embed.FS

var partialConversionTmpl = template.Must(template.ParseFS(templates, "templates/partial_conversion.html"))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

// ConversionAlerter manda o alerta de conversão parcial para a equipe.
type ConversionAlerter struct {
	Sender   *EmailSender
	To       string
	Currency string
}

func NewConversionAlerter(sender *EmailSender, to, currency string) *ConversionAlerter {
	return &ConversionAlerter{Sender: sender, To: to, Currency: currency}
}

func (a *ConversionAlerter) SendPartialConversionAlert(ctx context.Context, lead *entity.Lead, cause error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := PartialConversionEmailData{
		LeadID:    lead.ID,
		LeadName:  lead.Name,
		LeadEmail: lead.Email,
		Value:     entity.FormatWithSymbol(lead.Value, a.Currency),
		Cause:     fmt.Sprint(cause),
	}
	if lead.ConversionDate != nil {
		data.ConvertedAt = lead.ConversionDate.UTC().Format(time.RFC3339)
	}

	subject := fmt.Sprintf("[CRM] Lead %s converted without a sale", lead.Name)
	return a.Sender.Send(a.To, subject, partialConversionTmpl, data)
}

func (s *EmailSender) Send(to, subject string, tmpl *template.Template, data any) error {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	m := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send SMTP email: %w", err)
	}
	return nil
}
