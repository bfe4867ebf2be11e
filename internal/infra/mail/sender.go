package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ls-leads/internal/infra/logger"
	"github.com/xavierca1/ls-leads/internal/infra/queue"
)

// Dialer é satisfeito por *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

var assignmentTemplate = template.Must(template.New("assignment").Parse(`<p>Olá, {{.ResponsavelName}}!</p>
<p>{{.AssignedByName}} atribuiu a você o lead da empresa <strong>{{.CompanyName}}</strong> em {{.AssignedAt}}.</p>
{{if .Notes}}<p>Observações: {{.Notes}}</p>{{end}}
{{if .LeadURL}}<p><a href="{{.LeadURL}}">Abrir lead</a></p>{{end}}`))

func NewEmailSender(host string, port int, user, password, from, baseURL string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		BaseURL:  baseURL,
		Dialer:   gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) NotifyAssignment(ctx context.Context, p queue.LeadAssignedPayload) error {
	if p.ResponsavelEmail == "" {
		return fmt.Errorf("responsável %s sem e-mail", p.ResponsavelID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := AssignmentEmailData{
		ResponsavelName: p.ResponsavelName,
		CompanyName:     p.CompanyName,
		AssignedByName:  p.AssignedByName,
		Notes:           p.Notes,
		AssignedAt:      p.AssignedAt.Format("02/01/2006 15:04"),
	}
	if s.BaseURL != "" {
		data.LeadURL = s.BaseURL + "/leads/" + p.LeadID
	}

	var body bytes.Buffer
	if err := assignmentTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("erro ao processar template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", p.ResponsavelEmail)
	m.SetHeader("Subject", fmt.Sprintf("Novo lead atribuído: %s", p.CompanyName))
	m.SetBody("text/html", body.String())

	if err := s.Dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}
	return nil
}

// LogNotifier substitui o SMTP quando não há servidor configurado.
type LogNotifier struct {
	Log logger.Logger
}

func (n LogNotifier) NotifyAssignment(_ context.Context, p queue.LeadAssignedPayload) error {
	n.Log.WithFields(map[string]interface{}{
		"lead_id":        p.LeadID,
		"responsavel_id": p.ResponsavelID,
	}).Info("SMTP desabilitado, aviso de atribuição apenas registrado")
	return nil
}
