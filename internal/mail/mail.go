package mail

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/myshop/myshop-manager/internal/currency"
	"github.com/myshop/myshop-manager/internal/dependency"
	"github.com/myshop/myshop-manager/internal/entity"
	gerr "github.com/myshop/myshop-manager/internal/errors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

//go:embed templates/*.gohtml
var templatesFS embed.FS

const defaultWorkerInterval = time.Minute

type Config struct {
	APIKey         string        `mapstructure:"sendgrid_api_key"`
	FromEmail      string        `mapstructure:"from_email"`
	FromName       string        `mapstructure:"from_email_name"`
	ReplyTo        string        `mapstructure:"reply_to"`
	WorkerInterval time.Duration `mapstructure:"worker_interval"`
}

type Mailer struct {
	cli            dependency.Sender
	mailRepository dependency.Mail
	from           *mail.Email
	c              *Config
	ctx            context.Context
	cancel         context.CancelFunc
	templates      map[string]*template.Template
}

// New returns a SendGrid backed mailer, or a disabled one when no API key
// is configured.
func New(c *Config, mailRepository dependency.Mail) (dependency.Mailer, error) {
	if c.APIKey == "" {
		slog.Default().Warn("sendgrid api key is empty, mailer disabled")
		return disabled{}, nil
	}
	return NewWithSender(c, mailRepository, sendgrid.NewSendClient(c.APIKey))
}

func NewWithSender(c *Config, mailRepository dependency.Mail, cli dependency.Sender) (*Mailer, error) {
	if c.FromEmail == "" || c.FromName == "" {
		return nil, fmt.Errorf("incomplete mailer config: from_email and from_email_name are required")
	}
	if c.WorkerInterval <= 0 {
		c.WorkerInterval = defaultWorkerInterval
	}
	if c.ReplyTo == "" {
		c.ReplyTo = c.FromEmail
	}

	m := &Mailer{
		cli:            cli,
		mailRepository: mailRepository,
		from:           mail.NewEmail(c.FromName, c.FromEmail),
		c:              c,
		templates:      make(map[string]*template.Template),
	}
	if err := m.parseTemplates(); err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}
	return m, nil
}

var templateFuncs = template.FuncMap{
	"money": formatMoney,
}

func formatMoney(d decimal.Decimal) string {
	return currency.Format(language.English, d, currency.Default)
}

func (m *Mailer) parseTemplates() error {
	templateDir := "templates"

	dirEntries, err := templatesFS.ReadDir(templateDir)
	if err != nil {
		return fmt.Errorf("error reading template directory: %w", err)
	}

	for _, entry := range dirEntries {
		if entry.IsDir() {
			continue
		}
		templatePath := filepath.Join(templateDir, entry.Name())
		tmpl, err := template.New(entry.Name()).Funcs(templateFuncs).ParseFS(templatesFS, templatePath)
		if err != nil {
			return fmt.Errorf("error parsing template '%s': %w", entry.Name(), err)
		}
		m.templates[entry.Name()] = tmpl
	}

	return nil
}

func (m *Mailer) buildSendMailRequest(to string, tn string, data any) (*entity.SendEmailRequest, error) {
	tmpl, ok := m.templates[tn]
	if !ok {
		return nil, fmt.Errorf("template not found: %v", tn)
	}

	subject, ok := templateSubjects[tn]
	if !ok {
		return nil, fmt.Errorf("subject not found for template: %v", tn)
	}

	body := &strings.Builder{}
	if err := tmpl.Execute(body, data); err != nil {
		return nil, fmt.Errorf("error executing template: %w", err)
	}

	return &entity.SendEmailRequest{
		From:    m.c.FromEmail,
		To:      to,
		Html:    body.String(),
		Subject: subject,
		ReplyTo: m.c.ReplyTo,
	}, nil
}

func (m *Mailer) sendRaw(ctx context.Context, ser *entity.SendEmailRequest) error {
	if ser.To == "" || ser.Subject == "" || ser.Html == "" {
		return gerr.BadMailRequest
	}
	msg := mail.NewSingleEmail(m.from, ser.Subject, mail.NewEmail("", ser.To), "", ser.Html)
	if ser.ReplyTo != "" {
		msg.SetReplyTo(mail.NewEmail("", ser.ReplyTo))
	}

	resp, err := m.cli.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return gerr.MailApiLimitReached
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("error sending email bad status code: %s, status code: %d", resp.Body, resp.StatusCode)
	}

	return nil
}

// queue stores the rendered email for the worker to deliver.
func (m *Mailer) queue(ctx context.Context, to string, tn string, data any) error {
	ser, err := m.buildSendMailRequest(to, tn, data)
	if err != nil {
		return err
	}
	if _, err := m.mailRepository.AddMail(ctx, ser); err != nil {
		return fmt.Errorf("error inserting email: %w", err)
	}
	return nil
}

type disabled struct{}

func (disabled) QueueOrderConfirmation(context.Context, *entity.Order) error { return nil }
func (disabled) QueueOrderStatus(context.Context, *entity.Order) error       { return nil }
func (disabled) Start(context.Context) error                                 { return nil }
func (disabled) Stop() error                                                 { return nil }
