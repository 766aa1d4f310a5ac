package services

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sjperalta/smartdebt-api/internal/config"
	"github.com/sjperalta/smartdebt-api/pkg/logger"
)

//go:embed templates/email/*.html
var emailTemplates embed.FS

// EmailService mails JSON backups through Resend
type EmailService struct {
	from   string
	to     []string
	emails resend.EmailsSvc
	ledger *LedgerService
	format *Formatter
	now    func() time.Time
}

func NewEmailService(cfg *config.Config, ledgerSvc *LedgerService, format *Formatter) *EmailService {
	s := &EmailService{
		from:   cfg.FromEmail,
		to:     splitRecipients(cfg.BackupEmailTo),
		ledger: ledgerSvc,
		format: format,
		now:    time.Now,
	}
	if cfg.ResendAPIKey != "" {
		s.emails = resend.NewClient(cfg.ResendAPIKey).Emails
	}
	return s
}

// Enabled reports whether a backup can be sent
func (s *EmailService) Enabled() bool {
	return s.emails != nil && s.from != "" && len(s.to) > 0
}

// Recipients returns to, or the configured list when to is empty. It fails with
// ErrNotConfigured when the mail cannot be sent.
func (s *EmailService) Recipients(to []string) ([]string, error) {
	if len(to) == 0 {
		to = s.to
	}
	if s.emails == nil || s.from == "" || len(to) == 0 {
		return nil, fmt.Errorf("%w: email backup", ErrNotConfigured)
	}
	return to, nil
}

// SendBackup mails the current snapshot as an attachment. to overrides the configured recipients.
func (s *EmailService) SendBackup(ctx context.Context, to []string) error {
	to, err := s.Recipients(to)
	if err != nil {
		return err
	}

	state := s.ledger.Snapshot()
	now := s.now()
	attachment, fileName, err := BackupJSON(state, now)
	if err != nil {
		return err
	}

	sum := BuildDashboard(state, now, s.format)
	data := struct {
		Date             string
		DebtorCount      int
		TransactionCount int
		Receivable       string
		Payable          string
	}{
		Date:             s.format.Date(now),
		DebtorCount:      len(state.Debtors),
		TransactionCount: len(state.Transactions),
		Receivable:       s.format.Currency(sum.TotalReceivable),
		Payable:          s.format.Currency(sum.TotalPayable),
	}

	body, err := s.renderTemplate("backup.html", data)
	if err != nil {
		return err
	}

	subject := "Dự phòng dữ liệu SmartDebt " + data.Date
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      to,
		Subject: subject,
		Html:    body,
		Attachments: []*resend.Attachment{{
			Content:     attachment,
			Filename:    fileName,
			ContentType: "application/json",
		}},
	}
	if _, err := s.emails.SendWithContext(ctx, params); err != nil {
		logger.Error("Failed to send backup email", "to", strings.Join(to, ","), "error", err)
		return err
	}

	logger.Info("Backup email sent", "to", strings.Join(to, ","), "file", fileName, "bytes", len(attachment))
	return nil
}

func (s *EmailService) renderTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFS(emailTemplates, "templates/email/"+name)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

func splitRecipients(list string) []string {
	var out []string
	for _, addr := range strings.Split(list, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
