package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	mail "github.com/wneessen/go-mail"

	"github.com/duksosleepy/restate-server/internal/config"
)

// Mailer sends the non-existing-codes report over SMTP (STARTTLS, plain auth).
// With incomplete SMTP config it stays disabled and only logs.
type Mailer struct {
	host       string
	port       int
	from       string
	password   string
	recipients []string
	logger     zerolog.Logger
}

func NewMailer(cfg config.Config, logger zerolog.Logger) *Mailer {
	return &Mailer{
		host:       cfg.SMTPServer,
		port:       cfg.SMTPPort,
		from:       cfg.EmailAddress,
		password:   cfg.EmailPassword,
		recipients: cfg.EmailRecipients,
		logger:     logger,
	}
}

func (m *Mailer) Enabled() bool {
	return m.host != "" && m.from != "" && len(m.recipients) > 0
}

// Send mails the workbook as an attachment.
func (m *Mailer) Send(codes []string, workbook []byte, now time.Time) error {
	if !m.Enabled() {
		return fmt.Errorf("mailer disabled: incomplete SMTP configuration")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(m.recipients...); err != nil {
		return fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(fmt.Sprintf("MÃ ĐƠN HÀNG CÒN THIẾU - %s", now.Format("2006-01-02 15:04")))

	body := fmt.Sprintf(
		"Thời gian xử lý: %s\n\n"+
			"Tổng số mã hàng không tồn tại trong hệ thống: %d\n\n"+
			"Chi tiết danh sách mã hàng được đính kèm trong file Excel.\n\n"+
			"Vui lòng kiểm tra file đính kèm để xem danh sách đầy đủ.\n",
		now.Format("2006-01-02 15:04:05"), len(codes))
	msg.SetBodyString(mail.TypeTextPlain, body)

	filename := fmt.Sprintf("non_existing_codes_%s.xlsx", now.Format("20060102_150405"))
	if err := msg.AttachReader(filename, bytes.NewReader(workbook)); err != nil {
		return fmt.Errorf("attach workbook: %w", err)
	}

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.from),
		mail.WithPassword(m.password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Info().Int("codes", len(codes)).Strs("to", m.recipients).Msg("report email sent")
	return nil
}
