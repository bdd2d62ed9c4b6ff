// Package mailer delivers QR passes to customers by email.
// The pass image is generated locally and embedded inline in the message.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/skip2/go-qrcode"
	"github.com/wneessen/go-mail"

	"github.com/checkdesk/checkdesk/internal/logger"
	"github.com/checkdesk/checkdesk/internal/models"
)

const qrImageSize = 256

type Config struct {
	Host     string
	Port     int
	Username string
	Password string

	// From address of the outgoing messages, required
	From string

	// BaseURL of the check-in page the QR pass points to.
	// The pass encodes BaseURL + "/checkin?qr=" + customer QR value.
	BaseURL string
}

type Mailer struct {
	cfg    Config
	client *mail.Client
	logger logger.Logger
}

var passBody = template.Must(template.New("pass").Parse(`<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1>Welcome, {{.Name}}!</h1>
  <p>Thank you for registering. This is your personal QR pass for check-in.</p>
  <p style="text-align: center;"><img src="cid:pass.png" alt="QR pass"></p>
  <p>Scan the pass at the front desk on arrival, or open
     <a href="{{.CheckInURL}}">this link</a> from your phone.</p>
  <p style="color: #999; font-size: 12px;">Keep this email for your next visits.</p>
</body>
</html>
`))

func New(cfg Config, l logger.Logger) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host must not be empty")
	}
	if cfg.From == "" {
		return nil, errors.New("mail from address must not be empty")
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("error while creating mail client. Err: %w", err)
	}

	return &Mailer{cfg: cfg, client: client, logger: l}, nil
}

// SendPass emails the customer their QR pass with the image embedded inline
func (m *Mailer) SendPass(ctx context.Context, customer models.Customer) error {
	checkInURL := m.cfg.BaseURL + "/checkin?qr=" + customer.QRCodeValue

	png, err := qrcode.Encode(checkInURL, qrcode.Medium, qrImageSize)
	if err != nil {
		return fmt.Errorf("error while encoding QR pass. Err: %w", err)
	}

	var body bytes.Buffer
	err = passBody.Execute(&body, struct {
		Name       string
		CheckInURL string
	}{
		Name:       customer.DisplayName(),
		CheckInURL: checkInURL,
	})
	if err != nil {
		return fmt.Errorf("error while rendering pass email. Err: %w", err)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("error while setting mail sender. Err: %w", err)
	}
	if err := msg.To(customer.Email); err != nil {
		return fmt.Errorf("error while setting mail recipient. Err: %w", err)
	}
	msg.Subject("Your QR pass - " + customer.DisplayName())
	msg.SetBodyString(mail.TypeTextHTML, body.String())
	if err := msg.EmbedReader("pass.png", bytes.NewReader(png)); err != nil {
		return fmt.Errorf("error while embedding QR pass. Err: %w", err)
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("error while sending pass email. Err: %w", err)
	}

	m.logger.Info("QR pass sent", "customer_id", customer.ID, "email", customer.Email)
	return nil
}
