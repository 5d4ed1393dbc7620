package mailingservices

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/logger"
)

const sendTimeout = 10 * time.Second

// Mailer sends the transactional mails of the app.
type Mailer interface {
	SendWelcomeMessage(toEmail, fullname string) (string, error)
	SendResetPassword(toEmail, resetLink string) (string, error)
	SendWithdrawalStatus(toEmail, fullname, status, detail string) (string, error)
}

type Mailgun struct {
	Client *mailgun.MailgunImpl
	From   string
}

func (mg *Mailgun) Init(c *config.Config) {
	mg.Client = mailgun.NewMailgun(c.MgDomain, c.MailgunApiKey)
	mg.From = c.MgEmailFrom
}

func (mg *Mailgun) send(toEmail, subject, body string) (string, error) {
	if mg.Client == nil {
		return "", fmt.Errorf("mailgun client not initialised")
	}
	m := mg.Client.NewMessage(mg.From, subject, "", toEmail)
	m.SetHtml(body)

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	res, id, err := mg.Client.Send(ctx, m)
	if err != nil {
		logger.Error("mailgun send failed", "to", toEmail, "subject", subject, "error", err)
		return "", err
	}
	logger.Debug("mailgun sent", "to", toEmail, "id", id, "response", res)
	return id, nil
}

func (mg *Mailgun) SendWelcomeMessage(toEmail, fullname string) (string, error) {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Welcome to Earnly! Complete tasks, collect coins and withdraw them to your UPI or bank account.</p>`, fullname)
	return mg.send(toEmail, "Welcome to Earnly", body)
}

func (mg *Mailgun) SendResetPassword(toEmail, resetLink string) (string, error) {
	body := fmt.Sprintf(`<p>We received a request to reset your password.</p>
<p><a href="%s">Reset your password</a>. The link expires in one hour.</p>
<p>If you did not ask for this, ignore this email.</p>`, resetLink)
	return mg.send(toEmail, "Reset your password", body)
}

func (mg *Mailgun) SendWithdrawalStatus(toEmail, fullname, status, detail string) (string, error) {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your withdrawal request was <strong>%s</strong>.</p>
<p>%s</p>`, fullname, status, detail)
	return mg.send(toEmail, "Withdrawal "+status, body)
}
