package notify

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"leadboard/internal/models"
	"leadboard/internal/pipeline"
)

// EmailNotifier mails pipeline events to the sales inbox. Only the
// events worth an email are sent: a lead marked Lost or Completed, and
// every scheduled follow-up.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewEmailNotifier(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail, salesInbox string) *EmailNotifier {
	return &EmailNotifier{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
		to:     salesInbox,
	}
}

func (n *EmailNotifier) LeadStatusChanged(lead *models.Lead, from, to pipeline.Status) {
	if to != pipeline.StatusLost && to != pipeline.StatusCompleted {
		return
	}
	subject := fmt.Sprintf("Lead %s: %s", leadTitle(lead), to)
	body := fmt.Sprintf(`
		<h3>Lead %s moved to %s</h3>
		<p>Previous status: %s</p>
		<p>Total amount: %s</p>
	`, leadTitle(lead), to, from, lead.TotalAmount.StringFixed(2))
	n.send(subject, body)
}

func (n *EmailNotifier) FollowUpScheduled(lead *models.Lead, fu models.FollowUp) {
	subject := fmt.Sprintf("Follow-up scheduled: %s", leadTitle(lead))
	body := fmt.Sprintf(`
		<h3>Follow-up for %s</h3>
		<p>When: %s</p>
		<p>%s</p>
	`, leadTitle(lead), fu.Date.Format("02.01.2006 15:04"), fu.Description)
	n.send(subject, body)
}

func (n *EmailNotifier) send(subject, body string) {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	if err := n.dialer.DialAndSend(m); err != nil {
		log.Printf("email notify %q: %v", subject, err)
	}
}
