package notifications

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/growthlab/sitescope/internal/config"
	"github.com/growthlab/sitescope/internal/models"
	"gopkg.in/gomail.v2"
)

// SMTPSender delivers outbox emails over SMTP.
type SMTPSender struct {
	config *config.Config
}

// Ensure SMTPSender implements Sender
var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates a new SMTP sender
func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{config: cfg}
}

// Send delivers one email with a plain-text body and an HTML alternative.
func (s *SMTPSender) Send(email *models.OutboxEmail) error {
	if s.config.SMTPHost == "" {
		return fmt.Errorf("SMTP is not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromAddress)
	m.SetHeader("To", email.Recipient)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.TextBody)
	if email.HTMLBody != "" {
		m.AddAlternative("text/html", email.HTMLBody)
	}

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

const statusEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; color: #333; }
        .header { background-color: #1a73e8; color: white; padding: 20px; border-radius: 5px; }
        .body { padding: 15px 0; }
        .score { font-size: 28px; font-weight: bold; }
        .report { background-color: #f5f5f5; padding: 15px; border-radius: 5px; white-space: pre-wrap; font-family: monospace; font-size: 0.9em; }
        .footer { color: #666; font-size: 0.85em; margin-top: 20px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Heading}}</h1>
    </div>
    <div class="body">
        <p>Hi {{.Name}},</p>
        <p>{{.Message}}</p>
        {{if .Report}}
        <p class="score">Overall score: {{.Report.OverallScore}} / 100</p>
        {{if .Report.Strengths}}
        <p><strong>Strengths:</strong></p>
        <ul>{{range .Report.Strengths}}<li>{{.}}</li>{{end}}</ul>
        {{end}}
        {{if .Report.Improvements}}
        <p><strong>Areas to improve:</strong></p>
        <ul>{{range .Report.Improvements}}<li>{{.}}</li>{{end}}</ul>
        {{end}}
        <div class="report">{{.Report.Markdown}}</div>
        {{end}}
    </div>
    <div class="footer">
        <p>GrowthLab · digital footprint analysis</p>
    </div>
</body>
</html>
`

type statusEmailData struct {
	Subject string
	Heading string
	Name    string
	Message string
	Report  *models.CompositeReport
}

// ComposeStatusEmail builds the outbox email matching a request's new
// status. The report is only attached for the completed state.
func ComposeStatusEmail(record *models.AnalysisRecord, report *models.CompositeReport) (*models.OutboxEmail, error) {
	data := statusEmailData{Name: record.Name}

	switch record.Status {
	case models.StatusApproved:
		data.Subject = "Your website analysis has been approved"
		data.Heading = "Analysis Approved"
		data.Message = fmt.Sprintf("Good news! Your analysis request for %s has been approved and is queued to run. We'll email you the report as soon as it's ready.", record.Website)
	case models.StatusRejected:
		data.Subject = "Your website analysis request"
		data.Heading = "Request Not Accepted"
		data.Message = fmt.Sprintf("Unfortunately we couldn't accept your analysis request for %s at this time. Feel free to reach out if you think this is a mistake.", record.Website)
	case models.StatusProcessing:
		data.Subject = "Your website analysis has started"
		data.Heading = "Analysis In Progress"
		data.Message = fmt.Sprintf("We're analyzing %s right now. The full digital footprint report usually takes a few minutes.", record.Website)
	case models.StatusCompleted:
		data.Subject = fmt.Sprintf("Your digital footprint report for %s", record.Website)
		data.Heading = "Your Report Is Ready"
		data.Message = "Here is the digital footprint analysis you requested."
		data.Report = report
	case models.StatusFailed:
		data.Subject = "Your website analysis could not be completed"
		data.Heading = "Analysis Failed"
		data.Message = fmt.Sprintf("Something went wrong while analyzing %s. Our team has been notified; we'll retry and get back to you.", record.Website)
	default:
		return nil, fmt.Errorf("no email template for status %q", record.Status)
	}

	htmlBody, err := renderStatusHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to render status email: %w", err)
	}

	return &models.OutboxEmail{
		RequestID: record.RequestID,
		Recipient: record.Email,
		Subject:   data.Subject,
		HTMLBody:  htmlBody,
		TextBody:  buildStatusText(data),
		Status:    models.OutboxPending,
	}, nil
}

func renderStatusHTML(data statusEmailData) (string, error) {
	t, err := template.New("status").Parse(statusEmailTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func buildStatusText(data statusEmailData) string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Hi %s,\n\n%s\n", data.Name, data.Message)
	if data.Report != nil {
		fmt.Fprintf(&buf, "\n%s\n", data.Report.Markdown)
	}
	fmt.Fprintf(&buf, "\n--\nGrowthLab\n")

	return buf.String()
}
