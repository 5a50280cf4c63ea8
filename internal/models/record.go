package models

import "time"

// AnalysisRecord is the persisted request/report row. The collector output
// and the assembled report are stored as nested JSON blobs so the row shape
// does not change when the signal sets evolve.
type AnalysisRecord struct {
	RequestID    string     `gorm:"primaryKey;size:36" json:"request_id"`
	Website      string     `gorm:"size:500;not null" json:"website"`
	Name         string     `gorm:"size:200;not null" json:"name"`
	Email        string     `gorm:"size:320;not null" json:"email"`
	Status       Status     `gorm:"size:20;default:pending;index" json:"status"`
	AnalysisData string     `gorm:"type:text" json:"analysis_data,omitempty"`
	ReportData   string     `gorm:"type:text" json:"report_data,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func (AnalysisRecord) TableName() string {
	return "analysis_records"
}

// Outbox email delivery states.
const (
	OutboxPending = "pending"
	OutboxSent    = "sent"
	OutboxFailed  = "failed"
)

// OutboxEmail is a durable notification record. State transitions write the
// intended email here; a separate worker delivers pending rows with retries,
// so a crash between the status write and the send never drops a
// notification silently.
type OutboxEmail struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	RequestID string     `gorm:"size:36;index" json:"request_id"`
	Recipient string     `gorm:"size:320;not null" json:"recipient"`
	Subject   string     `gorm:"size:500;not null" json:"subject"`
	HTMLBody  string     `gorm:"type:text" json:"html_body"`
	TextBody  string     `gorm:"type:text" json:"text_body"`
	Status    string     `gorm:"size:20;default:pending;index" json:"status"`
	Attempts  int        `json:"attempts"`
	LastError string     `gorm:"type:text" json:"last_error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

func (OutboxEmail) TableName() string {
	return "outbox_emails"
}
