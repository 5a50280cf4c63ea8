package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/growthlab/sitescope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	require.NoError(t, err)
	return st
}

func newTestRecord(requestID string) *models.AnalysisRecord {
	return &models.AnalysisRecord{
		RequestID: requestID,
		Website:   "https://example.com",
		Name:      "Jordan Smith",
		Email:     "jordan@example.com",
	}
}

func TestStore_CreateAndGetRequest(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.CreateRequest(newTestRecord("req-1")))

	record, err := st.GetRequest("req-1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", record.Website)
	assert.Equal(t, models.StatusPending, record.Status)
	assert.Nil(t, record.CompletedAt)

	_, err = st.GetRequest("missing")
	assert.Error(t, err)
}

func TestStore_ListRequests(t *testing.T) {
	st := newTestStore(t)

	require.NoError(t, st.CreateRequest(newTestRecord("req-1")))
	require.NoError(t, st.CreateRequest(newTestRecord("req-2")))
	_, err := st.UpdateStatus("req-2", models.StatusRejected)
	require.NoError(t, err)

	all, err := st.ListRequests("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := st.ListRequests(models.StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "req-1", pending[0].RequestID)
}

func TestStore_UpdateStatus(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateRequest(newTestRecord("req-1")))

	record, err := st.UpdateStatus("req-1", models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, record.Status)

	record, err = st.UpdateStatus("req-1", models.StatusProcessing)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProcessing, record.Status)

	record, err = st.UpdateStatus("req-1", models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, record.Status)

	stored, err := st.GetRequest("req-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
	assert.WithinDuration(t, time.Now().UTC(), *stored.CompletedAt, time.Minute)
}

func TestStore_UpdateStatusRejectsIllegalTransitions(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateRequest(newTestRecord("req-1")))

	// Pending requests cannot jump straight to processing.
	_, err := st.UpdateStatus("req-1", models.StatusProcessing)
	var terr *models.ErrInvalidTransition
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, models.StatusPending, terr.From)
	assert.Equal(t, models.StatusProcessing, terr.To)

	_, err = st.UpdateStatus("req-1", models.StatusRejected)
	require.NoError(t, err)

	// Rejected is terminal.
	_, err = st.UpdateStatus("req-1", models.StatusApproved)
	assert.ErrorAs(t, err, &terr)
	_, err = st.UpdateStatus("req-1", models.StatusProcessing)
	assert.ErrorAs(t, err, &terr)

	stored, err := st.GetRequest("req-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, stored.Status)
}

func TestStore_SaveReport(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateRequest(newTestRecord("req-1")))

	data := models.AnalysisData{
		Seo: models.SeoSignals{Title: "Example", SeoScore: 80},
	}
	report := &models.CompositeReport{
		RequestID:    "req-1",
		TargetURL:    "https://example.com",
		OverallScore: 61,
		Markdown:     "# Digital Footprint Report",
	}

	require.NoError(t, st.SaveReport("req-1", data, report))

	stored, err := st.GetRequest("req-1")
	require.NoError(t, err)

	var gotData models.AnalysisData
	require.NoError(t, json.Unmarshal([]byte(stored.AnalysisData), &gotData))
	assert.Equal(t, "Example", gotData.Seo.Title)

	var gotReport models.CompositeReport
	require.NoError(t, json.Unmarshal([]byte(stored.ReportData), &gotReport))
	assert.Equal(t, 61, gotReport.OverallScore)
	assert.Equal(t, "# Digital Footprint Report", gotReport.Markdown)
}

func TestStore_OutboxLifecycle(t *testing.T) {
	st := newTestStore(t)

	email := &models.OutboxEmail{
		RequestID: "req-1",
		Recipient: "jordan@example.com",
		Subject:   "Your analysis is underway",
		TextBody:  "We are on it.",
	}
	require.NoError(t, st.EnqueueEmail(email))
	require.NotZero(t, email.ID)

	pending, err := st.PendingEmails(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.OutboxPending, pending[0].Status)

	require.NoError(t, st.MarkEmailSent(email.ID, 1))

	pending, err = st.PendingEmails(10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestStore_MarkEmailFailedKeepsPendingUntilCap(t *testing.T) {
	st := newTestStore(t)

	email := &models.OutboxEmail{RequestID: "req-1", Recipient: "jordan@example.com", Subject: "s"}
	require.NoError(t, st.EnqueueEmail(email))

	require.NoError(t, st.MarkEmailFailed(email.ID, 1, 3, "connection refused"))

	pending, err := st.PendingEmails(10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].Attempts)
	assert.Equal(t, "connection refused", pending[0].LastError)

	require.NoError(t, st.MarkEmailFailed(email.ID, 3, 3, "connection refused"))

	pending, err = st.PendingEmails(10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	var failed models.OutboxEmail
	require.NoError(t, st.DB().First(&failed, email.ID).Error)
	assert.Equal(t, models.OutboxFailed, failed.Status)
	assert.Equal(t, 3, failed.Attempts)
}

func TestStore_PendingEmailsRespectsLimitAndOrder(t *testing.T) {
	st := newTestStore(t)

	for _, id := range []string{"req-1", "req-2", "req-3"} {
		email := &models.OutboxEmail{RequestID: id, Recipient: "x@example.com", Subject: "s"}
		require.NoError(t, st.EnqueueEmail(email))
	}

	pending, err := st.PendingEmails(2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "req-1", pending[0].RequestID)
	assert.Equal(t, "req-2", pending[1].RequestID)
}
