package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/growthlab/sitescope/internal/collectors"
	"github.com/growthlab/sitescope/internal/config"
	"github.com/growthlab/sitescope/internal/intake"
	"github.com/growthlab/sitescope/internal/models"
	"github.com/growthlab/sitescope/internal/notifications"
	"github.com/growthlab/sitescope/internal/report"
	"github.com/growthlab/sitescope/internal/storage"
	"github.com/growthlab/sitescope/internal/store"
	"github.com/sirupsen/logrus"
)

// MarkupCollector gathers the SEO and social signal sets from the target
// site's markup.
type MarkupCollector interface {
	Collect(ctx context.Context, targetURL string) (models.SeoSignals, models.SocialSignals)
}

// PerformanceCollector gathers the performance signal set.
type PerformanceCollector interface {
	Collect(ctx context.Context, targetURL string) models.PerformanceSignals
}

// NarrativeCollector produces the narrative signal set from the URL and the
// scores the other collectors computed.
type NarrativeCollector interface {
	Collect(ctx context.Context, targetURL string, scores collectors.ScoreSummary) models.NarrativeSignals
}

// Service orchestrates the analysis pipeline: intake validation, collector
// fan-out, report assembly, and dispatch. Each run is independent and
// stateless apart from the store.
type Service struct {
	config      *config.Config
	store       *store.Store
	assembler   *report.Assembler
	markup      MarkupCollector
	performance PerformanceCollector
	narrative   NarrativeCollector
	artifacts   storage.ArtifactStore // optional, nil when archival is disabled
	metrics     *Metrics
	mu          sync.RWMutex
}

// Metrics holds pipeline run metrics
type Metrics struct {
	TotalRuns       int       `json:"total_runs"`
	CompletedRuns   int       `json:"completed_runs"`
	FailedRuns      int       `json:"failed_runs"`
	LastRun         time.Time `json:"last_run"`
	LastRunDuration string    `json:"last_run_duration"`
}

// NewService creates a new analysis service
func NewService(cfg *config.Config, st *store.Store, artifacts storage.ArtifactStore) *Service {
	return &Service{
		config:      cfg,
		store:       st,
		assembler:   report.NewAssembler(cfg.ContactEmail),
		markup:      collectors.NewMarkupCollector(),
		performance: collectors.NewPerformanceCollector(cfg.PageSpeedAPIKey, cfg.PageSpeedBaseURL),
		narrative:   collectors.NewNarrativeCollector(cfg.CompletionAPIKey, cfg.CompletionBaseURL, cfg.CompletionModel),
		artifacts:   artifacts,
		metrics:     &Metrics{},
	}
}

// NewServiceWithCollectors creates a service with custom collectors, used by
// tests and the report rendering tool.
func NewServiceWithCollectors(cfg *config.Config, st *store.Store, artifacts storage.ArtifactStore,
	markup MarkupCollector, performance PerformanceCollector, narrative NarrativeCollector) *Service {
	service := NewService(cfg, st, artifacts)
	service.markup = markup
	service.performance = performance
	service.narrative = narrative
	return service
}

// Submit validates a lead form submission and creates the pending request
// record. Validation failures surface directly to the caller and create no
// state.
func (s *Service) Submit(website, name, email string) (*models.AnalysisRecord, error) {
	normalized, err := intake.Validate(website, name, email)
	if err != nil {
		return nil, err
	}

	record := &models.AnalysisRecord{
		RequestID: uuid.New().String(),
		Website:   normalized,
		Name:      name,
		Email:     email,
		Status:    models.StatusPending,
	}

	if err := s.store.CreateRequest(record); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	logrus.Infof("Created analysis request %s for %s", record.RequestID, record.Website)
	return record, nil
}

// Approve marks a pending request as approved and queues the matching email.
func (s *Service) Approve(requestID string) (*models.AnalysisRecord, error) {
	return s.transition(requestID, models.StatusApproved)
}

// Reject marks a pending request as rejected and queues the matching email.
// Rejected is terminal: no code path moves a rejected request to processing.
func (s *Service) Reject(requestID string) (*models.AnalysisRecord, error) {
	return s.transition(requestID, models.StatusRejected)
}

func (s *Service) transition(requestID string, to models.Status) (*models.AnalysisRecord, error) {
	record, err := s.store.UpdateStatus(requestID, to)
	if err != nil {
		return nil, err
	}

	s.enqueueStatusEmail(record, nil)
	return record, nil
}

// Run executes the full pipeline for an approved request. Collector
// failures degrade their signal set but never abort the run; the requester
// always receives a completed report once collection has started.
func (s *Service) Run(ctx context.Context, req models.AnalysisRequest) (*models.CompositeReport, error) {
	start := time.Now()
	logrus.Infof("Starting analysis run for request %s (%s)", req.RequestID, req.Website)

	record, err := s.store.UpdateStatus(req.RequestID, models.StatusProcessing)
	if err != nil {
		return nil, fmt.Errorf("failed to start analysis: %w", err)
	}
	s.enqueueStatusEmail(record, nil)

	targetURL, err := intake.Validate(req.Website, req.Name, req.Email)
	if err != nil {
		s.failRun(req.RequestID, start)
		return nil, err
	}

	data := s.collect(ctx, targetURL)

	composite := s.assembler.Assemble(req, targetURL, data, time.Now().UTC())
	s.archiveArtifact(composite)

	if err := s.store.SaveReport(req.RequestID, data, composite); err != nil {
		s.failRun(req.RequestID, start)
		return nil, fmt.Errorf("failed to persist report: %w", err)
	}

	record, err = s.store.UpdateStatus(req.RequestID, models.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to complete analysis: %w", err)
	}
	s.enqueueStatusEmail(record, composite)

	s.updateMetrics(time.Since(start), true)
	logrus.Infof("Analysis run for %s completed in %v (overall score %d)",
		req.RequestID, time.Since(start), composite.OverallScore)

	return composite, nil
}

// collect fans out the independent collectors concurrently and then runs the
// narrative collector, which needs the scores the others computed.
func (s *Service) collect(ctx context.Context, targetURL string) models.AnalysisData {
	var data models.AnalysisData
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		data.Performance = s.performance.Collect(ctx, targetURL)
	}()
	go func() {
		defer wg.Done()
		data.Seo, data.Social = s.markup.Collect(ctx, targetURL)
	}()
	wg.Wait()

	for _, degraded := range []struct {
		name string
		err  string
	}{
		{"performance", data.Performance.Error},
		{"markup", data.Seo.Error},
	} {
		if degraded.err != "" {
			logrus.Warnf("Collector %s degraded for %s: %s", degraded.name, targetURL, degraded.err)
		}
	}

	data.Narrative = s.narrative.Collect(ctx, targetURL, collectors.ScoreSummary{
		Performance: data.Performance.MobileScore,
		Seo:         data.Seo.SeoScore,
		Social:      data.Social.SocialScore,
	})

	return data
}

func (s *Service) archiveArtifact(composite *models.CompositeReport) {
	if s.artifacts == nil {
		return
	}

	name := fmt.Sprintf("reports/%s.md", composite.RequestID)
	url, err := s.artifacts.Store(name, []byte(composite.Markdown))
	if err != nil {
		// Archival is best-effort; the report still lives in the store.
		logrus.Errorf("Failed to archive report artifact for %s: %v", composite.RequestID, err)
		return
	}

	composite.ArtifactURL = url
}

// failRun moves a processing request to failed and queues the failure email.
func (s *Service) failRun(requestID string, start time.Time) {
	record, err := s.store.UpdateStatus(requestID, models.StatusFailed)
	if err != nil {
		logrus.Errorf("Failed to mark request %s as failed: %v", requestID, err)
		return
	}
	s.enqueueStatusEmail(record, nil)
	s.updateMetrics(time.Since(start), false)
}

// enqueueStatusEmail writes the notification for a state transition to the
// outbox. A dispatch failure is logged and never rolls back the transition.
func (s *Service) enqueueStatusEmail(record *models.AnalysisRecord, composite *models.CompositeReport) {
	email, err := notifications.ComposeStatusEmail(record, composite)
	if err != nil {
		logrus.Errorf("Failed to compose %s email for %s: %v", record.Status, record.RequestID, err)
		return
	}

	if err := s.store.EnqueueEmail(email); err != nil {
		logrus.Errorf("Failed to enqueue %s email for %s: %v", record.Status, record.RequestID, err)
		return
	}

	logrus.Debugf("Queued %s email for %s", record.Status, record.RequestID)
}

func (s *Service) updateMetrics(duration time.Duration, completed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.TotalRuns++
	if completed {
		s.metrics.CompletedRuns++
	} else {
		s.metrics.FailedRuns++
	}
	s.metrics.LastRun = time.Now()
	s.metrics.LastRunDuration = duration.String()
}

// GetMetrics returns current metrics as JSON
func (s *Service) GetMetrics() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
