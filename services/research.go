package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tadeyemo32/strategai-backend/logger"
	"github.com/tadeyemo32/strategai-backend/models"
)

var ErrMissingCompanyName = errors.New("Missing companyName")

// Completer is the model call the pipeline needs.
type Completer interface {
	Complete(ctx context.Context, sysPrompt, userPrompt string) (string, error)
	Model() string
}

// ReportWriter persists a finished report.
type ReportWriter interface {
	CreateReport(ctx context.Context, report *models.Report) error
}

// SiteDescriber looks up a description for a company domain.
type SiteDescriber interface {
	Describe(ctx context.Context, domain string) (string, bool)
}

// ResearchService runs the report pipeline:
// prompt → model → extract → parse → normalize → enrich → insert.
type ResearchService struct {
	model    Completer
	store    ReportWriter
	enricher SiteDescriber
	now      func() time.Time
}

type ResearchOption func(*ResearchService)

// WithEnricher fills placeholder website descriptions from the homepage.
func WithEnricher(e SiteDescriber) ResearchOption {
	return func(s *ResearchService) { s.enricher = e }
}

// WithClock replaces time.Now for placeholder dates.
func WithClock(now func() time.Time) ResearchOption {
	return func(s *ResearchService) { s.now = now }
}

func NewResearchService(model Completer, store ReportWriter, opts ...ResearchOption) *ResearchService {
	s := &ResearchService{model: model, store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ModelName is the model identifier recorded on every report.
func (s *ResearchService) ModelName() string {
	return s.model.Model()
}

// CleanCompanyName trims the input and rejects blanks.
func CleanCompanyName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrMissingCompanyName
	}
	return name, nil
}

// Generate produces and stores one report for userID. Every call inserts a
// new row, even for a company the user has researched before.
func (s *ResearchService) Generate(ctx context.Context, userID, companyName string) (*models.Report, error) {
	name, err := CleanCompanyName(companyName)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	log := logger.Log.WithFields(logrus.Fields{"company": name, "user": userID})
	log.Info("[Research] Generating report")

	text, err := s.model.Complete(ctx, ResearchSystemPrompt, BuildResearchPrompt(name))
	if err != nil {
		return nil, err
	}

	sections, err := ParseModelSections(text)
	if err != nil {
		log.Warnf("[Research] AI JSON parse error, using defaults: %v", err)
		sections = nil
	}
	content := NormalizeReport(sections, name, s.now())

	if s.enricher != nil && needsDescription(content.WebsiteData, name) {
		if desc, ok := s.enricher.Describe(ctx, string(content.WebsiteData.Domain)); ok {
			content.WebsiteData.Description = models.FlexString(desc)
		}
	}

	report := models.NewReport(userID, name, s.model.Model(), content)
	if err := s.store.CreateReport(ctx, report); err != nil {
		return nil, err
	}
	log.WithField("report", report.ID).Info("[Research] Report created")
	return report, nil
}

func needsDescription(w models.WebsiteData, companyName string) bool {
	d := strings.TrimSpace(string(w.Description))
	return d == "" || strings.EqualFold(d, Unknown) || d == defaultDescription(companyName)
}
