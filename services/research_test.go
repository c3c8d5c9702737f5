package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tadeyemo32/strategai-backend/models"
)

type stubCompleter struct {
	text  string
	err   error
	calls int
	user  string
}

func (s *stubCompleter) Complete(_ context.Context, _, userPrompt string) (string, error) {
	s.calls++
	s.user = userPrompt
	return s.text, s.err
}

func (s *stubCompleter) Model() string { return "stub-model" }

type recordingWriter struct {
	saved []*models.Report
	err   error
}

func (w *recordingWriter) CreateReport(_ context.Context, r *models.Report) error {
	if w.err != nil {
		return w.err
	}
	r.ID = "generated-id"
	w.saved = append(w.saved, r)
	return nil
}

type stubDescriber struct {
	desc    string
	domains []string
}

func (d *stubDescriber) Describe(_ context.Context, domain string) (string, bool) {
	d.domains = append(d.domains, domain)
	return d.desc, d.desc != ""
}

func TestGenerate_EmptyModelTextStillPersists(t *testing.T) {
	model := &stubCompleter{text: ""}
	store := &recordingWriter{}
	svc := NewResearchService(model, store, WithClock(func() time.Time { return fixedNow }))

	report, err := svc.Generate(context.Background(), "user-1", "  Acme ")
	require.NoError(t, err)
	require.Len(t, store.saved, 1)

	assert.Equal(t, "Acme", report.CompanyName)
	assert.Equal(t, "user-1", report.UserID)
	assert.Equal(t, "stub-model", report.AIVersion)
	assert.Equal(t, NormalizeReport(nil, "Acme", fixedNow), report.Content())
	assert.Contains(t, model.user, `"Acme"`)
}

func TestGenerate_GarbageModelTextUsesDefaults(t *testing.T) {
	store := &recordingWriter{}
	svc := NewResearchService(&stubCompleter{text: "I could not find anything."}, store, WithClock(func() time.Time { return fixedNow }))

	report, err := svc.Generate(context.Background(), "user-1", "Acme")
	require.NoError(t, err)
	assert.Equal(t, NormalizeReport(nil, "Acme", fixedNow), report.Content())
	assert.Len(t, store.saved, 1)
}

func TestGenerate_BlankNameRejectedBeforeModel(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		model := &stubCompleter{}
		store := &recordingWriter{}
		svc := NewResearchService(model, store)

		_, err := svc.Generate(context.Background(), "user-1", name)
		assert.ErrorIs(t, err, ErrMissingCompanyName)
		assert.Zero(t, model.calls)
		assert.Empty(t, store.saved)
	}
}

func TestGenerate_UpstreamErrorSkipsInsert(t *testing.T) {
	store := &recordingWriter{}
	svc := NewResearchService(&stubCompleter{err: &UpstreamError{StatusCode: 503, Body: "down"}}, store)

	_, err := svc.Generate(context.Background(), "user-1", "Acme")

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, 503, upstream.StatusCode)
	assert.Empty(t, store.saved)
}

func TestGenerate_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("insert failed")
	svc := NewResearchService(&stubCompleter{text: "{}"}, &recordingWriter{err: boom})

	_, err := svc.Generate(context.Background(), "user-1", "Acme")
	assert.ErrorIs(t, err, boom)
}

func TestGenerate_NoUserRejected(t *testing.T) {
	model := &stubCompleter{}
	svc := NewResearchService(model, &recordingWriter{})

	_, err := svc.Generate(context.Background(), "", "Acme")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Zero(t, model.calls)
}

func TestGenerate_EnricherFillsPlaceholderDescription(t *testing.T) {
	describer := &stubDescriber{desc: "We make anvils."}
	svc := NewResearchService(&stubCompleter{text: ""}, &recordingWriter{}, WithEnricher(describer))

	report, err := svc.Generate(context.Background(), "user-1", "Acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"acme.com"}, describer.domains)
	assert.Equal(t, models.FlexString("We make anvils."), report.WebsiteData.Data().Description)
}

func TestGenerate_EnricherSkippedWhenModelDescribed(t *testing.T) {
	describer := &stubDescriber{desc: "ignored"}
	text := `{"websiteData": {"domain": "acme.io", "description": "Rocket skates"}}`
	svc := NewResearchService(&stubCompleter{text: text}, &recordingWriter{}, WithEnricher(describer))

	report, err := svc.Generate(context.Background(), "user-1", "Acme")
	require.NoError(t, err)
	assert.Empty(t, describer.domains)
	assert.Equal(t, models.FlexString("Rocket skates"), report.WebsiteData.Data().Description)
}

func TestGenerate_NotIdempotent(t *testing.T) {
	store := setupReportStore(t)
	svc := NewResearchService(&stubCompleter{text: "{}"}, store)

	a, err := svc.Generate(context.Background(), "user-1", "Acme")
	require.NoError(t, err)
	b, err := svc.Generate(context.Background(), "user-1", "Acme")
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	list, err := store.ListReports(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
