package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tadeyemo32/strategai-backend/models"
)

const (
	// Unknown is what the prompt asks the model to write for missing facts.
	Unknown = "Unknown"

	FallbackSummary    = "Summary not available."
	FallbackNewsSource = "Global Business Times"

	isoMillis = "2006-01-02T15:04:05.000Z07:00"
)

// ParseModelSections splits model text into its top-level JSON members.
// Empty text is an empty object. Any error means "no structured data".
func ParseModelSections(text string) (map[string]json.RawMessage, error) {
	text = stripCodeFence(strings.TrimSpace(text))
	if text == "" {
		text = "{}"
	}
	var sections map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &sections); err != nil {
		return nil, fmt.Errorf("model output is not a JSON object: %w", err)
	}
	return sections, nil
}

// stripCodeFence unwraps ```json ... ``` when the model ignored the
// no-markdown instruction.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// NormalizeReport fills every section of a report. Sections the model
// supplied (present, non-null and decodable) are kept; the rest get
// placeholders derived from companyName and now. sections may be nil.
func NormalizeReport(sections map[string]json.RawMessage, companyName string, now time.Time) models.ReportContent {
	var out models.ReportContent

	if !decodeSection(sections, "websiteData", &out.WebsiteData) {
		out.WebsiteData = DefaultWebsiteData(companyName)
	}
	if out.WebsiteData.KeyPeople == nil {
		out.WebsiteData.KeyPeople = []models.FlexString{}
	}

	if !decodeSection(sections, "newsData", &out.NewsData) {
		out.NewsData = DefaultNewsData(companyName, now)
	}
	if out.NewsData.Articles == nil {
		out.NewsData.Articles = []models.NewsArticle{}
	}

	if !decodeSection(sections, "financialData", &out.FinancialData) {
		out.FinancialData = DefaultFinancialData()
	}

	if !decodeSection(sections, "competitors", &out.Competitors) || out.Competitors == nil {
		out.Competitors = []models.Competitor{}
	}
	if !decodeSection(sections, "sourceLinks", &out.SourceLinks) || out.SourceLinks == nil {
		out.SourceLinks = []models.SourceLink{}
	}

	var summary models.FlexString
	if decodeSection(sections, "summary", &summary) {
		out.Summary = string(summary)
	} else {
		out.Summary = FallbackSummary
	}

	return out
}

func decodeSection(sections map[string]json.RawMessage, key string, dst any) bool {
	raw, ok := sections[key]
	if !ok {
		return false
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// GuessDomain is the placeholder domain: lower-cased name, all whitespace
// removed, ".com" appended.
func GuessDomain(companyName string) string {
	return strings.ToLower(strings.Join(strings.Fields(companyName), "")) + ".com"
}

func defaultDescription(companyName string) string {
	return "Official website for " + companyName + "."
}

func DefaultWebsiteData(companyName string) models.WebsiteData {
	return models.WebsiteData{
		Domain:       models.FlexString(GuessDomain(companyName)),
		Description:  models.FlexString(defaultDescription(companyName)),
		FoundedYear:  Unknown,
		Industry:     Unknown,
		Headquarters: Unknown,
		KeyPeople:    []models.FlexString{},
	}
}

func DefaultNewsData(companyName string, now time.Time) models.NewsData {
	return models.NewsData{
		Articles: []models.NewsArticle{{
			Title:   models.FlexString(companyName + " appears in market trends."),
			Source:  FallbackNewsSource,
			Date:    models.FlexString(now.UTC().Format(isoMillis)),
			Summary: models.FlexString("Insights and trends related to " + companyName + "."),
		}},
	}
}

func DefaultFinancialData() models.FinancialData {
	return models.FinancialData{
		Revenue:     Unknown,
		Employees:   Unknown,
		MarketCap:   Unknown,
		StockSymbol: Unknown,
	}
}
