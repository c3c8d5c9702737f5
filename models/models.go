package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ========================
// REPORT SECTIONS
// ========================

// WebsiteData is the company profile section of a report.
type WebsiteData struct {
	Domain       FlexString   `json:"domain"`
	Description  FlexString   `json:"description"`
	FoundedYear  FlexString   `json:"foundedYear"`
	Industry     FlexString   `json:"industry"`
	Headquarters FlexString   `json:"headquarters"`
	KeyPeople    []FlexString `json:"keyPeople"`
}

// NewsArticle is one item of the news section.
type NewsArticle struct {
	Title   FlexString `json:"title"`
	Source  FlexString `json:"source"`
	Date    FlexString `json:"date"`
	Summary FlexString `json:"summary"`
}

type NewsData struct {
	Articles []NewsArticle `json:"articles"`
}

type FinancialData struct {
	Revenue     FlexString `json:"revenue"`
	Employees   FlexString `json:"employees"`
	MarketCap   FlexString `json:"marketCap"`
	StockSymbol FlexString `json:"stockSymbol"`
}

type Competitor struct {
	Name        FlexString `json:"name"`
	Description FlexString `json:"description"`
}

type SourceLink struct {
	Title FlexString `json:"title"`
	URL   FlexString `json:"url"`
}

// ReportContent is everything the model contributes to a report. The
// normalizer always returns it with every section filled.
type ReportContent struct {
	WebsiteData   WebsiteData   `json:"websiteData"`
	NewsData      NewsData      `json:"newsData"`
	FinancialData FinancialData `json:"financialData"`
	Competitors   []Competitor  `json:"competitors"`
	SourceLinks   []SourceLink  `json:"sourceLinks"`
	Summary       string        `json:"summary"`
}

// ========================
// DATABASE MODELS
// ========================

// Report is one persisted research result, owned by a single user.
type Report struct {
	ID            string                            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string                            `json:"userId" gorm:"index;not null"`
	CompanyName   string                            `json:"companyName" gorm:"not null"`
	WebsiteData   datatypes.JSONType[WebsiteData]   `json:"websiteData"`
	NewsData      datatypes.JSONType[NewsData]      `json:"newsData"`
	FinancialData datatypes.JSONType[FinancialData] `json:"financialData"`
	Competitors   datatypes.JSONSlice[Competitor]   `json:"competitors"`
	SourceLinks   datatypes.JSONSlice[SourceLink]   `json:"sourceLinks"`
	Summary       string                            `json:"summary" gorm:"type:text"`
	AIVersion     string                            `json:"aiVersion,omitempty"`
	CreatedAt     time.Time                         `json:"createdAt" gorm:"autoCreateTime;index"`
}

func (Report) TableName() string {
	return "reports"
}

// BeforeCreate assigns the id the way the hosted table's uuid default would.
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// NewReport builds an unsaved row from normalized content.
func NewReport(userID, companyName, aiVersion string, content ReportContent) *Report {
	competitors := content.Competitors
	if competitors == nil {
		competitors = []Competitor{}
	}
	links := content.SourceLinks
	if links == nil {
		links = []SourceLink{}
	}
	return &Report{
		UserID:        userID,
		CompanyName:   companyName,
		WebsiteData:   datatypes.NewJSONType(content.WebsiteData),
		NewsData:      datatypes.NewJSONType(content.NewsData),
		FinancialData: datatypes.NewJSONType(content.FinancialData),
		Competitors:   datatypes.JSONSlice[Competitor](competitors),
		SourceLinks:   datatypes.JSONSlice[SourceLink](links),
		Summary:       content.Summary,
		AIVersion:     aiVersion,
	}
}

// Content unpacks the JSON columns back into plain sections.
func (r *Report) Content() ReportContent {
	return ReportContent{
		WebsiteData:   r.WebsiteData.Data(),
		NewsData:      r.NewsData.Data(),
		FinancialData: r.FinancialData.Data(),
		Competitors:   []Competitor(r.Competitors),
		SourceLinks:   []SourceLink(r.SourceLinks),
		Summary:       r.Summary,
	}
}

// ========================
// API REQUEST PAYLOADS
// ========================

type ResearchRequest struct {
	CompanyName string `json:"companyName"`
}

type ResearchResponse struct {
	Success bool    `json:"success"`
	Report  *Report `json:"report"`
}

type ReportListResponse struct {
	Reports []Report `json:"reports"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
