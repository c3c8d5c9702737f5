package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tadeyemo32/strategai-backend/models"
	"github.com/tadeyemo32/strategai-backend/services"
)

// ResearchPaths are the endpoints that generate reports. The second keeps
// the frontend's function-invoke URL working.
var ResearchPaths = []string{"/api/research", "/functions/v1/super-responder"}

// ReportRepository is what the list view needs from storage.
type ReportRepository interface {
	ListReports(ctx context.Context, userID string) ([]models.Report, error)
	GetReport(ctx context.Context, userID, id string) (*models.Report, error)
	DeleteReport(ctx context.Context, userID, id string) error
}

// Server carries the handlers' dependencies. It is built once and never
// mutated.
type Server struct {
	research       *services.ResearchService
	reports        ReportRepository
	sessions       services.SessionResolver
	allowedOrigins []string
}

func NewServer(research *services.ResearchService, reports ReportRepository, sessions services.SessionResolver, allowedOrigins []string) *Server {
	return &Server{
		research:       research,
		reports:        reports,
		sessions:       sessions,
		allowedOrigins: append([]string(nil), allowedOrigins...),
	}
}

func SetupRoutes(r *gin.Engine, s *Server) {
	r.Use(CORSMiddleware(s.allowedOrigins))

	r.GET("/api/health", healthCheck)
	for _, path := range ResearchPaths {
		r.POST(path, s.researchHandler)
		r.GET(path, s.researchHealthHandler)
	}

	reports := r.Group("/api/reports", AuthMiddleware(s.sessions, http.StatusUnauthorized))
	{
		reports.GET("", s.listReportsHandler)
		reports.GET("/:id", s.getReportHandler)
		reports.DELETE("/:id", s.deleteReportHandler)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
