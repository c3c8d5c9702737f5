package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tadeyemo32/strategai-backend/logger"
	"github.com/tadeyemo32/strategai-backend/models"
	"github.com/tadeyemo32/strategai-backend/services"
)

// researchHandler answers every failure with 500 and {"error": msg}; the
// frontend only distinguishes success from failure.
func (s *Server) researchHandler(c *gin.Context) {
	var req models.ResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.researchError(c, services.ErrMissingCompanyName)
		return
	}
	name, err := services.CleanCompanyName(req.CompanyName)
	if err != nil {
		s.researchError(c, err)
		return
	}

	userID, err := authenticate(c, s.sessions)
	if err != nil {
		s.researchError(c, err)
		return
	}

	report, err := s.research.Generate(c.Request.Context(), userID, name)
	if err != nil {
		s.researchError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ResearchResponse{Success: true, Report: report})
}

func (s *Server) researchError(c *gin.Context, err error) {
	logger.Log.Errorf("[Research] %v", err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
}

func (s *Server) researchHealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "research",
		"model":   s.research.ModelName(),
	})
}
