package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tadeyemo32/strategai-backend/logger"
	"github.com/tadeyemo32/strategai-backend/models"
	"github.com/tadeyemo32/strategai-backend/services"
)

func (s *Server) listReportsHandler(c *gin.Context) {
	reports, err := s.reports.ListReports(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		logger.Log.Errorf("[Reports] list: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load reports"})
		return
	}
	c.JSON(http.StatusOK, models.ReportListResponse{Reports: reports})
}

func (s *Server) getReportHandler(c *gin.Context) {
	report, err := s.reports.GetReport(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		s.reportError(c, "get", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) deleteReportHandler(c *gin.Context) {
	id := c.Param("id")
	if err := s.reports.DeleteReport(c.Request.Context(), c.GetString("userID"), id); err != nil {
		s.reportError(c, "delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

func (s *Server) reportError(c *gin.Context, op string, err error) {
	if errors.Is(err, services.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Report not found"})
		return
	}
	logger.Log.Errorf("[Reports] %s: %v", op, err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to " + op + " report"})
}
