package services

import (
	"context"
	"errors"

	"github.com/tadeyemo32/strategai-backend/models"
	"gorm.io/gorm"
)

// ErrReportNotFound covers both missing ids and reports owned by someone else.
var ErrReportNotFound = errors.New("report not found")

// ReportStore is the reports table. Every read and delete is scoped to the
// owning user.
type ReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

// CreateReport inserts one row and fills in its generated id and created_at.
func (s *ReportStore) CreateReport(ctx context.Context, report *models.Report) error {
	return s.db.WithContext(ctx).Create(report).Error
}

// ListReports returns the user's reports, newest first.
func (s *ReportStore) ListReports(ctx context.Context, userID string) ([]models.Report, error) {
	reports := []models.Report{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reports).Error
	return reports, err
}

func (s *ReportStore) GetReport(ctx context.Context, userID, id string) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ReportStore) DeleteReport(ctx context.Context, userID, id string) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Report{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrReportNotFound
	}
	return nil
}
