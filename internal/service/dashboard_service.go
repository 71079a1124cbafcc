package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/library-portal-api/internal/models"
	appErrors "github.com/noah-isme/library-portal-api/pkg/errors"
)

type recordLister interface {
	List(ctx context.Context) ([]models.StudentRecord, error)
}

// DashboardService aggregates console statistics from the full record set.
type DashboardService struct {
	records recordLister
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(records recordLister, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{records: records, logger: logger, now: time.Now}
}

// Stats computes the totals in a single pass over the record set. The
// new-registrations window is the half-open last 30 days, ending now.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	now := s.now()
	cutoff := now.AddDate(0, 0, -30)

	stats := &models.DashboardStats{
		TotalStudents:      len(records),
		CourseDistribution: models.NewCourseDistribution(),
	}
	for i := range records {
		record := &records[i]
		if record.RegistrationDate.After(cutoff) && !record.RegistrationDate.After(now) {
			stats.NewRegistrations++
		}
		course := record.Course
		if course == "" {
			course = "Unknown"
		}
		stats.CourseDistribution.Add(course)
	}

	return stats, nil
}
