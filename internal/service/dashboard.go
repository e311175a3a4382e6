package service

import (
	"context"
	"errors"

	apperrors "github.com/dashmed/dashmed/internal/errors"
	"github.com/dashmed/dashmed/internal/model"
	"github.com/dashmed/dashmed/internal/repository"
	"gorm.io/gorm"
)

// PatientStore is the slice of the patient repository the dashboard needs.
type PatientStore interface {
	ListForDoctor(ctx context.Context, doctorID uint) ([]model.Patient, error)
	FindByID(ctx context.Context, id uint) (*model.Patient, error)
	IsFollowedBy(ctx context.Context, doctorID, patientID uint) (bool, error)
	Measures(ctx context.Context, patientID uint) ([]model.Measure, error)
	LatestValue(ctx context.Context, measureID uint) (*repository.MeasurePoint, error)
	Series(ctx context.Context, measureID uint, limit int) ([]repository.MeasurePoint, error)
}

// MeasureSummary pairs a measure with its most recent reading for the
// dashboard tiles.
type MeasureSummary struct {
	Measure model.Measure
	Latest  *repository.MeasurePoint
}

// PatientDashboard is everything the dashboard page renders for one
// patient.
type PatientDashboard struct {
	Patient  model.Patient
	Measures []MeasureSummary
}

type DashboardService struct {
	patients PatientStore
}

func NewDashboardService(patients PatientStore) *DashboardService {
	return &DashboardService{patients: patients}
}

func (s *DashboardService) PatientList(ctx context.Context, doctorID uint) ([]model.Patient, error) {
	patients, err := s.patients.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return patients, nil
}

// Dashboard assembles the measurement overview for a patient the doctor
// follows. Asking for an unfollowed patient looks the same as asking for a
// nonexistent one.
func (s *DashboardService) Dashboard(ctx context.Context, doctorID, patientID uint) (*PatientDashboard, error) {
	followed, err := s.patients.IsFollowedBy(ctx, doctorID, patientID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !followed {
		return nil, apperrors.ErrUnauthorized
	}

	patient, err := s.patients.FindByID(ctx, patientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	measures, err := s.patients.Measures(ctx, patientID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}

	dashboard := &PatientDashboard{Patient: *patient}
	for _, m := range measures {
		latest, err := s.patients.LatestValue(ctx, m.ID)
		if err != nil {
			return nil, apperrors.WrapError(apperrors.ErrInternal, err)
		}
		dashboard.Measures = append(dashboard.Measures, MeasureSummary{Measure: m, Latest: latest})
	}
	return dashboard, nil
}

// ChartData returns the chronological series of one measure, scoped to
// patients the doctor follows.
func (s *DashboardService) ChartData(ctx context.Context, doctorID, patientID, measureID uint, limit int) ([]repository.MeasurePoint, error) {
	followed, err := s.patients.IsFollowedBy(ctx, doctorID, patientID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if !followed {
		return nil, apperrors.ErrUnauthorized
	}

	measures, err := s.patients.Measures(ctx, patientID)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	owned := false
	for _, m := range measures {
		if m.ID == measureID {
			owned = true
			break
		}
	}
	if !owned {
		return nil, apperrors.ErrUnauthorized
	}

	if limit <= 0 || limit > 500 {
		limit = 100
	}
	points, err := s.patients.Series(ctx, measureID, limit)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	return points, nil
}
