package repository

import (
	"context"
	"time"

	"github.com/dashmed/dashmed/internal/model"
	"gorm.io/gorm"
)

type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

// ListForDoctor returns the patients followed by a doctor, ordered by last
// name then first name.
func (r *PatientRepository) ListForDoctor(ctx context.Context, doctorID uint) ([]model.Patient, error) {
	var patients []model.Patient
	result := r.db.WithContext(ctx).
		Joins("JOIN follows ON follows.patient_id = patients.id").
		Where("follows.doctor_id = ?", doctorID).
		Order("patients.last_name, patients.first_name").
		Find(&patients)
	if result.Error != nil {
		return nil, result.Error
	}
	return patients, nil
}

func (r *PatientRepository) FindByID(ctx context.Context, id uint) (*model.Patient, error) {
	var patient model.Patient
	result := r.db.WithContext(ctx).First(&patient, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &patient, nil
}

// IsFollowedBy reports whether the doctor follows the patient. Dashboard
// access is scoped to followed patients only.
func (r *PatientRepository) IsFollowedBy(ctx context.Context, doctorID, patientID uint) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

func (r *PatientRepository) Measures(ctx context.Context, patientID uint) ([]model.Measure, error) {
	var measures []model.Measure
	result := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("measure_type").
		Find(&measures)
	if result.Error != nil {
		return nil, result.Error
	}
	return measures, nil
}

// MeasurePoint is a single dated value of one measure series.
type MeasurePoint struct {
	Value      float64   `json:"value"`
	MeasuredAt time.Time `json:"measured_at"`
}

// LatestValue returns the most recent point for a measure, or nil when the
// series is empty.
func (r *PatientRepository) LatestValue(ctx context.Context, measureID uint) (*MeasurePoint, error) {
	var value model.MeasureValue
	result := r.db.WithContext(ctx).
		Where("measure_id = ?", measureID).
		Order("measured_at DESC").
		First(&value)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &MeasurePoint{Value: value.Value, MeasuredAt: value.MeasuredAt}, nil
}

// Series returns up to limit points of a measure in chronological order,
// keeping the most recent ones when the series is longer than limit.
func (r *PatientRepository) Series(ctx context.Context, measureID uint, limit int) ([]MeasurePoint, error) {
	var values []model.MeasureValue
	result := r.db.WithContext(ctx).
		Where("measure_id = ?", measureID).
		Order("measured_at DESC").
		Limit(limit).
		Find(&values)
	if result.Error != nil {
		return nil, result.Error
	}

	points := make([]MeasurePoint, len(values))
	for i, v := range values {
		points[len(values)-1-i] = MeasurePoint{Value: v.Value, MeasuredAt: v.MeasuredAt}
	}
	return points, nil
}
