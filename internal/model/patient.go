package model

import (
	"time"

	"gorm.io/gorm"
)

// Patient holds the profile data shown on the dashboard.
type Patient struct {
	gorm.Model
	FirstName  string     `gorm:"column:first_name;not null"`
	LastName   string     `gorm:"column:last_name;not null"`
	Email      string     `gorm:"column:email"`
	Sex        string     `gorm:"column:sex;size:1"`
	BloodGroup string     `gorm:"column:blood_group;size:3"`
	BirthDate  *time.Time `gorm:"column:birth_date"`
	Phone      string     `gorm:"column:phone"`
	Address    string     `gorm:"column:address"`
	City       string     `gorm:"column:city"`
	PostalCode string     `gorm:"column:postal_code"`
}

// Follow links a doctor to a patient they monitor.
type Follow struct {
	DoctorID  uint `gorm:"column:doctor_id;primaryKey"`
	PatientID uint `gorm:"column:patient_id;primaryKey"`
	CreatedAt time.Time
}

// Measure is a measurement type recorded for a patient, e.g. heart rate
// in BPM or body temperature in °C.
type Measure struct {
	ID        uint   `gorm:"primarykey"`
	PatientID uint   `gorm:"column:patient_id;not null;index"`
	Type      string `gorm:"column:measure_type;not null"`
	Unit      string `gorm:"column:unit"`
	CreatedAt time.Time
}

// MeasureValue is one timestamped sample of a measure.
type MeasureValue struct {
	ID         uint      `gorm:"primarykey"`
	MeasureID  uint      `gorm:"column:measure_id;not null;index:idx_measure_values_measure_time"`
	Value      float64   `gorm:"column:value;not null"`
	MeasuredAt time.Time `gorm:"column:measured_at;not null;index:idx_measure_values_measure_time"`
}
