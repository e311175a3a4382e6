package database

import (
	"time"

	"github.com/dashmed/dashmed/internal/model"
	"github.com/dashmed/dashmed/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed inserts a demo doctor with two followed patients and a week of
// measurements. It is a no-op when the doctor already exists.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Doctor{}).
		Where("email = ?", "demo@dashmed.fr").
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Demo#Dashmed2024"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now()
	doctor := &model.Doctor{
		FirstName:     "Claire",
		LastName:      "Moreau",
		Email:         "demo@dashmed.fr",
		Password:      string(hash),
		Sex:           "F",
		Specialty:     "Médecine générale",
		Active:        true,
		EmailVerified: true,
		ActivatedAt:   &now,
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doctor).Error; err != nil {
			return err
		}

		birth1 := time.Date(1958, 3, 14, 0, 0, 0, 0, time.UTC)
		birth2 := time.Date(1990, 11, 2, 0, 0, 0, 0, time.UTC)
		patients := []*model.Patient{
			{FirstName: "Paul", LastName: "Durand", Sex: "M", BloodGroup: "A+", BirthDate: &birth1, City: "Amiens"},
			{FirstName: "Julie", LastName: "Bernard", Sex: "F", BloodGroup: "O-", BirthDate: &birth2, City: "Lille"},
		}
		for _, p := range patients {
			if err := tx.Create(p).Error; err != nil {
				return err
			}
			if err := tx.Create(&model.Follow{DoctorID: doctor.ID, PatientID: p.ID}).Error; err != nil {
				return err
			}
		}

		measures := []struct {
			patient *model.Patient
			mtype   string
			unit    string
			base    float64
			step    float64
		}{
			{patients[0], "frequence cardiaque", "bpm", 72, 1.5},
			{patients[0], "glycemie", "g/L", 0.95, 0.02},
			{patients[1], "temperature", "°C", 36.8, 0.1},
		}
		for _, m := range measures {
			measure := &model.Measure{PatientID: m.patient.ID, Type: m.mtype, Unit: m.unit}
			if err := tx.Create(measure).Error; err != nil {
				return err
			}
			for day := 7; day >= 1; day-- {
				value := &model.MeasureValue{
					MeasureID:  measure.ID,
					Value:      m.base + float64(day%3)*m.step,
					MeasuredAt: now.AddDate(0, 0, -day),
				}
				if err := tx.Create(value).Error; err != nil {
					return err
				}
			}
		}

		logger.GetLogger().Info("Seeded demo data",
			zap.String("doctor", doctor.Email),
			zap.Int("patients", len(patients)))
		return nil
	})
}
