package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dashmed/dashmed/internal/model"
	"github.com/dashmed/dashmed/internal/repository"
	"gorm.io/gorm"
)

// fakeDoctorStore backs the services with an in-memory map so the flows
// can be exercised without a database.
type fakeDoctorStore struct {
	mu      sync.Mutex
	nextID  uint
	doctors map[uint]*model.Doctor
}

func newFakeDoctorStore() *fakeDoctorStore {
	return &fakeDoctorStore{nextID: 1, doctors: make(map[uint]*model.Doctor)}
}

func (f *fakeDoctorStore) add(d *model.Doctor) *model.Doctor {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = f.nextID
	f.nextID++
	f.doctors[d.ID] = d
	return d
}

func (f *fakeDoctorStore) FindByID(_ context.Context, id uint) (*model.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *d
	return &copied, nil
}

func (f *fakeDoctorStore) FindByEmail(_ context.Context, email string) (*model.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.doctors {
		if strings.EqualFold(d.Email, email) {
			copied := *d
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDoctorStore) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := f.FindByEmail(ctx, email)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return err == nil, err
}

func (f *fakeDoctorStore) Create(_ context.Context, doctor *model.Doctor) error {
	f.add(doctor)
	return nil
}

func (f *fakeDoctorStore) UpdatePassword(_ context.Context, id uint, hashedPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Password = hashedPassword
	return nil
}

func (f *fakeDoctorStore) UpdateEmail(_ context.Context, id uint, newEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.doctors[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Email = newEmail
	d.EmailVerified = false
	return nil
}

func (f *fakeDoctorStore) SetVerificationToken(_ context.Context, email, tok string, expires time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.doctors {
		if strings.EqualFold(d.Email, email) {
			d.VerificationToken = tok
			d.VerificationExpires = &expires
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeDoctorStore) FindByVerificationToken(_ context.Context, tok string) (*model.Doctor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.doctors {
		if d.VerificationToken != "" && d.VerificationToken == tok {
			copied := *d
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDoctorStore) RedeemVerificationToken(_ context.Context, tok string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.doctors {
		if d.VerificationToken == tok && !d.EmailVerified &&
			d.VerificationExpires != nil && time.Now().Before(*d.VerificationExpires) {
			now := time.Now()
			d.EmailVerified = true
			d.VerificationToken = ""
			d.VerificationExpires = nil
			d.ActivatedAt = &now
			return true, nil
		}
	}
	return false, nil
}

// fakeResetStore mirrors the transactional semantics of the real
// repository closely enough for the service tests.
type fakeResetStore struct {
	mu      sync.Mutex
	doctors *fakeDoctorStore
	resets  []*model.PasswordReset
}

func newFakeResetStore(doctors *fakeDoctorStore) *fakeResetStore {
	return &fakeResetStore{doctors: doctors}
}

func (f *fakeResetStore) Purge(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.resets[:0]
	now := time.Now()
	for _, r := range f.resets {
		if strings.EqualFold(r.Email, email) || r.ExpiresAt.Before(now) {
			continue
		}
		kept = append(kept, r)
	}
	f.resets = kept
	return nil
}

func (f *fakeResetStore) Create(_ context.Context, reset *model.PasswordReset) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, reset)
	return nil
}

func (f *fakeResetStore) Exists(_ context.Context, email, tokenHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.resets {
		if strings.EqualFold(r.Email, email) && r.TokenHash == tokenHash && r.Usable(time.Now()) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeResetStore) Redeem(ctx context.Context, tokenHash, newPasswordHash string) (repository.RedeemOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.resets {
		if r.TokenHash != tokenHash || !r.Usable(time.Now()) {
			continue
		}
		doctor, err := f.doctors.FindByEmail(ctx, r.Email)
		if err != nil {
			return repository.RedeemNoAccount, nil
		}
		if err := f.doctors.UpdatePassword(ctx, doctor.ID, newPasswordHash); err != nil {
			return repository.RedeemNoAccount, nil
		}
		now := time.Now()
		r.UsedAt = &now
		return repository.RedeemOK, nil
	}
	return repository.RedeemInvalidToken, nil
}

// fakeMailer records every message instead of sending.
type sentMail struct {
	kind  string
	to    string
	token string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (f *fakeMailer) record(kind, to, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errFakeMail
	}
	f.sent = append(f.sent, sentMail{kind: kind, to: to, token: token})
	return nil
}

func (f *fakeMailer) SendVerification(email, _, rawToken string) error {
	return f.record("verification", email, rawToken)
}

func (f *fakeMailer) SendPasswordReset(email, _, rawToken string) error {
	return f.record("password_reset", email, rawToken)
}

func (f *fakeMailer) SendEmailChangeNotice(oldEmail, newEmail, _ string) error {
	if err := f.record("email_change", oldEmail, ""); err != nil {
		return err
	}
	return f.record("email_change", newEmail, "")
}

func (f *fakeMailer) sentTo(kind string) []sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentMail
	for _, m := range f.sent {
		if m.kind == kind {
			out = append(out, m)
		}
	}
	return out
}

var errFakeMail = errors.New("smtp unavailable")

// fakePatientStore serves the dashboard flows from fixed slices.
type fakePatientStore struct {
	patients map[uint]model.Patient
	follows  map[[2]uint]bool
	measures map[uint][]model.Measure
	series   map[uint][]repository.MeasurePoint
}

func newFakePatientStore() *fakePatientStore {
	return &fakePatientStore{
		patients: make(map[uint]model.Patient),
		follows:  make(map[[2]uint]bool),
		measures: make(map[uint][]model.Measure),
		series:   make(map[uint][]repository.MeasurePoint),
	}
}

func (f *fakePatientStore) ListForDoctor(_ context.Context, doctorID uint) ([]model.Patient, error) {
	var out []model.Patient
	for key := range f.follows {
		if key[0] == doctorID {
			out = append(out, f.patients[key[1]])
		}
	}
	return out, nil
}

func (f *fakePatientStore) FindByID(_ context.Context, id uint) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (f *fakePatientStore) IsFollowedBy(_ context.Context, doctorID, patientID uint) (bool, error) {
	return f.follows[[2]uint{doctorID, patientID}], nil
}

func (f *fakePatientStore) Measures(_ context.Context, patientID uint) ([]model.Measure, error) {
	return f.measures[patientID], nil
}

func (f *fakePatientStore) LatestValue(_ context.Context, measureID uint) (*repository.MeasurePoint, error) {
	points := f.series[measureID]
	if len(points) == 0 {
		return nil, nil
	}
	last := points[len(points)-1]
	return &last, nil
}

func (f *fakePatientStore) Series(_ context.Context, measureID uint, limit int) ([]repository.MeasurePoint, error) {
	points := f.series[measureID]
	if len(points) > limit {
		points = points[len(points)-limit:]
	}
	return points, nil
}
