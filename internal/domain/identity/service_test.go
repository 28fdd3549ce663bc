package identity

import (
	"context"
	"testing"
	"time"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/auth"
)

type mockPersonRepo struct {
	persons map[int64]*Person
	nextID  int64
}

func newMockPersonRepo() *mockPersonRepo {
	return &mockPersonRepo{persons: make(map[int64]*Person), nextID: 1}
}

func (m *mockPersonRepo) Create(ctx context.Context, p *Person) error {
	for _, existing := range m.persons {
		if existing.Email == p.Email {
			return apperror.Conflictf("email %s is already registered", p.Email)
		}
	}
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	m.nextID++
	m.persons[p.ID] = p
	return nil
}

func (m *mockPersonRepo) GetByID(ctx context.Context, id int64) (*Person, error) {
	p, ok := m.persons[id]
	if !ok {
		return nil, apperror.NotFoundf("person %d not found", id)
	}
	return p, nil
}

func (m *mockPersonRepo) GetByEmail(ctx context.Context, email string) (*Person, error) {
	for _, p := range m.persons {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, apperror.NotFoundf("person with email %s not found", email)
}

type mockDoctorRepo struct {
	persons  *mockPersonRepo
	profiles map[int64]*DoctorProfile
	depts    map[int64]string
}

func newMockDoctorRepo(persons *mockPersonRepo) *mockDoctorRepo {
	return &mockDoctorRepo{
		persons:  persons,
		profiles: make(map[int64]*DoctorProfile),
		depts:    map[int64]string{1: "Cardiology", 2: "Dermatology"},
	}
}

func (m *mockDoctorRepo) CreateProfile(ctx context.Context, dp *DoctorProfile) error {
	m.profiles[dp.PersonID] = dp
	return nil
}

func (m *mockDoctorRepo) UpdateProfile(ctx context.Context, dp *DoctorProfile) error {
	if _, ok := m.profiles[dp.PersonID]; !ok {
		return apperror.NotFoundf("doctor %d not found", dp.PersonID)
	}
	m.profiles[dp.PersonID] = dp
	return nil
}

func (m *mockDoctorRepo) GetDoctor(ctx context.Context, personID int64) (*Doctor, error) {
	dp, ok := m.profiles[personID]
	if !ok {
		return nil, apperror.NotFoundf("doctor %d not found", personID)
	}
	p := m.persons.persons[personID]
	return &Doctor{
		PersonID:       personID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Phone:          p.Phone,
		DepartmentID:   dp.DepartmentID,
		DepartmentName: m.depts[dp.DepartmentID],
		Cabinet:        dp.Cabinet,
		BonusPercent:   dp.BonusPercent,
	}, nil
}

func (m *mockDoctorRepo) ListDoctors(ctx context.Context, limit, offset int) ([]Doctor, int, error) {
	var doctors []Doctor
	for id := range m.profiles {
		d, _ := m.GetDoctor(ctx, id)
		doctors = append(doctors, *d)
	}
	return doctors, len(doctors), nil
}

type directTxRunner struct{}

func (directTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockPersonRepo, *mockDoctorRepo) {
	persons := newMockPersonRepo()
	doctors := newMockDoctorRepo(persons)
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	return NewService(persons, doctors, directTxRunner{}, issuer), persons, doctors
}

func validDoctorInput() RegisterDoctorInput {
	return RegisterDoctorInput{
		Email:        "ada@clinic.example",
		Password:     "long-enough",
		FirstName:    "Ada",
		LastName:     "Jones",
		DepartmentID: 1,
		Cabinet:      "101",
		BonusPercent: 20,
	}
}

func TestRegisterDoctor(t *testing.T) {
	svc, _, _ := newTestService()
	doctor, err := svc.RegisterDoctor(context.Background(), validDoctorInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doctor.DepartmentName != "Cardiology" {
		t.Errorf("department name = %q, want Cardiology", doctor.DepartmentName)
	}
	if doctor.BonusPercent != 20 {
		t.Errorf("bonus = %d, want 20", doctor.BonusPercent)
	}
	if doctor.FullName() != "Ada Jones" {
		t.Errorf("full name = %q, want %q", doctor.FullName(), "Ada Jones")
	}
}

func TestRegisterDoctor_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	cases := []struct {
		name   string
		mutate func(*RegisterDoctorInput)
	}{
		{"bad email", func(in *RegisterDoctorInput) { in.Email = "not-an-email" }},
		{"short password", func(in *RegisterDoctorInput) { in.Password = "short" }},
		{"missing name", func(in *RegisterDoctorInput) { in.FirstName = "" }},
		{"missing department", func(in *RegisterDoctorInput) { in.DepartmentID = 0 }},
		{"bonus too high", func(in *RegisterDoctorInput) { in.BonusPercent = 101 }},
		{"bonus negative", func(in *RegisterDoctorInput) { in.BonusPercent = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validDoctorInput()
			tc.mutate(&in)
			if _, err := svc.RegisterDoctor(context.Background(), in); !apperror.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRegisterDoctor_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.RegisterDoctor(context.Background(), validDoctorInput()); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	_, err := svc.RegisterDoctor(context.Background(), validDoctorInput())
	if !apperror.IsConflict(err) {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.RegisterDoctor(context.Background(), validDoctorInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, person, err := svc.Authenticate(context.Background(), "ada@clinic.example", "long-enough")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Error("empty token")
	}
	if person.Role != RoleDoctor {
		t.Errorf("role = %q, want doctor", person.Role)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.RegisterDoctor(context.Background(), validDoctorInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, _, err := svc.Authenticate(context.Background(), "ada@clinic.example", "wrong-pass"); !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	// Unknown email reports the same error so accounts cannot be enumerated.
	if _, _, err := svc.Authenticate(context.Background(), "ghost@clinic.example", "long-enough"); !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpdateDoctorProfile(t *testing.T) {
	svc, _, _ := newTestService()
	doctor, err := svc.RegisterDoctor(context.Background(), validDoctorInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	updated, err := svc.UpdateDoctorProfile(context.Background(), DoctorProfile{
		PersonID:     doctor.PersonID,
		DepartmentID: 2,
		Cabinet:      "205",
		BonusPercent: 35,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.DepartmentName != "Dermatology" || updated.BonusPercent != 35 {
		t.Errorf("update not applied: %+v", updated)
	}
}

func TestUpdateDoctorProfile_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.UpdateDoctorProfile(context.Background(), DoctorProfile{
		PersonID: 99, DepartmentID: 1, BonusPercent: 10,
	})
	if !apperror.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
