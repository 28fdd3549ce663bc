package appointment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/clinic/clinic/internal/platform/apperror"
)

type mockRepo struct {
	records map[int64]*Record
	nextID  int64
}

func newMockRepo() *mockRepo {
	return &mockRepo{records: make(map[int64]*Record), nextID: 1}
}

func (m *mockRepo) slotKey(r *Record) string {
	return fmt.Sprintf("%d/%s/%s", r.DoctorID, r.Date.Format("2006-01-02"), r.StartTime)
}

func (m *mockRepo) Create(ctx context.Context, r *Record) error {
	for _, existing := range m.records {
		if existing.Status != StatusCancelled && m.slotKey(existing) == m.slotKey(r) {
			return apperror.Conflictf("slot taken")
		}
	}
	r.ID = m.nextID
	r.CreatedAt = time.Now()
	m.nextID++
	m.records[r.ID] = r
	return nil
}

func (m *mockRepo) Update(ctx context.Context, r *Record) error {
	if _, ok := m.records[r.ID]; !ok {
		return apperror.NotFoundf("appointment %d not found", r.ID)
	}
	m.records[r.ID] = r
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*Record, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, apperror.NotFoundf("appointment %d not found", id)
	}
	cp := *r
	return &cp, nil
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID int64) ([]Record, error) {
	var out []Record
	for _, r := range m.records {
		if r.PatientID == patientID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRepo) StatusCounts(ctx context.Context, patientID int64) (map[Status]int, error) {
	counts := make(map[Status]int)
	for _, r := range m.records {
		if r.PatientID == patientID {
			counts[r.Status]++
		}
	}
	return counts, nil
}

func (m *mockRepo) DoctorDay(ctx context.Context, doctorID int64, date time.Time) ([]Record, error) {
	var out []Record
	for _, r := range m.records {
		if r.DoctorID == doctorID && r.Date.Equal(date) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRepo) DeleteByIDs(ctx context.Context, patientID int64, ids []int64) (int64, error) {
	var deleted int64
	for _, id := range ids {
		if r, ok := m.records[id]; ok && r.PatientID == patientID {
			delete(m.records, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *mockRepo) List(ctx context.Context, q ListQuery, limit, offset int) ([]Record, int, error) {
	var matched []Record
	for _, r := range m.records {
		if q.DoctorID != 0 && r.DoctorID != q.DoctorID {
			continue
		}
		if q.Date != nil && !r.Date.Equal(*q.Date) {
			continue
		}
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		matched = append(matched, *r)
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *mockRepo) SlotTaken(ctx context.Context, doctorID int64, date time.Time, startTime string) (bool, error) {
	probe := &Record{DoctorID: doctorID, Date: date, StartTime: startTime}
	for _, r := range m.records {
		if r.Status != StatusCancelled && m.slotKey(r) == m.slotKey(probe) {
			return true, nil
		}
	}
	return false, nil
}

type mockScheduleRepo struct {
	schedules map[int64]*Schedule
	nextID    int64
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[int64]*Schedule), nextID: 1}
}

func (m *mockScheduleRepo) slotKey(s *Schedule) string {
	return fmt.Sprintf("%d/%s/%s", s.DoctorID, s.Date.Format("2006-01-02"), s.StartTime)
}

func (m *mockScheduleRepo) Create(ctx context.Context, s *Schedule) error {
	for _, existing := range m.schedules {
		if m.slotKey(existing) == m.slotKey(s) {
			return apperror.Conflictf("slot taken")
		}
	}
	s.ID = m.nextID
	s.CreatedAt = time.Now()
	m.nextID++
	m.schedules[s.ID] = s
	return nil
}

func (m *mockScheduleRepo) Update(ctx context.Context, s *Schedule) error {
	if _, ok := m.schedules[s.ID]; !ok {
		return apperror.NotFoundf("schedule %d not found", s.ID)
	}
	m.schedules[s.ID] = s
	return nil
}

func (m *mockScheduleRepo) GetByID(ctx context.Context, id int64) (*Schedule, error) {
	s, ok := m.schedules[id]
	if !ok {
		return nil, apperror.NotFoundf("schedule %d not found", id)
	}
	cp := *s
	return &cp, nil
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.schedules[id]; !ok {
		return apperror.NotFoundf("schedule %d not found", id)
	}
	delete(m.schedules, id)
	return nil
}

func (m *mockScheduleRepo) ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]Schedule, error) {
	var out []Schedule
	for _, s := range m.schedules {
		if s.DoctorID == doctorID && !s.Date.Before(from) && !s.Date.After(to) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *mockScheduleRepo) SlotTaken(ctx context.Context, doctorID int64, date time.Time, startTime string) (bool, error) {
	probe := &Schedule{DoctorID: doctorID, Date: date, StartTime: startTime}
	for _, s := range m.schedules {
		if m.slotKey(s) == m.slotKey(probe) {
			return true, nil
		}
	}
	return false, nil
}

type mockHistoryRepo struct {
	records []HistoryRecord
	nextID  int64
}

func (m *mockHistoryRepo) Add(ctx context.Context, h *HistoryRecord) error {
	m.nextID++
	h.ID = m.nextID
	h.CreatedAt = time.Now()
	m.records = append(m.records, *h)
	return nil
}

func (m *mockHistoryRepo) ListByPatient(ctx context.Context, patientID int64) ([]HistoryRecord, error) {
	var out []HistoryRecord
	for _, h := range m.records {
		if h.PatientID == patientID {
			out = append(out, h)
		}
	}
	return out, nil
}

type mockCatalog map[int64]int64

func (m mockCatalog) ServicePrice(ctx context.Context, serviceID int64) (int64, error) {
	price, ok := m[serviceID]
	if !ok {
		return 0, apperror.NotFoundf("service %d not found", serviceID)
	}
	return price, nil
}

type mockDirectory map[int64]bool

func (m mockDirectory) DoctorExists(ctx context.Context, id int64) error {
	if !m[id] {
		return apperror.NotFoundf("doctor %d not found", id)
	}
	return nil
}

func (m mockDirectory) PatientExists(ctx context.Context, id int64) error {
	if !m[id] {
		return apperror.NotFoundf("patient %d not found", id)
	}
	return nil
}

type directTxRunner struct{}

func (directTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockRepo) {
	svc, repo, _ := newTestServiceWithSchedules()
	return svc, repo
}

func newTestServiceWithSchedules() (*Service, *mockRepo, *mockScheduleRepo) {
	repo := newMockRepo()
	schedules := newMockScheduleRepo()
	svc := NewService(repo, schedules, &mockHistoryRepo{},
		mockCatalog{10: 1000},
		mockDirectory{1: true},
		mockDirectory{5: true},
		directTxRunner{})
	return svc, repo, schedules
}

func validBooking() BookInput {
	return BookInput{
		PatientID: 5,
		DoctorID:  1,
		ServiceID: 10,
		Date:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "10:30",
	}
}

func TestBook(t *testing.T) {
	svc, _ := newTestService()
	rec, err := svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != StatusWaiting {
		t.Errorf("status = %s, want waiting", rec.Status)
	}
	if rec.Price != 1000 {
		t.Errorf("price = %d, want 1000 (copied from catalog)", rec.Price)
	}
	if rec.PaymentMethod != PaymentCash {
		t.Errorf("payment method = %q, want cash default", rec.PaymentMethod)
	}
	if rec.PaidAt != nil {
		t.Errorf("new booking must not be marked paid: %+v", rec)
	}
}

func TestBook_SlotConflict(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.Book(context.Background(), validBooking()); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	in := validBooking()
	in.PatientID = 5
	_, err := svc.Book(context.Background(), in)
	if !apperror.IsConflict(err) {
		t.Errorf("expected conflict for taken slot, got %v", err)
	}
}

func TestBook_Validation(t *testing.T) {
	svc, _ := newTestService()

	bad := -5
	over := 101
	cases := []struct {
		name   string
		mutate func(*BookInput)
		check  func(error) bool
	}{
		{"zero date", func(in *BookInput) { in.Date = time.Time{} }, apperror.IsValidation},
		{"bad time", func(in *BookInput) { in.StartTime = "25:99" }, apperror.IsValidation},
		{"negative discount", func(in *BookInput) { in.Discount = &bad }, apperror.IsValidation},
		{"discount over 100", func(in *BookInput) { in.Discount = &over }, apperror.IsValidation},
		{"unknown patient", func(in *BookInput) { in.PatientID = 99 }, apperror.IsNotFound},
		{"unknown doctor", func(in *BookInput) { in.DoctorID = 99 }, apperror.IsNotFound},
		{"unknown service", func(in *BookInput) { in.ServiceID = 99 }, apperror.IsNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validBooking()
			tc.mutate(&in)
			if _, err := svc.Book(context.Background(), in); !tc.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCapturePayment(t *testing.T) {
	svc, _ := newTestService()
	rec, _ := svc.Book(context.Background(), validBooking())

	paid, err := svc.CapturePayment(context.Background(), rec.ID, PaymentCard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if paid.Status != StatusReserved {
		t.Errorf("status = %s, want reserved", paid.Status)
	}
	if paid.PaymentMethod != PaymentCard || paid.PaidAt == nil {
		t.Errorf("payment not recorded: %+v", paid)
	}
}

func TestCapturePayment_InvalidMethod(t *testing.T) {
	svc, _ := newTestService()
	rec, _ := svc.Book(context.Background(), validBooking())
	if _, err := svc.CapturePayment(context.Background(), rec.ID, "cheque"); !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestRelease_ClearsPayment(t *testing.T) {
	svc, _ := newTestService()
	rec, _ := svc.Book(context.Background(), validBooking())
	if _, err := svc.CapturePayment(context.Background(), rec.ID, PaymentCash); err != nil {
		t.Fatalf("capture: %v", err)
	}

	released, err := svc.Release(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if released.Status != StatusWaiting {
		t.Errorf("status = %s, want waiting", released.Status)
	}
	if released.PaymentMethod != PaymentCash || released.PaidAt != nil {
		t.Errorf("payment not cleared: %+v", released)
	}
}

func TestCancel_IsTerminal(t *testing.T) {
	svc, _ := newTestService()
	rec, _ := svc.Book(context.Background(), validBooking())
	if _, err := svc.Cancel(context.Background(), rec.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := svc.CapturePayment(context.Background(), rec.ID, PaymentCash); apperror.KindOf(err) != apperror.KindInvalidTransition {
		t.Errorf("expected invalid transition, got %v", err)
	}
	if _, err := svc.Cancel(context.Background(), rec.ID); apperror.KindOf(err) != apperror.KindInvalidTransition {
		t.Errorf("expected invalid transition for double cancel, got %v", err)
	}
}

func TestUpdateDiscount_OnlyWhileWaiting(t *testing.T) {
	svc, _ := newTestService()
	rec, _ := svc.Book(context.Background(), validBooking())

	d := 25
	updated, err := svc.UpdateDiscount(context.Background(), rec.ID, &d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.DiscountPercent() != 25 {
		t.Errorf("discount = %d, want 25", updated.DiscountPercent())
	}

	if _, err := svc.CapturePayment(context.Background(), rec.ID, PaymentCash); err != nil {
		t.Fatalf("capture: %v", err)
	}
	if _, err := svc.UpdateDiscount(context.Background(), rec.ID, &d); apperror.KindOf(err) != apperror.KindInvalidTransition {
		t.Errorf("expected invalid transition after payment, got %v", err)
	}
}

func TestStatusCounts_ZeroFilled(t *testing.T) {
	svc, _ := newTestService()
	rec, _ := svc.Book(context.Background(), validBooking())
	if _, err := svc.CapturePayment(context.Background(), rec.ID, PaymentCash); err != nil {
		t.Fatalf("capture: %v", err)
	}

	counts, err := svc.StatusCounts(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counts) != 3 {
		t.Fatalf("expected all 3 statuses present, got %v", counts)
	}
	if counts[StatusReserved] != 1 || counts[StatusWaiting] != 0 || counts[StatusCancelled] != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func TestBulkDelete_ScopedToPatient(t *testing.T) {
	svc, repo := newTestService()
	rec, _ := svc.Book(context.Background(), validBooking())

	// Belongs to another patient.
	other := &Record{PatientID: 77, DoctorID: 1, ServiceID: 10,
		Date: rec.Date, StartTime: "11:00", Status: StatusWaiting, Price: 1000}
	if err := repo.Create(context.Background(), other); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := svc.BulkDelete(context.Background(), 5, []int64{rec.ID, other.ID})
	if !apperror.IsNotFound(err) {
		t.Fatalf("expected not found for foreign id, got %v", err)
	}

	if err := svc.BulkDelete(context.Background(), 5, []int64{rec.ID}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), rec.ID); !apperror.IsNotFound(err) {
		t.Errorf("appointment should be gone, got %v", err)
	}
}

func TestBulkDelete_EmptyIDs(t *testing.T) {
	svc, _ := newTestService()
	if err := svc.BulkDelete(context.Background(), 5, nil); !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAddHistory(t *testing.T) {
	svc, _ := newTestService()
	rec, _ := svc.Book(context.Background(), validBooking())

	h := &HistoryRecord{PatientID: 5, DoctorID: 1, AppointmentID: &rec.ID, Outcome: OutcomeVisited}
	if err := svc.AddHistory(context.Background(), h); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, err := svc.PatientHistory(context.Background(), 5)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 1 || records[0].Outcome != OutcomeVisited {
		t.Errorf("unexpected history: %+v", records)
	}
}

func TestAddHistory_InvalidOutcome(t *testing.T) {
	svc, _ := newTestService()
	h := &HistoryRecord{PatientID: 5, DoctorID: 1, Outcome: "no-show"}
	if err := svc.AddHistory(context.Background(), h); !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestList_FiltersAndPaginates(t *testing.T) {
	svc, _ := newTestService()
	first, err := svc.Book(context.Background(), validBooking())
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	second := validBooking()
	second.StartTime = "11:00"
	if _, err := svc.Book(context.Background(), second); err != nil {
		t.Fatalf("second booking: %v", err)
	}
	if _, err := svc.CapturePayment(context.Background(), first.ID, PaymentCard); err != nil {
		t.Fatalf("capture: %v", err)
	}

	records, total, err := svc.List(context.Background(), ListQuery{Status: StatusReserved}, 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(records) != 1 || records[0].ID != first.ID {
		t.Errorf("reserved filter: total=%d records=%+v", total, records)
	}

	records, total, err = svc.List(context.Background(), ListQuery{DoctorID: 1}, 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 2 || len(records) != 1 {
		t.Errorf("page 2: total=%d page=%d", total, len(records))
	}

	if _, _, err := svc.List(context.Background(), ListQuery{Status: "archived"}, 10, 0); !apperror.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func validSchedule() ScheduleInput {
	return ScheduleInput{
		DoctorID:  1,
		Date:      time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		StartTime: "09:00",
		EndTime:   "09:30",
		Available: true,
	}
}

func TestCreateSchedule(t *testing.T) {
	svc, _, _ := newTestServiceWithSchedules()
	sch, err := svc.CreateSchedule(context.Background(), validSchedule())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sch.ID == 0 || !sch.Available {
		t.Errorf("unexpected schedule: %+v", sch)
	}
}

func TestCreateSchedule_Validation(t *testing.T) {
	svc, _, _ := newTestServiceWithSchedules()

	cases := []struct {
		name   string
		mutate func(*ScheduleInput)
		check  func(error) bool
	}{
		{"zero date", func(in *ScheduleInput) { in.Date = time.Time{} }, apperror.IsValidation},
		{"bad start", func(in *ScheduleInput) { in.StartTime = "9am" }, apperror.IsValidation},
		{"bad end", func(in *ScheduleInput) { in.EndTime = "" }, apperror.IsValidation},
		{"end before start", func(in *ScheduleInput) { in.EndTime = "08:00" }, apperror.IsValidation},
		{"unknown doctor", func(in *ScheduleInput) { in.DoctorID = 99 }, apperror.IsNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validSchedule()
			tc.mutate(&in)
			if _, err := svc.CreateSchedule(context.Background(), in); !tc.check(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateSchedule_SlotConflicts(t *testing.T) {
	svc, _, _ := newTestServiceWithSchedules()
	if _, err := svc.CreateSchedule(context.Background(), validSchedule()); err != nil {
		t.Fatalf("first slot: %v", err)
	}

	// Same slot again.
	if _, err := svc.CreateSchedule(context.Background(), validSchedule()); !apperror.IsConflict(err) {
		t.Errorf("expected conflict for duplicate slot, got %v", err)
	}

	// A slot held by an active appointment also conflicts.
	if _, err := svc.Book(context.Background(), validBooking()); err != nil {
		t.Fatalf("booking: %v", err)
	}
	in := validSchedule()
	in.StartTime = "10:30"
	in.EndTime = "11:00"
	if _, err := svc.CreateSchedule(context.Background(), in); !apperror.IsConflict(err) {
		t.Errorf("expected conflict with appointment slot, got %v", err)
	}
}

func TestBook_ConflictsWithScheduleSlot(t *testing.T) {
	svc, _, _ := newTestServiceWithSchedules()
	in := validSchedule()
	in.StartTime = "10:30"
	in.EndTime = "11:00"
	if _, err := svc.CreateSchedule(context.Background(), in); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if _, err := svc.Book(context.Background(), validBooking()); !apperror.IsConflict(err) {
		t.Errorf("expected conflict with schedule slot, got %v", err)
	}
}

func TestUpdateSchedule_MoveChecksConflicts(t *testing.T) {
	svc, _, _ := newTestServiceWithSchedules()
	first, err := svc.CreateSchedule(context.Background(), validSchedule())
	if err != nil {
		t.Fatalf("first slot: %v", err)
	}
	second := validSchedule()
	second.StartTime = "09:30"
	second.EndTime = "10:00"
	moved, err := svc.CreateSchedule(context.Background(), second)
	if err != nil {
		t.Fatalf("second slot: %v", err)
	}

	// Moving onto the first slot fails; toggling in place does not.
	onto := second
	onto.StartTime = first.StartTime
	if _, err := svc.UpdateSchedule(context.Background(), moved.ID, onto); !apperror.IsConflict(err) {
		t.Errorf("expected conflict when moving onto taken slot, got %v", err)
	}

	second.Available = false
	updated, err := svc.UpdateSchedule(context.Background(), moved.ID, second)
	if err != nil {
		t.Fatalf("in-place update: %v", err)
	}
	if updated.Available {
		t.Errorf("availability not updated: %+v", updated)
	}
}

func TestDoctorCalendar(t *testing.T) {
	svc, _, _ := newTestServiceWithSchedules()
	in := validSchedule()
	if _, err := svc.CreateSchedule(context.Background(), in); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	day := in.Date
	schedules, err := svc.DoctorCalendar(context.Background(), 1, day, day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schedules) != 1 {
		t.Errorf("expected 1 slot, got %d", len(schedules))
	}

	before := day.AddDate(0, 0, -7)
	schedules, err = svc.DoctorCalendar(context.Background(), 1, before, before)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(schedules) != 0 {
		t.Errorf("expected empty week, got %d", len(schedules))
	}

	if _, err := svc.DoctorCalendar(context.Background(), 1, day, before); !apperror.IsValidation(err) {
		t.Errorf("expected validation error for inverted range, got %v", err)
	}
}

func TestDeleteSchedule(t *testing.T) {
	svc, _, _ := newTestServiceWithSchedules()
	sch, err := svc.CreateSchedule(context.Background(), validSchedule())
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if err := svc.DeleteSchedule(context.Background(), sch.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteSchedule(context.Background(), sch.ID); !apperror.IsNotFound(err) {
		t.Errorf("expected not found for deleted slot, got %v", err)
	}
}
