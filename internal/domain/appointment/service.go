package appointment

import (
	"context"
	"time"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/db"
)

// Catalog resolves a bookable service to its current list price.
type Catalog interface {
	ServicePrice(ctx context.Context, serviceID int64) (int64, error)
}

// DoctorDirectory checks that a doctor exists before booking against them.
type DoctorDirectory interface {
	DoctorExists(ctx context.Context, doctorID int64) error
}

// PatientDirectory checks that a patient exists before booking for them.
type PatientDirectory interface {
	PatientExists(ctx context.Context, patientID int64) error
}

type Service struct {
	records   Repository
	schedules ScheduleRepository
	history   HistoryRepository
	catalog   Catalog
	doctors   DoctorDirectory
	patients  PatientDirectory
	tx        db.TxRunner
}

func NewService(records Repository, schedules ScheduleRepository, history HistoryRepository,
	catalog Catalog, doctors DoctorDirectory, patients PatientDirectory, tx db.TxRunner) *Service {
	return &Service{
		records:   records,
		schedules: schedules,
		history:   history,
		catalog:   catalog,
		doctors:   doctors,
		patients:  patients,
		tx:        tx,
	}
}

// BookInput carries everything needed to book an appointment slot.
type BookInput struct {
	PatientID int64     `json:"patient_id"`
	DoctorID  int64     `json:"doctor_id"`
	ServiceID int64     `json:"service_id"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	Discount  *int      `json:"discount,omitempty"`
}

func validateDiscount(d *int) error {
	if d != nil && (*d < 0 || *d > 100) {
		return apperror.Validationf("discount must be between 0 and 100")
	}
	return nil
}

// Book creates a waiting appointment. The service price is copied onto the
// record so later catalog changes do not affect it. A taken slot surfaces as
// a conflict.
func (s *Service) Book(ctx context.Context, in BookInput) (*Record, error) {
	if in.Date.IsZero() {
		return nil, apperror.Validationf("date is required")
	}
	if _, err := time.Parse("15:04", in.StartTime); err != nil {
		return nil, apperror.Validationf("start_time must be HH:MM")
	}
	if err := validateDiscount(in.Discount); err != nil {
		return nil, err
	}
	if err := s.patients.PatientExists(ctx, in.PatientID); err != nil {
		return nil, err
	}
	if err := s.doctors.DoctorExists(ctx, in.DoctorID); err != nil {
		return nil, err
	}

	taken, err := s.schedules.SlotTaken(ctx, in.DoctorID, in.Date, in.StartTime)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflictf("doctor %d has a schedule slot at %s %s",
			in.DoctorID, in.Date.Format("2006-01-02"), in.StartTime)
	}

	price, err := s.catalog.ServicePrice(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		PatientID:     in.PatientID,
		DoctorID:      in.DoctorID,
		ServiceID:     in.ServiceID,
		Date:          in.Date,
		StartTime:     in.StartTime,
		Status:        StatusWaiting,
		Price:         price,
		Discount:      in.Discount,
		PaymentMethod: PaymentCash,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) transition(ctx context.Context, id int64, to Status, mutate func(*Record)) (*Record, error) {
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(rec.Status, to) {
		return nil, apperror.InvalidTransitionf("cannot move appointment from %s to %s", rec.Status, to)
	}
	rec.Status = to
	if mutate != nil {
		mutate(rec)
	}
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CapturePayment records the payment and moves the appointment to reserved.
func (s *Service) CapturePayment(ctx context.Context, id int64, method string) (*Record, error) {
	if !ValidPaymentMethod(method) {
		return nil, apperror.Validationf("invalid payment method: %s", method)
	}
	now := time.Now()
	return s.transition(ctx, id, StatusReserved, func(rec *Record) {
		rec.PaymentMethod = method
		rec.PaidAt = &now
	})
}

// Release puts a reserved appointment back to waiting and clears the payment.
func (s *Service) Release(ctx context.Context, id int64) (*Record, error) {
	return s.transition(ctx, id, StatusWaiting, func(rec *Record) {
		rec.PaymentMethod = PaymentCash
		rec.PaidAt = nil
	})
}

// Cancel moves the appointment to its terminal state.
func (s *Service) Cancel(ctx context.Context, id int64) (*Record, error) {
	return s.transition(ctx, id, StatusCancelled, nil)
}

// UpdateDiscount changes the discount of an appointment that has not been paid.
func (s *Service) UpdateDiscount(ctx context.Context, id int64, discount *int) (*Record, error) {
	if err := validateDiscount(discount); err != nil {
		return nil, err
	}
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusWaiting {
		return nil, apperror.InvalidTransitionf("discount can only change while the appointment is waiting")
	}
	rec.Discount = discount
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Record, error) {
	return s.records.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID int64) ([]Record, error) {
	return s.records.ListByPatient(ctx, patientID)
}

// List returns a page of appointments matching the query, newest first,
// with the total match count.
func (s *Service) List(ctx context.Context, q ListQuery, limit, offset int) ([]Record, int, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, 0, apperror.Validationf("invalid status: %s", q.Status)
	}
	return s.records.List(ctx, q, limit, offset)
}

// StatusCounts returns per-status totals for a patient. Every status is
// present in the result, absent ones as zero.
func (s *Service) StatusCounts(ctx context.Context, patientID int64) (map[Status]int, error) {
	if err := s.patients.PatientExists(ctx, patientID); err != nil {
		return nil, err
	}
	raw, err := s.records.StatusCounts(ctx, patientID)
	if err != nil {
		return nil, err
	}
	counts := make(map[Status]int, len(Statuses))
	for _, st := range Statuses {
		counts[st] = raw[st]
	}
	return counts, nil
}

// DoctorDay returns a doctor's appointments for one day, ordered by start
// time.
func (s *Service) DoctorDay(ctx context.Context, doctorID int64, date time.Time) ([]Record, error) {
	if err := s.doctors.DoctorExists(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.records.DoctorDay(ctx, doctorID, date)
}

// ScheduleInput carries a doctor's slot to publish or change.
type ScheduleInput struct {
	DoctorID  int64     `json:"doctor_id"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Available bool      `json:"available"`
}

func (s *Service) validateScheduleInput(ctx context.Context, in ScheduleInput) error {
	if in.Date.IsZero() {
		return apperror.Validationf("date is required")
	}
	start, err := time.Parse("15:04", in.StartTime)
	if err != nil {
		return apperror.Validationf("start_time must be HH:MM")
	}
	end, err := time.Parse("15:04", in.EndTime)
	if err != nil {
		return apperror.Validationf("end_time must be HH:MM")
	}
	if !end.After(start) {
		return apperror.Validationf("end_time must be after start_time")
	}
	return s.doctors.DoctorExists(ctx, in.DoctorID)
}

// slotFree rejects a schedule slot already held by another schedule or by an
// active appointment.
func (s *Service) slotFree(ctx context.Context, doctorID int64, date time.Time, startTime string) error {
	taken, err := s.schedules.SlotTaken(ctx, doctorID, date, startTime)
	if err != nil {
		return err
	}
	if !taken {
		taken, err = s.records.SlotTaken(ctx, doctorID, date, startTime)
		if err != nil {
			return err
		}
	}
	if taken {
		return apperror.Conflictf("doctor %d already has the slot %s %s",
			doctorID, date.Format("2006-01-02"), startTime)
	}
	return nil
}

// CreateSchedule publishes a doctor's slot.
func (s *Service) CreateSchedule(ctx context.Context, in ScheduleInput) (*Schedule, error) {
	if err := s.validateScheduleInput(ctx, in); err != nil {
		return nil, err
	}
	if err := s.slotFree(ctx, in.DoctorID, in.Date, in.StartTime); err != nil {
		return nil, err
	}
	sch := &Schedule{
		DoctorID:  in.DoctorID,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		Available: in.Available,
	}
	if err := s.schedules.Create(ctx, sch); err != nil {
		return nil, err
	}
	return sch, nil
}

// UpdateSchedule changes a slot's window or availability. Moving the slot
// re-checks the conflict rule at the new position.
func (s *Service) UpdateSchedule(ctx context.Context, id int64, in ScheduleInput) (*Schedule, error) {
	sch, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.DoctorID = sch.DoctorID
	if err := s.validateScheduleInput(ctx, in); err != nil {
		return nil, err
	}
	moved := !in.Date.Equal(sch.Date) || in.StartTime != sch.StartTime
	if moved {
		if err := s.slotFree(ctx, sch.DoctorID, in.Date, in.StartTime); err != nil {
			return nil, err
		}
	}
	sch.Date = in.Date
	sch.StartTime = in.StartTime
	sch.EndTime = in.EndTime
	sch.Available = in.Available
	if err := s.schedules.Update(ctx, sch); err != nil {
		return nil, err
	}
	return sch, nil
}

func (s *Service) GetSchedule(ctx context.Context, id int64) (*Schedule, error) {
	return s.schedules.GetByID(ctx, id)
}

func (s *Service) DeleteSchedule(ctx context.Context, id int64) error {
	return s.schedules.Delete(ctx, id)
}

// DoctorCalendar lists a doctor's published slots in an inclusive date range.
func (s *Service) DoctorCalendar(ctx context.Context, doctorID int64, from, to time.Time) ([]Schedule, error) {
	if to.Before(from) {
		return nil, apperror.Validationf("to is before from")
	}
	if err := s.doctors.DoctorExists(ctx, doctorID); err != nil {
		return nil, err
	}
	return s.schedules.ListByDoctor(ctx, doctorID, from, to)
}

// BulkDelete removes a patient's appointments by id. The whole batch is
// applied atomically; ids that do not belong to the patient fail the batch.
func (s *Service) BulkDelete(ctx context.Context, patientID int64, ids []int64) error {
	if len(ids) == 0 {
		return apperror.Validationf("ids are required")
	}
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		deleted, err := s.records.DeleteByIDs(ctx, patientID, ids)
		if err != nil {
			return err
		}
		if deleted != int64(len(ids)) {
			return apperror.NotFoundf("some appointments do not exist or belong to another patient")
		}
		return nil
	})
}

// AddHistory appends a visit outcome to the patient's history.
func (s *Service) AddHistory(ctx context.Context, h *HistoryRecord) error {
	if !ValidOutcome(h.Outcome) {
		return apperror.Validationf("invalid outcome: %s", h.Outcome)
	}
	if err := s.patients.PatientExists(ctx, h.PatientID); err != nil {
		return err
	}
	if err := s.doctors.DoctorExists(ctx, h.DoctorID); err != nil {
		return err
	}
	if h.AppointmentID != nil {
		if _, err := s.records.GetByID(ctx, *h.AppointmentID); err != nil {
			return err
		}
	}
	return s.history.Add(ctx, h)
}

func (s *Service) PatientHistory(ctx context.Context, patientID int64) ([]HistoryRecord, error) {
	if err := s.patients.PatientExists(ctx, patientID); err != nil {
		return nil, err
	}
	return s.history.ListByPatient(ctx, patientID)
}
