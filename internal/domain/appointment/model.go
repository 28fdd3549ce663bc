package appointment

import "time"

// Status is the appointment lifecycle state.
//
// An appointment starts waiting, becomes reserved once payment is captured,
// and can be cancelled from either state. A reservation can also be released
// back to waiting. Cancelled is terminal.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusReserved  Status = "reserved"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every lifecycle state. Per-patient status counts are keyed by
// this list so absent states still show a zero.
var Statuses = []Status{StatusWaiting, StatusReserved, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusReserved, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether the lifecycle allows moving from one status to
// another.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusWaiting:
		return to == StatusReserved || to == StatusCancelled
	case StatusReserved:
		return to == StatusCancelled || to == StatusWaiting
	}
	return false
}

// Payment methods accepted at the front desk.
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

func ValidPaymentMethod(m string) bool {
	return m == PaymentCash || m == PaymentCard
}

// Record is a booked appointment. Price is copied from the service catalog at
// booking time; Discount is a whole percent applied to that price.
//
// PaymentMethod is always set (cash until the front desk says otherwise), so
// payment breakdowns partition the gross total exactly. PaidAt marks whether
// the payment was actually captured.
type Record struct {
	ID            int64      `json:"id"`
	PatientID     int64      `json:"patient_id"`
	DoctorID      int64      `json:"doctor_id"`
	ServiceID     int64      `json:"service_id"`
	Date          time.Time  `json:"date"`
	StartTime     string     `json:"start_time"`
	Status        Status     `json:"status"`
	Price         int64      `json:"price"`
	Discount      *int       `json:"discount,omitempty"`
	PaymentMethod string     `json:"payment_method"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// DiscountPercent returns the discount as a plain int, 0 when unset.
func (r *Record) DiscountPercent() int {
	if r.Discount == nil {
		return 0
	}
	return *r.Discount
}

// Schedule is a doctor's published slot. Schedules and active appointments
// share the (doctor, date, start_time) slot key, so neither side can
// double-book it.
type Schedule struct {
	ID        int64     `json:"id"`
	DoctorID  int64     `json:"doctor_id"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
}

// Visit outcome tags recorded in a patient's history.
const (
	OutcomeVisited   = "visited"
	OutcomeWaiting   = "waiting"
	OutcomeCancelled = "cancelled"
)

func ValidOutcome(o string) bool {
	return o == OutcomeVisited || o == OutcomeWaiting || o == OutcomeCancelled
}

// HistoryRecord is a note in the patient's visit history.
type HistoryRecord struct {
	ID            int64     `json:"id"`
	PatientID     int64     `json:"patient_id"`
	DoctorID      int64     `json:"doctor_id"`
	AppointmentID *int64    `json:"appointment_id,omitempty"`
	Outcome       string    `json:"outcome"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
