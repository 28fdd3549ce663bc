package reporting

import (
	"strconv"
	"time"

	"github.com/clinic/clinic/internal/domain/appointment"
	"github.com/clinic/clinic/internal/platform/apperror"
)

// Filter narrows the set of appointments a report covers. Zero values mean
// "no constraint". Date bounds are inclusive.
type Filter struct {
	DoctorID      int64
	DepartmentID  int64
	PatientID     int64
	DateFrom      *time.Time
	DateTo        *time.Time
	Status        appointment.Status
	PaymentMethod string
}

// FromOptions builds a filter from query-style key/value options. Unknown
// keys are rejected so a typo narrows nothing silently.
func FromOptions(options map[string]string) (Filter, error) {
	var f Filter
	for key, value := range options {
		if value == "" {
			continue
		}
		switch key {
		case "doctor_id":
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return f, apperror.Validationf("doctor_id must be an integer")
			}
			f.DoctorID = id
		case "department_id":
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return f, apperror.Validationf("department_id must be an integer")
			}
			f.DepartmentID = id
		case "patient_id":
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return f, apperror.Validationf("patient_id must be an integer")
			}
			f.PatientID = id
		case "date_from", "date_gte":
			d, err := time.Parse("2006-01-02", value)
			if err != nil {
				return f, apperror.Validationf("%s must be YYYY-MM-DD", key)
			}
			f.DateFrom = &d
		case "date_to", "date_lte":
			d, err := time.Parse("2006-01-02", value)
			if err != nil {
				return f, apperror.Validationf("%s must be YYYY-MM-DD", key)
			}
			f.DateTo = &d
		case "status":
			st := appointment.Status(value)
			if !st.Valid() {
				return f, apperror.Validationf("invalid status: %s", value)
			}
			f.Status = st
		case "payment_method":
			if !appointment.ValidPaymentMethod(value) {
				return f, apperror.Validationf("invalid payment method: %s", value)
			}
			f.PaymentMethod = value
		default:
			return f, apperror.Validationf("unknown filter: %s", key)
		}
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		return f, apperror.Validationf("date_to is before date_from")
	}
	return f, nil
}

// Matches reports whether a line passes the filter. The SQL layer applies the
// same constraints server-side; this predicate backs in-memory tests and any
// post-query narrowing.
func (f Filter) Matches(l Line) bool {
	if f.DoctorID != 0 && l.DoctorID != f.DoctorID {
		return false
	}
	if f.DepartmentID != 0 && l.DepartmentID != f.DepartmentID {
		return false
	}
	if f.PatientID != 0 && l.PatientID != f.PatientID {
		return false
	}
	if f.DateFrom != nil && l.Date.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && l.Date.After(*f.DateTo) {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	if f.PaymentMethod != "" && l.PaymentMethod != f.PaymentMethod {
		return false
	}
	return true
}
