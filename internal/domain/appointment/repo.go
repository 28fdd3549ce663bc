package appointment

import (
	"context"
	"time"
)

// ListQuery narrows the appointment listing. Zero values mean "no
// constraint".
type ListQuery struct {
	DoctorID     int64
	DepartmentID int64
	Date         *time.Time
	Status       Status
}

type Repository interface {
	Create(ctx context.Context, r *Record) error
	Update(ctx context.Context, r *Record) error
	GetByID(ctx context.Context, id int64) (*Record, error)
	List(ctx context.Context, q ListQuery, limit, offset int) ([]Record, int, error)
	ListByPatient(ctx context.Context, patientID int64) ([]Record, error)
	StatusCounts(ctx context.Context, patientID int64) (map[Status]int, error)
	DoctorDay(ctx context.Context, doctorID int64, date time.Time) ([]Record, error)
	// DeleteByIDs removes the given appointments belonging to the patient and
	// returns how many rows were actually deleted.
	DeleteByIDs(ctx context.Context, patientID int64, ids []int64) (int64, error)
	// SlotTaken reports whether a non-cancelled appointment occupies the slot.
	SlotTaken(ctx context.Context, doctorID int64, date time.Time, startTime string) (bool, error)
}

type ScheduleRepository interface {
	Create(ctx context.Context, sch *Schedule) error
	Update(ctx context.Context, sch *Schedule) error
	GetByID(ctx context.Context, id int64) (*Schedule, error)
	Delete(ctx context.Context, id int64) error
	// ListByDoctor returns the doctor's slots within the inclusive date range,
	// ordered by date and start time.
	ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]Schedule, error)
	SlotTaken(ctx context.Context, doctorID int64, date time.Time, startTime string) (bool, error)
}

type HistoryRepository interface {
	Add(ctx context.Context, h *HistoryRecord) error
	ListByPatient(ctx context.Context, patientID int64) ([]HistoryRecord, error)
}
