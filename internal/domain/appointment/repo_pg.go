package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/apperror"
	"github.com/clinic/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

const recordCols = `id, patient_id, doctor_id, service_id, date, start_time,
	status, price, discount, payment_method, paid_at, created_at`

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.ServiceID,
		&rec.Date, &rec.StartTime, &rec.Status, &rec.Price, &rec.Discount,
		&rec.PaymentMethod, &rec.PaidAt, &rec.CreatedAt)
	return &rec, err
}

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointments (patient_id, doctor_id, service_id, date, start_time,
			status, price, discount, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		rec.PatientID, rec.DoctorID, rec.ServiceID, rec.Date, rec.StartTime,
		rec.Status, rec.Price, rec.Discount, rec.PaymentMethod,
	).Scan(&rec.ID, &rec.CreatedAt)
	if isUniqueViolation(err) {
		return apperror.Conflictf("doctor %d already has an appointment at %s %s",
			rec.DoctorID, rec.Date.Format("2006-01-02"), rec.StartTime)
	}
	return err
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments
		SET status = $2, discount = $3, payment_method = $4, paid_at = $5
		WHERE id = $1`,
		rec.ID, rec.Status, rec.Discount, rec.PaymentMethod, rec.PaidAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFoundf("appointment %d not found", rec.ID)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Record, error) {
	rec, err := scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM appointments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFoundf("appointment %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *repoPG) collect(rows pgx.Rows) ([]Record, error) {
	defer rows.Close()
	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (r *repoPG) List(ctx context.Context, q ListQuery, limit, offset int) ([]Record, int, error) {
	var clauses []string
	var args []interface{}
	add := func(expr string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}

	if q.DoctorID != 0 {
		add("a.doctor_id = $%d", q.DoctorID)
	}
	if q.DepartmentID != 0 {
		add("dp.department_id = $%d", q.DepartmentID)
	}
	if q.Date != nil {
		add("a.date = $%d", *q.Date)
	}
	if q.Status != "" {
		add("a.status = $%d", q.Status)
	}

	from := ` FROM appointments a
		JOIN doctor_profiles dp ON dp.person_id = a.doctor_id`
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT count(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	cols := `a.id, a.patient_id, a.doctor_id, a.service_id, a.date, a.start_time,
		a.status, a.price, a.discount, a.payment_method, a.paid_at, a.created_at`
	sql := fmt.Sprintf(`SELECT %s%s%s ORDER BY a.date DESC, a.start_time DESC LIMIT $%d OFFSET $%d`,
		cols, from, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	records, err := r.collect(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID int64) ([]Record, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM appointments
		WHERE patient_id = $1 ORDER BY date DESC, start_time DESC`, patientID)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *repoPG) StatusCounts(ctx context.Context, patientID int64) (map[Status]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT status, count(*) FROM appointments
		WHERE patient_id = $1 GROUP BY status`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[Status]int)
	for rows.Next() {
		var s Status
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		counts[s] = n
	}
	return counts, rows.Err()
}

func (r *repoPG) DoctorDay(ctx context.Context, doctorID int64, date time.Time) ([]Record, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM appointments
		WHERE doctor_id = $1 AND date = $2 ORDER BY start_time`, doctorID, date)
	if err != nil {
		return nil, err
	}
	return r.collect(rows)
}

func (r *repoPG) DeleteByIDs(ctx context.Context, patientID int64, ids []int64) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM appointments WHERE patient_id = $1 AND id = ANY($2)`, patientID, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) SlotTaken(ctx context.Context, doctorID int64, date time.Time, startTime string) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1 AND date = $2 AND start_time = $3 AND status <> 'cancelled'
		)`, doctorID, date, startTime).Scan(&taken)
	return taken, err
}

type scheduleRepoPG struct{ pool *pgxpool.Pool }

func NewScheduleRepoPG(pool *pgxpool.Pool) ScheduleRepository { return &scheduleRepoPG{pool: pool} }

func (r *scheduleRepoPG) conn(ctx context.Context) queryable {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

const scheduleCols = `id, doctor_id, date, start_time, end_time, available, created_at`

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var sch Schedule
	err := row.Scan(&sch.ID, &sch.DoctorID, &sch.Date, &sch.StartTime,
		&sch.EndTime, &sch.Available, &sch.CreatedAt)
	return &sch, err
}

func (r *scheduleRepoPG) Create(ctx context.Context, sch *Schedule) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctor_schedules (doctor_id, date, start_time, end_time, available)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		sch.DoctorID, sch.Date, sch.StartTime, sch.EndTime, sch.Available,
	).Scan(&sch.ID, &sch.CreatedAt)
	if isUniqueViolation(err) {
		return apperror.Conflictf("doctor %d already has a schedule slot at %s %s",
			sch.DoctorID, sch.Date.Format("2006-01-02"), sch.StartTime)
	}
	return err
}

func (r *scheduleRepoPG) Update(ctx context.Context, sch *Schedule) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor_schedules
		SET date = $2, start_time = $3, end_time = $4, available = $5
		WHERE id = $1`,
		sch.ID, sch.Date, sch.StartTime, sch.EndTime, sch.Available)
	if isUniqueViolation(err) {
		return apperror.Conflictf("doctor %d already has a schedule slot at %s %s",
			sch.DoctorID, sch.Date.Format("2006-01-02"), sch.StartTime)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFoundf("schedule %d not found", sch.ID)
	}
	return nil
}

func (r *scheduleRepoPG) GetByID(ctx context.Context, id int64) (*Schedule, error) {
	sch, err := scanSchedule(r.conn(ctx).QueryRow(ctx,
		`SELECT `+scheduleCols+` FROM doctor_schedules WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFoundf("schedule %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return sch, nil
}

func (r *scheduleRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor_schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFoundf("schedule %d not found", id)
	}
	return nil
}

func (r *scheduleRepoPG) ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]Schedule, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+scheduleCols+` FROM doctor_schedules
		WHERE doctor_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, start_time`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []Schedule
	for rows.Next() {
		sch, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *sch)
	}
	return schedules, rows.Err()
}

func (r *scheduleRepoPG) SlotTaken(ctx context.Context, doctorID int64, date time.Time, startTime string) (bool, error) {
	var taken bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM doctor_schedules
			WHERE doctor_id = $1 AND date = $2 AND start_time = $3
		)`, doctorID, date, startTime).Scan(&taken)
	return taken, err
}

type historyRepoPG struct{ pool *pgxpool.Pool }

func NewHistoryRepoPG(pool *pgxpool.Pool) HistoryRepository { return &historyRepoPG{pool: pool} }

func (r *historyRepoPG) conn(ctx context.Context) queryable {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

func (r *historyRepoPG) Add(ctx context.Context, h *HistoryRecord) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO history_records (patient_id, doctor_id, appointment_id, outcome, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		h.PatientID, h.DoctorID, h.AppointmentID, h.Outcome, h.Note,
	).Scan(&h.ID, &h.CreatedAt)
}

func (r *historyRepoPG) ListByPatient(ctx context.Context, patientID int64) ([]HistoryRecord, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, doctor_id, appointment_id, outcome, note, created_at
		FROM history_records
		WHERE patient_id = $1 ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var h HistoryRecord
		if err := rows.Scan(&h.ID, &h.PatientID, &h.DoctorID, &h.AppointmentID,
			&h.Outcome, &h.Note, &h.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, h)
	}
	return records, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
