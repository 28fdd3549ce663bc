package reporting

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type lineSourcePG struct{ pool *pgxpool.Pool }

func NewLineSourcePG(pool *pgxpool.Pool) LineSource { return &lineSourcePG{pool: pool} }

const lineQuery = `
	SELECT a.id, a.patient_id, a.doctor_id, a.service_id, a.date, a.start_time,
		a.status, a.price, a.discount, a.payment_method, a.paid_at, a.created_at,
		pt.first_name || ' ' || pt.last_name,
		dr.first_name || ' ' || dr.last_name,
		dp.cabinet, dp.bonus_percent,
		d.id, d.name,
		ms.name
	FROM appointments a
	JOIN patients pt ON pt.id = a.patient_id
	JOIN persons dr ON dr.id = a.doctor_id
	JOIN doctor_profiles dp ON dp.person_id = a.doctor_id
	JOIN departments d ON d.id = dp.department_id
	JOIN medical_services ms ON ms.id = a.service_id`

// compile renders the filter as a WHERE clause with positional args.
func compile(f Filter) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	add := func(expr string, value interface{}) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(expr, len(args)))
	}

	if f.DoctorID != 0 {
		add("a.doctor_id = $%d", f.DoctorID)
	}
	if f.DepartmentID != 0 {
		add("d.id = $%d", f.DepartmentID)
	}
	if f.PatientID != 0 {
		add("a.patient_id = $%d", f.PatientID)
	}
	if f.DateFrom != nil {
		add("a.date >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("a.date <= $%d", *f.DateTo)
	}
	if f.Status != "" {
		add("a.status = $%d", f.Status)
	}
	if f.PaymentMethod != "" {
		add("a.payment_method = $%d", f.PaymentMethod)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *lineSourcePG) Lines(ctx context.Context, f Filter) ([]Line, error) {
	where, args := compile(f)
	rows, err := s.pool.Query(ctx, lineQuery+where+` ORDER BY a.date, a.start_time, a.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.PatientID, &l.DoctorID, &l.ServiceID,
			&l.Date, &l.StartTime, &l.Status, &l.Price, &l.Discount,
			&l.PaymentMethod, &l.PaidAt, &l.CreatedAt,
			&l.PatientName, &l.DoctorName, &l.Cabinet, &l.BonusPercent,
			&l.DepartmentID, &l.DepartmentName, &l.ServiceName); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
