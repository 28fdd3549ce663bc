package registry

import (
	"context"
	"errors"

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

type departmentRepoPG struct{ pool *pgxpool.Pool }

func NewDepartmentRepoPG(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepoPG{pool: pool}
}

func (r *departmentRepoPG) conn(ctx context.Context) queryable {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

func (r *departmentRepoPG) Create(ctx context.Context, d *Department) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO departments (name) VALUES ($1)
		RETURNING id, created_at`, d.Name,
	).Scan(&d.ID, &d.CreatedAt)
	if isUniqueViolation(err) {
		return apperror.Conflictf("department %q already exists", d.Name)
	}
	return err
}

func (r *departmentRepoPG) Update(ctx context.Context, d *Department) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE departments SET name = $2 WHERE id = $1`, d.ID, d.Name)
	if isUniqueViolation(err) {
		return apperror.Conflictf("department %q already exists", d.Name)
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFoundf("department %d not found", d.ID)
	}
	return nil
}

func (r *departmentRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.Conflictf("department %d is still in use", id)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFoundf("department %d not found", id)
	}
	return nil
}

func (r *departmentRepoPG) GetByID(ctx context.Context, id int64) (*Department, error) {
	var d Department
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, name, created_at FROM departments WHERE id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFoundf("department %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *departmentRepoPG) List(ctx context.Context) ([]Department, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, name, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var departments []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

type serviceRepoPG struct{ pool *pgxpool.Pool }

func NewServiceRepoPG(pool *pgxpool.Pool) ServiceRepository { return &serviceRepoPG{pool: pool} }

func (r *serviceRepoPG) conn(ctx context.Context) queryable {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

const serviceCols = `id, department_id, name, price, active, created_at`

func scanService(row pgx.Row) (*MedicalService, error) {
	var s MedicalService
	err := row.Scan(&s.ID, &s.DepartmentID, &s.Name, &s.Price, &s.Active, &s.CreatedAt)
	return &s, err
}

func (r *serviceRepoPG) Create(ctx context.Context, s *MedicalService) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_services (department_id, name, price, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		s.DepartmentID, s.Name, s.Price, s.Active,
	).Scan(&s.ID, &s.CreatedAt)
	if isUniqueViolation(err) {
		return apperror.Conflictf("service %q already exists in this department", s.Name)
	}
	return err
}

func (r *serviceRepoPG) Update(ctx context.Context, s *MedicalService) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_services
		SET department_id = $2, name = $3, price = $4, active = $5
		WHERE id = $1`,
		s.ID, s.DepartmentID, s.Name, s.Price, s.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFoundf("service %d not found", s.ID)
	}
	return nil
}

func (r *serviceRepoPG) GetByID(ctx context.Context, id int64) (*MedicalService, error) {
	s, err := scanService(r.conn(ctx).QueryRow(ctx,
		`SELECT `+serviceCols+` FROM medical_services WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFoundf("service %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *serviceRepoPG) List(ctx context.Context, departmentID int64, limit, offset int) ([]MedicalService, int, error) {
	where := ``
	args := []interface{}{}
	if departmentID > 0 {
		where = ` WHERE department_id = $1`
		args = append(args, departmentID)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM medical_services`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + serviceCols + ` FROM medical_services` + where + ` ORDER BY name`
	if departmentID > 0 {
		query += ` LIMIT $2 OFFSET $3`
	} else {
		query += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var services []MedicalService
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, 0, err
		}
		services = append(services, *s)
	}
	return services, total, rows.Err()
}

func (r *serviceRepoPG) PriceList(ctx context.Context) ([]PriceListEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT s.id, s.name, d.id, d.name, s.price
		FROM medical_services s
		JOIN departments d ON d.id = s.department_id
		WHERE s.active
		ORDER BY d.name, s.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []PriceListEntry
	for rows.Next() {
		var e PriceListEntry
		if err := rows.Scan(&e.ServiceID, &e.ServiceName, &e.DepartmentID, &e.DepartmentName, &e.Price); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
