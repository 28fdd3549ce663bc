package identity

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

type personRepoPG struct{ pool *pgxpool.Pool }

func NewPersonRepoPG(pool *pgxpool.Pool) PersonRepository { return &personRepoPG{pool: pool} }

func (r *personRepoPG) conn(ctx context.Context) queryable {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

func (r *personRepoPG) Create(ctx context.Context, p *Person) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO persons (email, password_hash, first_name, last_name, phone, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		p.Email, p.PasswordHash, p.FirstName, p.LastName, p.Phone, p.Role,
	).Scan(&p.ID, &p.CreatedAt)
	if isUniqueViolation(err) {
		return apperror.Conflictf("email %s is already registered", p.Email)
	}
	return err
}

const personCols = `id, email, password_hash, first_name, last_name, phone, role, created_at`

func scanPerson(row pgx.Row) (*Person, error) {
	var p Person
	err := row.Scan(&p.ID, &p.Email, &p.PasswordHash, &p.FirstName, &p.LastName,
		&p.Phone, &p.Role, &p.CreatedAt)
	return &p, err
}

func (r *personRepoPG) GetByID(ctx context.Context, id int64) (*Person, error) {
	p, err := scanPerson(r.conn(ctx).QueryRow(ctx,
		`SELECT `+personCols+` FROM persons WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFoundf("person %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *personRepoPG) GetByEmail(ctx context.Context, email string) (*Person, error) {
	p, err := scanPerson(r.conn(ctx).QueryRow(ctx,
		`SELECT `+personCols+` FROM persons WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFoundf("person with email %s not found", email)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

func (r *doctorRepoPG) conn(ctx context.Context) queryable {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

func (r *doctorRepoPG) CreateProfile(ctx context.Context, dp *DoctorProfile) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor_profiles (person_id, department_id, cabinet, bonus_percent)
		VALUES ($1, $2, $3, $4)`,
		dp.PersonID, dp.DepartmentID, dp.Cabinet, dp.BonusPercent)
	return err
}

func (r *doctorRepoPG) UpdateProfile(ctx context.Context, dp *DoctorProfile) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor_profiles
		SET department_id = $2, cabinet = $3, bonus_percent = $4
		WHERE person_id = $1`,
		dp.PersonID, dp.DepartmentID, dp.Cabinet, dp.BonusPercent)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFoundf("doctor %d not found", dp.PersonID)
	}
	return nil
}

const doctorQuery = `
	SELECT p.id, p.first_name, p.last_name, p.email, p.phone,
		dp.department_id, d.name, dp.cabinet, dp.bonus_percent
	FROM persons p
	JOIN doctor_profiles dp ON dp.person_id = p.id
	JOIN departments d ON d.id = dp.department_id`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.PersonID, &d.FirstName, &d.LastName, &d.Email, &d.Phone,
		&d.DepartmentID, &d.DepartmentName, &d.Cabinet, &d.BonusPercent)
	return &d, err
}

func (r *doctorRepoPG) GetDoctor(ctx context.Context, personID int64) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, doctorQuery+` WHERE p.id = $1`, personID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFoundf("doctor %d not found", personID)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (r *doctorRepoPG) ListDoctors(ctx context.Context, limit, offset int) ([]Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM doctor_profiles`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		doctorQuery+` ORDER BY p.last_name, p.first_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var doctors []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, 0, err
		}
		doctors = append(doctors, *d)
	}
	return doctors, total, rows.Err()
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
