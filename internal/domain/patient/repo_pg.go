package patient

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

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

const patientCols = `id, first_name, last_name, birth_date, gender, phone, address, created_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.BirthDate, &p.Gender,
		&p.Phone, &p.Address, &p.CreatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO patients (first_name, last_name, birth_date, gender, phone, address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		p.FirstName, p.LastName, p.BirthDate, p.Gender, p.Phone, p.Address,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *repoPG) UpdateContact(ctx context.Context, id int64, phone, address string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET phone = $2, address = $3 WHERE id = $1`, id, phone, address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFoundf("patient %d not found", id)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFoundf("patient %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) Search(ctx context.Context, query string, limit, offset int) ([]Patient, int, error) {
	where := ``
	args := []interface{}{}
	if query != "" {
		where = ` WHERE first_name ILIKE '%' || $1 || '%'
			OR last_name ILIKE '%' || $1 || '%'
			OR phone LIKE '%' || $1 || '%'`
		args = append(args, query)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT count(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sql := `SELECT ` + patientCols + ` FROM patients` + where + ` ORDER BY last_name, first_name`
	if query != "" {
		sql += ` LIMIT $2 OFFSET $3`
	} else {
		sql += ` LIMIT $1 OFFSET $2`
	}
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, *p)
	}
	return patients, total, rows.Err()
}
