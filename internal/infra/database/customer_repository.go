package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/ligue-crm/internal/entity"
)

const customerColumns = `id, name, email, phone, company, location, status, join_date, created_at, updated_at`

type CustomerRepository struct {
	DB      *sql.DB
	Dialect string
	Now     func() time.Time
}

func NewCustomerRepository(db *sql.DB, dialect string) *CustomerRepository {
	return &CustomerRepository{DB: db, Dialect: dialect, Now: clock}
}

func (r *CustomerRepository) FetchAll(ctx context.Context) ([]*entity.Customer, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	customers := []*entity.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*entity.Customer, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	return scanCustomer(row)
}

// FindByEmail ignora maiúsculas/minúsculas, igual ao índice único.
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*entity.Customer, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE lower(email) = lower($1)`, email)
	return scanCustomer(row)
}

func (r *CustomerRepository) Insert(ctx context.Context, customer *entity.Customer) (*entity.Customer, error) {
	c := *customer
	now := r.Now()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.JoinDate.IsZero() {
		c.JoinDate = now
	}
	if c.Status == "" {
		c.Status = entity.CustomerStatusActive
	}
	c.CreatedAt, c.UpdatedAt = now, now

	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.DB.ExecContext(ctx, query,
		c.ID, c.Name, c.Email, c.Phone, c.Company, c.Location, string(c.Status),
		utc(c.JoinDate), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to insert customer: %w", err)
	}
	return r.FindByID(ctx, c.ID)
}

func (r *CustomerRepository) Update(ctx context.Context, id string, patch entity.CustomerPatch) (*entity.Customer, error) {
	var out *entity.Customer
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
		if r.Dialect == DialectPostgres {
			query += ` FOR UPDATE`
		}
		c, err := scanCustomer(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			return err
		}

		patch.Apply(c)
		c.UpdatedAt = r.Now()

		res, err := tx.ExecContext(ctx, `
			UPDATE customers SET
				name = $1, email = $2, phone = $3, company = $4, location = $5,
				status = $6, join_date = $7, updated_at = $8
			WHERE id = $9
		`,
			c.Name, c.Email, c.Phone, c.Company, c.Location,
			string(c.Status), utc(c.JoinDate), c.UpdatedAt,
			c.ID,
		)
		if err != nil {
			return err
		}
		if err := checkAffected(res); err != nil {
			return err
		}
		out = c
		return nil
	})
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, entity.ErrNotFound):
		return nil, err
	case isUniqueViolation(err):
		return nil, entity.ErrEmailAlreadyExists
	default:
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
}

// Delete não mexe nas vendas: a FK zera customer_id e o nome continua na venda.
func (r *CustomerRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete customer: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return false, err
	}
	return true, nil
}

func scanCustomer(row scanner) (*entity.Customer, error) {
	var (
		c      entity.Customer
		status string
	)
	err := row.Scan(
		&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Location,
		&status, &c.JoinDate, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan customer: %w", err)
	}

	c.Status = entity.CustomerStatus(status)
	c.JoinDate = c.JoinDate.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}
