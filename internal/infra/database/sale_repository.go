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

const saleColumns = `id, customer_id, lead_id, customer, product, amount, date, status, created_at, updated_at`

type SaleRepository struct {
	DB      *sql.DB
	Dialect string
	Now     func() time.Time
}

func NewSaleRepository(db *sql.DB, dialect string) *SaleRepository {
	return &SaleRepository{DB: db, Dialect: dialect, Now: clock}
}

func (r *SaleRepository) FetchAll(ctx context.Context) ([]*entity.Sale, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	sales := []*entity.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (r *SaleRepository) FindByID(ctx context.Context, id string) (*entity.Sale, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	return scanSale(row)
}

func (r *SaleRepository) Insert(ctx context.Context, sale *entity.Sale) (*entity.Sale, error) {
	s := *sale
	now := r.Now()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.Date.IsZero() {
		s.Date = now
	}
	if s.Status == "" {
		s.Status = entity.SaleStatusPending
	}
	s.CreatedAt, s.UpdatedAt = now, now

	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.DB.ExecContext(ctx, query,
		s.ID, nullString(s.CustomerID), nullString(s.LeadID), s.Customer, s.Product,
		s.Amount, utc(s.Date), string(s.Status), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sale: %w", err)
	}
	return r.FindByID(ctx, s.ID)
}

func (r *SaleRepository) Update(ctx context.Context, id string, patch entity.SalePatch) (*entity.Sale, error) {
	var out *entity.Sale
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
		if r.Dialect == DialectPostgres {
			query += ` FOR UPDATE`
		}
		s, err := scanSale(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			return err
		}

		patch.Apply(s)
		s.UpdatedAt = r.Now()

		res, err := tx.ExecContext(ctx, `
			UPDATE sales SET
				customer_id = $1, customer = $2, product = $3, amount = $4,
				date = $5, status = $6, updated_at = $7
			WHERE id = $8
		`,
			nullString(s.CustomerID), s.Customer, s.Product, s.Amount,
			utc(s.Date), string(s.Status), s.UpdatedAt,
			s.ID,
		)
		if err != nil {
			return err
		}
		if err := checkAffected(res); err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update sale: %w", err)
	}
	return out, nil
}

func (r *SaleRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete sale: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return false, err
	}
	return true, nil
}

func scanSale(row scanner) (*entity.Sale, error) {
	var (
		s                  entity.Sale
		customerID, leadID sql.NullString
		status             string
	)
	err := row.Scan(
		&s.ID, &customerID, &leadID, &s.Customer, &s.Product,
		&s.Amount, &s.Date, &status, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sale: %w", err)
	}

	s.CustomerID = customerID.String
	s.LeadID = leadID.String
	s.Status = entity.SaleStatus(status)
	s.Date = s.Date.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}
