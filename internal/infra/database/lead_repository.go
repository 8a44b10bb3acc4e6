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

const leadColumns = `id, name, email, phone, company, location, status, source, value, score,
	assigned_to, created_date, conversion_date, last_contacted, created_at, updated_at`

type LeadRepository struct {
	DB      *sql.DB
	Dialect string
	Now     func() time.Time
}

func NewLeadRepository(db *sql.DB, dialect string) *LeadRepository {
	return &LeadRepository{DB: db, Dialect: dialect, Now: clock}
}

func (r *LeadRepository) FetchAll(ctx context.Context) ([]*entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := []*entity.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

func (r *LeadRepository) Insert(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	l := *lead
	now := r.Now()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedDate.IsZero() {
		l.CreatedDate = now
	}
	l.CreatedDate = utc(l.CreatedDate)
	l.CreatedAt, l.UpdatedAt = now, now

	query := `
		INSERT INTO leads (` + leadColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.DB.ExecContext(ctx, query,
		l.ID, l.Name, l.Email, l.Phone, l.Company, l.Location, string(l.Status), l.Source,
		l.Value, l.Score, l.AssignedTo, l.CreatedDate,
		nullTime(l.ConversionDate), nullTime(l.LastContacted),
		l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert lead: %w", err)
	}
	return r.FindByID(ctx, l.ID)
}

// Update lê, aplica o patch e grava na mesma transação.
func (r *LeadRepository) Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	var out *entity.Lead
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
		if r.Dialect == DialectPostgres {
			query += ` FOR UPDATE`
		}
		l, err := scanLead(tx.QueryRowContext(ctx, query, id))
		if err != nil {
			return err
		}

		patch.Apply(l)
		l.UpdatedAt = r.Now()
		if err := writeLead(ctx, tx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return out, nil
}

// Replace volta a linha para a imagem informada, inclusive updated_at.
func (r *LeadRepository) Replace(ctx context.Context, lead *entity.Lead) error {
	err := writeLead(ctx, r.DB, lead)
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return fmt.Errorf("failed to replace lead: %w", err)
	}
	return err
}

func (r *LeadRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete lead: %w", err)
	}
	if err := checkAffected(res); err != nil {
		return false, err
	}
	return true, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func writeLead(ctx context.Context, db execer, l *entity.Lead) error {
	query := `
		UPDATE leads SET
			name = $1, email = $2, phone = $3, company = $4, location = $5,
			status = $6, source = $7, value = $8, score = $9, assigned_to = $10,
			created_date = $11, conversion_date = $12, last_contacted = $13,
			created_at = $14, updated_at = $15
		WHERE id = $16
	`
	res, err := db.ExecContext(ctx, query,
		l.Name, l.Email, l.Phone, l.Company, l.Location,
		string(l.Status), l.Source, l.Value, l.Score, l.AssignedTo,
		utc(l.CreatedDate), nullTime(l.ConversionDate), nullTime(l.LastContacted),
		utc(l.CreatedAt), utc(l.UpdatedAt),
		l.ID,
	)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func scanLead(row scanner) (*entity.Lead, error) {
	var (
		l                     entity.Lead
		status                string
		conversion, contacted sql.NullTime
	)
	err := row.Scan(
		&l.ID, &l.Name, &l.Email, &l.Phone, &l.Company, &l.Location,
		&status, &l.Source, &l.Value, &l.Score, &l.AssignedTo,
		&l.CreatedDate, &conversion, &contacted, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lead: %w", err)
	}

	l.Status = entity.LeadStatus(status)
	l.CreatedDate = l.CreatedDate.UTC()
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()
	l.ConversionDate = timePtr(conversion)
	l.LastContacted = timePtr(contacted)
	return &l, nil
}
