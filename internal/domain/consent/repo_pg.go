package consent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinrec/clinrec/internal/platform/access"
	"github.com/clinrec/clinrec/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const consentCols = `id, subject_reference, status, category, granted_to, provision_type,
	period_start, period_end, created_at, updated_at, deleted_at`

// sortColumns is the allow-list for caller-supplied sort fields.
var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"status":     "status",
}

func (r *repoPG) Create(ctx context.Context, c *Consent) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO consent (
			id, subject_reference, status, category, granted_to, provision_type,
			period_start, period_end
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		c.ID, c.SubjectReference, c.Status, c.Category, c.GrantedTo, c.ProvisionType,
		c.PeriodStart, c.PeriodEnd,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Consent, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+consentCols+` FROM consent WHERE `+db.AndNotDeleted("id = $1"), id)
	c, err := scanConsent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, access.ErrNotFound
	}
	return c, err
}

func (r *repoPG) Search(ctx context.Context, q SearchQuery) ([]Consent, int, error) {
	where, args := buildWhere(q)

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM consent WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := access.BuildOrderClause(q.Sort, sortColumns)
	query := fmt.Sprintf(`SELECT %s FROM consent WHERE %s %s LIMIT %d OFFSET %d`,
		consentCols, where, order, q.Limit, q.Offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Consent
	for rows.Next() {
		c, err := scanConsent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func buildWhere(q SearchQuery) (string, []any) {
	clauses := []string{db.NotDeleted}
	var args []any

	if fc, fargs := q.Filter.SQL("subject_reference", "status", len(args)+1); fc != "" {
		clauses = append(clauses, fc)
		args = append(args, fargs...)
	}
	if q.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, q.Status)
	}
	return strings.Join(clauses, " AND "), args
}

func (r *repoPG) Update(ctx context.Context, c *Consent) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE consent SET
			status=$2, category=$3, granted_to=$4, provision_type=$5,
			period_start=$6, period_end=$7, updated_at=NOW()
		WHERE `+db.AndNotDeleted("id = $1"),
		c.ID, c.Status, c.Category, c.GrantedTo, c.ProvisionType,
		c.PeriodStart, c.PeriodEnd,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return access.ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE consent SET deleted_at = NOW() WHERE `+db.AndNotDeleted("id = $1"), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return access.ErrNotFound
	}
	return nil
}

func scanConsent(row pgx.Row) (*Consent, error) {
	var c Consent
	err := row.Scan(&c.ID, &c.SubjectReference, &c.Status, &c.Category, &c.GrantedTo,
		&c.ProvisionType, &c.PeriodStart, &c.PeriodEnd, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
