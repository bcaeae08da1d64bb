package encounter

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

const encCols = `id, subject_reference, status, class_code, type_code,
	practitioner_reference, period_start, period_end, reason_text,
	created_at, updated_at, deleted_at`

var sortColumns = map[string]string{
	"created_at":   "created_at",
	"period_start": "period_start",
	"status":       "status",
}

func (r *repoPG) Create(ctx context.Context, e *Encounter) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO encounter (
			id, subject_reference, status, class_code, type_code,
			practitioner_reference, period_start, period_end, reason_text
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.SubjectReference, e.Status, e.ClassCode, e.TypeCode,
		e.PractitionerReference, e.PeriodStart, e.PeriodEnd, e.ReasonText,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Encounter, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+encCols+` FROM encounter WHERE `+db.AndNotDeleted("id = $1"), id)
	e, err := scanEnc(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, access.ErrNotFound
	}
	return e, err
}

func (r *repoPG) Search(ctx context.Context, q SearchQuery) ([]Encounter, int, error) {
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
	if q.Practitioner != "" {
		clauses = append(clauses, fmt.Sprintf("practitioner_reference = $%d", len(args)+1))
		args = append(args, q.Practitioner)
	}
	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM encounter WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := access.BuildOrderClause(q.Sort, sortColumns)
	query := fmt.Sprintf(`SELECT %s FROM encounter WHERE %s %s LIMIT %d OFFSET %d`,
		encCols, where, order, q.Limit, q.Offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Encounter
	for rows.Next() {
		e, err := scanEnc(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, e *Encounter) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE encounter SET
			status=$2, class_code=$3, type_code=$4, practitioner_reference=$5,
			period_start=$6, period_end=$7, reason_text=$8, updated_at=NOW()
		WHERE `+db.AndNotDeleted("id = $1"),
		e.ID, e.Status, e.ClassCode, e.TypeCode, e.PractitionerReference,
		e.PeriodStart, e.PeriodEnd, e.ReasonText,
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
		`UPDATE encounter SET deleted_at = NOW() WHERE `+db.AndNotDeleted("id = $1"), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return access.ErrNotFound
	}
	return nil
}

func scanEnc(row pgx.Row) (*Encounter, error) {
	var e Encounter
	err := row.Scan(&e.ID, &e.SubjectReference, &e.Status, &e.ClassCode, &e.TypeCode,
		&e.PractitionerReference, &e.PeriodStart, &e.PeriodEnd, &e.ReasonText,
		&e.CreatedAt, &e.UpdatedAt, &e.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
