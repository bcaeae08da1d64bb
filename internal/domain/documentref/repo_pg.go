package documentref

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

const docCols = `id, subject_reference, status, type_code, type_display, description,
	content_url, content_type, author_reference, created_at, updated_at, deleted_at`

var sortColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"status":     "status",
	"type":       "type_code",
}

func (r *repoPG) Create(ctx context.Context, d *DocumentReference) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO document_reference (
			id, subject_reference, status, type_code, type_display, description,
			content_url, content_type, author_reference
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		d.ID, d.SubjectReference, d.Status, d.TypeCode, d.TypeDisplay, d.Description,
		d.ContentURL, d.ContentType, d.AuthorReference,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*DocumentReference, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+docCols+` FROM document_reference WHERE `+db.AndNotDeleted("id = $1"), id)
	d, err := scanDoc(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, access.ErrNotFound
	}
	return d, err
}

func (r *repoPG) Search(ctx context.Context, q SearchQuery) ([]DocumentReference, int, error) {
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
	if q.TypeCode != "" {
		clauses = append(clauses, fmt.Sprintf("type_code = $%d", len(args)+1))
		args = append(args, q.TypeCode)
	}
	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM document_reference WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := access.BuildOrderClause(q.Sort, sortColumns)
	query := fmt.Sprintf(`SELECT %s FROM document_reference WHERE %s %s LIMIT %d OFFSET %d`,
		docCols, where, order, q.Limit, q.Offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []DocumentReference
	for rows.Next() {
		d, err := scanDoc(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *d)
	}
	return out, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, d *DocumentReference) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE document_reference SET
			status=$2, type_code=$3, type_display=$4, description=$5,
			content_url=$6, content_type=$7, author_reference=$8, updated_at=NOW()
		WHERE `+db.AndNotDeleted("id = $1"),
		d.ID, d.Status, d.TypeCode, d.TypeDisplay, d.Description,
		d.ContentURL, d.ContentType, d.AuthorReference,
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
		`UPDATE document_reference SET deleted_at = NOW() WHERE `+db.AndNotDeleted("id = $1"), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return access.ErrNotFound
	}
	return nil
}

func scanDoc(row pgx.Row) (*DocumentReference, error) {
	var d DocumentReference
	err := row.Scan(&d.ID, &d.SubjectReference, &d.Status, &d.TypeCode, &d.TypeDisplay,
		&d.Description, &d.ContentURL, &d.ContentType, &d.AuthorReference,
		&d.CreatedAt, &d.UpdatedAt, &d.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
