package patientlink

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

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

func (r *repoPG) Create(ctx context.Context, link *Link) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_link (id, patient_id, account_id) VALUES ($1, $2, $3)`,
		link.ID, link.PatientID, link.AccountID,
	)
	return err
}

func (r *repoPG) FindByAccount(ctx context.Context, accountID string) ([]Link, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, account_id, created_at, deleted_at
		FROM patient_link
		WHERE `+db.AndNotDeleted("account_id = $1"), accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var l Link
		if err := rows.Scan(&l.ID, &l.PatientID, &l.AccountID, &l.CreatedAt, &l.DeletedAt); err != nil {
			return nil, err
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

func (r *repoPG) FindPatientIDsByAccount(ctx context.Context, accountID string) ([]string, error) {
	links, err := r.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.PatientID.String())
	}
	return ids, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE patient_link SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	return err
}
