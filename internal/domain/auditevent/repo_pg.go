package auditevent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const eventCols = `id, action, resource_type, resource_id, identity_id, client_id,
	patient, fhir_user, scopes, ip_address, user_agent, method, path,
	status_code, error_message, created_at`

func (r *repoPG) Insert(ctx context.Context, e *Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO audit_event (
			id, action, resource_type, resource_id, identity_id, client_id,
			patient, fhir_user, scopes, ip_address, user_agent, method, path,
			status_code, error_message, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		e.ID, e.Action, e.ResourceType, e.ResourceID, e.IdentityID, e.ClientID,
		e.Patient, e.FHIRUser, e.Scopes, e.IPAddress, e.UserAgent, e.Method, e.Path,
		e.StatusCode, e.ErrorMessage, e.CreatedAt,
	)
	return err
}

func (r *repoPG) Search(ctx context.Context, q SearchQuery) ([]Event, int, error) {
	clauses := []string{"TRUE"}
	var args []any

	addClause := func(cond string, val any) {
		clauses = append(clauses, fmt.Sprintf(cond, len(args)+1))
		args = append(args, val)
	}
	if q.Action != "" {
		addClause("action = $%d", q.Action)
	}
	if q.ResourceType != "" {
		addClause("resource_type = $%d", q.ResourceType)
	}
	if q.ResourceID != "" {
		addClause("resource_id = $%d", q.ResourceID)
	}
	if q.IdentityID != "" {
		addClause("identity_id = $%d", q.IdentityID)
	}
	if !q.Since.IsZero() {
		addClause("created_at >= $%d", q.Since)
	}
	if !q.Until.IsZero() {
		addClause("created_at <= $%d", q.Until)
	}
	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_event WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM audit_event WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		eventCols, where, q.Limit, q.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *e)
	}
	return out, total, rows.Err()
}

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(&e.ID, &e.Action, &e.ResourceType, &e.ResourceID, &e.IdentityID,
		&e.ClientID, &e.Patient, &e.FHIRUser, &e.Scopes, &e.IPAddress, &e.UserAgent,
		&e.Method, &e.Path, &e.StatusCode, &e.ErrorMessage, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
