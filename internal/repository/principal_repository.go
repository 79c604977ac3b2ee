package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/favorite-board/internal/domain"
)

// PrincipalRepository is the credential store. All mutations are single-row statements.
type PrincipalRepository interface {
	Get(ctx context.Context, email string) (*domain.Principal, error)
	List(ctx context.Context) ([]*domain.Principal, error)
	ListSubscribed(ctx context.Context) ([]*domain.Principal, error)
	// SetToken creates the principal with default flags or replaces only its token fields.
	SetToken(ctx context.Context, email, digest string, expiresAt time.Time) error
	// ConsumeToken atomically clears a live token and returns the holder. At most one
	// concurrent caller wins for a given digest; the rest get ErrNotFound.
	ConsumeToken(ctx context.Context, digest string, now time.Time) (*domain.Principal, error)
	FindByTokenDigest(ctx context.Context, digest string) (*domain.Principal, error)
	Subscribe(ctx context.Context, email string) (domain.SubscribeOutcome, error)
	SetSubscribed(ctx context.Context, email string, subscribed bool) error
	UpsertRoles(ctx context.Context, principal *domain.Principal) error
}

type principalRepository struct {
	pool *pgxpool.Pool
}

// NewPrincipalRepository returns a Postgres-backed implementation.
func NewPrincipalRepository(pool *pgxpool.Pool) PrincipalRepository {
	return &principalRepository{pool: pool}
}

const principalColumns = `email, is_admin, is_editor, is_subscribed, token_digest, token_expires_at, created_at, updated_at`

func scanPrincipal(row pgx.Row) (*domain.Principal, error) {
	var p domain.Principal
	if err := row.Scan(
		&p.Email,
		&p.IsAdmin,
		&p.IsEditor,
		&p.IsSubscribed,
		&p.TokenDigest,
		&p.TokenExpiresAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *principalRepository) Get(ctx context.Context, email string) (*domain.Principal, error) {
	const query = `SELECT ` + principalColumns + ` FROM principals WHERE email=$1`
	return scanPrincipal(r.pool.QueryRow(ctx, query, email))
}

func (r *principalRepository) List(ctx context.Context) ([]*domain.Principal, error) {
	const query = `SELECT ` + principalColumns + ` FROM principals ORDER BY email`
	return r.list(ctx, query)
}

func (r *principalRepository) ListSubscribed(ctx context.Context) ([]*domain.Principal, error) {
	const query = `SELECT ` + principalColumns + ` FROM principals WHERE is_subscribed ORDER BY email`
	return r.list(ctx, query)
}

func (r *principalRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Principal, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var principals []*domain.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		principals = append(principals, p)
	}
	return principals, rows.Err()
}

func (r *principalRepository) SetToken(ctx context.Context, email, digest string, expiresAt time.Time) error {
	const query = `
        INSERT INTO principals (email, is_subscribed, token_digest, token_expires_at)
        VALUES ($1, TRUE, $2, $3)
        ON CONFLICT (email) DO UPDATE
        SET token_digest=EXCLUDED.token_digest, token_expires_at=EXCLUDED.token_expires_at, updated_at=NOW()`

	_, err := r.pool.Exec(ctx, query, email, digest, expiresAt)
	return err
}

func (r *principalRepository) ConsumeToken(ctx context.Context, digest string, now time.Time) (*domain.Principal, error) {
	const query = `
        UPDATE principals SET token_digest=NULL, token_expires_at=NULL, updated_at=NOW()
        WHERE token_digest=$1 AND token_expires_at > $2
        RETURNING ` + principalColumns

	return scanPrincipal(r.pool.QueryRow(ctx, query, digest, now))
}

func (r *principalRepository) FindByTokenDigest(ctx context.Context, digest string) (*domain.Principal, error) {
	const query = `SELECT ` + principalColumns + ` FROM principals WHERE token_digest=$1`
	return scanPrincipal(r.pool.QueryRow(ctx, query, digest))
}

func (r *principalRepository) Subscribe(ctx context.Context, email string) (domain.SubscribeOutcome, error) {
	const query = `
        WITH prev AS (SELECT is_subscribed FROM principals WHERE email=$1)
        INSERT INTO principals (email, is_subscribed)
        VALUES ($1, TRUE)
        ON CONFLICT (email) DO UPDATE SET is_subscribed=TRUE, updated_at=NOW()
        RETURNING (SELECT is_subscribed FROM prev)`

	var previous *bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&previous); err != nil {
		return "", err
	}
	switch {
	case previous == nil:
		return domain.SubscribeCreated, nil
	case *previous:
		return domain.SubscribeAlreadyActive, nil
	default:
		return domain.SubscribeResubscribed, nil
	}
}

func (r *principalRepository) SetSubscribed(ctx context.Context, email string, subscribed bool) error {
	const query = `UPDATE principals SET is_subscribed=$1, updated_at=NOW() WHERE email=$2`
	_, err := r.pool.Exec(ctx, query, subscribed, email)
	return err
}

func (r *principalRepository) UpsertRoles(ctx context.Context, principal *domain.Principal) error {
	const query = `
        INSERT INTO principals (email, is_admin, is_editor, is_subscribed)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (email) DO UPDATE
        SET is_admin=EXCLUDED.is_admin, is_editor=EXCLUDED.is_editor,
            is_subscribed=EXCLUDED.is_subscribed, updated_at=NOW()
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		principal.Email,
		principal.IsAdmin,
		principal.IsEditor,
		principal.IsSubscribed,
	).Scan(&principal.CreatedAt, &principal.UpdatedAt)
}
