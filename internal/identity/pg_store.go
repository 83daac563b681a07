package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ssoweb/internal/pg"
)

// PgStore implements Store on a PostgreSQL pool. The unique index on
// (provider, subject_id) is the final arbiter for concurrent first logins.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

const identityColumns = "id, provider, subject_id, username, email, avatar_url, created_at, last_login_at"

func (s *PgStore) FindByProvider(ctx context.Context, provider, subjectID string) (*Identity, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+identityColumns+" FROM identities WHERE provider = $1 AND subject_id = $2",
		provider, subjectID)

	ident, err := scanIdentity(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return ident, nil
}

func (s *PgStore) Create(ctx context.Context, in NewIdentity) (*Identity, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO identities (provider, subject_id, username, email, avatar_url, created_at, last_login_at)
		 VALUES ($1, $2, $3, $4, $5, now(), now())
		 RETURNING `+identityColumns,
		in.Provider, in.SubjectID, in.Username, in.Email, in.AvatarURL)

	ident, err := scanIdentity(row)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create identity: %w", err)
	}
	return ident, nil
}

func (s *PgStore) TouchLastLogin(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE identities SET last_login_at = now() WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanIdentity(row pgx.Row) (*Identity, error) {
	var ident Identity
	if err := row.Scan(
		&ident.ID,
		&ident.Provider,
		&ident.SubjectID,
		&ident.Username,
		&ident.Email,
		&ident.AvatarURL,
		&ident.CreatedAt,
		&ident.LastLoginAt,
	); err != nil {
		return nil, err
	}
	return &ident, nil
}

var _ Store = (*PgStore)(nil)
