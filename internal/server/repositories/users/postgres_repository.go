package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/pakegate/internal/common"
	"github.com/dmitrijs2005/pakegate/internal/dbx"
	"github.com/dmitrijs2005/pakegate/internal/server/models"
)

const pgUniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
	tx dbx.TxStarter
}

// NewPostgresRepository binds the repository to db. Save runs its two
// inserts in one transaction started on db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, tx: db}
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*models.UserRecord, error) {
	query :=
		`SELECT u.id, u.username, u.wallet, u.salt, u.created_at, c.suite, c.credential
		 FROM users u
		 JOIN credentials c ON c.user_id = u.id
		 WHERE u.username = $1
		 `

	rec := &models.UserRecord{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&rec.ID, &rec.Username, &rec.Wallet, &rec.Salt, &rec.CreatedAt, &rec.Suite, &rec.Credential)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) Save(ctx context.Context, rec *models.UserRecord) error {
	return dbx.WithTx(ctx, r.tx, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, wallet, salt, created_at)
			 VALUES ($1, $2, $3, $4, $5)
			 `,
			rec.ID, rec.Username, rec.Wallet, rec.Salt, rec.CreatedAt)
		if err != nil {
			return mapInsertError(err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO credentials (user_id, suite, credential)
			 VALUES ($1, $2, $3)
			 `,
			rec.ID, rec.Suite, rec.Credential)
		if err != nil {
			return mapInsertError(err)
		}
		return nil
	})
}

func mapInsertError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return common.ErrAlreadyExists
	}
	return fmt.Errorf("db error: %w", err)
}
