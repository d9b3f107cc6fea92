package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/channelhub/internal/common"
	"github.com/dmitrijs2005/channelhub/internal/dbx"
	"github.com/dmitrijs2005/channelhub/internal/server/models"
)

const userColumns = `id, username, email, full_name, avatar, cover_image, password, refresh_token, created_at, updated_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	hash, err := HashPassword(user.Password)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO users (username, email, full_name, avatar, cover_image, password)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING ` + userColumns

	row := r.db.QueryRowContext(ctx, query,
		user.UserName, user.Email, user.FullName, user.Avatar, user.CoverImage, hash)

	created, err := scanUser(row)
	if err != nil {
		return nil, writeError(err)
	}

	return created, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE id = $1`

	return r.one(ctx, query, id)
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE username = $1`

	return r.one(ctx, query, username)
}

func (r *PostgresRepository) FindByEmailOrUserName(ctx context.Context, email, username string) (*models.User, error) {
	query :=
		`SELECT ` + userColumns + ` FROM users
		 WHERE ($1 <> '' AND email = $1) OR ($2 <> '' AND username = $2)
		 ORDER BY created_at
		 LIMIT 1`

	return r.one(ctx, query, email, username)
}

func (r *PostgresRepository) UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*models.User, error) {
	query :=
		`UPDATE users SET full_name = $2, email = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, fullName, email))
	if err != nil {
		return nil, writeError(err)
	}
	return user, nil
}

func (r *PostgresRepository) UpdateAvatar(ctx context.Context, id, url string) (*models.User, error) {
	query :=
		`UPDATE users SET avatar = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + userColumns

	return r.one(ctx, query, id, url)
}

func (r *PostgresRepository) UpdateCoverImage(ctx context.Context, id, url string) (*models.User, error) {
	query :=
		`UPDATE users SET cover_image = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + userColumns

	return r.one(ctx, query, id, url)
}

func (r *PostgresRepository) SetRefreshToken(ctx context.Context, id string, token *string) error {
	query :=
		`UPDATE users SET refresh_token = $2
		 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	query :=
		`UPDATE users SET password = $2, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) one(ctx context.Context, query string, args ...any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var refreshToken sql.NullString

	err := row.Scan(&user.ID, &user.UserName, &user.Email, &user.FullName, &user.Avatar,
		&user.CoverImage, &user.Password, &refreshToken, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if refreshToken.Valid {
		user.RefreshToken = &refreshToken.String
	}
	return user, nil
}

func writeError(err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.ErrorNotFound
	case dbx.IsUniqueViolation(err, ""):
		return fmt.Errorf("%w: %v", common.ErrorAlreadyExists, err)
	default:
		return fmt.Errorf("db error: %w", err)
	}
}
