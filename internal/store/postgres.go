package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simina1505/Study-Group-Organizer-Backend/internal/models"
)

// PostgresStore handles user account CRUD against PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id                  UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username            VARCHAR(50)  UNIQUE NOT NULL,
			email               VARCHAR(255) UNIQUE NOT NULL,
			password            VARCHAR(255) NOT NULL,
			first_name          VARCHAR(100) NOT NULL DEFAULT '',
			last_name           VARCHAR(100) NOT NULL DEFAULT '',
			city                VARCHAR(100) NOT NULL DEFAULT '',
			profile_picture_key VARCHAR(255) NOT NULL DEFAULT '',
			created_at          TIMESTAMPTZ  DEFAULT NOW()
		)
	`)
	return err
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password, first_name, last_name, city)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		u.Username, u.Email, u.Password, u.FirstName, u.LastName, u.City,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

const userColumns = `id, username, email, password, first_name, last_name, city, profile_picture_key, created_at`

func (s *PostgresStore) scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password,
		&u.FirstName, &u.LastName, &u.City, &u.ProfilePictureKey, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// SetProfilePicture records the blob object key of a user's profile picture.
func (s *PostgresStore) SetProfilePicture(ctx context.Context, username, objectKey string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET profile_picture_key = $1 WHERE username = $2`, objectKey, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
