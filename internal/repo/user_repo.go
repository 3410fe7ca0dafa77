package repo

import (
	"context"
	"database/sql"
	"time"

	dom "github.com/josenava/meal-calendar/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides user persistence.
// Lookups return dom.ErrNotFound, Create returns dom.ErrUsernameTaken on duplicates.
type UserRepo interface {
	GetByID(ctx context.Context, id int64) (dom.User, error)
	GetByUsername(ctx context.Context, username string) (dom.User, error)
	Create(ctx context.Context, username, passwordHash string) (dom.User, error)
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

// GetByID returns the user by id.
func (r *PGUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, translateUserErr(err)
}

// GetByUsername returns the user by username.
func (r *PGUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	var u dom.User
	err := r.db.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	return u, translateUserErr(err)
}

// Create inserts a new user and returns it.
func (r *PGUserRepo) Create(ctx context.Context, username, passwordHash string) (dom.User, error) {
	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id, username, password_hash, created_at`
	var u dom.User
	err := r.db.QueryRow(ctx, query, username, passwordHash).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt,
	)
	return u, translateUserErr(err)
}

// SQLiteUserRepo implements UserRepo with SQLite.
type SQLiteUserRepo struct {
	db *sql.DB
}

// NewSQLiteUserRepo returns a new SQLiteUserRepo.
func NewSQLiteUserRepo(db *sql.DB) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: db}
}

func scanSQLiteUser(row rowScanner) (dom.User, error) {
	var u dom.User
	var createdAt string
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &createdAt); err != nil {
		return dom.User{}, translateUserErr(err)
	}
	t, err := time.Parse(sqliteTimeLayout, createdAt)
	if err != nil {
		return dom.User{}, err
	}
	u.CreatedAt = t
	return u, nil
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id int64) (dom.User, error) {
	return scanSQLiteUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE id = ?`, id))
}

func (r *SQLiteUserRepo) GetByUsername(ctx context.Context, username string) (dom.User, error) {
	return scanSQLiteUser(r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = ?`, username))
}

func (r *SQLiteUserRepo) Create(ctx context.Context, username, passwordHash string) (dom.User, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`,
		username, passwordHash, now.Format(sqliteTimeLayout),
	)
	if err != nil {
		return dom.User{}, translateUserErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return dom.User{}, err
	}
	return dom.User{ID: id, Username: username, PasswordHash: passwordHash, CreatedAt: now}, nil
}
