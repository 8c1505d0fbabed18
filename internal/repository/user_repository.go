package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/theatre-reservation/internal/model"
	"github.com/iliyamo/theatre-reservation/internal/utils"
)

// UserRepo stores accounts.  Emails are normalised to lower case
// before every read and write.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, email, password_hash, is_staff, created_at"

// Create hashes password with the given bcrypt cost, inserts the user
// and returns its ID.
func (r *UserRepo) Create(ctx context.Context, email, password string, isStaff bool, cost int) (uint64, error) {
	email = normalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, is_staff) VALUES (?, ?, ?)",
		email, hash, isStaff)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// SetStaff grants or revokes the staff flag of the user with email.
func (r *UserRepo) SetStaff(ctx context.Context, email string, isStaff bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET is_staff = ? WHERE email = ?", isStaff, normalizeEmail(email))
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

// GetByEmail fetches a user by normalised email or returns ErrNotFound.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", normalizeEmail(email))
}

// GetByID fetches a user by id or returns ErrNotFound.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return r.getOne(ctx, "SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id)
}

func (r *UserRepo) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.IsStaff, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }
