package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hakimbdev/tonstoremarketspot/internal/market"
)

type AdminRepo struct{ DB *pgxpool.Pool }

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (market.Admin, error) {
	var a market.Admin
	err := r.DB.QueryRow(ctx,
		`SELECT id, email, name, password_hash FROM admins WHERE email=$1`, email).
		Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

type UserRepo struct{ DB *pgxpool.Pool }

// UpsertTelegram creates or refreshes the user row for a verified
// Telegram login.
func (r *UserRepo) UpsertTelegram(ctx context.Context, u market.User) (market.User, error) {
	if u.TelegramID == "" {
		return market.User{}, errors.New("telegram_id required")
	}
	now := time.Now().UTC()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt, u.UpdatedAt = now, now
	err := r.DB.QueryRow(ctx, `
		INSERT INTO users(id, telegram_id, username, first_name, last_name, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,1,$6,$6)
		ON CONFLICT (telegram_id) DO UPDATE
		SET username=EXCLUDED.username, first_name=EXCLUDED.first_name,
		    last_name=EXCLUDED.last_name, updated_at=EXCLUDED.updated_at
		RETURNING id, status, created_at`,
		u.ID, u.TelegramID, u.Username, u.FirstName, u.LastName, now).
		Scan(&u.ID, &u.Status, &u.CreatedAt)
	if err != nil {
		return market.User{}, err
	}
	return u, nil
}
