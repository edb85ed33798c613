package market

import "time"

// Admin is an operator-console principal, disjoint from marketplace users.
type Admin struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`

	PasswordHash string `json:"-"`
}

// User is a marketplace purchaser authenticated via Telegram.
type User struct {
	ID         string    `json:"id"`
	TelegramID string    `json:"telegram_id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Status     int       `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
