package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/hakimbdev/tonstoremarketspot/internal/market"
	"github.com/hakimbdev/tonstoremarketspot/internal/redisx"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found or expired")
)

type AdminSource interface {
	GetByEmail(ctx context.Context, email string) (market.Admin, error)
}

type UserSource interface {
	UpsertTelegram(ctx context.Context, u market.User) (market.User, error)
}

// Service issues and resolves bearer sessions. Tokens are opaque random
// strings; the principal lives in Redis under a kind-scoped key, so an
// admin token can never resolve to a user session or vice versa.
type Service struct {
	Admins   AdminSource
	Users    UserSource
	Redis    *redis.Client
	BotToken string
}

func (s *Service) AdminLogin(ctx context.Context, email, password string) (string, market.Admin, error) {
	admin, err := s.Admins.GetByEmail(ctx, email)
	if err != nil {
		// same answer for unknown email and bad password
		return "", market.Admin{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", market.Admin{}, ErrInvalidCredentials
	}
	admin.PasswordHash = ""

	token, err := newToken()
	if err != nil {
		return "", market.Admin{}, err
	}
	if err := s.putSession(ctx, fmt.Sprintf(redisx.KeySessionAdmin, token), admin); err != nil {
		return "", market.Admin{}, err
	}
	return token, admin, nil
}

func (s *Service) AdminLogout(ctx context.Context, token string) error {
	return s.Redis.Del(ctx, fmt.Sprintf(redisx.KeySessionAdmin, token)).Err()
}

func (s *Service) AdminFromToken(ctx context.Context, token string) (market.Admin, error) {
	var a market.Admin
	if err := s.getSession(ctx, fmt.Sprintf(redisx.KeySessionAdmin, token), &a); err != nil {
		return market.Admin{}, err
	}
	return a, nil
}

func (s *Service) UserFromToken(ctx context.Context, token string) (market.User, error) {
	var u market.User
	if err := s.getSession(ctx, fmt.Sprintf(redisx.KeySessionUser, token), &u); err != nil {
		return market.User{}, err
	}
	return u, nil
}

// TelegramLogin verifies a Login-Widget payload and opens a user session.
func (s *Service) TelegramLogin(ctx context.Context, req TelegramAuthRequest) (string, market.User, error) {
	if err := req.Verify(s.BotToken); err != nil {
		return "", market.User{}, err
	}
	user, err := s.Users.UpsertTelegram(ctx, market.User{
		TelegramID: req.TelegramID,
		Username:   req.Username,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
	})
	if err != nil {
		return "", market.User{}, err
	}
	token, err := newToken()
	if err != nil {
		return "", market.User{}, err
	}
	if err := s.putSession(ctx, fmt.Sprintf(redisx.KeySessionUser, token), user); err != nil {
		return "", market.User{}, err
	}
	return token, user, nil
}

func (s *Service) putSession(ctx context.Context, key string, principal any) error {
	b, err := json.Marshal(principal)
	if err != nil {
		return err
	}
	return s.Redis.Set(ctx, key, b, redisx.TTLSession).Err()
}

func (s *Service) getSession(ctx context.Context, key string, out any) error {
	b, err := s.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
