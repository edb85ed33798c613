package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TelegramAuthRequest is the Login-Widget payload. Hash is the widget's
// HMAC over the remaining fields.
type TelegramAuthRequest struct {
	TelegramID string `json:"telegram_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	AuthDate   string `json:"auth_date"`
	Hash       string `json:"hash"`
}

var (
	ErrBadTelegramHash = errors.New("telegram auth hash mismatch")
	ErrStaleAuth       = errors.New("telegram auth data too old")
)

// maxAuthAge bounds replay of a captured login payload.
const maxAuthAge = 24 * time.Hour

// Verify checks the widget HMAC: secret = SHA256(bot token), message =
// sorted key=value lines of every field except hash. An empty bot token
// disables verification (local development only).
func (r TelegramAuthRequest) Verify(botToken string) error {
	if botToken == "" {
		return nil
	}
	if r.TelegramID == "" || r.Hash == "" {
		return ErrBadTelegramHash
	}

	fields := map[string]string{
		"id":        r.TelegramID,
		"auth_date": r.AuthDate,
	}
	if r.Username != "" {
		fields["username"] = r.Username
	}
	if r.FirstName != "" {
		fields["first_name"] = r.FirstName
	}
	if r.LastName != "" {
		fields["last_name"] = r.LastName
	}

	if got := telegramHash(botToken, fields); !hmac.Equal([]byte(got), []byte(r.Hash)) {
		return ErrBadTelegramHash
	}

	ts, err := strconv.ParseInt(r.AuthDate, 10, 64)
	if err != nil {
		return fmt.Errorf("auth_date: %w", err)
	}
	if time.Since(time.Unix(ts, 0)) > maxAuthAge {
		return ErrStaleAuth
	}
	return nil
}

func telegramHash(botToken string, fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+fields[k])
	}
	check := strings.Join(lines, "\n")

	secret := sha256.Sum256([]byte(botToken))
	mac := hmac.New(sha256.New, secret[:])
	mac.Write([]byte(check))
	return hex.EncodeToString(mac.Sum(nil))
}
