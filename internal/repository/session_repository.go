package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/ignatzorin/freelance-nexus/internal/models"
)

// ErrSessionCorrupted возвращается, когда сохранённый токен не удаётся расшифровать
// (например, сменился SESSION_SECRET).
var ErrSessionCorrupted = errors.New("session repository: stored session is unreadable")

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32
)

// SessionRepository хранит токен и пользователя текущей сессии в локальном sqlite файле.
// Токен шифруется secretbox ключом, выведенным из секрета через argon2id.
type SessionRepository struct {
	db     *sqlx.DB
	secret []byte
}

// NewSessionRepository создаёт экземпляр репозитория.
func NewSessionRepository(db *sqlx.DB, secret string) *SessionRepository {
	return &SessionRepository{db: db, secret: []byte(secret)}
}

type sessionRow struct {
	TokenCipher []byte `db:"token_cipher"`
	UserJSON    string `db:"user_json"`
}

// Load возвращает сохранённую сессию. Пустое хранилище: "", nil, nil.
func (r *SessionRepository) Load(ctx context.Context) (string, *models.User, error) {
	var row sessionRow
	if err := r.db.GetContext(ctx, &row, `SELECT token_cipher, user_json FROM session WHERE id = 1`); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("session repository: load %w", err)
	}

	token, err := r.open(row.TokenCipher)
	if err != nil {
		return "", nil, err
	}

	var user models.User
	if err := json.Unmarshal([]byte(row.UserJSON), &user); err != nil {
		return "", nil, ErrSessionCorrupted
	}

	return token, &user, nil
}

// Save заменяет сохранённую сессию целиком.
func (r *SessionRepository) Save(ctx context.Context, token string, user *models.User) error {
	if user == nil {
		return fmt.Errorf("session repository: save без пользователя")
	}

	sealed, err := r.seal(token)
	if err != nil {
		return err
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session repository: marshal user %w", err)
	}

	query := `
		INSERT INTO session (id, token_cipher, user_json, updated_at)
		VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			token_cipher = excluded.token_cipher,
			user_json = excluded.user_json,
			updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, query, sealed, string(userJSON)); err != nil {
		return fmt.Errorf("session repository: save %w", err)
	}

	return nil
}

// Clear удаляет токен и пользователя одной операцией.
func (r *SessionRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("session repository: clear %w", err)
	}
	return nil
}

// seal: salt | nonce | secretbox(token).
func (r *SessionRepository) seal(token string) ([]byte, error) {
	var salt [saltSize]byte
	if _, err := io.ReadFull(rand.Reader, salt[:]); err != nil {
		return nil, fmt.Errorf("session repository: salt %w", err)
	}
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("session repository: nonce %w", err)
	}

	key := r.deriveKey(salt[:])
	out := make([]byte, 0, saltSize+nonceSize+len(token)+secretbox.Overhead)
	out = append(out, salt[:]...)
	out = append(out, nonce[:]...)
	return secretbox.Seal(out, []byte(token), &nonce, &key), nil
}

func (r *SessionRepository) open(sealed []byte) (string, error) {
	if len(sealed) < saltSize+nonceSize+secretbox.Overhead {
		return "", ErrSessionCorrupted
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[saltSize:saltSize+nonceSize])

	key := r.deriveKey(sealed[:saltSize])
	plain, ok := secretbox.Open(nil, sealed[saltSize+nonceSize:], &nonce, &key)
	if !ok {
		return "", ErrSessionCorrupted
	}
	return string(plain), nil
}

func (r *SessionRepository) deriveKey(salt []byte) [keySize]byte {
	var key [keySize]byte
	copy(key[:], argon2.IDKey(r.secret, salt, 1, 32*1024, 2, keySize))
	return key
}
