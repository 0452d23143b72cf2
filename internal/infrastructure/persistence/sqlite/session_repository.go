package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ncastellanos/till-service/internal/domain/pos"
)

const (
	keyRegister      = "register"
	keyShiftSnapshot = "shift_snapshot"
)

// SessionRepository persists device-session state: the selected register and
// the active shift snapshot. Full-object writes per mutation; the till is the
// only writer.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{
		db: conn.GetDB(),
	}
}

func (r *SessionRepository) SaveRegister(ctx context.Context, register *pos.CashRegister) error {
	return r.put(ctx, keyRegister, register)
}

func (r *SessionRepository) GetRegister(ctx context.Context) (*pos.CashRegister, error) {
	var register pos.CashRegister
	found, err := r.get(ctx, keyRegister, &register)
	if err != nil || !found {
		return nil, err
	}
	return &register, nil
}

func (r *SessionRepository) SaveShiftSnapshot(ctx context.Context, shift *pos.Shift) error {
	return r.put(ctx, keyShiftSnapshot, shift)
}

func (r *SessionRepository) GetShiftSnapshot(ctx context.Context) (*pos.Shift, error) {
	var shift pos.Shift
	found, err := r.get(ctx, keyShiftSnapshot, &shift)
	if err != nil || !found {
		return nil, err
	}
	return &shift, nil
}

func (r *SessionRepository) ClearShiftSnapshot(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM session_state WHERE key = ?", keyShiftSnapshot)
	return err
}

func (r *SessionRepository) put(ctx context.Context, key string, value interface{}) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	query := `
		INSERT INTO session_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	_, err = r.db.ExecContext(ctx, query, key, string(encoded), time.Now().UTC())
	return err
}

func (r *SessionRepository) get(ctx context.Context, key string, out interface{}) (bool, error) {
	var encoded string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM session_state WHERE key = ?", key).Scan(&encoded)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal([]byte(encoded), out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}

	return true, nil
}
