package store

import (
	"database/sql"
	"time"
)

// Event is a confirmed sign recorded against a session.
type Event struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Label      string    `json:"label"`
	Kind       string    `json:"kind"`
	Confidence float64   `json:"confidence"`
	CreatedAt  time.Time `json:"created_at"`
}

// EventRepository provides operations for sign events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the sign event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Append records e and stores text as the session's sentence in a single
// transaction. The session must exist.
func (r *EventRepository) Append(e *Event, text string) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`UPDATE sessions SET text = ?, updated_at = ? WHERE id = ?`,
		text, e.CreatedAt, e.SessionID,
	)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return err
	}

	result, err = tx.Exec(
		`INSERT INTO sign_events (session_id, label, kind, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.SessionID, e.Label, e.Kind, e.Confidence, e.CreatedAt,
	)
	if err != nil {
		return err
	}
	if e.ID, err = result.LastInsertId(); err != nil {
		return err
	}

	return tx.Commit()
}

// ListBySession returns the events of a session in the order they were recorded.
func (r *EventRepository) ListBySession(sessionID string) ([]Event, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, label, kind, confidence, created_at
		 FROM sign_events WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Label, &e.Kind, &e.Confidence, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteBySession removes every event of a session and empties its sentence.
func (r *EventRepository) DeleteBySession(sessionID string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sign_events WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	if _, err := tx.Exec(
		`UPDATE sessions SET text = '', updated_at = ? WHERE id = ?`, time.Now(), sessionID,
	); err != nil {
		return err
	}

	return tx.Commit()
}
