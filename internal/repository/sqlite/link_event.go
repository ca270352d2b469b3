package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/gitbot-link/internal/apperror"
	"github.com/sakif/gitbot-link/internal/model"
	"github.com/sakif/gitbot-link/internal/repository"
)

// compile-time check that *DB implements repository.LinkEventRepository
var _ repository.LinkEventRepository = (*DB)(nil)

// Record appends an event to the journal.
//
// The caller's struct is filled in place: ID (an xid, which sorts by creation
// time) and CreatedAt are set here if the caller left them empty.
func (db *DB) Record(ctx context.Context, event *model.LinkEvent) error {
	if event.Phase == "" {
		return apperror.ValidationFailed("phase", "phase is required")
	}
	if event.Outcome == "" {
		return apperror.ValidationFailed("outcome", "outcome is required")
	}

	if event.ID == "" {
		event.ID = xid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO link_events (id, discord_id, phase, outcome, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		event.ID,
		event.DiscordID,
		string(event.Phase),
		string(event.Outcome),
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: recording link event (phase=%s): %w", event.Phase, err)
	}

	return nil
}

// GetByID retrieves one journal event.
// Returns apperror.ErrNotFound if no event exists with that ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.LinkEvent, error) {
	var (
		e              model.LinkEvent
		phase, outcome string
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, discord_id, phase, outcome, created_at
		 FROM link_events WHERE id = ?`,
		id,
	).Scan(&e.ID, &e.DiscordID, &phase, &outcome, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("link event", id)
		}
		return nil, fmt.Errorf("sqlite: getting link event %s: %w", id, err)
	}

	e.Phase = model.LinkPhase(phase)
	e.Outcome = model.LinkOutcome(outcome)
	return &e, nil
}

// List returns journal events, newest first.
//
// Pagination is LIMIT/OFFSET with a default page of 20 and a cap of 100.
// xid ids embed a timestamp and a counter, so "id DESC" breaks ties between
// events recorded in the same instant.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.LinkEvent, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT id, discord_id, phase, outcome, created_at FROM link_events`)
	if opts.DiscordID != "" {
		query.WriteString(` WHERE discord_id = ?`)
		args = append(args, opts.DiscordID)
	}
	query.WriteString(` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	args = append(args, limit, offset)

	rows, err := db.conn.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing link events: %w", err)
	}
	defer rows.Close()

	events := make([]model.LinkEvent, 0, limit)
	for rows.Next() {
		var (
			e              model.LinkEvent
			phase, outcome string
		)
		if err := rows.Scan(&e.ID, &e.DiscordID, &phase, &outcome, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning link event row: %w", err)
		}
		e.Phase = model.LinkPhase(phase)
		e.Outcome = model.LinkOutcome(outcome)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating link events: %w", err)
	}

	return events, nil
}
