package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const messageColumns = `id, org_id, debate_id, agent_id, content, msg_order, is_memory_disabled, created_at`

// CreateMessage appends a message to a debate. Its order is the debate's
// current maximum plus one, starting at 1. Creation is serialized per
// debate so orders stay contiguous under concurrent writers.
func (s *Store) CreateMessage(ctx context.Context, orgID, debateID, agentID, content string) (*Message, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	unlock := s.lockDebate(debateID)
	defer unlock()

	m := &Message{
		ID:       uuid.NewString(),
		OrgID:    orgID,
		DebateID: debateID,
		AgentID:  agentID,
		Content:  content,
	}
	created := now()

	// The SELECT yields no row when the debate or agent is outside the
	// organization, so nothing is inserted.
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO debate_messages (`+messageColumns+`)
		SELECT ?, ?, d.id, a.id, ?,
			COALESCE((SELECT MAX(msg_order) FROM debate_messages WHERE debate_id = d.id), 0) + 1,
			FALSE, ?
		FROM debates d, agents a
		WHERE d.org_id = ? AND d.id = ? AND a.org_id = ? AND a.id = ?
		RETURNING msg_order`,
		m.ID, orgID, content, created, orgID, debateID, orgID, agentID).Scan(&m.Order)
	if err != nil {
		return nil, fmt.Errorf("create message in debate %s: %w", debateID, notFound(err))
	}
	m.CreatedAt = parseTime(created)
	return m, nil
}

// ListActiveMessages returns the debate's messages not yet folded into the
// summary, ordered by order.
func (s *Store) ListActiveMessages(ctx context.Context, orgID, debateID string) ([]Message, error) {
	return s.listMessages(ctx, orgID, debateID, true)
}

// ListMessages returns every message of the debate, ordered by order.
func (s *Store) ListMessages(ctx context.Context, orgID, debateID string) ([]Message, error) {
	return s.listMessages(ctx, orgID, debateID, false)
}

func (s *Store) listMessages(ctx context.Context, orgID, debateID string, activeOnly bool) ([]Message, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	query := `SELECT ` + messageColumns + ` FROM debate_messages WHERE org_id = ? AND debate_id = ?`
	if activeOnly {
		query += ` AND NOT is_memory_disabled`
	}
	query += ` ORDER BY msg_order`

	rows, err := s.db.QueryContext(ctx, query, orgID, debateID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		var created string
		if err := rows.Scan(&m.ID, &m.OrgID, &m.DebateID, &m.AgentID, &m.Content,
			&m.Order, &m.MemoryDisabled, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = parseTime(created)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// DisableMessages marks messages as folded into the summary. Disabled
// messages are never re-enabled. It returns the number of messages newly
// disabled.
func (s *Store) DisableMessages(ctx context.Context, orgID, debateID string, ids ...string) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}
	return disableMessages(ctx, s.db, orgID, debateID, ids)
}

// CompactMemory replaces the debate's summary and disables the messages it
// now covers in one transaction. It returns the number of messages newly
// disabled.
func (s *Store) CompactMemory(ctx context.Context, orgID, debateID, summary string, ids ...string) (int, error) {
	if err := s.check(); err != nil {
		return 0, err
	}

	var disabled int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE debates SET summary = ? WHERE org_id = ? AND id = ?`, summary, orgID, debateID)
		if err != nil {
			return fmt.Errorf("update debate %s summary: %w", debateID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("update debate %s summary: %w", debateID, ErrNotFound)
		}
		disabled, err = disableMessages(ctx, tx, orgID, debateID, ids)
		return err
	})
	if err != nil {
		return 0, err
	}
	return disabled, nil
}

func disableMessages(ctx context.Context, db execer, orgID, debateID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	args := make([]any, 0, len(ids)+2)
	args = append(args, orgID, debateID)
	for _, id := range ids {
		args = append(args, id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	res, err := db.ExecContext(ctx, `
		UPDATE debate_messages SET is_memory_disabled = TRUE
		WHERE org_id = ? AND debate_id = ? AND NOT is_memory_disabled
			AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("disable messages: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
