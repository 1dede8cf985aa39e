package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

const debateColumns = `id, org_id, project_id, name, topic, summary, final_decision, created_at`

// CreateDebate inserts d. ID, OrgID and CreatedAt are assigned.
func (s *Store) CreateDebate(ctx context.Context, orgID string, d *Debate) error {
	if err := s.check(); err != nil {
		return err
	}

	d.ID = uuid.NewString()
	d.OrgID = orgID
	created := now()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO debates (`+debateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, orgID, d.ProjectID, d.Name, d.Topic, d.Summary, d.FinalDecision, created)
	if err != nil {
		return fmt.Errorf("create debate: %w", err)
	}
	d.CreatedAt = parseTime(created)
	return nil
}

// GetDebate returns the organization's debate with id.
func (s *Store) GetDebate(ctx context.Context, orgID, id string) (*Debate, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	var d Debate
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT `+debateColumns+` FROM debates WHERE org_id = ? AND id = ?`, orgID, id).
		Scan(&d.ID, &d.OrgID, &d.ProjectID, &d.Name, &d.Topic, &d.Summary, &d.FinalDecision, &created)
	if err != nil {
		return nil, fmt.Errorf("get debate %s: %w", id, notFound(err))
	}
	d.CreatedAt = parseTime(created)
	return &d, nil
}

// SetDebateName sets the debate's display name.
func (s *Store) SetDebateName(ctx context.Context, orgID, id, name string) error {
	return s.updateDebate(ctx, orgID, id, "name", name)
}

// SetFinalDecision stores the debate's final decision text.
func (s *Store) SetFinalDecision(ctx context.Context, orgID, id, text string) error {
	return s.updateDebate(ctx, orgID, id, "final_decision", text)
}

// updateDebate sets one column. column is never caller-controlled.
func (s *Store) updateDebate(ctx context.Context, orgID, id, column, value string) error {
	if err := s.check(); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE debates SET `+column+` = ? WHERE org_id = ? AND id = ?`, value, orgID, id)
	if err != nil {
		return fmt.Errorf("update debate %s %s: %w", id, column, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update debate %s %s: %w", id, column, ErrNotFound)
	}
	return nil
}

// AddParticipants links agents to a debate, after any existing ones.
func (s *Store) AddParticipants(ctx context.Context, orgID, debateID string, agentIDs ...string) error {
	if err := s.check(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM debates WHERE org_id = ? AND id = ?`, orgID, debateID).
			Scan(&exists); err != nil {
			return fmt.Errorf("add participants: %w", err)
		}
		if exists == 0 {
			return fmt.Errorf("add participants to %s: %w", debateID, ErrNotFound)
		}

		for _, agentID := range agentIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO debate_agents (debate_id, agent_id, position)
				SELECT ?, id,
					COALESCE((SELECT MAX(position) FROM debate_agents WHERE debate_id = ?), 0) + 1
				FROM agents WHERE org_id = ? AND id = ?
				ON CONFLICT(debate_id, agent_id) DO NOTHING`,
				debateID, debateID, orgID, agentID); err != nil {
				return fmt.Errorf("add participant %s: %w", agentID, err)
			}
		}
		return nil
	})
}

// ListParticipants returns the debate's agents in the order they joined.
func (s *Store) ListParticipants(ctx context.Context, orgID, debateID string) ([]Agent, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.org_id, a.project_id, a.name, a.role, a.goal, a.domain_expertise,
			a.debate_style, a.backstory, a.category, a.is_system_agent, a.created_at
		FROM debate_agents da
		JOIN agents a ON a.id = da.agent_id
		WHERE da.debate_id = ? AND a.org_id = ?
		ORDER BY da.position`, debateID, orgID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var agents []Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		agents = append(agents, *a)
	}
	return agents, rows.Err()
}

// DeleteDebate removes a debate with its participant links and messages.
// Agents are kept.
func (s *Store) DeleteDebate(ctx context.Context, orgID, id string) error {
	if err := s.check(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM debate_agents WHERE debate_id IN
				(SELECT id FROM debates WHERE org_id = ? AND id = ?)`, orgID, id); err != nil {
			return fmt.Errorf("delete debate links: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM debate_messages WHERE org_id = ? AND debate_id = ?`, orgID, id); err != nil {
			return fmt.Errorf("delete debate messages: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM debates WHERE org_id = ? AND id = ?`, orgID, id)
		if err != nil {
			return fmt.Errorf("delete debate %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("delete debate %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// DeleteAgents removes the organization's agents with the given ids.
func (s *Store) DeleteAgents(ctx context.Context, orgID string, ids ...string) error {
	if err := s.check(); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, id := range ids {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM agents WHERE org_id = ? AND id = ?`, orgID, id); err != nil {
				return fmt.Errorf("delete agent %s: %w", id, err)
			}
		}
		return nil
	})
}
