package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CategorySystemAgent is the category of moderator, summarizer and final
// decision agents.
const CategorySystemAgent = "system_agent"

const agentColumns = `id, org_id, project_id, name, role, goal, domain_expertise,
	debate_style, backstory, category, is_system_agent, created_at`

// CreateAgent inserts a. ID, OrgID and CreatedAt are assigned.
func (s *Store) CreateAgent(ctx context.Context, orgID string, a *Agent) error {
	if err := s.check(); err != nil {
		return err
	}
	return insertAgent(ctx, s.db, orgID, a)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertAgent(ctx context.Context, db execer, orgID string, a *Agent) error {
	a.ID = uuid.NewString()
	a.OrgID = orgID
	created := now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO agents (`+agentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, orgID, a.ProjectID, a.Name, a.Role, a.Goal, a.DomainExpertise,
		a.DebateStyle, a.Backstory, a.Category, a.IsSystemAgent, created)
	if err != nil {
		return fmt.Errorf("create agent %q: %w", a.Name, err)
	}
	a.CreatedAt = parseTime(created)
	return nil
}

// GetAgent returns the organization's agent with id.
func (s *Store) GetAgent(ctx context.Context, orgID, id string) (*Agent, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+agentColumns+` FROM agents WHERE org_id = ? AND id = ?`, orgID, id)
	a, err := scanAgent(row)
	if err != nil {
		return nil, fmt.Errorf("get agent %s: %w", id, notFound(err))
	}
	return a, nil
}

// EnsureSystemAgent returns the project's system agent named want.Name,
// creating it from want when missing.
func (s *Store) EnsureSystemAgent(ctx context.Context, orgID, projectID string, want Agent) (*Agent, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT `+agentColumns+` FROM agents
		WHERE org_id = ? AND project_id = ? AND name = ? AND is_system_agent
		ORDER BY created_at LIMIT 1`, orgID, projectID, want.Name)
	a, err := scanAgent(row)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find system agent %q: %w", want.Name, err)
	}

	want.ProjectID = projectID
	want.IsSystemAgent = true
	want.Category = CategorySystemAgent
	if err := insertAgent(ctx, s.db, orgID, &want); err != nil {
		return nil, err
	}
	return &want, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAgent(row scanner) (*Agent, error) {
	var a Agent
	var created string
	if err := row.Scan(&a.ID, &a.OrgID, &a.ProjectID, &a.Name, &a.Role, &a.Goal,
		&a.DomainExpertise, &a.DebateStyle, &a.Backstory, &a.Category,
		&a.IsSystemAgent, &created); err != nil {
		return nil, err
	}
	a.CreatedAt = parseTime(created)
	return &a, nil
}
