package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateOrganization creates an organization named name.
func (s *Store) CreateOrganization(ctx context.Context, name string) (*Organization, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	o := &Organization{ID: uuid.NewString(), Name: name}
	created := now()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name, created_at) VALUES (?, ?, ?)`,
		o.ID, o.Name, created); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	o.CreatedAt = parseTime(created)
	return o, nil
}

// GetOrganization returns the organization with id.
func (s *Store) GetOrganization(ctx context.Context, id string) (*Organization, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	var o Organization
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM organizations WHERE id = ?`, id).
		Scan(&o.ID, &o.Name, &created)
	if err != nil {
		return nil, fmt.Errorf("get organization %s: %w", id, notFound(err))
	}
	o.CreatedAt = parseTime(created)
	return &o, nil
}

// EnsureProject returns the organization's project named name, creating it
// when missing.
func (s *Store) EnsureProject(ctx context.Context, orgID, name string) (*Project, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, org_id, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(org_id, name) DO NOTHING`,
		uuid.NewString(), orgID, name, now()); err != nil {
		return nil, fmt.Errorf("ensure project: %w", err)
	}

	var p Project
	var created string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, name, description, created_at
		FROM projects WHERE org_id = ? AND name = ?`, orgID, name).
		Scan(&p.ID, &p.OrgID, &p.Name, &p.Description, &created)
	if err != nil {
		return nil, fmt.Errorf("ensure project: %w", notFound(err))
	}
	p.CreatedAt = parseTime(created)
	return &p, nil
}

// GetProject returns the organization's project with id.
func (s *Store) GetProject(ctx context.Context, orgID, id string) (*Project, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	var p Project
	var created string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, name, description, created_at
		FROM projects WHERE org_id = ? AND id = ?`, orgID, id).
		Scan(&p.ID, &p.OrgID, &p.Name, &p.Description, &created)
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, notFound(err))
	}
	p.CreatedAt = parseTime(created)
	return &p, nil
}
