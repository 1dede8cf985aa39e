package store

import "time"

// Organization is a tenant.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Project groups agents and debates within an organization.
type Project struct {
	ID          string    `json:"id"`
	OrgID       string    `json:"org_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Agent is a debate participant or one of the system agents.
type Agent struct {
	ID              string    `json:"id"`
	OrgID           string    `json:"org_id"`
	ProjectID       string    `json:"project_id"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	Goal            string    `json:"goal"`
	DomainExpertise string    `json:"domain_expertise"`
	DebateStyle     string    `json:"debate_style"`
	Backstory       string    `json:"backstory"`
	Category        string    `json:"category"`
	IsSystemAgent   bool      `json:"is_system_agent"`
	CreatedAt       time.Time `json:"created_at"`
}

// Debate is one debate on a topic.
type Debate struct {
	ID            string    `json:"id"`
	OrgID         string    `json:"org_id"`
	ProjectID     string    `json:"project_id"`
	Name          string    `json:"name"`
	Topic         string    `json:"topic"`
	Summary       string    `json:"summary"`
	FinalDecision string    `json:"final_decision"`
	CreatedAt     time.Time `json:"created_at"`
}

// Message is one persisted debate turn. Order starts at 1 and is
// contiguous per debate.
type Message struct {
	ID             string    `json:"id"`
	OrgID          string    `json:"org_id"`
	DebateID       string    `json:"debate_id"`
	AgentID        string    `json:"agent_id"`
	Content        string    `json:"content"`
	Order          int       `json:"order"`
	MemoryDisabled bool      `json:"is_memory_disabled"`
	CreatedAt      time.Time `json:"created_at"`
}
