package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/randalmurphal/debategraph/pkg/llm"
)

// LogInteraction records one LLM invocation. It implements llm.AuditLogger.
func (s *Store) LogInteraction(ctx context.Context, in llm.Interaction) error {
	if err := s.check(); err != nil {
		return err
	}

	input, err := json.Marshal(in.Input)
	if err != nil {
		return fmt.Errorf("encode interaction input: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO llm_interactions (
			id, org_id, project_id, debate_id, agent_id, model_name, input_messages,
			output_response, status, error, prompt_tokens, completion_tokens,
			duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), in.OrgID, in.ProjectID, in.DebateID, in.AgentID, in.Model,
		string(input), in.Output, in.Status, in.Error, in.Usage.InputTokens,
		in.Usage.OutputTokens, in.Duration.Milliseconds(), now())
	if err != nil {
		return fmt.Errorf("log interaction: %w", err)
	}
	return nil
}

// InteractionSummary aggregates logged interactions of a debate.
type InteractionSummary struct {
	Calls            int
	Failures         int
	PromptTokens     int
	CompletionTokens int
}

// SummarizeInteractions totals the debate's logged interactions.
func (s *Store) SummarizeInteractions(ctx context.Context, orgID, debateID string) (InteractionSummary, error) {
	if err := s.check(); err != nil {
		return InteractionSummary{}, err
	}

	var sum InteractionSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 0 ELSE 1 END), 0),
			COALESCE(SUM(prompt_tokens), 0),
			COALESCE(SUM(completion_tokens), 0)
		FROM llm_interactions WHERE org_id = ? AND debate_id = ?`,
		llm.StatusSuccess, orgID, debateID).
		Scan(&sum.Calls, &sum.Failures, &sum.PromptTokens, &sum.CompletionTokens)
	if err != nil {
		return InteractionSummary{}, fmt.Errorf("summarize interactions: %w", err)
	}
	return sum, nil
}
