package debate

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphal/debategraph/pkg/flowgraph"
	"github.com/randalmurphal/debategraph/pkg/llm"
	"github.com/randalmurphal/debategraph/pkg/memory"
	"github.com/randalmurphal/debategraph/pkg/pas"
	"github.com/randalmurphal/debategraph/pkg/prompt"
)

type nodes struct {
	store   Store
	invoker memory.Invoker
	memory  *memory.Manager
}

// connectOrg binds the run to its organization and loads the debate,
// its participants and the system agents.
func (n *nodes) connectOrg(ctx flowgraph.Context, s State) (State, error) {
	if s.OrgID == "" {
		return s, ErrNoOrganization
	}
	if _, err := n.store.GetOrganization(ctx, s.OrgID); err != nil {
		return s, err
	}
	debate, err := n.store.GetDebate(ctx, s.OrgID, s.DebateID)
	if err != nil {
		return s, err
	}
	s.ProjectID = debate.ProjectID
	s.Topic = debate.Topic

	ids := make([]string, len(SystemAgents))
	for i, spec := range SystemAgents {
		agent, err := n.store.EnsureSystemAgent(ctx, s.OrgID, s.ProjectID, spec)
		if err != nil {
			return s, err
		}
		ids[i] = agent.ID
	}
	s.SummaryAgentID, s.SuperAgentID, s.FinalDecisionAgentID = ids[0], ids[1], ids[2]

	agents, err := n.store.ListParticipants(ctx, s.OrgID, s.DebateID)
	if err != nil {
		return s, err
	}
	participants := make([]Participant, 0, len(agents))
	for _, a := range agents {
		if a.IsSystemAgent {
			continue
		}
		participants = append(participants, Participant{ID: a.ID, Persona: PersonaOf(a)})
	}
	s.Participants = participants

	ctx.Logger().Debug("debate connected",
		slog.String("debate_id", s.DebateID),
		slog.Int("participants", len(participants)),
	)
	return s, nil
}

// superAgentDecision asks the moderator for the next task and persists
// its raw answer before decoding it.
func (n *nodes) superAgentDecision(ctx flowgraph.Context, s State) (State, error) {
	mem, err := n.refreshMemory(ctx, s)
	if err != nil {
		return s, err
	}
	s.Memory = mem

	text, err := n.invoke(ctx, s, s.SuperAgentID,
		llm.Prompt(prompt.SuperAgent(mem, prompt.Directory(s.Directory()))))
	if err != nil {
		return s, err
	}
	if _, err := n.store.CreateMessage(ctx, s.OrgID, s.DebateID, s.SuperAgentID, text); err != nil {
		return s, err
	}

	decision, err := pas.DecodeDecision(text)
	if err != nil {
		return s, err
	}
	s.Decision = decision

	ctx.Logger().Info("moderator decided",
		slog.String("task", string(decision.Task())),
		slog.String("next_agent", decision.NextAgent()),
	)
	return s, nil
}

// executeTurn lets the decided participant speak.
func (n *nodes) executeTurn(ctx flowgraph.Context, s State) (State, error) {
	next := ""
	if s.Decision != nil {
		next = s.Decision.NextAgent()
	}
	speaker, err := s.resolve(next)
	if err != nil {
		return s, err
	}

	mem, err := n.refreshMemory(ctx, s)
	if err != nil {
		return s, err
	}
	s.Memory = mem

	system := prompt.Participant(speaker.Persona, mem, prompt.Directory(s.Directory()))
	text, err := n.invoke(ctx, s, speaker.ID, llm.SystemAndUser(system, prompt.FullResponseTask))
	if err != nil {
		return s, err
	}
	if _, err := n.store.CreateMessage(ctx, s.OrgID, s.DebateID, speaker.ID, text); err != nil {
		return s, err
	}

	s.Turns++
	s.LastSpeaker = speaker.Name
	return s, nil
}

// collectIntents asks every participant whether it wants to speak. All
// participants see the same memory. Answers are persisted as given; one
// that does not decode is logged and kept.
func (n *nodes) collectIntents(ctx flowgraph.Context, s State) (State, error) {
	mem, err := n.refreshMemory(ctx, s)
	if err != nil {
		return s, err
	}
	s.Memory = mem
	directory := prompt.Directory(s.Directory())

	intents := make([]pas.SpeakIntent, 0, len(s.Participants))
	for _, p := range s.Participants {
		system := prompt.Participant(p.Persona, mem, directory)
		text, err := n.invoke(ctx, s, p.ID, llm.SystemAndUser(system, prompt.SpeakDecisionTask))
		if err != nil {
			return s, err
		}
		if _, err := n.store.CreateMessage(ctx, s.OrgID, s.DebateID, p.ID, text); err != nil {
			return s, err
		}

		intent, err := pas.DecodeSpeakIntent(text)
		if err != nil {
			ctx.Logger().Debug("undecodable speak intent",
				slog.String("agent", p.Name),
				slog.String("error", err.Error()),
			)
		}
		intents = append(intents, intent)
	}
	s.Intents = intents
	return s, nil
}

// finalDecision produces the closing synthesis and records it on the debate.
func (n *nodes) finalDecision(ctx flowgraph.Context, s State) (State, error) {
	mem, err := n.refreshMemory(ctx, s)
	if err != nil {
		return s, err
	}
	s.Memory = mem

	text, err := n.invoke(ctx, s, s.FinalDecisionAgentID,
		llm.Prompt(prompt.FinalDecision(mem, prompt.Directory(s.Directory()))))
	if err != nil {
		return s, err
	}
	if _, err := n.store.CreateMessage(ctx, s.OrgID, s.DebateID, s.FinalDecisionAgentID, text); err != nil {
		return s, err
	}
	if err := n.store.SetFinalDecision(ctx, s.OrgID, s.DebateID, text); err != nil {
		return s, err
	}

	s.FinalDecision = text
	return s, nil
}

func (n *nodes) refreshMemory(ctx flowgraph.Context, s State) (string, error) {
	return n.memory.Memory(ctx, memory.Scope{
		OrgID:          s.OrgID,
		ProjectID:      s.ProjectID,
		DebateID:       s.DebateID,
		SummaryAgentID: s.SummaryAgentID,
	})
}

// invoke calls the model on behalf of agentID and returns the raw answer.
func (n *nodes) invoke(ctx flowgraph.Context, s State, agentID string, messages []llm.Message) (string, error) {
	resp, err := n.invoker.Invoke(ctx, llm.Request{
		Messages:  messages,
		ProjectID: s.ProjectID,
		OrgID:     s.OrgID,
		DebateID:  s.DebateID,
		AgentID:   agentID,
		Node:      ctx.NodeID(),
	})
	if err != nil {
		return "", fmt.Errorf("invoke: %w", err)
	}

	level := slog.LevelDebug
	if s.Verbose {
		level = slog.LevelInfo
	}
	ctx.Logger().Log(ctx, level, "model output",
		slog.String("agent_id", agentID),
		slog.String("output", resp.Content),
	)
	return resp.Content, nil
}

// resolve finds the participant the moderator named. Names compare
// case-insensitively after trimming.
func (s State) resolve(name string) (Participant, error) {
	want := strings.TrimSpace(name)
	for _, p := range s.Participants {
		if strings.EqualFold(strings.TrimSpace(p.Name), want) {
			return p, nil
		}
	}
	return Participant{}, &ResolutionError{Name: name, Err: ErrUnknownAgent}
}
