package debate

import (
	"github.com/randalmurphal/debategraph/pkg/pas"
	"github.com/randalmurphal/debategraph/pkg/store"
)

// Node names. Stream reports these as Step.NodeID.
const (
	NodeConnectOrg     = "Connect to Current Organization"
	NodeSuperAgent     = "Super Agent Decision"
	NodeCollectIntents = "Collect Speak Intentions"
	NodeExecuteTurn    = "Execute Debate Turn"
	NodeFinalDecision  = "Generate Final Decision"
)

// SummaryAgent names the system agent credited with memory summaries.
const SummaryAgent = "Summary Agent"

// SystemAgents are the non-participant agents every debate relies on.
var SystemAgents = []store.Agent{
	{Name: SummaryAgent, Role: "Summarizer", Goal: "Summarize debate progress.", DomainExpertise: "Summarizer", DebateStyle: "Neutral", Category: store.CategorySystemAgent},
	{Name: pas.SuperAgent, Role: "Moderator", Goal: "Control debate flow.", DomainExpertise: "Moderator", DebateStyle: "Neutral", Category: store.CategorySystemAgent},
	{Name: pas.FinalDecisionAgent, Role: "Decision Maker", Goal: "Produce final decision.", DomainExpertise: "Decision Maker", DebateStyle: "Neutral", Category: store.CategorySystemAgent},
}

// Participant is a debate agent with its persisted id.
type Participant struct {
	ID string `json:"id"`
	pas.Persona
}

// State is the value threaded through one debate run. Nodes return an
// updated copy; slices are replaced, never modified in place.
//
// Callers set OrgID, DebateID and optionally Verbose. The connect node
// fills in the rest.
type State struct {
	OrgID    string `json:"org_id"`
	DebateID string `json:"debate_id"`
	Verbose  bool   `json:"verbose"`

	ProjectID string `json:"project_id"`
	Topic     string `json:"topic"`

	SuperAgentID         string `json:"super_agent_id"`
	SummaryAgentID       string `json:"summary_agent_id"`
	FinalDecisionAgentID string `json:"final_decision_agent_id"`

	Participants []Participant `json:"participants"`

	// Memory is the context used by the most recent node.
	Memory string `json:"memory"`

	// Decision is the moderator's latest decision.
	Decision pas.Decision `json:"-"`

	// Intents holds the answers of the latest speak-intent round.
	Intents []pas.SpeakIntent `json:"-"`

	Turns         int    `json:"turns"`
	LastSpeaker   string `json:"last_speaker"`
	FinalDecision string `json:"final_decision"`
}

// Directory returns the participants' personas in order.
func (s State) Directory() []pas.Persona {
	out := make([]pas.Persona, len(s.Participants))
	for i, p := range s.Participants {
		out[i] = p.Persona
	}
	return out
}

// PersonaOf maps a stored agent onto its persona.
func PersonaOf(a store.Agent) pas.Persona {
	return pas.Persona{
		Name:            a.Name,
		Role:            a.Role,
		Goal:            a.Goal,
		DebateStyle:     a.DebateStyle,
		DomainExpertise: a.DomainExpertise,
		Backstory:       a.Backstory,
		Category:        a.Category,
	}
}
