package prompt

import (
	"strings"

	"github.com/randalmurphal/debategraph/pkg/pas"
)

// Directory renders the participant directory, one line per persona.
func Directory(personas []pas.Persona) string {
	lines := make([]string, len(personas))
	for i, p := range personas {
		lines[i] = p.DirectoryLine()
	}
	return strings.Join(lines, "\n")
}

// Participant is the system prompt conditioning a participant on its
// persona, the debate memory and the directory.
func Participant(p pas.Persona, memory, directory string) string {
	return render(participantTemplate, map[string]string{
		"NAME":             p.Name,
		"ROLE":             p.Role,
		"GOAL":             p.Goal,
		"DOMAIN_EXPERTISE": p.DomainExpertise,
		"DEBATE_STYLE":     p.DebateStyle,
		"BACKSTORY":        p.Backstory,
		"MEMORY":           memory,
		"AGENT_DIRECTORY":  directory,
	})
}

// SuperAgent is the moderator's decision prompt.
func SuperAgent(memory, directory string) string {
	return render(superAgentTemplate, map[string]string{
		"MEMORY": memory,
		"AGENTS": directory,
	})
}

// FinalDecision is the synthesis prompt of the final decision agent.
func FinalDecision(memory, directory string) string {
	return render(finalDecisionTemplate, map[string]string{
		"MEMORY": memory,
		"AGENTS": directory,
	})
}

// Summary asks for previousSummary extended with history.
func Summary(previousSummary, history string) string {
	return render(summaryTemplate, map[string]string{
		"PREVIOUS_SUMMARY": previousSummary,
		"AGENT_HISTORY":    history,
	})
}

// InitialAgents asks for the stub roster of a topic.
func InitialAgents(topic string) string {
	return render(initialAgentsTemplate, map[string]string{"USER_TOPIC": topic})
}

// ExpandAgent asks for the full persona of one stub.
func ExpandAgent(stub, topic string) string {
	return render(expandAgentTemplate, map[string]string{
		"USER_TOPIC": topic,
		"BASE_AGENT": stub,
	})
}

// DebateTitle asks for a three-word debate title.
func DebateTitle(topic string) string {
	return render(debateTitleTemplate, map[string]string{"USER_TOPIC": topic})
}
