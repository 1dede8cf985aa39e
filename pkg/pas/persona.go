package pas

import (
	"fmt"
	"strings"
)

// Persona is one decoded debate participant.
type Persona struct {
	Name            string `json:"name"`
	Role            string `json:"role"`
	Goal            string `json:"goal"`
	DebateStyle     string `json:"debate_style"`
	DomainExpertise string `json:"domain_expertise"`
	Backstory       string `json:"backstory"`
	Category        string `json:"category"`
}

// Roster field keys, as normalized by ParseRoster.
const (
	FieldName            = "name"
	FieldRole            = "role"
	FieldGoal            = "goal"
	FieldDebateStyle     = "debate_style"
	FieldDomainExpertise = "domain_expertise"
	FieldBackstory       = "backstory"
	FieldCategory        = "category"
)

// PersonaFromFields maps a ParseRoster block onto a Persona.
// Missing keys leave the corresponding field empty.
func PersonaFromFields(fields map[string]string) Persona {
	return Persona{
		Name:            fields[FieldName],
		Role:            fields[FieldRole],
		Goal:            fields[FieldGoal],
		DebateStyle:     fields[FieldDebateStyle],
		DomainExpertise: fields[FieldDomainExpertise],
		Backstory:       fields[FieldBackstory],
		Category:        fields[FieldCategory],
	}
}

// DecodePersonas parses every text as a roster and returns the named
// personas in order. Blocks without a name are skipped.
func DecodePersonas(texts ...string) []Persona {
	var out []Persona
	for _, text := range texts {
		for _, fields := range ParseRoster(text) {
			p := PersonaFromFields(fields)
			if strings.TrimSpace(p.Name) == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// DirectoryLine renders p as one participant directory entry.
func (p Persona) DirectoryLine() string {
	return fmt.Sprintf("- Name: %s Role: %s Goal: %s", p.Name, p.Role, p.Goal)
}

// EncodeRoster renders personas as AGENT ... END blocks. Empty fields are
// omitted, so ParseRoster(EncodeRoster(ps)) restores ps.
func EncodeRoster(personas ...Persona) string {
	var b strings.Builder
	for i, p := range personas {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("AGENT\n")
		writeField(&b, "NAME", p.Name)
		writeField(&b, "ROLE", p.Role)
		writeField(&b, "GOAL", p.Goal)
		writeField(&b, "DEBATE STYLE", p.DebateStyle)
		writeField(&b, "DOMAIN EXPERTISE", p.DomainExpertise)
		writeField(&b, "BACKSTORY", p.Backstory)
		writeField(&b, "CATEGORY", p.Category)
		b.WriteString("END")
	}
	return b.String()
}

func writeField(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", key, value)
}
