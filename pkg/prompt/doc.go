/*
Package prompt renders the prompts sent to debate agents.

Templates use ${NAME} placeholders filled by an Expander:

	exp := prompt.NewExpander(prompt.WithMissingAction(prompt.MissingError))
	out, err := exp.Expand("Hello ${name}", map[string]string{"name": "Ada"})

Substitution is single-pass, so debate text placed into a template is never
itself expanded. The package's own templates are rendered strictly: a
missing variable panics.

Each builder (SuperAgent, Participant, FinalDecision, Summary,
InitialAgents, ExpandAgent, DebateTitle) documents the PAS format the model
must answer in, matching what package pas decodes.
*/
package prompt
