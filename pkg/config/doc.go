/*
Package config loads the debate service configuration.

Config wraps a map[string]any decoded from YAML or JSON and exposes typed
accessors that fall back to a default on missing keys or type mismatches.
Keys may be dotted paths into nested sections:

	cfg, err := config.FromFile("debategraph.yaml")
	budget := cfg.Int("memory.token_budget", 4000)
	llm := cfg.Sub("llm")
	model := llm.String("model", "llama-3.3-70b-versatile")

Load builds typed Settings from defaults, an optional file, and environment
overrides (DEBATEGRAPH_*, GROQ_API_KEY), then validates them.
*/
package config
