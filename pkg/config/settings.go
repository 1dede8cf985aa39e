package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"
)

// Default values for Settings.
const (
	DefaultProvider      = "groq"
	DefaultModel         = "llama-3.3-70b-versatile"
	DefaultGroqBaseURL   = "https://api.groq.com/openai/v1"
	DefaultStorePath     = "data/debategraph.db"
	DefaultTokenBudget   = 4000
	DefaultRecentWindow  = 10
	DefaultHTTPAddr      = ":8080"
	DefaultSubjectPrefix = "debate"
	DefaultNATSPort      = 4222
	DefaultMaxConcurrent = 4
)

// Settings is the typed runtime configuration of the debate service.
type Settings struct {
	LLM    LLMSettings
	Store  StoreSettings
	Memory MemorySettings
	HTTP   HTTPSettings
	NATS   NATSSettings
	Debate DebateSettings
}

// LLMSettings selects and configures the chat model.
type LLMSettings struct {
	// Provider is one of groq, openai, claude, deepseek, ollama.
	Provider    string
	Model       string
	BaseURL     string
	APIKey      string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// StoreSettings locates the SQLite database.
type StoreSettings struct {
	Path string
}

// MemorySettings controls compaction.
type MemorySettings struct {
	TokenBudget  int
	RecentWindow int
}

// HTTPSettings configures the API server.
type HTTPSettings struct {
	Addr string
}

// NATSSettings configures event fan-out. An empty URL disables it unless
// Embedded starts an in-process server.
type NATSSettings struct {
	URL           string
	SubjectPrefix string
	Embedded      bool
	Port          int
}

// DebateSettings holds orchestration knobs.
type DebateSettings struct {
	Verbose       bool
	MaxConcurrent int
	ProjectID     string
}

// Defaults returns Settings with every default applied.
func Defaults() Settings {
	return Settings{
		LLM: LLMSettings{
			Provider: DefaultProvider,
			Model:    DefaultModel,
			BaseURL:  DefaultGroqBaseURL,
			Timeout:  2 * time.Minute,
		},
		Store:  StoreSettings{Path: DefaultStorePath},
		Memory: MemorySettings{TokenBudget: DefaultTokenBudget, RecentWindow: DefaultRecentWindow},
		HTTP:   HTTPSettings{Addr: DefaultHTTPAddr},
		NATS:   NATSSettings{SubjectPrefix: DefaultSubjectPrefix, Port: DefaultNATSPort},
		Debate: DebateSettings{MaxConcurrent: DefaultMaxConcurrent},
	}
}

// Load builds Settings from defaults, then the file at path (if it exists),
// then environment overrides. An empty path falls back to DEBATEGRAPH_CONFIG.
func Load(path string) (Settings, error) {
	if path == "" {
		path = os.Getenv("DEBATEGRAPH_CONFIG")
	}

	s := Defaults()
	if path != "" {
		cfg, err := FromFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Settings{}, err
		default:
			s = FromConfig(cfg)
		}
	}

	applyEnv(&s)

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// FromConfig maps a loaded Config onto Settings, keeping defaults for
// anything missing.
func FromConfig(cfg Config) Settings {
	d := Defaults()

	llm := cfg.Sub("llm")
	mem := cfg.Sub("memory")
	nats := cfg.Sub("nats")
	debate := cfg.Sub("debate")

	return Settings{
		LLM: LLMSettings{
			Provider:    llm.String("provider", d.LLM.Provider),
			Model:       llm.String("model", d.LLM.Model),
			BaseURL:     llm.String("base_url", d.LLM.BaseURL),
			APIKey:      llm.String("api_key", ""),
			MaxTokens:   llm.Int("max_tokens", 0),
			Temperature: llm.Float("temperature", 0),
			Timeout:     llm.Duration("timeout", d.LLM.Timeout),
		},
		Store: StoreSettings{
			Path: cfg.String("store.path", d.Store.Path),
		},
		Memory: MemorySettings{
			TokenBudget:  mem.Int("token_budget", d.Memory.TokenBudget),
			RecentWindow: mem.Int("recent_window", d.Memory.RecentWindow),
		},
		HTTP: HTTPSettings{
			Addr: cfg.String("http.addr", d.HTTP.Addr),
		},
		NATS: NATSSettings{
			URL:           nats.String("url", ""),
			SubjectPrefix: nats.String("subject_prefix", d.NATS.SubjectPrefix),
			Embedded:      nats.Bool("embedded", false),
			Port:          nats.Int("port", d.NATS.Port),
		},
		Debate: DebateSettings{
			Verbose:       debate.Bool("verbose", false),
			MaxConcurrent: debate.Int("max_concurrent", d.Debate.MaxConcurrent),
			ProjectID:     debate.String("project_id", ""),
		},
	}
}

func applyEnv(s *Settings) {
	if v := os.Getenv("GROQ_API_KEY"); v != "" && s.LLM.APIKey == "" {
		s.LLM.APIKey = v
	}
	if v := os.Getenv("DEBATEGRAPH_LLM_API_KEY"); v != "" {
		s.LLM.APIKey = v
	}
	if v := os.Getenv("DEBATEGRAPH_LLM_PROVIDER"); v != "" {
		s.LLM.Provider = v
	}
	if v := os.Getenv("DEBATEGRAPH_LLM_MODEL"); v != "" {
		s.LLM.Model = v
	}
	if v := os.Getenv("DEBATEGRAPH_STORE_PATH"); v != "" {
		s.Store.Path = v
	}
	if v := os.Getenv("DEBATEGRAPH_HTTP_ADDR"); v != "" {
		s.HTTP.Addr = v
	}
	if v := os.Getenv("DEBATEGRAPH_NATS_URL"); v != "" {
		s.NATS.URL = v
	}
	if v := os.Getenv("DEBATEGRAPH_TOKEN_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.Memory.TokenBudget = n
		}
	}
}

// Validate reports settings that cannot work.
func (s Settings) Validate() error {
	var errs []error
	if s.Memory.TokenBudget <= 0 {
		errs = append(errs, fmt.Errorf("memory.token_budget must be > 0, got %d", s.Memory.TokenBudget))
	}
	if s.Memory.RecentWindow <= 0 {
		errs = append(errs, fmt.Errorf("memory.recent_window must be > 0, got %d", s.Memory.RecentWindow))
	}
	if s.Debate.MaxConcurrent <= 0 {
		errs = append(errs, fmt.Errorf("debate.max_concurrent must be > 0, got %d", s.Debate.MaxConcurrent))
	}
	if s.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	return errors.Join(errs...)
}
