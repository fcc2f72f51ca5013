// internal/llm/factory/factory.go
package factory

import (
	"context"
	"fmt"

	"github.com/newthinker/alphapulse/internal/config"
	"github.com/newthinker/alphapulse/internal/llm"
	"github.com/newthinker/alphapulse/internal/llm/claude"
	"github.com/newthinker/alphapulse/internal/llm/gemini"
	"github.com/newthinker/alphapulse/internal/llm/ollama"
	"github.com/newthinker/alphapulse/internal/llm/openai"
)

// New creates an LLM provider based on configuration. An empty provider name
// returns a nil provider, which callers treat as "use the fallback".
func New(ctx context.Context, cfg config.LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "gemini":
		return gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	case "claude":
		return claude.New(cfg.Claude.APIKey, cfg.Claude.Model)
	case "openai":
		return openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "ollama":
		return ollama.New(cfg.Ollama.Endpoint, cfg.Ollama.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
}
