// internal/llm/gemini/gemini_test.go
package gemini

import (
	"context"
	"testing"

	"github.com/newthinker/alphapulse/internal/llm"
	"google.golang.org/genai"
)

func TestProvider_ImplementsInterface(t *testing.T) {
	var _ llm.Provider = (*Provider)(nil)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), "", "")
	if err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNew_DefaultModel(t *testing.T) {
	p, err := New(context.Background(), "test-key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.model != DefaultModel {
		t.Errorf("expected default model %s, got %s", DefaultModel, p.model)
	}
	if p.Name() != "gemini" {
		t.Errorf("expected gemini, got %s", p.Name())
	}
}

func TestBuildConfig_Schema(t *testing.T) {
	cfg := buildConfig(llm.ChatRequest{
		SystemPrompt: "sys",
		Temperature:  0.4,
		Schema: &llm.Schema{
			Type: llm.TypeObject,
			Properties: map[string]*llm.Schema{
				"action":     {Type: llm.TypeString, Enum: []string{"BUY", "SELL", "HOLD"}},
				"keyDrivers": {Type: llm.TypeArray, Items: &llm.Schema{Type: llm.TypeString}},
				"score":      {Type: llm.TypeNumber},
			},
			Required: []string{"action"},
		},
	})

	if cfg.ResponseMIMEType != "application/json" {
		t.Errorf("expected application/json, got %s", cfg.ResponseMIMEType)
	}
	if cfg.MaxOutputTokens != 1024 {
		t.Errorf("expected default max tokens, got %d", cfg.MaxOutputTokens)
	}
	if cfg.Temperature == nil || *cfg.Temperature != float32(0.4) {
		t.Errorf("expected temperature 0.4, got %v", cfg.Temperature)
	}
	if cfg.SystemInstruction == nil {
		t.Fatal("expected system instruction")
	}

	s := cfg.ResponseSchema
	if s == nil || s.Type != genai.TypeObject {
		t.Fatalf("expected object schema, got %+v", s)
	}
	if got := s.Properties["action"]; got.Type != genai.TypeString || len(got.Enum) != 3 {
		t.Errorf("unexpected action schema %+v", got)
	}
	if got := s.Properties["keyDrivers"]; got.Type != genai.TypeArray || got.Items == nil || got.Items.Type != genai.TypeString {
		t.Errorf("unexpected keyDrivers schema %+v", got)
	}
	if s.Properties["score"].Type != genai.TypeNumber {
		t.Errorf("expected number score")
	}
	if len(s.Required) != 1 || s.Required[0] != "action" {
		t.Errorf("unexpected required %v", s.Required)
	}
}

func TestBuildConfig_PlainText(t *testing.T) {
	cfg := buildConfig(llm.ChatRequest{MaxTokens: 256})

	if cfg.ResponseMIMEType != "" || cfg.ResponseSchema != nil {
		t.Error("expected no structured output settings")
	}
	if cfg.Temperature != nil {
		t.Error("expected provider default temperature")
	}
	if cfg.MaxOutputTokens != 256 {
		t.Errorf("expected 256, got %d", cfg.MaxOutputTokens)
	}
}
