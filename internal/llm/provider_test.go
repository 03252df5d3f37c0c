package llm

import (
	"testing"

	"github.com/ppiankov/triplecheck/internal/model"
)

func TestBuildPrompt(t *testing.T) {
	template := "Annotate this passage:\n{{ INSERT PASSAGE HERE }}\nReturn Turtle."
	got := BuildPrompt(template, " Ὦ κοινὸν αὐτάδελφον \n", "Ismene, my own sister\n")

	want := "Annotate this passage:\nIsmene, my own sister\n\n[Ancient Greek]\nὮ κοινὸν αὐτάδελφον\nReturn Turtle."
	if got != want {
		t.Errorf("BuildPrompt() = %q, want %q", got, want)
	}
}

func TestBuildPrompt_NoPlaceholder(t *testing.T) {
	if got := BuildPrompt("static", "g", "e"); got != "static" {
		t.Errorf("expected template unchanged, got %q", got)
	}
}

func TestExtractTriples(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"plain", "  :A a :Character .  ", ":A a :Character ."},
		{"turtle fence", "Here you go:\n```turtle\n:A a :Character .\n:B a :Theme .\n```\nDone.", ":A a :Character .\n:B a :Theme ."},
		{"ttl fence", "```ttl\n:A a :Character .\n```", ":A a :Character ."},
		{"bare fence", "```\n:A a :Character .\n```", ":A a :Character ."},
		{"first block wins", "```turtle\n:A a :X .\n```\n```turtle\n:B a :Y .\n```", ":A a :X ."},
		{"unterminated fence", "```turtle\n:A a :X .", "```turtle\n:A a :X ."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractTriples(tt.response); got != tt.want {
				t.Errorf("ExtractTriples() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(Config{})
	if err != nil || p != nil {
		t.Errorf("expected disabled provider, got %v, %v", p, err)
	}

	p, err = NewProvider(Config{Provider: "OpenAI", APIKey: "k"})
	if err != nil || p.Name() != "openai" {
		t.Errorf("expected openai provider, got %v, %v", p, err)
	}

	p, err = NewProvider(Config{Provider: "ollama", Model: "llama3.1"})
	if err != nil || p.Name() != "ollama" {
		t.Errorf("expected ollama provider, got %v, %v", p, err)
	}

	if _, err := NewProvider(Config{Provider: "gemini"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestConfigFromModel(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg := ConfigFromModel(
		model.LLMConfig{Provider: "openai", Model: "gpt-5.2", MaxTokens: 4000, Temperature: 0.3},
		model.HTTPConfig{HTTPSProxy: "http://proxy:3128", NoProxy: "localhost"},
	)
	if cfg.APIKey != "env-key" {
		t.Errorf("expected key from environment, got %q", cfg.APIKey)
	}
	if cfg.HTTPSProxy != "http://proxy:3128" || cfg.NoProxy != "localhost" {
		t.Errorf("proxy settings not carried over: %+v", cfg)
	}

	cfg = ConfigFromModel(model.LLMConfig{APIKey: "explicit"}, model.HTTPConfig{})
	if cfg.APIKey != "explicit" {
		t.Errorf("expected explicit key, got %q", cfg.APIKey)
	}
}
