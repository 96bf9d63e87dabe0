// Package llm optionally rewords deterministic answers with a language model.
// The model only ever sees a version that was already verified, and its
// output is discarded unless it keeps that version intact.
package llm

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/farheen-shaikh530/releasehub/internal/model"
)

// ErrRejected is returned when model output fails the evidence guard
var ErrRejected = errors.New("llm output rejected")

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete returns the model's reply to a single prompt
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest is one prompt sent to a provider
type CompletionRequest struct {
	System    string
	Prompt    string
	Model     string // overrides Config.Model
	MaxTokens int
}

// CompletionResponse is the provider's reply
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, OpenAI-compatible gateways)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 120,
	}
}

const systemPrompt = "You format deterministic system output. You never add facts."

// BuildPrompt asks for one sentence around the verified version
func BuildPrompt(query, version string) string {
	return fmt.Sprintf(`You are formatting a deterministic system output.

User question:
%s

Verified version (DO NOT CHANGE):
%s

Rules:
- Do NOT invent new version numbers.
- Do NOT use any external knowledge.
- Do NOT modify the version value.
- If unsure, return exactly: "%s"

Return 1 short sentence.`, query, version, model.AbstainText)
}
