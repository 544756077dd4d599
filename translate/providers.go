package translate

import (
	"fmt"
	"time"
)

// Provider identifiers accepted by the --provider flag.
const (
	ProviderOpenAI = "openai"
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
	ProviderCustom = "custom"
)

// Provider is one translation backend configuration.
type Provider struct {
	// ID is the provider identifier (openai, groq, ollama, gemini, custom).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key (empty for local services).
	APIKey string
	// Model is the model identifier.
	Model string
	// Timeout is the request timeout.
	Timeout time.Duration
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderOpenAI: {
			ID:      ProviderOpenAI,
			Name:    "OpenAI",
			Model:   "gpt-4o-mini",
			Timeout: 120 * time.Second,
		},
		ProviderGroq: {
			ID:      ProviderGroq,
			Name:    "Groq",
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama-3.3-70b-versatile",
			Timeout: 60 * time.Second,
		},
		ProviderOllama: {
			ID:      ProviderOllama,
			Name:    "Ollama",
			BaseURL: "http://localhost:11434/v1",
			Model:   "llama3.1",
			Timeout: 300 * time.Second,
		},
		ProviderGemini: {
			ID:      ProviderGemini,
			Name:    "Google AI (Gemini)",
			BaseURL: "https://generativelanguage.googleapis.com",
			Model:   "gemini-2.0-flash",
			Timeout: 120 * time.Second,
		},
		ProviderCustom: {
			ID:      ProviderCustom,
			Name:    "Custom OpenAI-compatible",
			Timeout: 120 * time.Second,
		},
	}
}

// ResolveProvider looks up a provider by ID and overlays the non-empty
// overrides from flags or configuration.
func ResolveProvider(id, model, apiKey, baseURL string, timeout time.Duration) (Provider, error) {
	prov, ok := DefaultProviders()[id]
	if !ok {
		return Provider{}, fmt.Errorf("unknown provider %q", id)
	}
	if model != "" {
		prov.Model = model
	}
	if apiKey != "" {
		prov.APIKey = apiKey
	}
	if baseURL != "" {
		prov.BaseURL = baseURL
	}
	if timeout > 0 {
		prov.Timeout = timeout
	}
	if prov.ID == ProviderCustom && prov.BaseURL == "" {
		return Provider{}, fmt.Errorf("provider %q requires --base-url", id)
	}
	return prov, nil
}

// NewBackend builds the backend for a provider. Gemini speaks its native
// generateContent API; everything else is OpenAI chat compatible.
func NewBackend(prov Provider) (Backend, error) {
	switch prov.ID {
	case "":
		return nil, fmt.Errorf("provider is not configured")
	case ProviderGemini:
		return newGeminiBackend(prov), nil
	default:
		return newOpenAIBackend(prov), nil
	}
}
