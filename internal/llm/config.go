package llm

import (
	"fmt"
	"time"
)

// DefaultBaseURL is the OpenAI API root.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config contains configuration for the LLM client.
type Config struct {
	// APIKey is the OpenAI bearer token
	APIKey string

	// BaseURL is the API base URL
	// Default: https://api.openai.com/v1
	BaseURL string

	// Timeout bounds the wait for response headers. Reading a streamed body
	// is bounded only by the request context.
	// Default: 5 minutes
	Timeout time.Duration
}

// Validate checks that required config fields are set.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("APIKey is required")
	}

	if c.BaseURL == "" {
		return fmt.Errorf("BaseURL is required")
	}

	return nil
}

// SetDefaults fills in default values for optional fields.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}

	if c.Timeout == 0 {
		c.Timeout = 5 * time.Minute
	}
}
