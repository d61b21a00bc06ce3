package config

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://worklocal.app"
	DefaultTimeout = 10 * time.Second
)

// WorkLocalConfig holds the connection settings for the WorkLocal Studio API
type WorkLocalConfig struct {
	// BaseURL may include a path prefix (e.g. https://worklocal.app/api) when the API sits behind a gateway.
	BaseURL string `toml:"base_url,omitempty"`
	APIKey  string `toml:"api_key,omitempty"`
	// AuthHeader is the header carrying APIKey. Defaults to Authorization, where the key is sent as a Bearer token.
	AuthHeader string `toml:"auth_header,omitempty"`
	// Timeout for every request, as a Go duration string. Defaults to 10s.
	Timeout string `toml:"timeout,omitempty"`
	// Headers are static headers added to every request.
	Headers map[string]string `toml:"headers,omitempty"`
}

func (c *WorkLocalConfig) Validate() error {
	if c == nil {
		return errors.New("worklocal config is nil")
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base_url is required")
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("base_url must be a valid URL")
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("timeout must be a valid duration: %w", err)
		}
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
	}
	return nil
}

// RequestTimeout returns the configured request timeout or DefaultTimeout.
func (c *WorkLocalConfig) RequestTimeout() time.Duration {
	if c.Timeout == "" {
		return DefaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// RequestHeaders returns the headers sent with every request:
// Content-Type, the configured static headers and the API key header, if any.
func (c *WorkLocalConfig) RequestHeaders() map[string]string {
	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range c.Headers {
		headers[http.CanonicalHeaderKey(k)] = v
	}
	if name, value := c.authorizationHeader(); value != "" {
		headers[name] = value
	}
	return headers
}

func (c *WorkLocalConfig) authorizationHeader() (string, string) {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return "", ""
	}
	name := http.CanonicalHeaderKey(strings.TrimSpace(c.AuthHeader))
	if name == "" {
		name = "Authorization"
	}
	if name != "Authorization" || strings.HasPrefix(key, "Bearer ") {
		return name, key
	}
	return name, "Bearer " + key
}
