package config

// HTTPConfig contains HTTP server configuration.
type HTTPConfig struct {
	// Addr is the address to bind the HTTP server to.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the base URL of the application (e.g., "https://app.example.com").
	// Used for building the absolute OAuth callback URL.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain is the domain for session cookies.
	// Leave empty to use the request domain.
	CookieDomain string `env:"APP_COOKIE_DOMAIN" envDefault:""`

	// HeaderBudget caps the total byte size of inbound header values before
	// a request is short-circuited with cache suppression.
	HeaderBudget int `env:"HTTP_HEADER_BUDGET" envDefault:"8192"`
}

// Sanitize applies guardrails to HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	if h.HeaderBudget <= 0 {
		h.HeaderBudget = 8192
	}
}
