package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnv.
const (
	EnvProviderEnabled  = "GENPIPE_PROVIDER_ENABLED"
	EnvBaseURL          = "GENPIPE_BASE_URL"
	EnvAPIKey           = "GENPIPE_API_KEY"
	EnvModel            = "GENPIPE_MODEL"
	EnvHostBaseURL      = "GENPIPE_HOST_BASE_URL"
	EnvHostAPIKey       = "GENPIPE_HOST_API_KEY"
	EnvHostModel        = "GENPIPE_HOST_MODEL"
	EnvHostTokenURL     = "GENPIPE_HOST_TOKEN_URL"
	EnvHostClientID     = "GENPIPE_HOST_CLIENT_ID"
	EnvHostClientSecret = "GENPIPE_HOST_CLIENT_SECRET"
	EnvConfirmation     = "GENPIPE_CONFIRMATION_REQUIRED"
	EnvTemperature      = "GENPIPE_TEMPERATURE"
	EnvMaxTokens        = "GENPIPE_MAX_TOKENS"
	EnvCallsPerMinute   = "GENPIPE_CALLS_PER_MINUTE"
	EnvBurst            = "GENPIPE_BURST"
	EnvAccessToken      = "GENPIPE_ACCESS_TOKEN"
	EnvVerbose          = "GENPIPE_VERBOSE"
)

const (
	defaultTemperature = 0.7
	defaultMaxTokens   = 1024
	defaultServerHost  = "127.0.0.1"
	defaultServerPort  = 8000
	defaultHostModel   = "gpt-4o-mini"
	defaultBurst       = 1
)

// ProviderConfig is the user-configured direct provider.
type ProviderConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// HostConfig configures the host-mediated provider. Either APIKey or the
// client-credentials triple (TokenURL, ClientID, ClientSecret) supplies the
// bearer token.
type HostConfig struct {
	BaseURL      string   `yaml:"base_url"`
	APIKey       string   `yaml:"api_key"`
	Model        string   `yaml:"model"`
	TokenURL     string   `yaml:"token_url"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
}

// Configured reports whether a host endpoint was set at all.
func (h HostConfig) Configured() bool {
	return strings.TrimSpace(h.BaseURL) != ""
}

// GenerationConfig holds the fixed sampling parameters.
type GenerationConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// LimitsConfig bounds how often billable calls may start. A zero
// CallsPerMinute disables the limiter.
type LimitsConfig struct {
	CallsPerMinute float64 `yaml:"calls_per_minute"`
	Burst          int     `yaml:"burst"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	AccessToken string `yaml:"access_token"`
}

// Settings is one immutable snapshot of everything the pipeline reads.
type Settings struct {
	Provider             ProviderConfig   `yaml:"provider"`
	Host                 HostConfig       `yaml:"host"`
	ConfirmationRequired bool             `yaml:"confirmation_required"`
	Generation           GenerationConfig `yaml:"generation"`
	Limits               LimitsConfig     `yaml:"limits"`
	Server               ServerConfig     `yaml:"server"`
	Verbose              bool             `yaml:"verbose"`
}

// Default returns settings with built-in defaults only.
func Default() Settings {
	return Settings{
		Host:       HostConfig{Model: defaultHostModel},
		Generation: GenerationConfig{Temperature: defaultTemperature, MaxTokens: defaultMaxTokens},
		Limits:     LimitsConfig{Burst: defaultBurst},
		Server:     ServerConfig{Host: defaultServerHost, Port: defaultServerPort},
	}
}

// DefaultFromEnv returns Default overlaid with the environment.
func DefaultFromEnv() Settings {
	s := Default()
	ApplyEnv(&s)
	return s
}

// ApplyEnv overlays every GENPIPE_* variable that is set onto s.
func ApplyEnv(s *Settings) {
	if _, ok := os.LookupEnv(EnvProviderEnabled); ok {
		s.Provider.Enabled = envBool(EnvProviderEnabled)
	}
	s.Provider.BaseURL = envOrDefault(EnvBaseURL, s.Provider.BaseURL)
	s.Provider.APIKey = envOrDefault(EnvAPIKey, s.Provider.APIKey)
	s.Provider.Model = envOrDefault(EnvModel, s.Provider.Model)

	s.Host.BaseURL = envOrDefault(EnvHostBaseURL, s.Host.BaseURL)
	s.Host.APIKey = envOrDefault(EnvHostAPIKey, s.Host.APIKey)
	s.Host.Model = envOrDefault(EnvHostModel, s.Host.Model)
	s.Host.TokenURL = envOrDefault(EnvHostTokenURL, s.Host.TokenURL)
	s.Host.ClientID = envOrDefault(EnvHostClientID, s.Host.ClientID)
	s.Host.ClientSecret = envOrDefault(EnvHostClientSecret, s.Host.ClientSecret)

	if _, ok := os.LookupEnv(EnvConfirmation); ok {
		s.ConfirmationRequired = envBool(EnvConfirmation)
	}
	s.Generation.Temperature = envFloat(EnvTemperature, s.Generation.Temperature)
	s.Generation.MaxTokens = envInt(EnvMaxTokens, s.Generation.MaxTokens)
	s.Limits.CallsPerMinute = envFloat(EnvCallsPerMinute, s.Limits.CallsPerMinute)
	s.Limits.Burst = envInt(EnvBurst, s.Limits.Burst)
	s.Server.AccessToken = envOrDefault(EnvAccessToken, s.Server.AccessToken)
	if envBool(EnvVerbose) {
		s.Verbose = true
	}
}

// Clone returns a deep copy, so callers may not alias the Scopes slice.
func (s Settings) Clone() Settings {
	if s.Host.Scopes != nil {
		s.Host.Scopes = append([]string(nil), s.Host.Scopes...)
	}
	return s
}

// Static is a settings source that never changes.
type Static Settings

// Settings returns a copy of the fixed snapshot.
func (s Static) Settings() Settings {
	return Settings(s).Clone()
}

func envOrDefault(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func envFloat(key string, defaultVal float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envInt(key string, defaultVal int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
