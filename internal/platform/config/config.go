package config

import (
	"os"
	"time"
)

// Server captures process-level configuration for the orchestrator.
type Server struct {
	Addr               string
	JWTSigningKey      string
	AbortTimeout       time.Duration
	ResumePollInterval time.Duration
	// OrgName and GlobalConfigSpace locate the global configuration target
	// used as a fallback when a scoped registry lookup finds nothing.
	OrgName           string
	GlobalConfigSpace string
}

var (
	// DefaultAbortTimeout bounds the optimistic-locking retry loop of abort.
	DefaultAbortTimeout = 30 * time.Second
	// DefaultResumePollInterval is the sleep between probes for the target
	// activity of a resume request.
	DefaultResumePollInterval = 100 * time.Millisecond
)

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CONVOY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	abortTimeout := DefaultAbortTimeout
	if s := os.Getenv("CONVOY_ABORT_TIMEOUT"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			abortTimeout = d
		}
	}

	pollInterval := DefaultResumePollInterval
	if s := os.Getenv("CONVOY_RESUME_POLL_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			pollInterval = d
		}
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:               addr,
		JWTSigningKey:      jwtSigningKey,
		AbortTimeout:       abortTimeout,
		ResumePollInterval: pollInterval,
		OrgName:            os.Getenv("CONVOY_ORG"),
		GlobalConfigSpace:  os.Getenv("CONVOY_GLOBAL_CONFIG_SPACE"),
	}
}
