package schema

// PollingConfig bounds a polling-mode RPC as specified in spec.md §3/§4.4.
type PollingConfig struct {
	MaxAttempts      int `json:"max_attempts"`
	PollingIntervalS int `json:"polling_interval_s"`
	RequestTimeoutS  int `json:"request_timeout_s"`
	OverallTimeoutS  int `json:"overall_timeout_s"`
}

// DefaultPollingConfig mirrors the defaults spec.md §4.4 specifies for an
// omitted polling_config: max_attempts=30, polling_interval=2,
// request_timeout=10, overall_timeout=60.
func DefaultPollingConfig() PollingConfig {
	return PollingConfig{
		MaxAttempts:      30,
		PollingIntervalS: 2,
		RequestTimeoutS:  10,
		OverallTimeoutS:  60,
	}
}

// ServerConfig describes where and how to reach the oracle server that
// handles a given selector.
type ServerConfig struct {
	ServerURL     string         `json:"server_url"`
	Polling       bool           `json:"polling,omitempty"`
	PollingConfig *PollingConfig `json:"polling_config,omitempty"`
}

// EffectivePollingConfig returns sc.PollingConfig, or the spec-mandated
// defaults if it is unset.
func (sc ServerConfig) EffectivePollingConfig() PollingConfig {
	if sc.PollingConfig != nil {
		return *sc.PollingConfig
	}
	return DefaultPollingConfig()
}

// ServerRegistry maps a cheat-code selector to the ServerConfig that serves
// it, the "servers.json" external interface from spec.md §6.
type ServerRegistry map[string]ServerConfig
