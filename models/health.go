package models

// Health status values reported by the health endpoint.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

// HealthStatus summarises component liveness.
type HealthStatus struct {
	// Status is [HealthOK] when every component answered, [HealthDegraded]
	// otherwise.
	Status string `json:"status"`

	// Database reports whether the audit store answered a ping.
	Database bool `json:"database"`

	// Providers maps each configured provider adapter to whether its
	// upstream answered the connectivity check. Providers without a cheap
	// check endpoint report true.
	Providers map[string]bool `json:"providers"`
}
