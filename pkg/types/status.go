// Package types holds API payloads shared by the daemon and its clients.
package types

// Status is the daemon status returned by the HTTP API.
type Status struct {
	// PowerLevel is one of ok, low, very-low, critical.
	PowerLevel string `json:"powerLevel"`
	// IsWarning reports whether a low-battery warning is on screen.
	IsWarning bool `json:"isWarning"`
	// Percentage is the battery charge in [0, 100].
	Percentage float64 `json:"percentage"`
	// Discharging reports whether the battery is draining.
	Discharging bool `json:"discharging"`
	// Source names the telemetry source: "upower" or "poller".
	Source string `json:"source"`
}
