package models

import "fmt"

// Backend describes the endpoints one instance talks to.
type Backend struct {
	Name         string `json:"name"`
	RestURL      string `json:"rest"`
	WebSocketURL string `json:"ws"`
}

// Named backend profiles selectable at instance creation.
var (
	BackendProduction = Backend{
		Name:         "production",
		RestURL:      "https://api.example.com",
		WebSocketURL: "wss://api.example.com/await",
	}
	BackendStaging = Backend{
		Name:         "staging",
		RestURL:      "https://staging-api.example.com",
		WebSocketURL: "wss://staging-api.example.com/await",
	}
)

// ResolveBackend maps a profile name or an explicit custom descriptor to a
// Backend. A custom descriptor wins over the name when both are given.
func ResolveBackend(name string, custom *Backend) (Backend, error) {
	if custom != nil {
		b := *custom
		if b.Name == "" {
			b.Name = "custom"
		}
		return b, nil
	}
	switch name {
	case "", "staging":
		return BackendStaging, nil
	case "production", "prod":
		return BackendProduction, nil
	default:
		return Backend{}, fmt.Errorf("unknown backend %q", name)
	}
}
