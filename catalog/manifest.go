package catalog

// Runtime selects the mount strategy and the security policy that applies to
// a game. It is fixed for the lifetime of a session.
type Runtime = string

const (
	// RuntimeWire loads the game as a separate process talking to the hub
	// over the WebSocket bridge endpoint.
	RuntimeWire Runtime = "wire"
	// RuntimeModule loads the game as an in-process guest module registered
	// under its entry URL.
	RuntimeModule Runtime = "module"
)

type SizeHint struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Manifest describes one loadable game. Produced by the catalog file,
// immutable for the duration of a session.
type Manifest struct {
	ID                string    `yaml:"id" json:"id"`
	Title             string    `yaml:"title" json:"title"`
	Version           string    `yaml:"version" json:"version"`
	Runtime           Runtime   `yaml:"runtime" json:"runtime"`
	EntryURL          string    `yaml:"entryUrl" json:"entryUrl"`
	Capabilities      []string  `yaml:"capabilities" json:"capabilities,omitempty"`
	SizeHint          *SizeHint `yaml:"sizeHint" json:"sizeHint,omitempty"`
	Disabled          bool      `yaml:"disabled" json:"disabled,omitempty"`
	RolloutPercentage int       `yaml:"rolloutPercentage" json:"rolloutPercentage"`
}

func (m Manifest) HasCapability(capability string) bool {
	for _, c := range m.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}
