package bridge

import "iruka-hub/protocol"

// Transport is the bidirectional typed-message channel between the hub and
// exactly one guest game. Two implementations exist: the WebSocket wire
// transport for out-of-process games, and the in-process module transport
// for registered guest modules. The bridge relay logic is written once
// against this interface.
type Transport interface {
	// Send delivers a hub envelope to the guest.
	Send(env protocol.Envelope) error
	// Events yields validated game-source envelopes. The channel closes when
	// the transport shuts down. The module transport never produces here;
	// its events enter the bridge directly through the host API.
	Events() <-chan protocol.Envelope
	// Connected is closed once the guest endpoint is attached and commands
	// can be delivered.
	Connected() <-chan struct{}
	Close() error
}
