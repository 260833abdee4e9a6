package bridge

import (
	"context"
	"fmt"
	"sync"

	"iruka-hub/protocol"
)

// GuestInstance is the handle a guest module returns from its init function.
type GuestInstance interface {
	OnHostCommand(cmd protocol.Command) error
	Destroy() error
}

// InitFunc constructs a running guest for one session. The guest receives
// its launch context directly; module-runtime games get no INIT command on
// the wire because there is no wire.
type InitFunc func(ctx context.Context, launch protocol.LaunchContext, host *HostAPI) (GuestInstance, error)

var (
	guestModulesMu sync.RWMutex
	guestModules   = map[string]InitFunc{}
)

// RegisterGuestModule binds an init function to a manifest entry URL.
// Typically called from the guest package's init.
func RegisterGuestModule(entryURL string, init InitFunc) {
	guestModulesMu.Lock()
	defer guestModulesMu.Unlock()
	guestModules[entryURL] = init
}

func lookupGuestModule(entryURL string) (InitFunc, error) {
	guestModulesMu.RLock()
	defer guestModulesMu.RUnlock()
	init, ok := guestModules[entryURL]
	if !ok {
		return nil, fmt.Errorf("no guest module registered for entry url %q", entryURL)
	}
	return init, nil
}

// moduleTransport adapts a GuestInstance to the Transport interface.
// Commands become direct function calls; the events channel stays silent
// because module guests emit through the host API instead.
type moduleTransport struct {
	guest     GuestInstance
	connected chan struct{}
	events    chan protocol.Envelope
	closeOnce sync.Once
}

func newModuleTransport(guest GuestInstance) *moduleTransport {
	t := &moduleTransport{
		guest:     guest,
		connected: make(chan struct{}),
		events:    make(chan protocol.Envelope),
	}
	close(t.connected)
	return t
}

func (t *moduleTransport) Send(env protocol.Envelope) error {
	cmd, err := protocol.ParseCommand(env)
	if err != nil {
		return err
	}
	return t.guest.OnHostCommand(cmd)
}

func (t *moduleTransport) Events() <-chan protocol.Envelope {
	return t.events
}

func (t *moduleTransport) Connected() <-chan struct{} {
	return t.connected
}

func (t *moduleTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.events)
	})
	return nil
}
