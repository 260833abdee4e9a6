package catalog

import (
	"fmt"

	"github.com/google/uuid"

	"iruka-hub/launchtoken"
	"iruka-hub/protocol"
	"iruka-hub/security"
)

// LaunchOptions carries the optional per-session knobs the UI container may
// set before a game starts.
type LaunchOptions struct {
	Difficulty string
	Seed       int64
}

// NewLaunchContext builds the capability-scoped session descriptor for one
// play session: a fresh session id plus a launch token scoped to this game
// and player. Disabled or rolled-out games are refused here rather than at
// mount time so the caller gets a clear error before any transport work.
func NewLaunchContext(
	c *Catalog,
	issuer *launchtoken.Issuer,
	gameID string,
	playerID string,
	locale string,
	opts LaunchOptions,
) (protocol.LaunchContext, error) {
	manifest, ok := c.Get(gameID)
	if !ok {
		return protocol.LaunchContext{}, fmt.Errorf("unknown game id %q", gameID)
	}

	if !c.Available(gameID, playerID) {
		return protocol.LaunchContext{}, fmt.Errorf("game %q is not available to player %q", gameID, playerID)
	}

	sessionID := uuid.NewString()
	token, expiresAt, err := issuer.Issue(playerID, gameID, sessionID, launchtoken.MaxTTL)
	if err != nil {
		return protocol.LaunchContext{}, err
	}

	context := protocol.LaunchContext{
		SDKVersion:  protocol.SDKVersion,
		PlayerID:    playerID,
		SessionID:   sessionID,
		GameID:      gameID,
		Locale:      locale,
		Difficulty:  opts.Difficulty,
		Seed:        opts.Seed,
		LaunchToken: token,
		ExpiresAt:   expiresAt.UnixMilli(),
	}

	if manifest.SizeHint != nil {
		context.SizeHint = &protocol.SizeHint{
			Width:  manifest.SizeHint.Width,
			Height: manifest.SizeHint.Height,
		}
	}

	if security.IsTokenExpired(context.ExpiresAt) {
		return protocol.LaunchContext{}, fmt.Errorf("issued launch token is already expired")
	}

	return context, nil
}
