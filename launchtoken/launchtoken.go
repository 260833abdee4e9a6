// Package launchtoken issues and verifies the short-lived bearer credentials
// embedded in a LaunchContext. A token is scoped to exactly one game and one
// player and never lives longer than 15 minutes.
package launchtoken

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MaxTTL caps every issued token regardless of what the caller asks for.
const MaxTTL = 15 * time.Minute

type Claims struct {
	PlayerID  string `json:"playerId"`
	GameID    string `json:"gameId"`
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
}

func NewIssuer(secret []byte) *Issuer {
	return &Issuer{secret: secret}
}

// Issue signs a launch token for one play session. TTLs above MaxTTL are
// clamped, never rejected.
func (i *Issuer) Issue(playerID, gameID, sessionID string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 || ttl > MaxTTL {
		ttl = MaxTTL
	}

	expiresAt := time.Now().Add(ttl)
	claims := Claims{
		PlayerID:  playerID,
		GameID:    gameID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Subject:   playerID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign launch token: %v", err)
	}

	return signed, expiresAt, nil
}

// Verify checks the token signature, expiry and game scope. A structurally
// valid token issued for another game is rejected.
func (i *Issuer) Verify(token string, gameID string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify launch token: %v", err)
	}

	if !parsed.Valid {
		return nil, fmt.Errorf("launch token is not valid")
	}

	if claims.GameID != gameID {
		return nil, fmt.Errorf("launch token is scoped to game %q, not %q", claims.GameID, gameID)
	}

	return &claims, nil
}
