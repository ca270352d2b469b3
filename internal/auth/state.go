// Package auth builds the GitHub side of the account-linking handshake.
//
// LINK FLOW OVERVIEW:
// 1. The Discord bot sends the user to /auth?discord=<id>
// 2. We redirect the browser to GitHub's authorize page. The redirect_uri we
//    give GitHub is the bot backend's /callback, carrying the same discord id
// 3. GitHub sends the browser to the backend /callback with ?code=…&state=…
// 4. The backend exchanges the code, stores the mapping, and redirects to
//    /auth/complete?discord=<id>
// 5. We render "You're linked"
//
// THE SPOOFING PROBLEM:
// The discord id is just a query parameter. Anyone can start the flow with
// somebody else's id and bind their own GitHub account to it. The signed
// link state below lets the backend (and the confirmation page) check that
// the id really came out of this service recently.
//
// The state is a JWT:
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Payload: {"sub":"<discord id>","iss":"gitbot-link","jti":"<xid>","exp":…}
//	- Signature: HMAC-SHA256(header+"."+payload, LINK_STATE_SECRET)
//
// The backend verifies it with the shared secret. No server-side session is
// needed, which keeps both stages stateless.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"

	"github.com/sakif/gitbot-link/internal/apperror"
)

const (
	// stateIssuer is checked on validation so tokens from other apps signed
	// with a reused secret are rejected.
	stateIssuer = "gitbot-link"

	// DefaultStateTTL bounds how long a user may sit on GitHub's consent page.
	DefaultStateTTL = 10 * time.Minute

	// StateParam is the OAuth query parameter carrying the signed state.
	StateParam = "state"
)

// StateSigner issues and verifies signed link states.
type StateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewStateSigner creates a StateSigner with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: LINK_STATE_SECRET=$(openssl rand -hex 32)
func NewStateSigner(secret string, ttl time.Duration) (*StateSigner, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: link state secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultStateTTL
	}
	return &StateSigner{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

type stateClaims struct {
	jwt.RegisteredClaims
}

// Generate signs a state for discordID. An empty id is allowed; it is still
// bound into the token so the empty value cannot be swapped for another one.
func (s *StateSigner) Generate(discordID string) (string, error) {
	now := s.now()

	c := stateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   discordID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    stateIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing link state: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a signed state and returns the discord id it
// was issued for.
//
// Returns an apperror.ErrValidation error for anything malformed, expired,
// or signed with a different key.
func (s *StateSigner) Validate(state string) (string, error) {
	token, err := jwt.ParseWithClaims(
		state,
		&stateClaims{},
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperror.ValidationFailed(StateParam, "link state expired")
		}
		return "", apperror.ValidationFailed(StateParam, fmt.Sprintf("invalid link state: %v", err))
	}

	c, ok := token.Claims.(*stateClaims)
	if !ok || !token.Valid {
		return "", apperror.ValidationFailed(StateParam, "invalid link state claims")
	}

	return c.Subject, nil
}

// VerifyFor validates state and checks it was issued for discordID.
// A valid token for a different id is an apperror.ErrForbidden error.
func (s *StateSigner) VerifyFor(state, discordID string) error {
	subject, err := s.Validate(state)
	if err != nil {
		return err
	}
	if subject != discordID {
		return apperror.Forbidden("link state was issued for a different discord id")
	}
	return nil
}
