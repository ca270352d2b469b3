// Package model defines the data structures used throughout the application.
//
// Everything here is transient: a link flow lives entirely in URL query
// parameters, and these structs only exist for the duration of one request.
// The single exception is LinkEvent, an operator audit record written to the
// optional journal.
package model

import "time"

// LinkRequest is what the Discord bot deep-links the user into the web flow with.
//
// WHY A STRING AND NOT AN INT?
// Discord user ids are snowflakes (64-bit integers), but nothing on this side
// interprets them. Treating the id as an opaque token means we never reformat
// it, so the value that comes back on the confirmation page is byte-identical
// to the one the bot sent. An empty DiscordID is allowed (degraded flow).
type LinkRequest struct {
	DiscordID string `json:"discordId"`
}

// AuthorizationRedirect is the derived, ephemeral description of one outbound
// GitHub authorization request.
//
// RedirectURI is kept in PLAINTEXT here, e.g.
//
//	https://bot.example.com/callback?discord=42
//
// It is percent-encoded exactly once, when it is placed into the outer
// authorization URL. Encoding it here as well would double-encode it.
type AuthorizationRedirect struct {
	ClientID    string   `json:"clientId"`
	RedirectURI string   `json:"redirectUri"`
	Scopes      []string `json:"scopes"`
	DiscordID   string   `json:"discordId"`
	State       string   `json:"state,omitempty"` // signed link state, empty when signing is disabled
	URL         string   `json:"url"`             // the fully composed authorization URL
}

// LinkConfirmation is reconstructed from the confirmation page's query string.
// Present is false when the discord parameter was missing or empty.
type LinkConfirmation struct {
	DiscordID     string `json:"discordId"`
	Present       bool   `json:"present"`
	StateVerified bool   `json:"stateVerified"`
}

// LinkPhase names a state of the link flow's state machine.
//
//	Initiator:    INITIAL → BUILDING_REDIRECT → REDIRECTING
//	Confirmation: INITIAL → DISPLAYED
//
// There are no backward transitions; every page load starts a fresh machine.
type LinkPhase string

const (
	PhaseInitial          LinkPhase = "initial"
	PhaseBuildingRedirect LinkPhase = "building_redirect"
	PhaseRedirecting      LinkPhase = "redirecting"
	PhaseDisplayed        LinkPhase = "displayed"
)

// LinkOutcome describes how a phase ended.
type LinkOutcome string

const (
	OutcomeOK                 LinkOutcome = "ok"
	OutcomeConfigurationError LinkOutcome = "configuration_error"
	OutcomeMissingIdentifier  LinkOutcome = "missing_identifier"
	OutcomeStateRejected      LinkOutcome = "state_rejected"
)

// LinkEvent is one row in the link journal.
type LinkEvent struct {
	ID        string      `json:"id"        db:"id"`
	DiscordID string      `json:"discordId" db:"discord_id"`
	Phase     LinkPhase   `json:"phase"     db:"phase"`
	Outcome   LinkOutcome `json:"outcome"   db:"outcome"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}
