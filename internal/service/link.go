// Package service holds the account-linking business logic.
//
// LinkService sits between the HTTP handlers and the auth/repository packages:
//
//	LinkHandler (HTTP) → LinkService (flow rules) → GitHubAuthorizer (URL composition)
//	                                              ↘ StateSigner (signed state, optional)
//	                                              ↘ LinkEventRepository (journal, optional)
//
// WHAT THIS LAYER DOES NOT DO:
//   - It does NOT write redirects or render pages (HTTP concerns)
//   - It does NOT talk to GitHub; the browser performs the navigation
//   - It does NOT store tokens; the bot backend owns that
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/gitbot-link/internal/apperror"
	"github.com/sakif/gitbot-link/internal/auth"
	"github.com/sakif/gitbot-link/internal/model"
	"github.com/sakif/gitbot-link/internal/repository"
)

// LinkService runs both stages of the link handshake.
//
// DEPENDENCIES (injected via NewLinkService):
//   - authorizer *auth.GitHubAuthorizer          → builds the GitHub authorize URL
//   - states     *auth.StateSigner               → nil disables signed state
//   - events     repository.LinkEventRepository  → nil disables the journal
//   - logger     *slog.Logger
//
// The service holds no per-flow state. Each call is one independent run of
// the flow's state machine, so one LinkService is shared by all requests.
type LinkService struct {
	authorizer *auth.GitHubAuthorizer
	states     *auth.StateSigner
	events     repository.LinkEventRepository
	logger     *slog.Logger
}

// NewLinkService creates a LinkService. states and events may be nil.
func NewLinkService(
	authorizer *auth.GitHubAuthorizer,
	states *auth.StateSigner,
	events repository.LinkEventRepository,
	logger *slog.Logger,
) *LinkService {
	return &LinkService{
		authorizer: authorizer,
		states:     states,
		events:     events,
		logger:     logger,
	}
}

// Ready reports whether the initiator can build redirects.
// It returns the same ConfigurationError Initiate would.
func (s *LinkService) Ready() error {
	return s.authorizer.Validate()
}

// Initiate runs the Link Initiator: INITIAL → BUILDING_REDIRECT → REDIRECTING.
//
// An empty DiscordID is NOT an error. The flow continues in a degraded form
// and the confirmation page will later show "Unknown User".
//
// Returns an error wrapping apperror.ErrConfiguration when the OAuth client id
// or backend base URL is missing. In that case nothing must be sent to GitHub;
// the caller must not redirect.
func (s *LinkService) Initiate(ctx context.Context, req model.LinkRequest) (*model.AuthorizationRedirect, error) {
	if err := s.authorizer.Validate(); err != nil {
		s.logger.Error("link initiation aborted: configuration error",
			slog.String("error", err.Error()),
		)
		s.record(ctx, req.DiscordID, model.PhaseBuildingRedirect, model.OutcomeConfigurationError)
		return nil, fmt.Errorf("service/link: %w", err)
	}

	var state string
	if s.states != nil {
		signed, err := s.states.Generate(req.DiscordID)
		if err != nil {
			return nil, fmt.Errorf("service/link: signing state: %w", err)
		}
		state = signed
	}

	redirect, err := s.authorizer.Authorize(req.DiscordID, state)
	if err != nil {
		return nil, fmt.Errorf("service/link: building authorization URL: %w", err)
	}

	outcome := model.OutcomeOK
	if req.DiscordID == "" {
		outcome = model.OutcomeMissingIdentifier
		s.logger.Warn("link initiated without a discord id")
	}

	s.logger.Info("link redirect built",
		slog.Bool("signedState", state != ""),
		slog.String("outcome", string(outcome)),
	)
	s.record(ctx, req.DiscordID, model.PhaseRedirecting, outcome)

	return redirect, nil
}

// Confirm runs the Link Confirmation: INITIAL → DISPLAYED.
//
// It never fails. A missing id is an expected terminal state, and a bad
// forwarded state only withholds the "verified" mark: the page is display
// only, and by the time the user sees it the backend has already decided.
func (s *LinkService) Confirm(ctx context.Context, discordID, state string) *model.LinkConfirmation {
	c := &model.LinkConfirmation{
		DiscordID: discordID,
		Present:   discordID != "",
	}

	outcome := model.OutcomeOK
	if !c.Present {
		outcome = model.OutcomeMissingIdentifier
	}

	if state != "" && s.states != nil {
		err := s.states.VerifyFor(state, discordID)
		switch {
		case err == nil:
			c.StateVerified = true
		case errors.Is(err, apperror.ErrForbidden), errors.Is(err, apperror.ErrValidation):
			s.logger.Warn("link confirmation: state rejected", slog.String("error", err.Error()))
			outcome = model.OutcomeStateRejected
		default:
			s.logger.Error("link confirmation: verifying state", slog.String("error", err.Error()))
			outcome = model.OutcomeStateRejected
		}
	}

	s.record(ctx, discordID, model.PhaseDisplayed, outcome)
	return c
}

// record appends to the journal if one is configured. Journal failures are
// logged and never change what the user sees.
func (s *LinkService) record(ctx context.Context, discordID string, phase model.LinkPhase, outcome model.LinkOutcome) {
	if s.events == nil {
		return
	}

	event := &model.LinkEvent{
		DiscordID: discordID,
		Phase:     phase,
		Outcome:   outcome,
	}
	if err := s.events.Record(ctx, event); err != nil {
		s.logger.Warn("link journal write failed",
			slog.String("phase", string(phase)),
			slog.String("error", err.Error()),
		)
	}
}
