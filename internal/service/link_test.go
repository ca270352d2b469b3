package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sakif/gitbot-link/internal/apperror"
	"github.com/sakif/gitbot-link/internal/auth"
	"github.com/sakif/gitbot-link/internal/model"
	"github.com/sakif/gitbot-link/internal/repository"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeEventRepo is an in-memory repository.LinkEventRepository.
type fakeEventRepo struct {
	events    []model.LinkEvent
	recordErr error // set to simulate a database failure
}

func (f *fakeEventRepo) Record(ctx context.Context, e *model.LinkEvent) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*model.LinkEvent, error) {
	for i := range f.events {
		if f.events[i].ID == id {
			return &f.events[i], nil
		}
	}
	return nil, apperror.NotFound("link event", id)
}

func (f *fakeEventRepo) List(ctx context.Context, opts repository.ListOptions) ([]model.LinkEvent, error) {
	return f.events, nil
}

// newTestLogger returns a logger that writes into buf so tests can assert on
// the diagnostics an operator would see.
func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newTestSigner(t *testing.T) *auth.StateSigner {
	t.Helper()
	s, err := auth.NewStateSigner("test-secret-at-least-16-chars!!", time.Minute)
	if err != nil {
		t.Fatalf("NewStateSigner: %v", err)
	}
	return s
}

// =========================================================================
// INITIATE
// =========================================================================

func TestInitiate_BuildsRedirect(t *testing.T) {
	var logs bytes.Buffer
	repo := &fakeEventRepo{}
	svc := NewLinkService(auth.NewGitHubAuthorizer("abc", "https://x.example"), nil, repo, newTestLogger(&logs))

	redirect, err := svc.Initiate(context.Background(), model.LinkRequest{DiscordID: "42"})
	if err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}

	if redirect.RedirectURI != "https://x.example/callback?discord=42" {
		t.Errorf("RedirectURI = %q", redirect.RedirectURI)
	}
	if redirect.State != "" {
		t.Errorf("State = %q, want empty when signing is disabled", redirect.State)
	}

	if len(repo.events) != 1 {
		t.Fatalf("journal has %d events, want 1", len(repo.events))
	}
	if got := repo.events[0]; got.Phase != model.PhaseRedirecting || got.Outcome != model.OutcomeOK || got.DiscordID != "42" {
		t.Errorf("journal event = %+v", got)
	}
}

func TestInitiate_MissingIdentifierStillRedirects(t *testing.T) {
	var logs bytes.Buffer
	repo := &fakeEventRepo{}
	svc := NewLinkService(auth.NewGitHubAuthorizer("abc", "https://x.example"), nil, repo, newTestLogger(&logs))

	redirect, err := svc.Initiate(context.Background(), model.LinkRequest{})
	if err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}
	if redirect.URL == "" {
		t.Fatal("Initiate() returned an empty URL")
	}
	if repo.events[0].Outcome != model.OutcomeMissingIdentifier {
		t.Errorf("Outcome = %q, want %q", repo.events[0].Outcome, model.OutcomeMissingIdentifier)
	}
}

func TestInitiate_ConfigurationError(t *testing.T) {
	tests := []struct {
		name     string
		clientID string
		base     string
	}{
		{"missing client id", "", "https://x.example"},
		{"missing backend base url", "abc", ""},
		{"both missing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			repo := &fakeEventRepo{}
			svc := NewLinkService(auth.NewGitHubAuthorizer(tt.clientID, tt.base), nil, repo, newTestLogger(&logs))

			redirect, err := svc.Initiate(context.Background(), model.LinkRequest{DiscordID: "42"})
			if redirect != nil {
				t.Errorf("Initiate() returned a redirect %q, want none", redirect.URL)
			}
			if !errors.Is(err, apperror.ErrConfiguration) {
				t.Fatalf("Initiate() error = %v, want ErrConfiguration", err)
			}

			// The diagnostic goes to operators.
			if !strings.Contains(logs.String(), "level=ERROR") || !strings.Contains(logs.String(), "configuration error") {
				t.Errorf("expected an ERROR diagnostic, got logs:\n%s", logs.String())
			}

			if len(repo.events) != 1 || repo.events[0].Outcome != model.OutcomeConfigurationError {
				t.Errorf("journal = %+v, want one configuration_error event", repo.events)
			}
		})
	}
}

func TestInitiate_SignedState(t *testing.T) {
	var logs bytes.Buffer
	signer := newTestSigner(t)
	svc := NewLinkService(auth.NewGitHubAuthorizer("abc", "https://x.example"), signer, nil, newTestLogger(&logs))

	redirect, err := svc.Initiate(context.Background(), model.LinkRequest{DiscordID: "42"})
	if err != nil {
		t.Fatalf("Initiate() error = %v", err)
	}
	if redirect.State == "" {
		t.Fatal("State is empty, want a signed state")
	}

	u, err := url.Parse(redirect.URL)
	if err != nil {
		t.Fatalf("url.Parse: %v", err)
	}
	if u.Query().Get("state") != redirect.State {
		t.Error("authorization URL does not carry the signed state")
	}

	subject, err := signer.Validate(redirect.State)
	if err != nil || subject != "42" {
		t.Errorf("state subject = %q (err %v), want 42", subject, err)
	}
}

func TestInitiate_JournalFailureIsNotFatal(t *testing.T) {
	var logs bytes.Buffer
	repo := &fakeEventRepo{recordErr: errors.New("disk full")}
	svc := NewLinkService(auth.NewGitHubAuthorizer("abc", "https://x.example"), nil, repo, newTestLogger(&logs))

	if _, err := svc.Initiate(context.Background(), model.LinkRequest{DiscordID: "42"}); err != nil {
		t.Fatalf("Initiate() error = %v, journal failures must not abort the flow", err)
	}
	if !strings.Contains(logs.String(), "link journal write failed") {
		t.Errorf("expected a journal warning, got logs:\n%s", logs.String())
	}
}

func TestReady(t *testing.T) {
	var logs bytes.Buffer
	ok := NewLinkService(auth.NewGitHubAuthorizer("abc", "https://x.example"), nil, nil, newTestLogger(&logs))
	if err := ok.Ready(); err != nil {
		t.Errorf("Ready() error = %v", err)
	}

	broken := NewLinkService(auth.NewGitHubAuthorizer("", ""), nil, nil, newTestLogger(&logs))
	if err := broken.Ready(); !errors.Is(err, apperror.ErrConfiguration) {
		t.Errorf("Ready() error = %v, want ErrConfiguration", err)
	}
}

// =========================================================================
// CONFIRM
// =========================================================================

func TestConfirm(t *testing.T) {
	var logs bytes.Buffer
	repo := &fakeEventRepo{}
	svc := NewLinkService(auth.NewGitHubAuthorizer("", ""), nil, repo, newTestLogger(&logs))

	c := svc.Confirm(context.Background(), "42", "")
	if c.DiscordID != "42" || !c.Present {
		t.Errorf("Confirm() = %+v", c)
	}
	if c.StateVerified {
		t.Error("StateVerified should be false without a state")
	}
	if repo.events[0].Phase != model.PhaseDisplayed {
		t.Errorf("Phase = %q, want %q", repo.events[0].Phase, model.PhaseDisplayed)
	}
}

func TestConfirm_Absent(t *testing.T) {
	var logs bytes.Buffer
	repo := &fakeEventRepo{}
	svc := NewLinkService(auth.NewGitHubAuthorizer("abc", "https://x.example"), nil, repo, newTestLogger(&logs))

	c := svc.Confirm(context.Background(), "", "")
	if c.Present {
		t.Error("Present should be false for an empty id")
	}
	if repo.events[0].Outcome != model.OutcomeMissingIdentifier {
		t.Errorf("Outcome = %q, want %q", repo.events[0].Outcome, model.OutcomeMissingIdentifier)
	}
}

func TestConfirm_State(t *testing.T) {
	signer := newTestSigner(t)
	valid, _ := signer.Generate("42")

	tests := []struct {
		name         string
		discordID    string
		state        string
		wantVerified bool
		wantOutcome  model.LinkOutcome
	}{
		{"valid state", "42", valid, true, model.OutcomeOK},
		{"state for another id", "43", valid, false, model.OutcomeStateRejected},
		{"garbage state", "42", "nope", false, model.OutcomeStateRejected},
		{"no state", "42", "", false, model.OutcomeOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			repo := &fakeEventRepo{}
			svc := NewLinkService(auth.NewGitHubAuthorizer("abc", "https://x.example"), signer, repo, newTestLogger(&logs))

			c := svc.Confirm(context.Background(), tt.discordID, tt.state)
			if c.StateVerified != tt.wantVerified {
				t.Errorf("StateVerified = %v, want %v", c.StateVerified, tt.wantVerified)
			}
			if c.DiscordID != tt.discordID {
				t.Errorf("DiscordID = %q, want %q", c.DiscordID, tt.discordID)
			}
			if repo.events[0].Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q", repo.events[0].Outcome, tt.wantOutcome)
			}
		})
	}
}

func TestConfirm_StateIgnoredWhenSigningDisabled(t *testing.T) {
	var logs bytes.Buffer
	svc := NewLinkService(auth.NewGitHubAuthorizer("abc", "https://x.example"), nil, nil, newTestLogger(&logs))

	c := svc.Confirm(context.Background(), "42", "anything")
	if c.StateVerified {
		t.Error("StateVerified should be false when signing is disabled")
	}
}
