package auth

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/sakif/gitbot-link/internal/apperror"
	"github.com/sakif/gitbot-link/internal/model"
)

// LinkScopes is the fixed set of GitHub scopes requested when linking.
//
// This list is a CONTRACT with the bot backend: the token it receives can do
// exactly what these scopes allow and nothing more.
//   - "repo"            → read/write repositories, merge/close PRs, open/close issues
//   - "admin:repo_hook" → manage repository webhooks
//   - "notifications"   → read the user's notifications
//   - "read:user"       → basic profile of the authenticated user
//
// Changing it changes what the bot can do on the user's behalf.
var LinkScopes = []string{"repo", "admin:repo_hook", "notifications", "read:user"}

// Config keys, used in ConfigurationError messages so operators know what to set.
const (
	ClientIDKey       = "GITHUB_CLIENT_ID"
	BackendBaseURLKey = "BACKEND_BASE_URL"
)

// DiscordParam is the query parameter that carries the Discord identifier
// through every hop of the flow (initiator, backend callback, confirmation).
const DiscordParam = "discord"

// callbackPath is the backend route that exchanges the OAuth code for a token.
// It must match the "Authorization callback URL" registered on the GitHub OAuth App.
const callbackPath = "/callback"

// GitHubAuthorizer builds GitHub authorization URLs for the link flow.
//
// URL NESTING:
// The link flow embeds one URL inside another:
//
//	outer: https://github.com/login/oauth/authorize?client_id=…&redirect_uri=<INNER>&scope=…
//	inner: https://bot.example.com/callback?discord=<ID>
//
// Each level is serialised exactly once with url.Values.Encode:
//  1. the discord id is encoded as a query value of the inner URL
//  2. the whole inner URL is encoded as a query value of the outer URL
//     (oauth2.Config.AuthCodeURL does this for us)
//
// Decoding the outer URL's redirect_uri once gives back the inner URL verbatim,
// and decoding the inner URL's discord once gives back the original id.
// Hand-concatenating strings here is how double-encoding bugs creep in.
//
// The authorizer does NOT validate its configuration at construction time.
// The server must start (and serve the confirmation page) even when OAuth is
// misconfigured, so every call to Authorize re-checks it and returns a
// ConfigurationError instead of a malformed URL.
type GitHubAuthorizer struct {
	clientID       string
	backendBaseURL string
}

// NewGitHubAuthorizer creates a GitHubAuthorizer.
//
// backendBaseURL is where the bot backend is reachable, e.g.
// "https://bot.example.com". The callback URL is derived from it.
func NewGitHubAuthorizer(clientID, backendBaseURL string) *GitHubAuthorizer {
	return &GitHubAuthorizer{
		clientID:       strings.TrimSpace(clientID),
		backendBaseURL: strings.TrimSpace(backendBaseURL),
	}
}

// Validate reports whether the authorizer has everything it needs.
// It returns an *apperror.AppError wrapping apperror.ErrConfiguration if not.
func (a *GitHubAuthorizer) Validate() error {
	if a.clientID == "" {
		return apperror.Configuration(ClientIDKey, "not set")
	}
	if _, err := callbackBase(a.backendBaseURL); err != nil {
		return err
	}
	return nil
}

// CallbackURL returns the plaintext inner redirect target for discordID:
//
//	{backendBaseURL}/callback?discord={discordID}
//
// discordID is query-encoded once; an empty id yields "discord=" which the
// backend passes through untouched.
func (a *GitHubAuthorizer) CallbackURL(discordID string) (string, error) {
	base, err := callbackBase(a.backendBaseURL)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set(DiscordParam, discordID)

	return base + callbackPath + "?" + q.Encode(), nil
}

// Authorize builds the outbound GitHub authorization request for discordID.
//
// state is the opaque value GitHub echoes back to the callback. Pass "" to
// omit it entirely (oauth2 drops an empty state from the query string).
func (a *GitHubAuthorizer) Authorize(discordID, state string) (*model.AuthorizationRedirect, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	redirectURI, err := a.CallbackURL(discordID)
	if err != nil {
		return nil, err
	}

	cfg := &oauth2.Config{
		ClientID:    a.clientID,
		RedirectURL: redirectURI,
		Scopes:      LinkScopes,
		Endpoint:    github.Endpoint,
	}

	return &model.AuthorizationRedirect{
		ClientID:    a.clientID,
		RedirectURI: redirectURI,
		Scopes:      append([]string(nil), LinkScopes...),
		DiscordID:   discordID,
		State:       state,
		URL:         cfg.AuthCodeURL(state),
	}, nil
}

// callbackBase normalises the configured backend base URL into
// "scheme://host[/path]" with no trailing slash.
//
// WHY NORMALISE?
// GitHub compares redirect_uri against the registered callback URL byte for
// byte (up to the query string). "https://bot.example.com/" + "/callback"
// would produce "https://bot.example.com//callback" and GitHub would reject
// it. Re-serialising through net/url also lower-cases scheme and host and
// guarantees exactly one "://" separator.
func callbackBase(raw string) (string, error) {
	if raw == "" {
		return "", apperror.Configuration(BackendBaseURLKey, "not set")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", apperror.Configuration(BackendBaseURLKey, fmt.Sprintf("not a valid URL: %v", err))
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", apperror.Configuration(BackendBaseURLKey, "must be an absolute http(s) URL")
	}
	if u.Host == "" {
		return "", apperror.Configuration(BackendBaseURLKey, "must include a host")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", apperror.Configuration(BackendBaseURLKey, "must not include a query or fragment")
	}

	base := &url.URL{
		Scheme: scheme,
		Host:   strings.ToLower(u.Host),
		Path:   strings.TrimRight(u.Path, "/"),
	}
	return base.String(), nil
}

// InitiatorURL returns the link the Discord bot sends to a user to start the
// flow, e.g. "https://gitbot.example.com/auth?discord=42".
//
// siteBaseURL is where THIS service is reachable (not the bot backend).
func InitiatorURL(siteBaseURL, discordID string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(siteBaseURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("auth: site URL %q must be an absolute http(s) URL", siteBaseURL)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/auth"
	u.RawPath = ""
	u.Fragment = ""

	q := url.Values{}
	q.Set(DiscordParam, discordID)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
