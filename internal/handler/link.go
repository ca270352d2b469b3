package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/gitbot-link/internal/auth"
	"github.com/sakif/gitbot-link/internal/model"
	"github.com/sakif/gitbot-link/internal/service"
)

// UnknownUser is shown on the confirmation page when no discord id arrived.
const UnknownUser = "Unknown User"

const pageTitle = "GitBot — Link your GitHub account"

// LinkHandler serves both stages of the account-linking handshake.
//
//   - HandleInitiate → GET /auth?discord=<id>            (redirect to GitHub)
//   - HandleComplete → GET /auth/complete?discord=<id>   (confirmation page)
//
// Both are stateless: everything they need is in the query string.
type LinkHandler struct {
	links  *service.LinkService
	pages  *Pages
	logger *slog.Logger
}

// NewLinkHandler creates a LinkHandler.
func NewLinkHandler(links *service.LinkService, pages *Pages, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{
		links:  links,
		pages:  pages,
		logger: logger,
	}
}

// confirmationView is the data passed to complete.html.
type confirmationView struct {
	Title    string
	Name     string
	Verified bool
}

// HandleInitiate redirects the browser to GitHub's authorization page.
//
// HTTP: GET /auth?discord=<id>
//
// A missing discord parameter is read as "" and the flow still proceeds.
// If the OAuth client id or backend base URL is not configured, NO redirect
// is issued: the service logs the diagnostic and the user sees a neutral
// "unavailable" page. Sending them to GitHub with a broken URL would only
// fail later, on GitHub's side, with an error the user can't act on.
func (h *LinkHandler) HandleInitiate(w http.ResponseWriter, r *http.Request) {
	discordID := r.URL.Query().Get(auth.DiscordParam)

	redirect, err := h.links.Initiate(r.Context(), model.LinkRequest{DiscordID: discordID})
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("link initiation failed", slog.String("error", err.Error()))
		}
		h.pages.Render(w, status, pageUnavailable, confirmationView{Title: pageTitle})
		return
	}

	// Terminal: the navigation IS the response.
	http.Redirect(w, r, redirect.URL, http.StatusTemporaryRedirect)
}

// HandleComplete renders the confirmation page.
//
// HTTP: GET /auth/complete?discord=<id>[&state=<signed state>]
//
// The backend's /callback redirects here after the token exchange. The id is
// display-only: it is not validated, and nothing else happens. An absent id
// renders the "Unknown User" placeholder rather than an error.
func (h *LinkHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	c := h.links.Confirm(r.Context(), q.Get(auth.DiscordParam), q.Get(auth.StateParam))

	name := c.DiscordID
	if !c.Present {
		name = UnknownUser
	}

	h.pages.Render(w, http.StatusOK, pageComplete, confirmationView{
		Title:    pageTitle,
		Name:     name,
		Verified: c.StateVerified,
	})
}
