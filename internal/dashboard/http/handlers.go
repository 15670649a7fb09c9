package dashboardhttp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/carlux/carlux-inventory/internal/catalog"
	"github.com/carlux/carlux-inventory/internal/dashboard"
	"github.com/carlux/carlux-inventory/internal/listing"
	"github.com/carlux/carlux-inventory/internal/platform/httpx"
	"github.com/carlux/carlux-inventory/internal/shared"
	"github.com/carlux/carlux-inventory/internal/view"
)

const pageTitle = "Carlux Inventory"

// Handler serves the inventory dashboard for the viewer's mounted shell.
type Handler struct {
	logger    *slog.Logger
	registry  *dashboard.Registry
	templates *view.Engine
	csrf      *shared.CSRFManager
}

// NewHandler constructs the dashboard handler.
func NewHandler(logger *slog.Logger, registry *dashboard.Registry, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{logger: logger, registry: registry, templates: templates, csrf: csrf}
}

type pageData struct {
	View      dashboard.View
	CSRFToken string
}

type inventoryPayload struct {
	Status   string            `json:"status"`
	Loading  bool              `json:"loading"`
	Query    string            `json:"query"`
	Sort     listing.SortMode  `json:"sort"`
	Shown    int               `json:"shown"`
	Total    *int              `json:"total,omitempty"`
	Products []catalog.Product `json:"products"`
}

// shell returns the viewer's shell, mounting one on first use. A new shell starts with the sort
// order remembered in the session.
func (h *Handler) shell(r *http.Request) (*dashboard.Shell, *shared.Session, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, nil, fmt.Errorf("%w: %w", httpx.ErrUnauthorized, shared.ErrSessionMissing)
	}
	shell := h.registry.Get(sess.ID, func(s *dashboard.Shell) {
		if pref := sess.Get(shared.SortPreferenceKey); pref != "" {
			s.SetSort(listing.ParseSortMode(pref))
		}
	})
	if shell == nil {
		return nil, sess, fmt.Errorf("%w: dashboard shutting down", httpx.ErrUnavailable)
	}
	return shell, sess, nil
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	shell, sess, err := h.shell(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	csrfToken, _ := h.csrf.Token(sess)
	data := view.TemplateData{
		Title:       pageTitle,
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		Data:        pageData{View: shell.Snapshot(), CSRFToken: csrfToken},
	}
	if err := h.templates.Render(w, "pages/inventory.html", data); err != nil {
		h.logger.Error("render inventory page", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleGrid(w http.ResponseWriter, r *http.Request) {
	shell, sess, err := h.shell(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	csrfToken, _ := h.csrf.Token(sess)
	w.Header().Set("Cache-Control", "no-store")
	if err := h.templates.RenderPartial(w, "partials/inventory_region", pageData{View: shell.Snapshot(), CSRFToken: csrfToken}); err != nil {
		h.logger.Error("render inventory region", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", httpx.ErrValidation, err))
		return
	}
	shell, _, err := h.shell(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	q := r.PostFormValue("q")
	if isScripted(r) {
		shell.SetSearch(q)
	} else {
		shell.SubmitSearch(q)
	}
	h.done(w, r)
}

func (h *Handler) handleSort(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, fmt.Errorf("%w: %w", httpx.ErrValidation, err))
		return
	}
	shell, sess, err := h.shell(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	mode := listing.ParseSortMode(r.PostFormValue("sort"))
	sess.Set(shared.SortPreferenceKey, string(mode))
	shell.SetSort(mode)
	h.done(w, r)
}

func (h *Handler) handleRetry(w http.ResponseWriter, r *http.Request) {
	shell, _, err := h.shell(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.Info("inventory retry requested", slog.String("viewer", shared.ViewerID(r.Context())))
	shell.Retry()
	h.done(w, r)
}

func (h *Handler) handleAPI(w http.ResponseWriter, r *http.Request) {
	shell, _, err := h.shell(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	query := r.URL.Query()
	wait := false
	if raw := query.Get("wait"); raw != "" {
		if wait, err = strconv.ParseBool(raw); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: wait must be a boolean, got %q", httpx.ErrValidation, raw))
			return
		}
	}
	if wait {
		if err := shell.Wait(r.Context()); err != nil {
			httpx.Problem(w, http.StatusGatewayTimeout, http.StatusText(http.StatusGatewayTimeout), "catalog fetch still pending")
			return
		}
	}

	// q and sort each override the dashboard's own value; whichever is absent falls back to
	// what the dashboard currently shows.
	v := shell.Snapshot()
	if query.Has("q") || query.Has("sort") {
		q, mode := v.AppliedQuery, v.Sort
		if query.Has("q") {
			q = query.Get("q")
		}
		if query.Has("sort") {
			mode = listing.SortMode(query.Get("sort"))
		}
		v = shell.Preview(q, mode)
	}

	switch v.Branch {
	case dashboard.BranchError:
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUpstream, v.Error))
		return
	case dashboard.BranchLoading:
		httpx.JSON(w, http.StatusAccepted, payloadFor(v))
		return
	}
	httpx.JSON(w, http.StatusOK, payloadFor(v))
}

func (h *Handler) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, r.URL.Path))
}

func payloadFor(v dashboard.View) inventoryPayload {
	products := v.Products
	if products == nil {
		products = []catalog.Product{}
	}
	return inventoryPayload{
		Status:   v.Phase.String(),
		Loading:  v.Loading,
		Query:    v.SearchQuery,
		Sort:     v.Sort,
		Shown:    v.Shown,
		Total:    v.Total,
		Products: products,
	}
}

// done answers a successful action: scripted requests get 204, plain form posts go back to the page.
func (h *Handler) done(w http.ResponseWriter, r *http.Request) {
	if isScripted(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := httpx.StatusFor(err)
	if errors.Is(err, shared.ErrSessionMissing) {
		h.logger.Error("dashboard request without session", slog.String("path", r.URL.Path))
	}
	http.Error(w, http.StatusText(status), status)
}

func isScripted(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") != ""
}
