package handlers

import (
	"context"
	"errors"
	"net/http"

	"mobiblog/internal/models"
	"mobiblog/internal/view"
)

type dashboardPage struct {
	State        view.DashboardState
	PendingErr   string
	PublishedErr string
}

func (h *Handlers) renderDashboard(w http.ResponseWriter, r *http.Request, d *view.Dashboard, msg string, err error) {
	if errors.Is(err, view.ErrNotAuthenticated) || errors.Is(err, view.ErrForbidden) {
		h.fail(w, r, err)
		return
	}

	state := d.State()
	if !state.Loaded {
		d.Load(r.Context())
		state = d.State()
	}

	page := Page{
		Title: "Admin Dashboard",
		Error: view.Message(err),
		Data: dashboardPage{
			State:        state,
			PendingErr:   view.Message(state.PendingErr),
			PublishedErr: view.Message(state.PublishedErr),
		},
	}
	if msg != "" {
		page.Notices = []string{msg}
	}

	status := http.StatusOK
	if err != nil {
		status = statusOf(err)
	}
	h.render(w, r, status, "dashboard", page)
}

func (h *Handlers) DashboardPage(w http.ResponseWriter, r *http.Request) {
	d := h.Views.Dashboard(storeFrom(r))
	err := d.Load(r.Context())
	if errors.Is(err, context.Canceled) {
		return
	}
	// collection failures are shown per list
	if !errors.Is(err, view.ErrNotAuthenticated) && !errors.Is(err, view.ErrForbidden) {
		err = nil
	}
	h.renderDashboard(w, r, d, "", err)
}

// dashboardAction runs one review action. The lists shown afterwards are
// the ones the action reloaded, or a fresh load when it failed early.
func (h *Handlers) dashboardAction(action func(ctx context.Context, d *view.Dashboard, id int64) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r, "id")
		if !ok {
			h.notFound(w, r)
			return
		}

		d := h.Views.Dashboard(storeFrom(r))
		msg, err := action(r.Context(), d, id)
		h.renderDashboard(w, r, d, msg, err)
	}
}

func (h *Handlers) ApprovePending(w http.ResponseWriter, r *http.Request) {
	h.dashboardAction(func(ctx context.Context, d *view.Dashboard, id int64) (string, error) {
		return d.Approve(ctx, id, r.PostFormValue("confirm") == "yes")
	})(w, r)
}

func (h *Handlers) RejectPending(w http.ResponseWriter, r *http.Request) {
	h.dashboardAction(func(ctx context.Context, d *view.Dashboard, id int64) (string, error) {
		return d.Reject(ctx, id, r.PostFormValue("reason"))
	})(w, r)
}

func (h *Handlers) DeletePublished(w http.ResponseWriter, r *http.Request) {
	h.dashboardAction(func(ctx context.Context, d *view.Dashboard, id int64) (string, error) {
		return d.DeletePublished(ctx, id, r.PostFormValue("confirm") == "yes")
	})(w, r)
}

type pendingPage struct {
	Post models.PendingPost
}

func (h *Handlers) PendingPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}

	post, err := h.Views.PendingPreview(r.Context(), storeFrom(r), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "pending", Page{Title: post.Title, Data: pendingPage{Post: post}})
}
