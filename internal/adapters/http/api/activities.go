package api

import (
	"net/http"
	"strings"

	"github.com/mergington/activities/pkg/logger"
)

// ActivitiesHandler serves the activity directory routes.
type ActivitiesHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewActivitiesHandler creates a new activities handler.
func NewActivitiesHandler(deps Dependencies) *ActivitiesHandler {
	return &ActivitiesHandler{deps: deps}
}

func (h *ActivitiesHandler) log() logger.Logger {
	if h.logger != nil {
		return h.logger
	}
	return logger.Get()
}

// HandleList handles GET /activities.
func (h *ActivitiesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_activities"
	activities, err := h.deps.ListActivities(r.Context())
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, activities)
}

// HandleGet handles GET /activities/{name}.
func (h *ActivitiesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_activity"
	name := r.PathValue("name")
	if strings.TrimSpace(name) == "" {
		h.fail(w, r, op, WrapKind(op, ErrBadRequest, errNameRequired))
		return
	}
	activity, err := h.deps.GetActivity(r.Context(), name)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, activity)
}

// HandleSignup handles POST /activities/{name}/signup?email=...
func (h *ActivitiesHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	const op = "api.signup"
	name := r.PathValue("name")
	if strings.TrimSpace(name) == "" {
		h.fail(w, r, op, WrapKind(op, ErrBadRequest, errNameRequired))
		return
	}
	msg, err := h.deps.Signup(r.Context(), name, r.URL.Query().Get("email"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

// HandleUnregister handles DELETE /activities/{name}/unregister?email=...
func (h *ActivitiesHandler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	const op = "api.unregister"
	name := r.PathValue("name")
	if strings.TrimSpace(name) == "" {
		h.fail(w, r, op, WrapKind(op, ErrBadRequest, errNameRequired))
		return
	}
	msg, err := h.deps.Unregister(r.Context(), name, r.URL.Query().Get("email"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func (h *ActivitiesHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code, detail, known := statusFor(err)
	if !known {
		h.log().Error(r.Context(), "request failed", logger.Error(WrapKind(op, ErrInternal, err)))
	}
	writeError(w, status, code, detail)
}
