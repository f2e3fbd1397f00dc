package api

import (
	"net/http"

	"github.com/platinummonkey/shopadmin/pkg/audit"
	"github.com/platinummonkey/shopadmin/pkg/auth"
	"github.com/platinummonkey/shopadmin/pkg/httputil"
	"github.com/platinummonkey/shopadmin/pkg/middleware"
)

// listUsers handles GET /api/users (admin only)
func (h *UserHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.auth.ListUsers(r.Context())
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}

	_ = httputil.WriteSuccess(w, httputil.Response{Message: MsgUserList, Users: users})
}

// getUser handles GET /api/users/{id}
func (h *UserHandlers) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	user, err := h.auth.GetUser(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}

	_ = httputil.WriteSuccess(w, httputil.Response{Message: MsgUser, User: user})
}

// updateUser handles PUT /api/users/{id}. Absent fields are left unchanged.
func (h *UserHandlers) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	var req auth.UpdateInput
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := h.auth.UpdateUser(r.Context(), id, req)
	h.record(r, audit.EventTypeAdminUserUpdate, err, func(e *audit.Event) {
		e.TargetID = id
		e.WithMetadata("fields", req.Fields())
	})
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}

	_ = httputil.WriteSuccess(w, httputil.Response{Message: MsgUpdated, Data: user})
}

// deleteUser handles DELETE /api/users/{id}
func (h *UserHandlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathStringOrError(w, r, "id")
	if !ok {
		return
	}

	err := h.auth.DeleteUser(r.Context(), id)
	h.record(r, audit.EventTypeAdminUserDelete, err, func(e *audit.Event) {
		e.TargetID = id
	})
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}

	_ = httputil.WriteSuccessMessage(w, MsgDeleted)
}
