package api

import (
	"net/http"
	"time"

	"github.com/platinummonkey/shopadmin/pkg/audit"
	"github.com/platinummonkey/shopadmin/pkg/auth"
	"github.com/platinummonkey/shopadmin/pkg/httputil"
	"github.com/platinummonkey/shopadmin/pkg/middleware"
	"github.com/platinummonkey/shopadmin/pkg/observability"
)

// Success messages shown by the admin client
const (
	MsgRegistered = "Thank you for registering with us. Your account has been successfully created."
	MsgLoggedIn   = "You have successfully logged in."
	MsgLoggedOut  = "You have successfully logged out."
	MsgProfile    = "Profile retrieved successfully"
	MsgUserList   = "Users retrieved successfully"
	MsgUser       = "User retrieved successfully"
	MsgUpdated    = "User updated successfully"
	MsgDeleted    = "This user is deleted successfully"
)

// UserHandlers handles session and user administration requests
type UserHandlers struct {
	auth         *auth.Service
	logger       *observability.Logger
	audit        audit.Logger
	cookieSecure bool
	trustProxy   bool
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(svc *auth.Service, opts Options) *UserHandlers {
	logger := opts.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}
	auditLog := opts.Audit
	if auditLog == nil {
		auditLog = audit.NopLogger{}
	}
	return &UserHandlers{
		auth:         svc,
		logger:       logger,
		audit:        auditLog,
		cookieSecure: opts.CookieSecure,
		trustProxy:   opts.TrustProxy,
	}
}

// record writes an audit event for r. Audit failures never fail the request.
func (h *UserHandlers) record(r *http.Request, eventType audit.EventType, err error, fill func(*audit.Event)) {
	status := audit.EventStatusSuccess
	if err != nil {
		status = audit.EventStatusFailure
	}

	event := audit.NewRequestEvent(r, eventType, status, h.trustProxy)
	if err != nil {
		event.Message = err.Error()
		event.WithMetadata("kind", auth.KindOf(err).String())
	}
	if fill != nil {
		fill(event)
	}

	if logErr := h.audit.Log(r.Context(), event); logErr != nil {
		observability.FromContext(r.Context(), h.logger).WithError(logErr).Warn("Failed to record audit event")
	}
}

// loginResponse extends the envelope with the issued token expiry
type loginResponse struct {
	httputil.Response
	ExpiresAt time.Time `json:"expires_at"`
}

// register handles POST /api/users/register
func (h *UserHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterInput
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), req)
	h.record(r, audit.EventTypeAuthRegister, err, func(e *audit.Event) {
		e.Username = req.Username
		if user != nil {
			e.TargetID = user.ID
		}
	})
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}

	_ = httputil.WriteSuccessMessage(w, MsgRegistered)
}

// login handles POST /api/users/login
func (h *UserHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginInput
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}

	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		h.record(r, audit.EventTypeAuthLoginFailed, err, func(e *audit.Event) {
			e.Username = req.Username
		})
		middleware.WriteError(w, r, h.logger, err)
		return
	}
	h.record(r, audit.EventTypeAuthLogin, nil, func(e *audit.Event) {
		e.Username = res.User.Username
		e.TargetID = res.User.ID
	})

	expiresAt := res.Claims.ExpiresAt.Time
	http.SetCookie(w, h.sessionCookie(res.Token, int(time.Until(expiresAt).Seconds())))

	_ = httputil.WriteJSON(w, http.StatusOK, loginResponse{
		Response: httputil.Response{
			Status:  httputil.StatusSuccess,
			Message: MsgLoggedIn,
			Data:    res.User,
			Token:   res.Token,
		},
		ExpiresAt: expiresAt.UTC(),
	})
}

// logout handles POST /api/users/logout. The token is revoked even when it
// no longer verifies.
func (h *UserHandlers) logout(w http.ResponseWriter, r *http.Request) {
	err := h.auth.Logout(r.Context(), middleware.TokenFromRequest(r))
	h.record(r, audit.EventTypeAuthLogout, err, nil)
	if err != nil {
		middleware.WriteError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, h.sessionCookie("", -1))
	_ = httputil.WriteSuccessMessage(w, MsgLoggedOut)
}

// profile handles GET /api/users/profile
func (h *UserHandlers) profile(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r)
	if session == nil {
		middleware.WriteError(w, r, h.logger, auth.ErrNoActiveSession)
		return
	}

	_ = httputil.WriteSuccess(w, httputil.Response{Message: MsgProfile, User: session.User})
}

// sessionCookie builds the SessionID cookie. maxAge < 0 deletes it.
func (h *UserHandlers) sessionCookie(value string, maxAge int) *http.Cookie {
	// browsers drop SameSite=None cookies that are not Secure
	sameSite := http.SameSiteLaxMode
	if h.cookieSecure {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: sameSite,
	}
}
