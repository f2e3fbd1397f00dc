package middleware

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/shopadmin/pkg/auth"
	"github.com/platinummonkey/shopadmin/pkg/httputil"
	"github.com/platinummonkey/shopadmin/pkg/observability"
)

// StatusFor maps an error kind to its HTTP status. Conflicts are reported as
// 400 and authorization failures as 401, as the admin client expects.
func StatusFor(kind auth.Kind) int {
	switch kind {
	case auth.KindValidation, auth.KindConflict:
		return http.StatusBadRequest
	case auth.KindAuthentication, auth.KindAuthorization:
		return http.StatusUnauthorized
	case auth.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err in the response envelope. Unclassified errors are
// logged and reported as a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, logger *observability.Logger, err error) {
	var verr *auth.ValidationError
	if errors.As(err, &verr) {
		message := "Invalid input"
		if len(verr.Fields) > 0 {
			message = verr.Fields[0].Message
		}
		httputil.WriteValidationFailed(w, message, verr.Fields)
		return
	}

	var aerr *auth.Error
	if errors.As(err, &aerr) {
		httputil.WriteFailed(w, StatusFor(aerr.Kind), aerr.Message)
		return
	}

	observability.FromContext(r.Context(), logger).WithError(err).Error("Unhandled error")
	httputil.WriteInternalError(w)
}
