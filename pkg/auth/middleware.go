package auth

import (
	"net/http"
	"strings"

	apperrors "tablebook/pkg/errors"
	httputil "tablebook/pkg/http"
	"tablebook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// Require rejects requests without a valid bearer token and stores the
// parsed claims in the request context. Restaurant scoping is left to the
// service, which knows which restaurant a resource belongs to.
func Require(a *Authenticator, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			token, ok := bearerToken(r)
			if !ok {
				httputil.WriteError(w, apperrors.Unauthorized("Missing operator token"))
				return
			}

			claims, err := a.Parse(token)
			if err != nil {
				log.Warn("Rejected operator token", "path", r.URL.Path, "error", err)
				httputil.WriteError(w, apperrors.Unauthorized("Invalid or expired token"))
				return
			}

			next(w, r.WithContext(WithClaims(r.Context(), claims)), ps)
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
