package middleware

import (
	"context"
	"debug_contest/internal/common"
	"debug_contest/internal/common/security"
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const (
	TeamIDCtxKey   contextKey = "teamID"
	TeamNameCtxKey contextKey = "teamName"
)

// Authenticator requires a valid team session token and places the team
// identity in the request context.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context()) // Extracts token from Authorization header

		if err != nil {
			if strings.Contains(err.Error(), "token not found") || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token: "+err.Error())
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		teamID, err := security.GetTeamIDFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}
		teamName, err := security.GetTeamNameFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims: "+err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), TeamIDCtxKey, teamID)
		ctx = context.WithValue(ctx, TeamNameCtxKey, teamName)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly gates the operator surface behind the shared key, checked
// server-side against its bcrypt hash.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !security.CheckAdminKey(r.Header.Get("X-Admin-Key")) {
			common.RespondWithError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Helper to get team ID from context
func GetTeamIDFromContext(ctx context.Context) (string, bool) {
	teamID, ok := ctx.Value(TeamIDCtxKey).(string)
	return teamID, ok
}

// Helper to get team name from context
func GetTeamNameFromContext(ctx context.Context) (string, bool) {
	teamName, ok := ctx.Value(TeamNameCtxKey).(string)
	return teamName, ok
}
