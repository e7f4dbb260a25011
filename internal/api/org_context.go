package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/ignite/bee-importer/internal/pkg/httputil"
)

const (
	headerOrganizationID = "X-Organization-ID"
	headerUserID         = "X-User-ID"
)

type orgContextKey struct{}

type userContextKey struct{}

// requireOrg rejects requests without X-Organization-ID and stores the
// organization and user ids on the request context.
func requireOrg(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID := strings.TrimSpace(r.Header.Get(headerOrganizationID))
		if orgID == "" {
			httputil.Coded(w, http.StatusBadRequest, "missing_organization",
				headerOrganizationID+" header is required", nil)
			return
		}
		ctx := context.WithValue(r.Context(), orgContextKey{}, orgID)
		if userID := strings.TrimSpace(r.Header.Get(headerUserID)); userID != "" {
			ctx = context.WithValue(ctx, userContextKey{}, userID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OrgID returns the organization id stored by requireOrg.
func OrgID(ctx context.Context) string {
	id, _ := ctx.Value(orgContextKey{}).(string)
	return id
}

// UserID returns the caller's user id, or "" when none was sent.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userContextKey{}).(string)
	return id
}
