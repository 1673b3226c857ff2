package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-engine/internal/middleware"
	"github.com/noah-isme/sma-timetable-engine/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-engine/pkg/errors"
	"github.com/noah-isme/sma-timetable-engine/pkg/response"
)

type timetableGetter interface {
	Get(ctx context.Context, id string) (*models.Timetable, error)
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

// scopeInstitute resolves the institute a request may touch. Tokens bound to an institute can only
// address that institute; SUPERADMIN and unbound tokens address any.
func scopeInstitute(c *gin.Context, requested string) (string, error) {
	claims := claimsFromContext(c)
	if !instituteBound(claims) {
		return requested, nil
	}
	if requested == "" {
		return claims.InstituteID, nil
	}
	if requested != claims.InstituteID {
		return "", appErrors.Clone(appErrors.ErrForbidden, "institute is outside the token scope")
	}
	return requested, nil
}

func instituteBound(claims *models.JWTClaims) bool {
	return claims != nil && claims.InstituteID != "" && claims.Role != models.RoleSuperAdmin
}

// authorizeTimetable checks that the timetable addressed by id belongs to the token's institute.
// Timetables of other institutes are reported as not found. On false the response is already written.
func authorizeTimetable(c *gin.Context, timetables timetableGetter, id string) bool {
	if !instituteBound(claimsFromContext(c)) {
		return true
	}
	tt, err := timetables.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return false
	}
	return authorizeInstitute(c, tt.InstituteID, "timetable not found")
}

func authorizeInstitute(c *gin.Context, instituteID, notFound string) bool {
	if _, err := scopeInstitute(c, instituteID); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, notFound))
		return false
	}
	return true
}
