package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-engine/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-engine/pkg/errors"
	"github.com/noah-isme/sma-timetable-engine/pkg/response"
)

type catalogInvalidator interface {
	Invalidate(ctx context.Context, instituteID string) error
}

// CatalogHandler manages the cached faculty and course catalog.
type CatalogHandler struct {
	catalog catalogInvalidator
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Invalidate godoc
// @Summary Drop cached faculty and course lookups of an institute
// @Tags Catalog
// @Param instituteId path string true "Institute ID"
// @Success 204
// @Router /catalog/{instituteId}/cache [delete]
func (h *CatalogHandler) Invalidate(c *gin.Context) {
	institute, err := scopeInstitute(c, c.Param("instituteId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.catalog.Invalidate(c.Request.Context(), institute); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to invalidate catalog cache"))
		return
	}
	response.NoContent(c)
}
