// README: Read-only catalog handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reclaim/internal/modules/catalog"
)

type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: c}
}

func (h *CatalogHandler) Categories(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"categories": h.catalog.Categories()})
}
