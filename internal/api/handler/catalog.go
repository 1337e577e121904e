package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/timmy/viralpost/internal/catalog"
)

// CatalogHandler serves the read-only template, art style and quality listings.
type CatalogHandler struct{}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Templates handles GET /api/v1/templates.
func (h *CatalogHandler) Templates(c *gin.Context) {
	templates := catalog.Templates()
	respondOK(c, gin.H{
		"templates": templates,
		"total":     len(templates),
	})
}

// ImageQualities handles GET /api/v1/image-quality.
func (h *CatalogHandler) ImageQualities(c *gin.Context) {
	respondOK(c, catalog.QualityTiers())
}

// ArtStyles handles GET /api/v1/art-styles.
func (h *CatalogHandler) ArtStyles(c *gin.Context) {
	respondOK(c, catalog.ArtStyleDescriptions())
}
