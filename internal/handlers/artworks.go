// internal/handlers/artworks.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/manna-art/manna-backend/internal/store"
	"github.com/manna-art/manna-backend/internal/utils"
)

const defaultListLimit = 12

type ArtworkHandler struct {
	catalog store.Catalog
}

func NewArtworkHandler(catalog store.Catalog) *ArtworkHandler {
	return &ArtworkHandler{catalog: catalog}
}

// GET /artworks
func (h *ArtworkHandler) GetArtworks(c *gin.Context) {
	limit := defaultListLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var (
		artworks interface{}
		err      error
	)
	switch c.DefaultQuery("filter", "recent") {
	case "popular":
		artworks, err = h.catalog.ListPopular(limit)
	case "all":
		artworks, err = h.catalog.ListAll()
	default:
		artworks, err = h.catalog.ListRecent(limit)
	}
	if err != nil {
		utils.InternalErrorResponse(c, "Error al obtener las obras")
		return
	}

	c.JSON(http.StatusOK, gin.H{"artworks": artworks})
}

// GET /artworks/:id
func (h *ArtworkHandler) GetArtwork(c *gin.Context) {
	artwork, err := h.catalog.FindByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFoundResponse(c, "Artwork no encontrado")
			return
		}
		utils.InternalErrorResponse(c, "Error al obtener la obra")
		return
	}

	c.JSON(http.StatusOK, gin.H{"artwork": artwork})
}

// GET /artworks/creator/:wallet
func (h *ArtworkHandler) GetArtworksByCreator(c *gin.Context) {
	artworks, err := h.catalog.FindByCreatorWallet(c.Param("wallet"))
	if err != nil {
		utils.InternalErrorResponse(c, "Error al obtener las obras")
		return
	}

	c.JSON(http.StatusOK, gin.H{"artworks": artworks})
}

// GET /me/artworks
//
// Same listing as the creator route, keyed on the wallet session instead
// of a path parameter.
func (h *ArtworkHandler) GetMyArtworks(c *gin.Context) {
	wallet := c.GetString("wallet_address")
	if wallet == "" {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Sesión de wallet requerida")
		return
	}

	artworks, err := h.catalog.FindByCreatorWallet(wallet)
	if err != nil {
		utils.InternalErrorResponse(c, "Error al obtener las obras")
		return
	}

	c.JSON(http.StatusOK, gin.H{"artworks": artworks})
}

// POST /artworks/:id/view
func (h *ArtworkHandler) RecordView(c *gin.Context) {
	if err := h.catalog.IncrementViews(c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFoundResponse(c, "Artwork no encontrado")
			return
		}
		utils.InternalErrorResponse(c, "Error al registrar la vista")
		return
	}

	c.Status(http.StatusNoContent)
}

// POST /artworks/:id/like
func (h *ArtworkHandler) Like(c *gin.Context) {
	likes, err := h.catalog.IncrementLike(c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			utils.NotFoundResponse(c, "Artwork no encontrado")
			return
		}
		utils.InternalErrorResponse(c, "Error al registrar el like")
		return
	}

	c.JSON(http.StatusOK, gin.H{"likes": likes})
}
