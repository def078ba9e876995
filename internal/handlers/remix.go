// internal/handlers/remix.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/manna-art/manna-backend/internal/services"
	"github.com/manna-art/manna-backend/internal/utils"
)

type RemixHandler struct {
	registration *services.RegistrationService
}

func NewRemixHandler(registration *services.RegistrationService) *RemixHandler {
	return &RemixHandler{registration: registration}
}

// POST /remix
func (h *RemixHandler) CreateRemix(c *gin.Context) {
	parentIPID := c.PostForm("parentIpId")
	if parentIPID == "" {
		utils.BadRequestResponse(c, "Todos los campos son requeridos")
		return
	}

	base, ok := registerRequestFromForm(c)
	if !ok {
		return
	}

	result, err := h.registration.Remix(c.Request.Context(), &services.RemixRequest{
		RegisterRequest: *base,
		ParentIPID:      parentIPID,
	})
	if err != nil {
		writeRegistrationError(c, err)
		return
	}

	artwork := result.Artwork
	utils.SuccessResponse(c, gin.H{
		"artworkId":   artwork.ID,
		"fileUrl":     artwork.FileURL,
		"fileId":      artwork.FileID,
		"metadataUrl": artwork.MetadataURL,
		"metadataId":  artwork.MetadataID,
		"ipId":        artwork.IPID,
		"tokenId":     artwork.NFTTokenID,
		"txHash":      result.TxHash,
		"message":     result.Message,
	})
}
