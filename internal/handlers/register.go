// internal/handlers/register.go
package handlers

import (
	"errors"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/manna-art/manna-backend/internal/models"
	"github.com/manna-art/manna-backend/internal/services"
	"github.com/manna-art/manna-backend/internal/utils"
)

type RegisterHandler struct {
	registration *services.RegistrationService
}

func NewRegisterHandler(registration *services.RegistrationService) *RegisterHandler {
	return &RegisterHandler{registration: registration}
}

// readUpload pulls the submitted file into memory. Uploads are bounded
// by the router's MaxMultipartMemory.
func readUpload(header *multipart.FileHeader) ([]byte, string, error) {
	file, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}

func registerRequestFromForm(c *gin.Context) (*services.RegisterRequest, bool) {
	email := c.PostForm("email")
	title := c.PostForm("title")
	description := c.PostForm("description")
	ipType := c.PostForm("ipType")
	wallet := c.PostForm("walletAddress")

	fileHeader, err := c.FormFile("file")
	if email == "" || title == "" || description == "" || ipType == "" || wallet == "" || err != nil {
		utils.BadRequestResponse(c, "Todos los campos son requeridos")
		return nil, false
	}

	kind := models.IPType(ipType)
	if !kind.Valid() {
		utils.BadRequestResponse(c, "Tipo de IP inválido: "+ipType)
		return nil, false
	}

	data, contentType, err := readUpload(fileHeader)
	if err != nil {
		utils.BadRequestResponse(c, "No se pudo leer el archivo")
		return nil, false
	}

	return &services.RegisterRequest{
		Email:              email,
		Title:              title,
		Description:        description,
		IPType:             kind,
		FileBytes:          data,
		FileContentType:    contentType,
		WalletAddress:      wallet,
		LicenseFeeUSD:      c.PostForm("licenseFee"),
		CommercialRevShare: c.PostForm("commercialRevShare"),
	}, true
}

// POST /register-ip
func (h *RegisterHandler) RegisterIP(c *gin.Context) {
	req, ok := registerRequestFromForm(c)
	if !ok {
		return
	}

	result, err := h.registration.Register(c.Request.Context(), req)
	if err != nil {
		writeRegistrationError(c, err)
		return
	}

	artwork := result.Artwork
	data := gin.H{
		"artworkId":          artwork.ID,
		"fileUrl":            artwork.FileURL,
		"fileId":             artwork.FileID,
		"metadataUrl":        artwork.MetadataURL,
		"metadataId":         artwork.MetadataID,
		"storyIpId":          nil,
		"storyTokenId":       nil,
		"storyTxHash":        nil,
		"registrationsUsed":  result.RegistrationsUsed,
		"registrationsLimit": result.RegistrationsLimit,
		"message":            result.Message,
	}
	if artwork.IPID != "" {
		data["storyIpId"] = artwork.IPID
		data["storyTokenId"] = artwork.NFTTokenID
		data["storyTxHash"] = result.TxHash
	}

	utils.SuccessResponse(c, data)
}

// writeRegistrationError maps orchestrator errors onto the HTTP status
// taxonomy shared by the register and remix endpoints.
func writeRegistrationError(c *gin.Context, err error) {
	var (
		limitErr  *services.LimitExceededError
		parentErr *services.ParentNotFoundError
	)

	switch {
	case errors.Is(err, services.ErrNoActiveSubscription):
		utils.ForbiddenResponse(c, err.Error())
	case errors.As(err, &limitErr):
		utils.ForbiddenResponse(c, err.Error())
	case errors.As(err, &parentErr):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrParentNotRemixable):
		utils.BadRequestResponse(c, err.Error())
	default:
		utils.InternalErrorResponse(c, err.Error())
	}
}
