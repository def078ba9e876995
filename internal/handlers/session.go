// internal/handlers/session.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manna-art/manna-backend/internal/utils"
)

const sessionTTLHours = 24

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

type sessionRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required,eth_address"`
}

// POST /session
//
// Issues a wallet session token for the connected wallet. The address is
// trusted on the same terms as the registration endpoints, which take it
// from the form; ownership proof stays on the frontend wallet flow.
func (h *SessionHandler) Create(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Cuerpo de la solicitud inválido")
		return
	}
	if errs := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(errs) > 0 {
		utils.BadRequestResponse(c, errs[0].Message)
		return
	}

	token, err := utils.GenerateWalletToken(req.WalletAddress, sessionTTLHours)
	if err != nil {
		utils.InternalErrorResponse(c, "Error al crear la sesión")
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
