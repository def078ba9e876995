// internal/handlers/checkout.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manna-art/manna-backend/internal/models"
	"github.com/manna-art/manna-backend/internal/services"
	"github.com/manna-art/manna-backend/internal/utils"
)

type CheckoutHandler struct {
	billing services.BillingProvider
}

func NewCheckoutHandler(billing services.BillingProvider) *CheckoutHandler {
	return &CheckoutHandler{billing: billing}
}

type checkoutRequest struct {
	PlanName  string `json:"planName"`
	IsYearly  bool   `json:"isYearly"`
	UserEmail string `json:"userEmail"`
}

// POST /create-checkout-session
func (h *CheckoutHandler) CreateCheckoutSession(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Cuerpo de la solicitud inválido")
		return
	}

	plan := models.PlanTier(req.PlanName)
	if !plan.Valid() {
		utils.BadRequestResponse(c, "Plan inválido: "+req.PlanName)
		return
	}
	if req.UserEmail == "" {
		utils.BadRequestResponse(c, "Email es requerido")
		return
	}

	session, err := h.billing.CreateCheckoutSession(c.Request.Context(), plan, req.IsYearly, req.UserEmail)
	if err != nil {
		var priceErr *services.PriceNotConfiguredError
		if errors.As(err, &priceErr) {
			utils.InternalErrorResponse(c, err.Error())
			return
		}
		utils.InternalErrorResponse(c, "Error al crear la sesión de pago")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": session.SessionID,
		"url":       session.URL,
	})
}
