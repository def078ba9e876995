// internal/handlers/subscription.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/manna-art/manna-backend/internal/services"
	"github.com/manna-art/manna-backend/internal/utils"
)

type SubscriptionHandler struct {
	billing services.BillingProvider
}

func NewSubscriptionHandler(billing services.BillingProvider) *SubscriptionHandler {
	return &SubscriptionHandler{billing: billing}
}

type subscriptionStatusRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /subscription/status
func (h *SubscriptionHandler) GetStatus(c *gin.Context) {
	var req subscriptionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Email es requerido")
		return
	}

	sub, err := h.billing.ActiveSubscription(c.Request.Context(), req.Email)
	if err != nil {
		utils.InternalErrorResponse(c, "Error al consultar la suscripción")
		return
	}

	// sub is nil when there is no active subscription; the client
	// renders the upgrade prompt off the null.
	c.JSON(http.StatusOK, gin.H{"subscription": sub})
}
