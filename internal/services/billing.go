// internal/services/billing.go
package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"github.com/manna-art/manna-backend/internal/config"
	"github.com/manna-art/manna-backend/internal/models"
)

// CheckoutSession is the handle returned to the frontend to start payment.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// BillingProvider is the subscription/payment collaborator. Plan tier and
// per-period usage live with the provider, not in this system.
// ActiveSubscription returns (nil, nil) when the subscriber has no active
// subscription.
type BillingProvider interface {
	ActiveSubscription(ctx context.Context, email string) (*models.Subscription, error)
	IncrementUsage(ctx context.Context, subscriptionID string, newUsed int) error
	CreateCheckoutSession(ctx context.Context, plan models.PlanTier, yearly bool, email string) (*CheckoutSession, error)
}

// StripeBilling implements BillingProvider on Stripe. Plan name and usage
// counter travel as subscription metadata. The counter update is
// read-then-write because Stripe metadata has no conditional update; two
// racing registrations can each observe the same count.
type StripeBilling struct {
	api *client.API
	cfg config.StripeConfig
}

func NewStripeBilling(cfg config.StripeConfig) *StripeBilling {
	return &StripeBilling{
		api: client.New(cfg.SecretKey, nil),
		cfg: cfg,
	}
}

func (b *StripeBilling) ActiveSubscription(ctx context.Context, email string) (*models.Subscription, error) {
	customerParams := &stripe.CustomerListParams{
		Email: stripe.String(email),
	}
	customerParams.Context = ctx
	customerParams.Limit = stripe.Int64(1)

	customers := b.api.Customers.List(customerParams)
	if !customers.Next() {
		if err := customers.Err(); err != nil {
			return nil, fmt.Errorf("failed to look up customer: %w", err)
		}
		return nil, nil
	}
	customer := customers.Customer()

	subscriptionParams := &stripe.SubscriptionListParams{
		Customer: stripe.String(customer.ID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	subscriptionParams.Context = ctx
	subscriptionParams.Limit = stripe.Int64(1)

	subscriptions := b.api.Subscriptions.List(subscriptionParams)
	if !subscriptions.Next() {
		if err := subscriptions.Err(); err != nil {
			return nil, fmt.Errorf("failed to look up subscriptions: %w", err)
		}
		return nil, nil
	}
	sub := subscriptions.Subscription()

	plan := models.PlanTier(sub.Metadata["planName"])
	if !plan.Valid() {
		plan = models.PlanCreador
	}

	used := 0
	if raw := sub.Metadata["registrationsUsed"]; raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			used = parsed
		}
	}

	periodEnd := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	if sub.CurrentPeriodEnd <= 0 {
		// Seen on malformed test-mode subscriptions. Assume a standard
		// monthly period rather than reporting an expired one.
		periodEnd = time.Now().UTC().Add(30 * 24 * time.Hour)
	}

	return &models.Subscription{
		ID:                 sub.ID,
		Plan:               plan,
		Status:             string(sub.Status),
		CurrentPeriodEnd:   periodEnd,
		RegistrationsUsed:  used,
		RegistrationsLimit: models.RegistrationLimit(plan),
	}, nil
}

func (b *StripeBilling) IncrementUsage(ctx context.Context, subscriptionID string, newUsed int) error {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.AddMetadata("registrationsUsed", strconv.Itoa(newUsed))

	if _, err := b.api.Subscriptions.Update(subscriptionID, params); err != nil {
		return fmt.Errorf("failed to update usage counter: %w", err)
	}
	return nil
}

func (b *StripeBilling) CreateCheckoutSession(ctx context.Context, plan models.PlanTier, yearly bool, email string) (*CheckoutSession, error) {
	cycle := "MONTHLY"
	cycleName := "mensual"
	if yearly {
		cycle = "YEARLY"
		cycleName = "anual"
	}

	priceID := b.cfg.PriceIDs[fmt.Sprintf("%s_%s", plan, cycle)]
	if priceID == "" {
		return nil, &PriceNotConfiguredError{Plan: plan, Cycle: cycleName}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		CustomerEmail: stripe.String(email),
		SuccessURL:    stripe.String(b.cfg.SuccessURL),
		CancelURL:     stripe.String(b.cfg.CancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"planName":          string(plan),
				"isYearly":          strconv.FormatBool(yearly),
				"registrationsUsed": "0",
			},
		},
	}
	params.Context = ctx
	params.AddMetadata("planName", string(plan))
	params.AddMetadata("isYearly", strconv.FormatBool(yearly))

	sess, err := b.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}
