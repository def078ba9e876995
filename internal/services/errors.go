// internal/services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/manna-art/manna-backend/internal/models"
)

// User-facing messages are Spanish, matching the rest of the product.

// ErrNoActiveSubscription: the caller has no active subscription with the
// billing provider. Detected before any side effect.
var ErrNoActiveSubscription = errors.New("No tienes una suscripción activa")

// ErrParentNotRemixable: the parent artwork carries no license terms, so
// derivatives cannot cite them.
var ErrParentNotRemixable = errors.New("El artwork parent no tiene license terms. No se pueden crear derivatives.")

// LimitExceededError: the subscriber consumed their plan's registration
// quota for the current period.
type LimitExceededError struct {
	Plan  models.PlanTier
	Limit int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("Has alcanzado el límite de %d registros de tu plan %s", e.Limit, e.Plan)
}

// ParentNotFoundError: no catalog record matches the requested parent ipId.
type ParentNotFoundError struct {
	IPID string
}

func (e *ParentNotFoundError) Error() string {
	return fmt.Sprintf("No se encontró el artwork parent con ipId: %s", e.IPID)
}

// UploadError: an artifact store write failed. Fatal to the whole
// operation; uploads already made are not rolled back (the store has no
// delete operation).
type UploadError struct {
	Stage string // "archivo" or "metadata"
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("error al subir %s a Arweave: %v", e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// ChainError: the IP registry rejected or failed a registration. Fatal
// only when the flow's chain policy requires on-chain linkage.
type ChainError struct {
	Err error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("error al registrar en Story Protocol: %v", e.Err)
}

func (e *ChainError) Unwrap() error { return e.Err }

// PersistError: the catalog write failed after uploads succeeded.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("error al guardar la obra: %v", e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// PriceNotConfiguredError: no checkout price id is configured for the
// requested plan and billing cycle.
type PriceNotConfiguredError struct {
	Plan  models.PlanTier
	Cycle string // "mensual" or "anual"
}

func (e *PriceNotConfiguredError) Error() string {
	return fmt.Sprintf("Price ID para el plan %s (%s) no está configurado", e.Plan, e.Cycle)
}
