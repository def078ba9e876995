// internal/services/registration.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/manna-art/manna-backend/internal/models"
	"github.com/manna-art/manna-backend/internal/store"
)

const platformName = "Manna Art"

// ChainPolicy decides what a failed on-chain registration does to the
// operation it belongs to.
type ChainPolicy int

const (
	// ChainBestEffort logs the failure and continues; the artifact is
	// still stored permanently and cataloged without on-chain ids.
	ChainBestEffort ChainPolicy = iota
	// ChainRequired fails the whole operation.
	ChainRequired
)

// RegistrationService orchestrates the register-artifact and
// register-remix flows across the billing, artifact store, IP registry
// and catalog collaborators. All collaborators are injected; there is no
// package-level client state.
//
// The on-chain step is best-effort for new registrations and required for
// remixes: a plain artifact is still valuable stored off-chain, but a
// remix without its on-chain parent linkage has no product meaning.
type RegistrationService struct {
	catalog   store.Catalog
	artifacts ArtifactStore
	registry  IPRegistry
	billing   BillingProvider

	skipEntitlement bool
	registerPolicy  ChainPolicy
	remixPolicy     ChainPolicy
	log             *logrus.Logger
}

type RegistrationOption func(*RegistrationService)

// WithEntitlementBypass skips the subscription check and usage increment,
// assuming a mid-tier plan with zero usage. Non-production only.
func WithEntitlementBypass(skip bool) RegistrationOption {
	return func(s *RegistrationService) { s.skipEntitlement = skip }
}

func WithRegisterChainPolicy(p ChainPolicy) RegistrationOption {
	return func(s *RegistrationService) { s.registerPolicy = p }
}

func WithRemixChainPolicy(p ChainPolicy) RegistrationOption {
	return func(s *RegistrationService) { s.remixPolicy = p }
}

func WithLogger(log *logrus.Logger) RegistrationOption {
	return func(s *RegistrationService) { s.log = log }
}

func NewRegistrationService(catalog store.Catalog, artifacts ArtifactStore, registry IPRegistry, billing BillingProvider, opts ...RegistrationOption) *RegistrationService {
	s := &RegistrationService{
		catalog:        catalog,
		artifacts:      artifacts,
		registry:       registry,
		billing:        billing,
		registerPolicy: ChainBestEffort,
		remixPolicy:    ChainRequired,
		log:            logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterRequest carries one validated register-artifact submission.
type RegisterRequest struct {
	Email              string
	Title              string
	Description        string
	IPType             models.IPType
	FileBytes          []byte
	FileContentType    string
	WalletAddress      string
	LicenseFeeUSD      string
	CommercialRevShare string
}

// RemixRequest additionally names the parent IP asset.
type RemixRequest struct {
	RegisterRequest
	ParentIPID string
}

// RegisterResult is the outcome of a new registration. Artwork's on-chain
// fields are empty when registration was degraded to storage-only.
type RegisterResult struct {
	Artwork            *models.Artwork
	TxHash             string
	RegistrationsUsed  int
	RegistrationsLimit int
	Message            string
}

// RemixResult is the outcome of a derivative registration; on-chain
// fields are always populated under the default remix chain policy.
type RemixResult struct {
	Artwork *models.Artwork
	TxHash  string
	Message string
}

type ipMetadataAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

type ipMetadataDoc struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	IPType      string                `json:"ipType"`
	Creators    []string              `json:"creators"`
	CreatedAt   string                `json:"createdAt"`
	ExternalURL string                `json:"externalUrl"`
	Image       string                `json:"image"`
	Attributes  []ipMetadataAttribute `json:"attributes"`
}

// Register runs the new-artifact flow: entitlement check, file upload,
// metadata upload, best-effort on-chain registration, catalog write,
// best-effort usage increment. The catalog write is the durability point.
func (s *RegistrationService) Register(ctx context.Context, req *RegisterRequest) (*RegisterResult, error) {
	log := s.log.WithFields(logrus.Fields{
		"email":  req.Email,
		"title":  req.Title,
		"wallet": req.WalletAddress,
	})

	// Entitlement check, before any external side effect.
	var sub *models.Subscription
	used := 0
	limit := models.RegistrationLimit(models.PlanProfesional)
	if s.skipEntitlement {
		log.Info("entitlement bypass enabled, assuming PROFESIONAL plan")
	} else {
		var err error
		sub, err = s.billing.ActiveSubscription(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to check subscription: %w", err)
		}
		if sub == nil {
			return nil, ErrNoActiveSubscription
		}
		used = sub.RegistrationsUsed
		limit = sub.RegistrationsLimit
		if used >= limit {
			return nil, &LimitExceededError{Plan: sub.Plan, Limit: limit}
		}
		log.WithFields(logrus.Fields{"plan": sub.Plan, "used": used, "limit": limit}).
			Info("subscription verified")
	}

	fileResult, err := s.artifacts.UploadFile(ctx, req.FileBytes, req.FileContentType, map[string]string{
		"Title":   req.Title,
		"Type":    string(req.IPType),
		"Creator": req.WalletAddress,
	})
	if err != nil {
		return nil, &UploadError{Stage: "archivo", Err: err}
	}
	log.WithField("fileUrl", fileResult.URL).Info("file uploaded")

	metadataResult, metadataDoc, err := s.uploadMetadata(ctx, req, fileResult.URL, nil)
	if err != nil {
		return nil, err
	}
	log.WithField("metadataUrl", metadataResult.URL).Info("metadata uploaded")

	artwork := &models.Artwork{
		Title:         req.Title,
		Description:   req.Description,
		IPType:        req.IPType,
		FileURL:       fileResult.URL,
		FileID:        fileResult.ID,
		MetadataURL:   metadataResult.URL,
		MetadataID:    metadataResult.ID,
		CreatorWallet: req.WalletAddress,
		CreatorEmail:  req.Email,
	}

	mint, err := s.registry.MintAndRegister(ctx, MintParams{
		MetadataURI:        metadataResult.URL,
		MetadataHash:       MetadataHash(metadataDoc),
		Recipient:          req.WalletAddress,
		LicenseFeeUnits:    licenseFeeUnits(req.LicenseFeeUSD),
		CommercialRevShare: revSharePercent(req.CommercialRevShare, 0),
	})
	if err != nil {
		if s.registerPolicy == ChainRequired {
			return nil, &ChainError{Err: err}
		}
		// The artifact is already stored permanently; keep going and
		// catalog it without on-chain ids.
		log.WithError(err).Warn("on-chain registration failed, continuing with storage-only record")
		mint = nil
	}
	if mint != nil {
		artwork.IPID = mint.IPID
		artwork.NFTTokenID = mint.TokenID
		artwork.LicenseTermsIDs = mint.LicenseTermsIDs
		log.WithFields(logrus.Fields{"ipId": mint.IPID, "txHash": mint.TxHash}).
			Info("registered on-chain")
	}

	saved, err := s.catalog.Insert(artwork)
	if err != nil {
		return nil, &PersistError{Err: err}
	}
	log.WithField("artworkId", saved.ID).Info("artwork cataloged")

	if !s.skipEntitlement && sub != nil {
		if err := s.billing.IncrementUsage(ctx, sub.ID, used+1); err != nil {
			// The artwork is already durably registered; a stale usage
			// counter is the lesser failure.
			log.WithError(err).Error("failed to increment usage counter")
		}
	}

	message := "Obra registrada exitosamente en Arweave y Story Protocol."
	if mint == nil {
		message = "Obra registrada en Arweave. Story Protocol no disponible en este momento."
	}

	result := &RegisterResult{
		Artwork:            saved,
		RegistrationsUsed:  used + 1,
		RegistrationsLimit: limit,
		Message:            message,
	}
	if mint != nil {
		result.TxHash = mint.TxHash
	}
	return result, nil
}

// Remix runs the derivative flow. The parent must exist in the catalog
// and carry license terms; the derivative cites those terms. On-chain
// registration is fatal here under the default policy.
func (s *RegistrationService) Remix(ctx context.Context, req *RemixRequest) (*RemixResult, error) {
	log := s.log.WithFields(logrus.Fields{
		"parentIpId": req.ParentIPID,
		"title":      req.Title,
		"wallet":     req.WalletAddress,
	})

	parent, err := s.catalog.FindByIPID(req.ParentIPID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &ParentNotFoundError{IPID: req.ParentIPID}
		}
		return nil, fmt.Errorf("failed to look up parent artwork: %w", err)
	}
	if !parent.Remixable() {
		return nil, ErrParentNotRemixable
	}
	log.WithFields(logrus.Fields{"parentId": parent.ID, "licenseTermsIds": parent.LicenseTermsIDs}).
		Info("parent artwork verified")

	fileResult, err := s.artifacts.UploadFile(ctx, req.FileBytes, req.FileContentType, map[string]string{
		"Title":     req.Title,
		"Type":      string(req.IPType),
		"Creator":   req.WalletAddress,
		"Parent-IP": req.ParentIPID,
		"Is-Remix":  "true",
	})
	if err != nil {
		return nil, &UploadError{Stage: "archivo", Err: err}
	}
	log.WithField("fileUrl", fileResult.URL).Info("remix file uploaded")

	metadataResult, metadataDoc, err := s.uploadMetadata(ctx, &req.RegisterRequest, fileResult.URL, []ipMetadataAttribute{
		{TraitType: "Type", Value: "Remix/Derivative"},
		{TraitType: "Parent IP ID", Value: req.ParentIPID},
	})
	if err != nil {
		return nil, err
	}
	log.WithField("metadataUrl", metadataResult.URL).Info("remix metadata uploaded")

	mint, err := s.registry.MintAndRegisterDerivative(ctx, DerivativeParams{
		ParentIPID:            req.ParentIPID,
		ParentLicenseTermsIDs: parent.LicenseTermsIDs,
		MetadataURI:           metadataResult.URL,
		MetadataHash:          MetadataHash(metadataDoc),
		Recipient:             req.WalletAddress,
		LicenseFeeUnits:       licenseFeeUnits(req.LicenseFeeUSD),
		CommercialRevShare:    revSharePercent(req.CommercialRevShare, 10),
	})
	if err != nil {
		if s.remixPolicy == ChainRequired {
			return nil, &ChainError{Err: err}
		}
		log.WithError(err).Warn("derivative registration failed, continuing with storage-only record")
		mint = nil
	}

	artwork := &models.Artwork{
		Title:         req.Title,
		Description:   req.Description,
		IPType:        req.IPType,
		FileURL:       fileResult.URL,
		FileID:        fileResult.ID,
		MetadataURL:   metadataResult.URL,
		MetadataID:    metadataResult.ID,
		CreatorWallet: req.WalletAddress,
		CreatorEmail:  req.Email,
		ParentIPID:    req.ParentIPID,
		IsRemix:       true,
	}
	if mint != nil {
		artwork.IPID = mint.IPID
		artwork.NFTTokenID = mint.TokenID
		artwork.LicenseTermsIDs = mint.LicenseTermsIDs
		log.WithFields(logrus.Fields{"ipId": mint.IPID, "txHash": mint.TxHash}).
			Info("derivative registered on-chain")
	}

	saved, err := s.catalog.Insert(artwork)
	if err != nil {
		return nil, &PersistError{Err: err}
	}
	log.WithField("artworkId", saved.ID).Info("remix cataloged")

	message := "Remix creado exitosamente como derivative IP en Story Protocol"
	if mint == nil {
		message = "Remix guardado en Arweave. Story Protocol no disponible en este momento."
	}

	result := &RemixResult{
		Artwork: saved,
		Message: message,
	}
	if mint != nil {
		result.TxHash = mint.TxHash
	}
	return result, nil
}

// uploadMetadata builds the metadata document for a submission and stores
// it, returning the upload result and the exact bytes uploaded so the
// registry hash covers what is actually retrievable.
func (s *RegistrationService) uploadMetadata(ctx context.Context, req *RegisterRequest, fileURL string, extraAttributes []ipMetadataAttribute) (*UploadResult, []byte, error) {
	attributes := []ipMetadataAttribute{
		{TraitType: "IP Type", Value: string(req.IPType)},
		{TraitType: "Creator", Value: req.WalletAddress},
	}
	attributes = append(attributes, extraAttributes...)
	attributes = append(attributes, ipMetadataAttribute{TraitType: "Platform", Value: platformName})

	doc := ipMetadataDoc{
		Title:       req.Title,
		Description: req.Description,
		IPType:      string(req.IPType),
		Creators:    []string{req.WalletAddress},
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		ExternalURL: fileURL,
		Image:       fileURL,
		Attributes:  attributes,
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode metadata: %w", err)
	}

	result, err := s.artifacts.UploadMetadata(ctx, raw)
	if err != nil {
		return nil, nil, &UploadError{Stage: "metadata", Err: err}
	}
	return result, raw, nil
}

// licenseFeeUnits converts a USD decimal string to 6-decimal minor units
// (the stablecoin convention the registry prices licenses in),
// truncating fractional units. Absent or malformed input means a free
// license.
func licenseFeeUnits(feeUSD string) int64 {
	if feeUSD == "" {
		return 0
	}
	fee, err := strconv.ParseFloat(feeUSD, 64)
	if err != nil || fee < 0 {
		return 0
	}
	return int64(fee * 1_000_000)
}

// revSharePercent parses a whole-percent revenue share, falling back to
// the flow's default (0 for new registrations, 10 for remixes).
func revSharePercent(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	percent, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return percent
}
