// internal/services/registration_test.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/manna-art/manna-backend/internal/models"
	"github.com/manna-art/manna-backend/internal/store"
)

type fakeCatalog struct {
	artworks  []models.Artwork
	insertErr error
}

func (f *fakeCatalog) Insert(artwork *models.Artwork) (*models.Artwork, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	record := *artwork
	record.ID = store.NewArtworkID()
	record.CreatedAt = time.Now().UTC()
	record.Likes = 0
	record.Views = 0
	f.artworks = append(f.artworks, record)
	return &record, nil
}

func (f *fakeCatalog) FindByID(id string) (*models.Artwork, error) {
	for i := range f.artworks {
		if f.artworks[i].ID == id {
			return &f.artworks[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeCatalog) FindByIPID(ipID string) (*models.Artwork, error) {
	for i := range f.artworks {
		if f.artworks[i].IPID == ipID && ipID != "" {
			return &f.artworks[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeCatalog) FindByCreatorWallet(wallet string) ([]models.Artwork, error) {
	return nil, nil
}

func (f *fakeCatalog) ListAll() ([]models.Artwork, error)              { return f.artworks, nil }
func (f *fakeCatalog) ListRecent(limit int) ([]models.Artwork, error)  { return f.artworks, nil }
func (f *fakeCatalog) ListPopular(limit int) ([]models.Artwork, error) { return f.artworks, nil }
func (f *fakeCatalog) IncrementViews(id string) error                  { return nil }
func (f *fakeCatalog) IncrementLike(id string) (int64, error)          { return 0, nil }
func (f *fakeCatalog) Close() error                                    { return nil }

type fakeArtifacts struct {
	fileCalls     int
	metadataCalls int
	lastFileTags  map[string]string
	lastMetadata  []byte
	uploadErr     error
	metadataErr   error
}

func (f *fakeArtifacts) UploadFile(ctx context.Context, data []byte, contentType string, tags map[string]string) (*UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	f.fileCalls++
	f.lastFileTags = tags
	return &UploadResult{ID: "tx-file-1", URL: "https://arweave.net/tx-file-1"}, nil
}

func (f *fakeArtifacts) UploadMetadata(ctx context.Context, doc []byte) (*UploadResult, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	if f.metadataErr != nil {
		return nil, f.metadataErr
	}
	f.metadataCalls++
	f.lastMetadata = doc
	return &UploadResult{ID: "tx-meta-1", URL: "https://arweave.net/tx-meta-1"}, nil
}

type fakeRegistry struct {
	mintCalls       int
	derivativeCalls int
	lastMint        MintParams
	lastDerivative  DerivativeParams
	mintErr         error
}

func (f *fakeRegistry) MintAndRegister(ctx context.Context, params MintParams) (*MintResult, error) {
	f.mintCalls++
	f.lastMint = params
	if f.mintErr != nil {
		return nil, f.mintErr
	}
	return &MintResult{
		IPID:            "0xIP1",
		TokenID:         "42",
		TxHash:          "0xTX1",
		LicenseTermsIDs: []string{"11"},
	}, nil
}

func (f *fakeRegistry) MintAndRegisterDerivative(ctx context.Context, params DerivativeParams) (*MintResult, error) {
	f.derivativeCalls++
	f.lastDerivative = params
	if f.mintErr != nil {
		return nil, f.mintErr
	}
	return &MintResult{
		IPID:    "0xIP2",
		TokenID: "43",
		TxHash:  "0xTX2",
	}, nil
}

func (f *fakeRegistry) CreateCollection(ctx context.Context, params CollectionParams) (*CollectionResult, error) {
	return &CollectionResult{ContractAddress: "0xSPG", TxHash: "0xTX3"}, nil
}

func (f *fakeRegistry) ExplorerURL(address string) string {
	return "https://aeneid.storyscan.io/address/" + address
}

type fakeBilling struct {
	subscription   *models.Subscription
	subErr         error
	incrementCalls int
	lastSubID      string
	lastNewUsed    int
}

func (f *fakeBilling) ActiveSubscription(ctx context.Context, email string) (*models.Subscription, error) {
	return f.subscription, f.subErr
}

func (f *fakeBilling) IncrementUsage(ctx context.Context, subscriptionID string, newUsed int) error {
	f.incrementCalls++
	f.lastSubID = subscriptionID
	f.lastNewUsed = newUsed
	return nil
}

func (f *fakeBilling) CreateCheckoutSession(ctx context.Context, plan models.PlanTier, yearly bool, email string) (*CheckoutSession, error) {
	return &CheckoutSession{SessionID: "cs_test", URL: "https://checkout.stripe.com/cs_test"}, nil
}

type RegistrationSuite struct {
	suite.Suite
	catalog   *fakeCatalog
	artifacts *fakeArtifacts
	registry  *fakeRegistry
	billing   *fakeBilling
	svc       *RegistrationService
}

func (s *RegistrationSuite) SetupTest() {
	s.catalog = &fakeCatalog{}
	s.artifacts = &fakeArtifacts{}
	s.registry = &fakeRegistry{}
	s.billing = &fakeBilling{
		subscription: &models.Subscription{
			ID:                 "sub_1",
			Plan:               models.PlanProfesional,
			Status:             "active",
			RegistrationsUsed:  3,
			RegistrationsLimit: 20,
		},
	}
	s.svc = NewRegistrationService(s.catalog, s.artifacts, s.registry, s.billing)
}

func (s *RegistrationSuite) registerRequest() *RegisterRequest {
	return &RegisterRequest{
		Email:           "ana@example.com",
		Title:           "Atardecer",
		Description:     "Óleo sobre lienzo",
		IPType:          models.IPTypeImage,
		FileBytes:       []byte("fake-image-bytes"),
		FileContentType: "image/png",
		WalletAddress:   "0xAbC0000000000000000000000000000000000001",
	}
}

func (s *RegistrationSuite) TestRegisterSuccess() {
	result, err := s.svc.Register(context.Background(), s.registerRequest())
	s.Require().NoError(err)

	s.Equal("0xIP1", result.Artwork.IPID)
	s.Equal("42", result.Artwork.NFTTokenID)
	s.Equal("0xTX1", result.TxHash)
	s.Equal(4, result.RegistrationsUsed)
	s.Equal(20, result.RegistrationsLimit)
	s.Contains(result.Message, "Story Protocol")
	s.NotContains(result.Message, "no disponible")

	s.Require().Len(s.catalog.artworks, 1)
	record := s.catalog.artworks[0]
	s.Equal("https://arweave.net/tx-file-1", record.FileURL)
	s.Equal("https://arweave.net/tx-meta-1", record.MetadataURL)
	s.Zero(record.Likes)
	s.Zero(record.Views)
	s.False(record.IsRemix)

	s.Equal(1, s.billing.incrementCalls)
	s.Equal("sub_1", s.billing.lastSubID)
	s.Equal(4, s.billing.lastNewUsed)

	s.Equal("Atardecer", s.artifacts.lastFileTags["Title"])
	s.Equal("image", s.artifacts.lastFileTags["Type"])
}

func (s *RegistrationSuite) TestRegisterMetadataDocument() {
	_, err := s.svc.Register(context.Background(), s.registerRequest())
	s.Require().NoError(err)

	var doc map[string]interface{}
	s.Require().NoError(json.Unmarshal(s.artifacts.lastMetadata, &doc))
	s.Equal("Atardecer", doc["title"])
	s.Equal("image", doc["ipType"])
	s.Equal("https://arweave.net/tx-file-1", doc["image"])

	// The registry hash must cover the exact uploaded bytes.
	s.Equal(MetadataHash(s.artifacts.lastMetadata), s.registry.lastMint.MetadataHash)
}

func (s *RegistrationSuite) TestRegisterDegradedWhenChainFails() {
	s.registry.mintErr = errors.New("gateway timeout")

	result, err := s.svc.Register(context.Background(), s.registerRequest())
	s.Require().NoError(err)

	s.Empty(result.Artwork.IPID)
	s.Empty(result.TxHash)
	s.Contains(result.Message, "no disponible")

	// The record is still cataloged and usage still consumed.
	s.Len(s.catalog.artworks, 1)
	s.Equal(1, s.billing.incrementCalls)
}

func (s *RegistrationSuite) TestRegisterChainRequiredPolicy() {
	s.svc = NewRegistrationService(s.catalog, s.artifacts, s.registry, s.billing,
		WithRegisterChainPolicy(ChainRequired))
	s.registry.mintErr = errors.New("gateway timeout")

	_, err := s.svc.Register(context.Background(), s.registerRequest())

	var chainErr *ChainError
	s.Require().ErrorAs(err, &chainErr)
	s.Empty(s.catalog.artworks)
	s.Equal(0, s.billing.incrementCalls)
}

func (s *RegistrationSuite) TestRegisterNoSubscription() {
	s.billing.subscription = nil

	_, err := s.svc.Register(context.Background(), s.registerRequest())

	s.Require().ErrorIs(err, ErrNoActiveSubscription)
	s.Equal(0, s.artifacts.fileCalls)
	s.Equal(0, s.registry.mintCalls)
	s.Empty(s.catalog.artworks)
}

func (s *RegistrationSuite) TestRegisterLimitReached() {
	s.billing.subscription = &models.Subscription{
		ID:                 "sub_2",
		Plan:               models.PlanCreador,
		Status:             "active",
		RegistrationsUsed:  4,
		RegistrationsLimit: 4,
	}

	req := s.registerRequest()
	req.Email = "a@x.com"
	_, err := s.svc.Register(context.Background(), req)

	var limitErr *LimitExceededError
	s.Require().ErrorAs(err, &limitErr)
	s.Equal(4, limitErr.Limit)
	s.Contains(err.Error(), "límite")

	// No side effects at all.
	s.Equal(0, s.artifacts.fileCalls)
	s.Equal(0, s.artifacts.metadataCalls)
	s.Equal(0, s.registry.mintCalls)
	s.Empty(s.catalog.artworks)
	s.Equal(0, s.billing.incrementCalls)
}

func (s *RegistrationSuite) TestRegisterEntitlementBypass() {
	s.billing.subscription = nil
	s.svc = NewRegistrationService(s.catalog, s.artifacts, s.registry, s.billing,
		WithEntitlementBypass(true))

	result, err := s.svc.Register(context.Background(), s.registerRequest())
	s.Require().NoError(err)

	s.Equal(1, result.RegistrationsUsed)
	s.Equal(models.RegistrationLimit(models.PlanProfesional), result.RegistrationsLimit)
	s.Equal(0, s.billing.incrementCalls)
}

func (s *RegistrationSuite) TestRegisterFileUploadFailure() {
	s.artifacts.uploadErr = errors.New("network down")

	_, err := s.svc.Register(context.Background(), s.registerRequest())

	var uploadErr *UploadError
	s.Require().ErrorAs(err, &uploadErr)
	s.Equal("archivo", uploadErr.Stage)
	s.Equal(0, s.registry.mintCalls)
	s.Empty(s.catalog.artworks)
}

func (s *RegistrationSuite) TestRegisterMetadataUploadFailure() {
	s.artifacts.metadataErr = errors.New("network down")

	_, err := s.svc.Register(context.Background(), s.registerRequest())

	var uploadErr *UploadError
	s.Require().ErrorAs(err, &uploadErr)
	s.Equal("metadata", uploadErr.Stage)

	// The primary upload already happened and stays orphaned; nothing
	// downstream of the metadata step may run.
	s.Equal(1, s.artifacts.fileCalls)
	s.Equal(0, s.registry.mintCalls)
	s.Empty(s.catalog.artworks)
	s.Equal(0, s.billing.incrementCalls)
}

func (s *RegistrationSuite) TestRegisterLicenseFeeConversion() {
	req := s.registerRequest()
	req.LicenseFeeUSD = "2.5"
	req.CommercialRevShare = "15"

	_, err := s.svc.Register(context.Background(), req)
	s.Require().NoError(err)

	s.Equal(int64(2_500_000), s.registry.lastMint.LicenseFeeUnits)
	s.Equal(15, s.registry.lastMint.CommercialRevShare)
}

func (s *RegistrationSuite) seedParent(ipID string, terms []string) {
	s.catalog.artworks = append(s.catalog.artworks, models.Artwork{
		ID:              "artwork_parent",
		Title:           "Original",
		IPID:            ipID,
		LicenseTermsIDs: terms,
	})
}

func (s *RegistrationSuite) remixRequest(parentIPID string) *RemixRequest {
	return &RemixRequest{
		RegisterRequest: *s.registerRequest(),
		ParentIPID:      parentIPID,
	}
}

func (s *RegistrationSuite) TestRemixUsesParentLicenseTerms() {
	s.seedParent("0xP", []string{"7"})

	result, err := s.svc.Remix(context.Background(), s.remixRequest("0xP"))
	s.Require().NoError(err)

	s.Equal([]string{"7"}, s.registry.lastDerivative.ParentLicenseTermsIDs)
	s.Equal("0xP", s.registry.lastDerivative.ParentIPID)

	s.True(result.Artwork.IsRemix)
	s.Equal("0xP", result.Artwork.ParentIPID)
	s.NotEmpty(result.Artwork.IPID)
	s.NotEmpty(result.Artwork.NFTTokenID)

	s.Equal("0xP", s.artifacts.lastFileTags["Parent-IP"])
	s.Equal("true", s.artifacts.lastFileTags["Is-Remix"])
}

func (s *RegistrationSuite) TestRemixParentNotFound() {
	_, err := s.svc.Remix(context.Background(), s.remixRequest("0xMISSING"))

	var notFound *ParentNotFoundError
	s.Require().ErrorAs(err, &notFound)
	s.Equal("0xMISSING", notFound.IPID)

	s.Equal(0, s.artifacts.fileCalls)
	s.Equal(0, s.registry.derivativeCalls)
}

func (s *RegistrationSuite) TestRemixParentWithoutLicenseTerms() {
	s.seedParent("0xP", nil)

	_, err := s.svc.Remix(context.Background(), s.remixRequest("0xP"))

	s.Require().ErrorIs(err, ErrParentNotRemixable)
	s.Equal(0, s.artifacts.fileCalls)
	s.Equal(0, s.registry.derivativeCalls)
}

func (s *RegistrationSuite) TestRemixChainFailureIsFatal() {
	s.seedParent("0xP", []string{"7"})
	s.registry.mintErr = errors.New("gateway timeout")

	_, err := s.svc.Remix(context.Background(), s.remixRequest("0xP"))

	var chainErr *ChainError
	s.Require().ErrorAs(err, &chainErr)
	// Only the seeded parent remains.
	s.Len(s.catalog.artworks, 1)
}

func (s *RegistrationSuite) TestRemixBestEffortPolicyDegrades() {
	s.svc = NewRegistrationService(s.catalog, s.artifacts, s.registry, s.billing,
		WithRemixChainPolicy(ChainBestEffort))
	s.seedParent("0xP", []string{"7"})
	s.registry.mintErr = errors.New("gateway timeout")

	result, err := s.svc.Remix(context.Background(), s.remixRequest("0xP"))
	s.Require().NoError(err)

	s.Empty(result.Artwork.IPID)
	s.Empty(result.TxHash)
	s.Contains(result.Message, "no disponible")
	s.NotContains(result.Message, "exitosamente")
	// Parent plus the degraded remix record.
	s.Len(s.catalog.artworks, 2)
}

func (s *RegistrationSuite) TestRemixDoesNotTouchBilling() {
	s.seedParent("0xP", []string{"7"})

	_, err := s.svc.Remix(context.Background(), s.remixRequest("0xP"))
	s.Require().NoError(err)

	s.Equal(0, s.billing.incrementCalls)
}

func TestRegistrationSuite(t *testing.T) {
	suite.Run(t, new(RegistrationSuite))
}

func TestLicenseFeeUnits(t *testing.T) {
	assert.Equal(t, int64(0), licenseFeeUnits(""))
	assert.Equal(t, int64(0), licenseFeeUnits("not-a-number"))
	assert.Equal(t, int64(0), licenseFeeUnits("-3"))
	assert.Equal(t, int64(5_000_000), licenseFeeUnits("5"))
	assert.Equal(t, int64(500_000), licenseFeeUnits("0.5"))
	assert.Equal(t, int64(1_999_999), licenseFeeUnits("1.9999999"))
}

func TestRevSharePercent(t *testing.T) {
	assert.Equal(t, 0, revSharePercent("", 0))
	assert.Equal(t, 10, revSharePercent("", 10))
	assert.Equal(t, 25, revSharePercent("25", 0))
	assert.Equal(t, 10, revSharePercent("garbage", 10))
}
