// internal/services/registry.go
package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/manna-art/manna-backend/internal/config"
)

// MintParams registers a new IP asset with commercial-remix license terms
// attached. LicenseFeeUnits is the minting fee in 6-decimal minor units.
type MintParams struct {
	MetadataURI        string
	MetadataHash       string
	Recipient          string
	LicenseFeeUnits    int64
	CommercialRevShare int
}

// DerivativeParams registers a derivative asset linked to a parent. The
// derivative cites the parent's existing license term ids, never its own.
type DerivativeParams struct {
	ParentIPID            string
	ParentLicenseTermsIDs []string
	MetadataURI           string
	MetadataHash          string
	Recipient             string
	LicenseFeeUnits       int64
	CommercialRevShare    int
}

type MintResult struct {
	IPID            string   `json:"ipId"`
	TokenID         string   `json:"tokenId"`
	TxHash          string   `json:"txHash"`
	LicenseTermsIDs []string `json:"licenseTermsIds"`
}

type CollectionParams struct {
	Name             string
	Symbol           string
	IsPublicMinting  bool
	MintFeeRecipient string
}

type CollectionResult struct {
	ContractAddress string `json:"spgNftContract"`
	TxHash          string `json:"txHash"`
}

// IPRegistry is the on-chain IP registration collaborator.
type IPRegistry interface {
	MintAndRegister(ctx context.Context, params MintParams) (*MintResult, error)
	MintAndRegisterDerivative(ctx context.Context, params DerivativeParams) (*MintResult, error)
	CreateCollection(ctx context.Context, params CollectionParams) (*CollectionResult, error)
	ExplorerURL(address string) string
}

// StoryClient calls a Story Protocol gateway service that holds the
// minting wallet and executes transactions. Only the mint/register
// contract is consumed here; chain execution stays on the gateway.
type StoryClient struct {
	httpClient *http.Client
	cfg        config.StoryConfig
}

func NewStoryClient(cfg config.StoryConfig) *StoryClient {
	return &StoryClient{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		cfg:        cfg,
	}
}

type storyIPMetadata struct {
	IPMetadataURI   string `json:"ipMetadataURI"`
	IPMetadataHash  string `json:"ipMetadataHash"`
	NFTMetadataURI  string `json:"nftMetadataURI"`
	NFTMetadataHash string `json:"nftMetadataHash"`
}

type storyLicenseTerms struct {
	DefaultMintingFee  string `json:"defaultMintingFee"`
	CommercialRevShare int    `json:"commercialRevShare"`
	Currency           string `json:"currency"`
}

type storyMintRequest struct {
	SPGNFTContract string            `json:"spgNftContract"`
	Recipient      string            `json:"recipient"`
	IPMetadata     storyIPMetadata   `json:"ipMetadata"`
	LicenseTerms   storyLicenseTerms `json:"licenseTerms"`
}

type storyDerivativeRequest struct {
	SPGNFTContract        string            `json:"spgNftContract"`
	Recipient             string            `json:"recipient"`
	ParentIPID            string            `json:"parentIpId"`
	ParentLicenseTermsIDs []string          `json:"parentLicenseTermsIds"`
	IPMetadata            storyIPMetadata   `json:"ipMetadata"`
	LicenseTerms          storyLicenseTerms `json:"licenseTerms"`
}

type storyCollectionRequest struct {
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	IsPublicMinting  bool   `json:"isPublicMinting"`
	MintOpen         bool   `json:"mintOpen"`
	MintFeeRecipient string `json:"mintFeeRecipient"`
	ContractURI      string `json:"contractURI"`
}

func (c *StoryClient) MintAndRegister(ctx context.Context, params MintParams) (*MintResult, error) {
	req := storyMintRequest{
		SPGNFTContract: c.cfg.SPGNFTContract,
		Recipient:      params.Recipient,
		IPMetadata:     c.ipMetadata(params.MetadataURI, params.MetadataHash),
		LicenseTerms: storyLicenseTerms{
			DefaultMintingFee:  fmt.Sprintf("%d", params.LicenseFeeUnits),
			CommercialRevShare: params.CommercialRevShare,
			Currency:           c.cfg.IPTokenAddress,
		},
	}

	var result MintResult
	if err := c.post(ctx, "/ip-assets/mint", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *StoryClient) MintAndRegisterDerivative(ctx context.Context, params DerivativeParams) (*MintResult, error) {
	req := storyDerivativeRequest{
		SPGNFTContract:        c.cfg.SPGNFTContract,
		Recipient:             params.Recipient,
		ParentIPID:            params.ParentIPID,
		ParentLicenseTermsIDs: params.ParentLicenseTermsIDs,
		IPMetadata:            c.ipMetadata(params.MetadataURI, params.MetadataHash),
		LicenseTerms: storyLicenseTerms{
			DefaultMintingFee:  fmt.Sprintf("%d", params.LicenseFeeUnits),
			CommercialRevShare: params.CommercialRevShare,
			Currency:           c.cfg.IPTokenAddress,
		},
	}

	var result MintResult
	if err := c.post(ctx, "/ip-assets/mint-derivative", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *StoryClient) CreateCollection(ctx context.Context, params CollectionParams) (*CollectionResult, error) {
	req := storyCollectionRequest{
		Name:             params.Name,
		Symbol:           params.Symbol,
		IsPublicMinting:  params.IsPublicMinting,
		MintOpen:         true,
		MintFeeRecipient: params.MintFeeRecipient,
	}

	var result CollectionResult
	if err := c.post(ctx, "/collections", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExplorerURL links an address on the chain explorer.
func (c *StoryClient) ExplorerURL(address string) string {
	return fmt.Sprintf("%s/address/%s", strings.TrimSuffix(c.cfg.ExplorerURL, "/"), address)
}

func (c *StoryClient) ipMetadata(uri, hash string) storyIPMetadata {
	// The NFT shares the IP asset's metadata document.
	return storyIPMetadata{
		IPMetadataURI:   uri,
		IPMetadataHash:  hash,
		NFTMetadataURI:  uri,
		NFTMetadataHash: hash,
	}
}

func (c *StoryClient) post(ctx context.Context, path string, reqBody, result interface{}) error {
	if c.cfg.GatewayURL == "" {
		return fmt.Errorf("STORY_GATEWAY_URL no está configurada")
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to encode registry request: %w", err)
	}

	url := strings.TrimSuffix(c.cfg.GatewayURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build registry request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("registry call failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode registry response: %w", err)
	}
	return nil
}

// MetadataHash is the keccak-256 digest of a metadata document, as the
// registry expects it: 0x-prefixed hex.
func MetadataHash(doc []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(doc)
	return "0x" + hex.EncodeToString(h.Sum(nil))
}
