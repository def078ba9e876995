// internal/models/artwork.go
package models

import (
	"time"

	"github.com/lib/pq"
)

// IPType is the creator-declared kind of a registered work.
type IPType string

const (
	IPTypeImage    IPType = "image"
	IPTypeVideo    IPType = "video"
	IPTypeAudio    IPType = "audio"
	IPTypeDocument IPType = "document"
	IPType3D       IPType = "3d"
)

func (t IPType) Valid() bool {
	switch t {
	case IPTypeImage, IPTypeVideo, IPTypeAudio, IPTypeDocument, IPType3D:
		return true
	}
	return false
}

// Artwork is the catalog record of a registered work. Storage references
// (fileUrl/fileId, metadataUrl/metadataId) are always populated in pairs;
// the on-chain fields (ipId, nftTokenId, licenseTermsIds) are either all
// present or all absent. Only the engagement counters mutate after insert.
type Artwork struct {
	ID              string         `json:"id" gorm:"primaryKey;size:64"`
	Title           string         `json:"title" gorm:"size:255;not null"`
	Description     string         `json:"description" gorm:"type:text"`
	IPType          IPType         `json:"ipType" gorm:"column:ip_type;size:20"`
	FileURL         string         `json:"fileUrl" gorm:"size:512"`
	FileID          string         `json:"fileId" gorm:"size:128"`
	MetadataURL     string         `json:"metadataUrl" gorm:"size:512"`
	MetadataID      string         `json:"metadataId" gorm:"size:128"`
	CreatorWallet   string         `json:"creatorWallet" gorm:"size:64;index"`
	CreatorEmail    string         `json:"creatorEmail" gorm:"size:255"`
	CreatedAt       time.Time      `json:"createdAt" gorm:"index"`
	Likes           int64          `json:"likes" gorm:"default:0"`
	Views           int64          `json:"views" gorm:"default:0"`
	IPID            string         `json:"ipId,omitempty" gorm:"column:ip_id;size:64;index"`
	NFTTokenID      string         `json:"nftTokenId,omitempty" gorm:"column:nft_token_id;size:64"`
	LicenseTermsIDs pq.StringArray `json:"licenseTermsIds,omitempty" gorm:"column:license_terms_ids;type:text[]"`
	ParentIPID      string         `json:"parentIpId,omitempty" gorm:"column:parent_ip_id;size:64;index"`
	IsRemix         bool           `json:"isRemix" gorm:"default:false"`
}

func (Artwork) TableName() string {
	return "artworks"
}

// Remixable reports whether the artwork can serve as a derivative parent:
// it must be registered on-chain and carry at least one license term.
func (a *Artwork) Remixable() bool {
	return a.IPID != "" && len(a.LicenseTermsIDs) > 0
}

// PopularityScore orders the popular listing: a like weighs ten views.
func (a *Artwork) PopularityScore() int64 {
	return a.Views + a.Likes*10
}
