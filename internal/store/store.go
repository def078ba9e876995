// internal/store/store.go
package store

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/manna-art/manna-backend/internal/models"
)

// ErrNotFound is returned by lookups and counter updates when no artwork
// matches the given identifier.
var ErrNotFound = errors.New("artwork not found")

// Catalog is the persistent record of registered artworks. Implementations
// must assign a fresh id, insertion timestamp and zeroed counters on
// Insert regardless of caller-supplied values, and must never delete
// records.
type Catalog interface {
	Insert(artwork *models.Artwork) (*models.Artwork, error)
	FindByID(id string) (*models.Artwork, error)
	FindByIPID(ipID string) (*models.Artwork, error)
	FindByCreatorWallet(wallet string) ([]models.Artwork, error)
	ListAll() ([]models.Artwork, error)
	ListRecent(limit int) ([]models.Artwork, error)
	ListPopular(limit int) ([]models.Artwork, error)
	IncrementViews(id string) error
	IncrementLike(id string) (int64, error)
	Close() error
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewArtworkID generates a catalog id: a millisecond timestamp plus a
// random base-36 suffix. Uniqueness holds as long as two inserts in the
// same millisecond do not also collide on all nine suffix characters.
func NewArtworkID() string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = idAlphabet[rand.Intn(len(idAlphabet))]
	}
	return fmt.Sprintf("artwork_%d_%s", time.Now().UnixMilli(), suffix)
}
