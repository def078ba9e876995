// internal/store/file_store.go
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/manna-art/manna-backend/internal/models"
)

// FileCatalog stores the whole catalog as one JSON document. Every
// operation reads and rewrites the document under a single mutex, so
// counter increments are atomic within one process. It is meant for
// development and small single-instance deployments; multi-process
// deployments need the SQL backend.
type FileCatalog struct {
	path string
	mtx  sync.Mutex
}

func NewFileCatalog(path string) (*FileCatalog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}
	return &FileCatalog{path: path}, nil
}

func (c *FileCatalog) load() ([]models.Artwork, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.Artwork{}, nil
		}
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var artworks []models.Artwork
	if err := json.Unmarshal(data, &artworks); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	return artworks, nil
}

func (c *FileCatalog) save(artworks []models.Artwork) error {
	data, err := json.MarshalIndent(artworks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}

	// Write-then-rename so a crash mid-write cannot truncate the catalog.
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace catalog file: %w", err)
	}
	return nil
}

func (c *FileCatalog) Insert(artwork *models.Artwork) (*models.Artwork, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	artworks, err := c.load()
	if err != nil {
		return nil, err
	}

	record := *artwork
	record.ID = NewArtworkID()
	record.CreatedAt = time.Now().UTC()
	record.Likes = 0
	record.Views = 0

	artworks = append(artworks, record)
	if err := c.save(artworks); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *FileCatalog) FindByID(id string) (*models.Artwork, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	artworks, err := c.load()
	if err != nil {
		return nil, err
	}
	for i := range artworks {
		if artworks[i].ID == id {
			return &artworks[i], nil
		}
	}
	return nil, ErrNotFound
}

func (c *FileCatalog) FindByIPID(ipID string) (*models.Artwork, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	artworks, err := c.load()
	if err != nil {
		return nil, err
	}
	for i := range artworks {
		if artworks[i].IPID != "" && artworks[i].IPID == ipID {
			return &artworks[i], nil
		}
	}
	return nil, ErrNotFound
}

func (c *FileCatalog) FindByCreatorWallet(wallet string) ([]models.Artwork, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	artworks, err := c.load()
	if err != nil {
		return nil, err
	}

	matched := []models.Artwork{}
	for _, a := range artworks {
		if strings.EqualFold(a.CreatorWallet, wallet) {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

func (c *FileCatalog) ListAll() ([]models.Artwork, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.load()
}

func (c *FileCatalog) ListRecent(limit int) ([]models.Artwork, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	artworks, err := c.load()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(artworks, func(i, j int) bool {
		return artworks[i].CreatedAt.After(artworks[j].CreatedAt)
	})
	return truncate(artworks, limit), nil
}

func (c *FileCatalog) ListPopular(limit int) ([]models.Artwork, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	artworks, err := c.load()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(artworks, func(i, j int) bool {
		return artworks[i].PopularityScore() > artworks[j].PopularityScore()
	})
	return truncate(artworks, limit), nil
}

func (c *FileCatalog) IncrementViews(id string) error {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	artworks, err := c.load()
	if err != nil {
		return err
	}
	for i := range artworks {
		if artworks[i].ID == id {
			artworks[i].Views++
			return c.save(artworks)
		}
	}
	return ErrNotFound
}

func (c *FileCatalog) IncrementLike(id string) (int64, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	artworks, err := c.load()
	if err != nil {
		return 0, err
	}
	for i := range artworks {
		if artworks[i].ID == id {
			artworks[i].Likes++
			if err := c.save(artworks); err != nil {
				return 0, err
			}
			return artworks[i].Likes, nil
		}
	}
	return 0, ErrNotFound
}

func (c *FileCatalog) Close() error {
	return nil
}

func truncate(artworks []models.Artwork, limit int) []models.Artwork {
	if limit > 0 && len(artworks) > limit {
		return artworks[:limit]
	}
	return artworks
}
