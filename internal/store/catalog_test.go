// internal/store/catalog_test.go
package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"

	"github.com/manna-art/manna-backend/internal/config"
	"github.com/manna-art/manna-backend/internal/models"
)

// CatalogSuite runs the same behavioral contract against every backend.
type CatalogSuite struct {
	suite.Suite
	open    func(t *testing.T) Catalog
	catalog Catalog
}

func (s *CatalogSuite) SetupTest() {
	s.catalog = s.open(s.T())
}

func (s *CatalogSuite) TearDownTest() {
	s.catalog.Close()
}

func (s *CatalogSuite) insert(title, wallet, ipID string, terms []string) *models.Artwork {
	saved, err := s.catalog.Insert(&models.Artwork{
		Title:           title,
		Description:     "desc",
		IPType:          models.IPTypeImage,
		FileURL:         "https://arweave.net/file-" + title,
		MetadataURL:     "https://arweave.net/meta-" + title,
		CreatorWallet:   wallet,
		CreatorEmail:    "test@example.com",
		IPID:            ipID,
		LicenseTermsIDs: terms,
	})
	s.Require().NoError(err)
	return saved
}

func (s *CatalogSuite) TestInsertAssignsIDTimestampAndZeroCounters() {
	saved, err := s.catalog.Insert(&models.Artwork{
		Title: "Obra",
		// Caller-supplied values for assigned fields must be discarded.
		ID:        "attacker-chosen-id",
		Likes:     99,
		Views:     99,
		CreatedAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)

	s.NotEqual("attacker-chosen-id", saved.ID)
	s.Regexp(`^artwork_\d+_[0-9a-z]{9}$`, saved.ID)
	s.WithinDuration(time.Now().UTC(), saved.CreatedAt, time.Minute)
	s.Zero(saved.Likes)
	s.Zero(saved.Views)
}

func (s *CatalogSuite) TestFindByID() {
	saved := s.insert("Obra", "0xabc", "", nil)

	found, err := s.catalog.FindByID(saved.ID)
	s.Require().NoError(err)
	s.Equal("Obra", found.Title)

	_, err = s.catalog.FindByID("artwork_0_missing00")
	s.ErrorIs(err, ErrNotFound)
}

func (s *CatalogSuite) TestFindByIPID() {
	s.insert("Sin cadena", "0xabc", "", nil)
	s.insert("Registrada", "0xabc", "0xP", []string{"7"})

	found, err := s.catalog.FindByIPID("0xP")
	s.Require().NoError(err)
	s.Equal("Registrada", found.Title)
	s.Equal([]string{"7"}, []string(found.LicenseTermsIDs))

	// An empty ipId must never match the off-chain records.
	_, err = s.catalog.FindByIPID("")
	s.ErrorIs(err, ErrNotFound)
}

func (s *CatalogSuite) TestFindByCreatorWalletIsCaseInsensitive() {
	s.insert("Uno", "0xAbCd", "", nil)
	s.insert("Dos", "0xABCD", "", nil)
	s.insert("Ajena", "0xFFFF", "", nil)

	artworks, err := s.catalog.FindByCreatorWallet("0xabcd")
	s.Require().NoError(err)
	s.Len(artworks, 2)
}

func (s *CatalogSuite) TestListRecentOrdersNewestFirst() {
	s.insert("vieja", "0xabc", "", nil)
	time.Sleep(5 * time.Millisecond)
	s.insert("media", "0xabc", "", nil)
	time.Sleep(5 * time.Millisecond)
	s.insert("nueva", "0xabc", "", nil)

	artworks, err := s.catalog.ListRecent(2)
	s.Require().NoError(err)
	s.Require().Len(artworks, 2)
	s.Equal("nueva", artworks[0].Title)
	s.Equal("media", artworks[1].Title)
}

func (s *CatalogSuite) TestListPopularWeighsLikesOverViews() {
	viewed := s.insert("vista", "0xabc", "", nil)
	liked := s.insert("gustada", "0xabc", "", nil)
	s.insert("nueva", "0xabc", "", nil)

	for i := 0; i < 3; i++ {
		s.Require().NoError(s.catalog.IncrementViews(viewed.ID))
	}
	_, err := s.catalog.IncrementLike(liked.ID)
	s.Require().NoError(err)

	artworks, err := s.catalog.ListPopular(10)
	s.Require().NoError(err)
	s.Require().Len(artworks, 3)
	// One like outweighs three views.
	s.Equal("gustada", artworks[0].Title)
	s.Equal("vista", artworks[1].Title)
}

func (s *CatalogSuite) TestIncrementViewsAddsExactlyN() {
	saved := s.insert("Obra", "0xabc", "", nil)

	const n = 7
	for i := 0; i < n; i++ {
		s.Require().NoError(s.catalog.IncrementViews(saved.ID))
	}

	found, err := s.catalog.FindByID(saved.ID)
	s.Require().NoError(err)
	s.Equal(int64(n), found.Views)
}

func (s *CatalogSuite) TestIncrementLikeReturnsNewCount() {
	saved := s.insert("Obra", "0xabc", "", nil)

	likes, err := s.catalog.IncrementLike(saved.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), likes)

	likes, err = s.catalog.IncrementLike(saved.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), likes)
}

func (s *CatalogSuite) TestCountersOnMissingArtwork() {
	s.ErrorIs(s.catalog.IncrementViews("artwork_0_missing00"), ErrNotFound)

	_, err := s.catalog.IncrementLike("artwork_0_missing00")
	s.ErrorIs(err, ErrNotFound)
}

func TestFileCatalog(t *testing.T) {
	suite.Run(t, &CatalogSuite{
		open: func(t *testing.T) Catalog {
			catalog, err := NewFileCatalog(filepath.Join(t.TempDir(), "artworks.json"))
			if err != nil {
				t.Fatal(err)
			}
			return catalog
		},
	})
}

func TestSQLCatalog(t *testing.T) {
	suite.Run(t, &CatalogSuite{
		open: func(t *testing.T) Catalog {
			catalog, err := OpenSQLCatalog(
				sqlite.Open(filepath.Join(t.TempDir(), "catalog.db")),
				config.CatalogConfig{
					MaxOpenConns: 1,
					MaxIdleConns: 1,
					MaxLifetime:  300,
					LogLevel:     "silent",
				},
			)
			if err != nil {
				t.Fatal(err)
			}
			return catalog
		},
	})
}

func TestNewArtworkIDShape(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewArtworkID()
		assert.Regexp(t, `^artwork_\d+_[0-9a-z]{9}$`, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestFileCatalogPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artworks.json")

	first, err := NewFileCatalog(path)
	assert.NoError(t, err)
	saved, err := first.Insert(&models.Artwork{Title: "Persistente"})
	assert.NoError(t, err)
	first.Close()

	second, err := NewFileCatalog(path)
	assert.NoError(t, err)
	found, err := second.FindByID(saved.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Persistente", found.Title)
}
