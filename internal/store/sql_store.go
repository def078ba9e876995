// internal/store/sql_store.go
package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/manna-art/manna-backend/internal/config"
	"github.com/manna-art/manna-backend/internal/models"
)

// SQLCatalog is the relational Catalog backend. Counter increments are
// single-statement updates, so concurrent callers never lose an update.
type SQLCatalog struct {
	db *gorm.DB
}

// OpenCatalog builds the catalog backend named by cfg.Driver.
func OpenCatalog(cfg config.CatalogConfig) (Catalog, error) {
	switch cfg.Driver {
	case "file":
		return NewFileCatalog(cfg.FilePath)
	case "postgres":
		return OpenSQLCatalog(postgres.Open(cfg.DSN()), cfg)
	default:
		return nil, fmt.Errorf("unknown catalog driver %q", cfg.Driver)
	}
}

// OpenSQLCatalog connects through the given dialector, configures the
// connection pool and migrates the artworks table. Tests pass a sqlite
// dialector here.
func OpenSQLCatalog(dialector gorm.Dialector, cfg config.CatalogConfig) (*SQLCatalog, error) {
	logLevel := logger.Info
	if cfg.LogLevel == "silent" {
		logLevel = logger.Silent
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := db.AutoMigrate(&models.Artwork{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLCatalog{db: db}, nil
}

func (c *SQLCatalog) Insert(artwork *models.Artwork) (*models.Artwork, error) {
	record := *artwork
	record.ID = NewArtworkID()
	record.CreatedAt = time.Now().UTC()
	record.Likes = 0
	record.Views = 0

	if err := c.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to insert artwork: %w", err)
	}
	return &record, nil
}

func (c *SQLCatalog) FindByID(id string) (*models.Artwork, error) {
	var artwork models.Artwork
	if err := c.db.First(&artwork, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &artwork, nil
}

func (c *SQLCatalog) FindByIPID(ipID string) (*models.Artwork, error) {
	var artwork models.Artwork
	if err := c.db.First(&artwork, "ip_id = ? AND ip_id <> ''", ipID).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &artwork, nil
}

func (c *SQLCatalog) FindByCreatorWallet(wallet string) ([]models.Artwork, error) {
	artworks := []models.Artwork{}
	if err := c.db.Where("LOWER(creator_wallet) = LOWER(?)", wallet).
		Order("created_at DESC").
		Find(&artworks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch creator artworks: %w", err)
	}
	return artworks, nil
}

func (c *SQLCatalog) ListAll() ([]models.Artwork, error) {
	artworks := []models.Artwork{}
	if err := c.db.Find(&artworks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch artworks: %w", err)
	}
	return artworks, nil
}

func (c *SQLCatalog) ListRecent(limit int) ([]models.Artwork, error) {
	artworks := []models.Artwork{}
	if err := c.db.Order("created_at DESC").Limit(limit).
		Find(&artworks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch recent artworks: %w", err)
	}
	return artworks, nil
}

func (c *SQLCatalog) ListPopular(limit int) ([]models.Artwork, error) {
	artworks := []models.Artwork{}
	if err := c.db.Order("views + likes * 10 DESC").Limit(limit).
		Find(&artworks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch popular artworks: %w", err)
	}
	return artworks, nil
}

func (c *SQLCatalog) IncrementViews(id string) error {
	res := c.db.Model(&models.Artwork{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to increment views: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *SQLCatalog) IncrementLike(id string) (int64, error) {
	var likes int64
	err := c.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Artwork{}).Where("id = ?", id).
			UpdateColumn("likes", gorm.Expr("likes + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Model(&models.Artwork{}).Where("id = ?", id).
			Select("likes").Scan(&likes).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to increment likes: %w", err)
	}
	return likes, nil
}

func (c *SQLCatalog) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("database error: %w", err)
}
