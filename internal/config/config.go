// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Catalog     CatalogConfig
	Arweave     ArweaveConfig
	Story       StoryConfig
	Stripe      StripeConfig
	Auth        AuthConfig
	CORS        CORSConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

// CatalogConfig selects the artwork catalog backend. Driver is either
// "file" (single JSON document) or "postgres".
type CatalogConfig struct {
	Driver       string
	FilePath     string
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

func (c CatalogConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// ArweaveConfig configures the artifact store. Backend is "arweave" or
// "s3"; the s3 backend exists for development environments without an
// Arweave upload service.
type ArweaveConfig struct {
	Backend    string
	GatewayURL string
	UploadURL  string
	AppName    string
	AppVersion string

	// S3 backend
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3Bucket           string
}

type StoryConfig struct {
	GatewayURL     string
	APIKey         string
	SPGNFTContract string
	IPTokenAddress string
	ExplorerURL    string
}

type StripeConfig struct {
	SecretKey             string
	SkipSubscriptionCheck bool
	SuccessURL            string
	CancelURL             string
	PriceIDs              map[string]string // "<PLAN>_MONTHLY" / "<PLAN>_YEARLY"
}

type AuthConfig struct {
	JWTSecret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 60),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Catalog: CatalogConfig{
			Driver:       getEnv("CATALOG_DRIVER", "file"),
			FilePath:     getEnv("CATALOG_FILE_PATH", "./data/artworks.json"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "manna_art"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Arweave: ArweaveConfig{
			Backend:            getEnv("ARTIFACT_BACKEND", "arweave"),
			GatewayURL:         getEnv("ARWEAVE_GATEWAY_URL", "https://arweave.net"),
			UploadURL:          getEnv("ARWEAVE_UPLOAD_URL", ""),
			AppName:            getEnv("ARWEAVE_APP_NAME", "Manna Art"),
			AppVersion:         getEnv("ARWEAVE_APP_VERSION", "1.0"),
			AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
			AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:           getEnv("AWS_S3_BUCKET", "manna-art-artifacts"),
		},
		Story: StoryConfig{
			GatewayURL:     getEnv("STORY_GATEWAY_URL", ""),
			APIKey:         getEnv("STORY_API_KEY", ""),
			SPGNFTContract: getEnv("SPG_NFT_CONTRACT", "0x6Cfa03Bc64B1a76206d0Ea10baDed31D520449F5"),
			IPTokenAddress: getEnv("IP_TOKEN_ADDRESS", "0x1514000000000000000000000000000000000000"),
			ExplorerURL:    getEnv("STORY_EXPLORER_URL", "https://mainnet.storyscan.xyz"),
		},
		Stripe: StripeConfig{
			SecretKey:             getEnv("STRIPE_SECRET_KEY", ""),
			SkipSubscriptionCheck: getEnvAsBool("DEV_MODE_SKIP_SUBSCRIPTION", false),
			SuccessURL:            getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:             getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/?canceled=true"),
			PriceIDs: map[string]string{
				"CREADOR_MONTHLY":     getEnv("STRIPE_PRICE_CREADOR_MONTHLY", ""),
				"CREADOR_YEARLY":      getEnv("STRIPE_PRICE_CREADOR_YEARLY", ""),
				"PROFESIONAL_MONTHLY": getEnv("STRIPE_PRICE_PROFESIONAL_MONTHLY", ""),
				"PROFESIONAL_YEARLY":  getEnv("STRIPE_PRICE_PROFESIONAL_YEARLY", ""),
				"ELITE_MONTHLY":       getEnv("STRIPE_PRICE_ELITE_MONTHLY", ""),
				"ELITE_YEARLY":        getEnv("STRIPE_PRICE_ELITE_YEARLY", ""),
			},
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("WALLET_SESSION_SECRET", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Catalog.Driver != "file" && c.Catalog.Driver != "postgres" {
		return fmt.Errorf("unknown catalog driver %q", c.Catalog.Driver)
	}

	if c.Environment == "production" {
		if c.Stripe.SecretKey == "" {
			return fmt.Errorf("STRIPE_SECRET_KEY is required in production")
		}
		if c.Stripe.SkipSubscriptionCheck {
			return fmt.Errorf("DEV_MODE_SKIP_SUBSCRIPTION must not be set in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
