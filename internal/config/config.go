package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	AppPort    string
	AppEnv     string
	JWTSecret  string

	// Client app base URL, used for result-page redirects and mail links.
	ClientBaseURL string

	VNPay    VNPayConfig
	Delivery DeliveryConfig
	SMTP     SMTPConfig
}

// VNPayConfig holds the merchant credentials for the payment gateway.
type VNPayConfig struct {
	BaseURL    string
	TmnCode    string
	HashSecret string
	Version    string
	Locale     string
	ReturnURL  string
}

// DeliveryConfig holds the GHN shipping settings: shop origin codes and the
// base package size a single item occupies.
type DeliveryConfig struct {
	BaseURL        string
	Token          string
	ShopID         int
	FromDistrictID int
	FromWardCode   string
	PackageLength  int
	PackageWidth   int
	PackageHeight  int
	PackageWeight  int
}

type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),
		AppPort:    os.Getenv("APP_PORT"),
		AppEnv:     os.Getenv("APP_ENV"),
		JWTSecret:  os.Getenv("SECRET_KEY"),

		ClientBaseURL: os.Getenv("CLIENT_BASE_URL"),

		VNPay: VNPayConfig{
			BaseURL:    os.Getenv("VNPAY_BASE_URL"),
			TmnCode:    os.Getenv("VNPAY_TMN_CODE"),
			HashSecret: os.Getenv("VNPAY_HASH_SECRET"),
			Version:    getEnvDefault("VNPAY_VERSION", "2.1.0"),
			Locale:     getEnvDefault("VNPAY_LOCALE", "vn"),
			ReturnURL:  os.Getenv("VNPAY_RETURN_URL"),
		},

		Delivery: DeliveryConfig{
			BaseURL:        os.Getenv("GHN_BASE_URL"),
			Token:          os.Getenv("GHN_TOKEN"),
			ShopID:         getEnvInt("GHN_SHOP_ID", 0),
			FromDistrictID: getEnvInt("GHN_FROM_DISTRICT_ID", 0),
			FromWardCode:   os.Getenv("GHN_FROM_WARD_CODE"),
			PackageLength:  getEnvInt("GHN_PACKAGE_LENGTH", 20),
			PackageWidth:   getEnvInt("GHN_PACKAGE_WIDTH", 20),
			PackageHeight:  getEnvInt("GHN_PACKAGE_HEIGHT", 10),
			PackageWeight:  getEnvInt("GHN_PACKAGE_WEIGHT", 500),
		},

		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvDefault("SMTP_PORT", "587"),
			From:     os.Getenv("SMTP_FROM"),
			Password: os.Getenv("SMTP_PASSWORD"),
		},
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	return cfg
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid integer for %s: %v", key, err)
	}
	return n
}
