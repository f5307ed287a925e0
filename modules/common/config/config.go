package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds every environment variable the server reads.
type Config struct {
	// Gemini API
	GeminiAPIKey      string
	GeminiVisionModel string
	GeminiImageModel  string

	// Supabase (optional - static catalog is used when absent)
	SupabaseURL        string
	SupabaseServiceKey string

	// Redis (optional - in-process queue is used when absent)
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Server
	Port string

	// Try-on domain: "hairstyle" or "clothing"
	TryOnDomain string
}

var globalConfig *Config

// LoadConfig loads the .env file (if present) and validates required variables.
// A missing GEMINI_API_KEY is fatal here, before any RPC is ever attempted.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	useTLS := false
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr == "true" || tlsStr == "1" {
		useTLS = true
	}

	globalConfig = &Config{
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiVisionModel: getEnv("GEMINI_VISION_MODEL", "gemini-3-flash-preview"),
		GeminiImageModel:  getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),

		SupabaseURL:        getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey: getEnv("SUPABASE_SERVICE_KEY", ""),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		Port: getEnv("PORT", "8080"),

		TryOnDomain: getEnv("TRYON_DOMAIN", "hairstyle"),
	}

	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Domain: %s", globalConfig.TryOnDomain)
	log.Printf("   Gemini: %s / %s", globalConfig.GeminiVisionModel, globalConfig.GeminiImageModel)
	if globalConfig.SupabaseURL != "" {
		log.Printf("   Supabase: %s", globalConfig.SupabaseURL)
	} else {
		log.Printf("   Supabase: not configured (static catalog)")
	}
	if globalConfig.RedisHost != "" {
		log.Printf("   Redis: %s:%s (TLS: %v)", globalConfig.RedisHost, globalConfig.RedisPort, globalConfig.RedisUseTLS)
	} else {
		log.Printf("   Redis: not configured (in-process queue)")
	}

	return globalConfig, nil
}

// GetConfig returns the loaded configuration.
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

func (c *Config) validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.TryOnDomain != "hairstyle" && c.TryOnDomain != "clothing" {
		return fmt.Errorf("TRYON_DOMAIN must be \"hairstyle\" or \"clothing\", got %q", c.TryOnDomain)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetRedisAddr builds the Redis connection string.
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
