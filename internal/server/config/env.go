package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/instantbranding/brandkit/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays config with environment variables. A dotenv file named
// by -env is loaded first (it never overrides variables already set in the
// process); without the flag an optional ./.env is tried.
func parseEnv(config *Config) {
	loadDotenv(flagx.EnvFileFlag())

	config.HTTPAddr = getEnv("HTTP_ADDR", config.HTTPAddr)
	config.DatabaseDSN = getEnv("DATABASE_URL", config.DatabaseDSN)
	config.JWTSecret = getEnv("JWT_SECRET", config.JWTSecret)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)
	config.CORSOrigins = getList("CORS_ALLOWED_ORIGINS", config.CORSOrigins)
	config.ShutdownTimeout = getDuration("SHUTDOWN_TIMEOUT", config.ShutdownTimeout)

	config.S3Endpoint = getEnv("S3_ENDPOINT", config.S3Endpoint)
	config.S3Region = getEnv("S3_REGION", config.S3Region)
	config.S3Bucket = getEnv("S3_BUCKET", config.S3Bucket)
	config.S3AccessKey = getEnv("S3_ACCESS_KEY_ID", config.S3AccessKey)
	config.S3SecretKey = getEnv("S3_SECRET_ACCESS_KEY", config.S3SecretKey)
	config.S3PublicBaseURL = getEnv("S3_PUBLIC_BASE_URL", config.S3PublicBaseURL)

	config.R2AccountID = getEnv("R2_ACCOUNT_ID", config.R2AccountID)
	config.R2Bucket = getEnv("R2_BUCKET", config.R2Bucket)
	config.R2AccessKey = getEnv("R2_ACCESS_KEY_ID", config.R2AccessKey)
	config.R2SecretKey = getEnv("R2_SECRET_ACCESS_KEY", config.R2SecretKey)
	config.R2PublicBaseURL = getEnv("R2_PUBLIC_BASE_URL", config.R2PublicBaseURL)

	config.UploadURLExpiry = getDuration("UPLOAD_URL_EXPIRY", config.UploadURLExpiry)

	config.OpenAIKey = getEnv("OPENAI_API_KEY", config.OpenAIKey)
	config.OpenAIModel = getEnv("OPENAI_MODEL", config.OpenAIModel)
	config.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", config.OpenAIBaseURL)
	config.OpenAITimeout = getDuration("OPENAI_TIMEOUT", config.OpenAITimeout)

	config.BgRemovalURL = getEnv("REMOVE_BG_URL", config.BgRemovalURL)
	config.BgRemovalKey = getEnv("REMOVE_BG_API_KEY", config.BgRemovalKey)
	config.BgRemovalTimeout = getDuration("REMOVE_BG_TIMEOUT", config.BgRemovalTimeout)

	config.PaddleWebhookSecret = getEnv("PADDLE_WEBHOOK_SECRET", config.PaddleWebhookSecret)
	config.PaddleTolerance = getDuration("PADDLE_SIGNATURE_TOLERANCE", config.PaddleTolerance)

	config.AssetBaseURL = getEnv("ASSET_BASE_URL", config.AssetBaseURL)
	config.AssetCacheTTL = getDuration("ASSET_CACHE_TTL", config.AssetCacheTTL)
	config.AssetTimeout = getDuration("ASSET_TIMEOUT", config.AssetTimeout)

	config.RedisAddr = getEnv("REDIS_ADDR", config.RedisAddr)
}

// loadDotenv loads path, or ./.env when path is empty. A missing default
// file is fine; a missing explicit file panics like a missing JSON config.
func loadDotenv(path string) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func getList(key string, def []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		var cleaned []string
		for _, p := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return def
}
