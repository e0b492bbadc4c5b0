package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/instantbranding/brandkit/internal/flagx"
	"github.com/instantbranding/brandkit/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations
// use timex.Duration so both "30s" and integer nanoseconds are accepted.
// Only keys present in the file override the current values.
type JsonConfig struct {
	HTTPAddr        string         `json:"http_addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	JWTSecret       string         `json:"jwt_secret"`
	LogLevel        string         `json:"log_level"`
	CORSOrigins     []string       `json:"cors_origins"`
	ShutdownTimeout timex.Duration `json:"shutdown_timeout"`

	S3Endpoint      string `json:"s3_endpoint"`
	S3Region        string `json:"s3_region"`
	S3Bucket        string `json:"s3_bucket"`
	S3AccessKey     string `json:"s3_access_key"`
	S3SecretKey     string `json:"s3_secret_key"`
	S3PublicBaseURL string `json:"s3_public_base_url"`

	R2AccountID     string `json:"r2_account_id"`
	R2Bucket        string `json:"r2_bucket"`
	R2AccessKey     string `json:"r2_access_key"`
	R2SecretKey     string `json:"r2_secret_key"`
	R2PublicBaseURL string `json:"r2_public_base_url"`

	UploadURLExpiry timex.Duration `json:"upload_url_expiry"`

	OpenAIKey     string         `json:"openai_api_key"`
	OpenAIModel   string         `json:"openai_model"`
	OpenAIBaseURL string         `json:"openai_base_url"`
	OpenAITimeout timex.Duration `json:"openai_timeout"`

	BgRemovalURL     string         `json:"bg_removal_url"`
	BgRemovalKey     string         `json:"bg_removal_api_key"`
	BgRemovalTimeout timex.Duration `json:"bg_removal_timeout"`

	PaddleWebhookSecret string            `json:"paddle_webhook_secret"`
	PaddleTolerance     timex.Duration    `json:"paddle_signature_tolerance"`
	PaddlePricePlans    map[string]string `json:"paddle_price_plans"`

	AssetBaseURL  string         `json:"asset_base_url"`
	AssetCacheTTL timex.Duration `json:"asset_cache_ttl"`
	AssetTimeout  timex.Duration `json:"asset_timeout"`

	RedisAddr string `json:"redis_addr"`
}

// parseJson overlays config with the JSON file named by -c/-config.
// Without the flag nothing is loaded. Read or decode errors panic, the
// same way bad flags do.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.JWTSecret, c.JWTSecret)
	setString(&config.LogLevel, c.LogLevel)
	if len(c.CORSOrigins) > 0 {
		config.CORSOrigins = c.CORSOrigins
	}
	setDuration(&config.ShutdownTimeout, c.ShutdownTimeout)

	setString(&config.S3Endpoint, c.S3Endpoint)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3PublicBaseURL, c.S3PublicBaseURL)

	setString(&config.R2AccountID, c.R2AccountID)
	setString(&config.R2Bucket, c.R2Bucket)
	setString(&config.R2AccessKey, c.R2AccessKey)
	setString(&config.R2SecretKey, c.R2SecretKey)
	setString(&config.R2PublicBaseURL, c.R2PublicBaseURL)

	setDuration(&config.UploadURLExpiry, c.UploadURLExpiry)

	setString(&config.OpenAIKey, c.OpenAIKey)
	setString(&config.OpenAIModel, c.OpenAIModel)
	setString(&config.OpenAIBaseURL, c.OpenAIBaseURL)
	setDuration(&config.OpenAITimeout, c.OpenAITimeout)

	setString(&config.BgRemovalURL, c.BgRemovalURL)
	setString(&config.BgRemovalKey, c.BgRemovalKey)
	setDuration(&config.BgRemovalTimeout, c.BgRemovalTimeout)

	setString(&config.PaddleWebhookSecret, c.PaddleWebhookSecret)
	setDuration(&config.PaddleTolerance, c.PaddleTolerance)
	if len(c.PaddlePricePlans) > 0 {
		config.PaddlePricePlans = c.PaddlePricePlans
	}

	setString(&config.AssetBaseURL, c.AssetBaseURL)
	setDuration(&config.AssetCacheTTL, c.AssetCacheTTL)
	setDuration(&config.AssetTimeout, c.AssetTimeout)

	setString(&config.RedisAddr, c.RedisAddr)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
