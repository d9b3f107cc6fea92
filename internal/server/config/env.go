package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv loads the given .env files (missing files are skipped) into the
// process environment and then overlays every variable that is set.
// Variables already present in the environment win over .env entries.
// Malformed files or values panic, like the other configuration layers.
//
//	HTTP_ADDRESS, DATABASE_DSN, ACCESS_TOKEN_SECRET, REFRESH_TOKEN_SECRET,
//	ACCESS_TOKEN_EXPIRY, REFRESH_TOKEN_EXPIRY (Go durations), S3_ROOT_USER,
//	S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT, MEDIA_PUBLIC_URL,
//	UPLOAD_DIR, MAX_UPLOAD_BYTES, LOG_LEVEL, SECURE_COOKIES
func parseEnv(config *Config, files ...string) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}

	envString("HTTP_ADDRESS", &config.EndpointAddrHTTP)
	envString("DATABASE_DSN", &config.DatabaseDSN)
	envString("ACCESS_TOKEN_SECRET", &config.AccessTokenSecret)
	envString("REFRESH_TOKEN_SECRET", &config.RefreshTokenSecret)
	envDuration("ACCESS_TOKEN_EXPIRY", &config.AccessTokenValidityDuration)
	envDuration("REFRESH_TOKEN_EXPIRY", &config.RefreshTokenValidityDuration)
	envString("S3_ROOT_USER", &config.S3RootUser)
	envString("S3_ROOT_PASSWORD", &config.S3RootPassword)
	envString("S3_BUCKET", &config.S3Bucket)
	envString("S3_REGION", &config.S3Region)
	envString("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	envString("MEDIA_PUBLIC_URL", &config.MediaPublicURL)
	envString("UPLOAD_DIR", &config.UploadDir)
	envString("LOG_LEVEL", &config.LogLevel)

	if v, ok := os.LookupEnv("MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		config.MaxUploadBytes = n
	}

	if v, ok := os.LookupEnv("SECURE_COOKIES"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.SecureCookies = b
	}
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envDuration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(err)
	}
	*dst = d
}
