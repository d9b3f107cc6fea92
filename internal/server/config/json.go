package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/channelhub/internal/flagx"
	"github.com/dmitrijs2005/channelhub/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON configuration file.
// Durations accept Go duration strings ("15m") or integer nanoseconds.
// SecureCookies is a pointer so an explicit false differs from absent.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	AccessTokenSecret            string         `json:"access_token_secret"`
	RefreshTokenSecret           string         `json:"refresh_token_secret"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	MediaPublicURL               string         `json:"media_public_url"`
	UploadDir                    string         `json:"upload_dir"`
	MaxUploadBytes               int64          `json:"max_upload_bytes"`
	LogLevel                     string         `json:"log_level"`
	SecureCookies                *bool          `json:"secure_cookies"`
}

// parseJson overlays values from the JSON file named by -c / -config.
// Without either flag nothing is loaded. Only fields present in the file
// replace the current values. An unreadable or malformed file panics.
func parseJson(config *Config) {
	path := flagx.ConfigFilePath(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AccessTokenSecret, c.AccessTokenSecret)
	setString(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.MediaPublicURL, c.MediaPublicURL)
	setString(&config.UploadDir, c.UploadDir)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.MaxUploadBytes != 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
