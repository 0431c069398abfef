package storage

import "time"

// Config holds configuration for the storage provider.
type Config struct {
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the container holding every uploaded file.
	Bucket string `mapstructure:"bucket" default:"media"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// SignatureVersion selects request signing: "s3v4" or "s3v2".
	// Some S3-compatible providers only accept V2 signatures.
	SignatureVersion string `mapstructure:"signature_version" default:"s3v4"`
	// PathStyle forces path-style bucket lookup (http://host/bucket/key).
	PathStyle bool `mapstructure:"path_style" default:"false"`
	// DefaultACL is sent as x-amz-acl with every upload. Empty disables it.
	DefaultACL string `mapstructure:"default_acl" default:"public-read-write"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// RetryAttempts is the total number of attempts for retried operations.
	RetryAttempts int `mapstructure:"retry_attempts" default:"5"`
	// RetryDelay is the fixed pause between two attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay" default:"400ms"`
	// PageSize is the number of keys requested per listing page.
	PageSize int `mapstructure:"page_size" default:"1000"`
}

const (
	SignatureV4 = "s3v4"
	SignatureV2 = "s3v2"
)

const (
	defaultRetryAttempts = 5
	defaultRetryDelay    = 400 * time.Millisecond
	defaultPageSize      = 1000
)

// withDefaults fills zero values so a hand-built Config behaves like a loaded one.
func (c Config) withDefaults() Config {
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = defaultRetryAttempts
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.SignatureVersion == "" {
		c.SignatureVersion = SignatureV4
	}
	return c
}
