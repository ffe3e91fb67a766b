package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Issuer string `env:"MEMBERHUB_ISSUER" envDefault:"memberhub"`

	// TokenAlgorithm selects the JWT codec: HS256 (shared secret) or EdDSA
	// (Ed25519 key file). HS256 is the default for single-instance deploys.
	TokenAlgorithm string `env:"MEMBERHUB_TOKEN_ALG" envDefault:"HS256"`

	// TokenSecret is the HS256 secret (min 32 bytes). Empty means an
	// ephemeral secret is generated at startup and all tokens die with the
	// process.
	TokenSecret string `env:"MEMBERHUB_TOKEN_SECRET"`

	// TokenKeyFile is a PKCS8 PEM Ed25519 private key, used when
	// TokenAlgorithm is EdDSA. Empty means an ephemeral key.
	TokenKeyFile string `env:"MEMBERHUB_TOKEN_KEY_FILE"`

	DatabaseFile string `env:"MEMBERHUB_DATABASE_FILE" envDefault:"memberhub.db"`

	BlobDir string `env:"MEMBERHUB_BLOB_DIR" envDefault:"blobs"`

	// BlobSignKey signs download links (min 32 bytes). Empty means an
	// ephemeral key; outstanding links die on restart.
	BlobSignKey string `env:"MEMBERHUB_BLOB_SIGN_KEY"`

	MaxUploadBytes int64 `env:"MEMBERHUB_MAX_UPLOAD_BYTES" envDefault:"10485760"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Port      int    `env:"PORT" envDefault:"8080"`

	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
