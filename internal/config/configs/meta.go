package configs

import "time"

// Meta configures the Marketing API gateway. AccessToken is the system
// user token; it has no default and must be provided. The retry knobs only
// apply to the asset upload call.
type Meta struct {
	AccessToken string `env:"ACCESS_TOKEN,notEmpty"`
	APIVersion  string `env:"API_VERSION" envDefault:"v22.0"`
	BaseURL     string `env:"BASE_URL" envDefault:"https://graph.facebook.com"`

	// Timeout applies to every call except the asset upload, which uses
	// UploadTimeout.
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"30s"`
	UploadTimeout time.Duration `env:"UPLOAD_TIMEOUT" envDefault:"300s"`

	UploadAttempts  int           `env:"UPLOAD_ATTEMPTS" envDefault:"3"`
	RetryBackoff    time.Duration `env:"RETRY_BACKOFF" envDefault:"2s"`
	RetryBackoffCap time.Duration `env:"RETRY_BACKOFF_CAP" envDefault:"10s"`
}
