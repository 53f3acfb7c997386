package config

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"min=1,max=65535"`

	// Token-bucket rate limit applied to the upload endpoints
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps" validate:"min=0"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" validate:"min=0"`

	// Allowed CORS origins; "*" allows everything
	CORSOrigins []string `mapstructure:"cors_origins"`
}
