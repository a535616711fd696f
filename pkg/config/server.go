package config

import "time"

// ServerConfiguration is the data structure for marshaling the
// HTTP server configuration sessions of the config.yml file.
type ServerConfiguration struct {
	// Listen is the network address the server binds to.
	Listen string `mapstructure:"listen"`
	// PublicURL is the URL under which the viewer is published. Its origin
	// decides whether `same-origin` credentials are sent by the probe.
	PublicURL string `mapstructure:"public_url"`
	// CacheMaxAge is the max-age of the Cache-Control response header.
	CacheMaxAge time.Duration `mapstructure:"cache_max_age"`
}
