package config

// StoreConfiguration is the data structure for marshaling the
// revision store configuration.
type StoreConfiguration struct {
	// Path of the bolt database file. Revisions are not recorded when empty.
	Path string `mapstructure:"path"`
}
