package config

import (
	ustr "github.com/dccn-tg/viewer-toolset/pkg/strings"
)

// ArchiveConfiguration is the data structure for marshaling the
// credentials used to probe the DICOM-web archive of a data source.
//
// Either Username/Password (HTTP basic auth) or the OAuth2
// client-credentials triplet AuthURL/ClientID/ClientSecret is used.
type ArchiveConfiguration struct {
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	AuthURL      string   `mapstructure:"auth_url"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	Scopes       []string `mapstructure:"scopes"`
}

// Decrypt returns a copy of the configuration in which `enc:` secrets are
// replaced by their plain text.
func (a ArchiveConfiguration) Decrypt(key string) (ArchiveConfiguration, error) {
	var err error
	if a.Password, err = ustr.DecodeSecret(a.Password, []byte(key)); err != nil {
		return a, err
	}
	if a.ClientSecret, err = ustr.DecodeSecret(a.ClientSecret, []byte(key)); err != nil {
		return a, err
	}
	return a, nil
}
