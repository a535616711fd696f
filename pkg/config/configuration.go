// Package config loads the toolset configuration file using the viper
// configuration framework.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dccn-tg/viewer-toolset/pkg/logger"
	"github.com/dccn-tg/viewer-toolset/pkg/viewer"
	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding the
// configuration file, e.g. VIEWERCFG_SERVER_LISTEN.
const EnvPrefix = "VIEWERCFG"

// Configuration is the data structure for marshaling the
// config.yml file using the viper configuration framework.
type Configuration struct {
	// Viewer is the inline viewer configuration.
	Viewer viewer.Config `mapstructure:"viewer"`
	// ViewerFile is the path of an app-config.js or JSON file with the viewer
	// configuration. It takes precedence over Viewer. A relative path is
	// resolved against the directory of the configuration file.
	ViewerFile string                          `mapstructure:"viewer_file"`
	Logging    logger.Configuration            `mapstructure:"logging"`
	Server     ServerConfiguration             `mapstructure:"server"`
	Store      StoreConfiguration              `mapstructure:"store"`
	Archives   map[string]ArchiveConfiguration `mapstructure:"archives"`
	// SecretKey decrypts `enc:` secrets in Archives. It is usually given
	// via VIEWERCFG_SECRET_KEY rather than in the file.
	SecretKey string `mapstructure:"secret_key"`
}

// ViewerConfig returns the validated viewer configuration.
func (c Configuration) ViewerConfig() (viewer.Config, error) {
	if err := c.Viewer.Validate(); err != nil {
		return viewer.Config{}, err
	}
	return c.Viewer, nil
}

// Archive returns the credentials of the data source `sourceName`.
func (c Configuration) Archive(sourceName string) (ArchiveConfiguration, bool) {
	// viper lower-cases map keys
	a, ok := c.Archives[strings.ToLower(sourceName)]
	return a, ok
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("secret_key", "")
	v.SetDefault("viewer_file", "")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.console_level", logger.Info)
	v.SetDefault("logging.file_level", logger.Info)
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.cache_max_age", "60s")
	v.SetDefault("store.path", "")

	return v
}

// LoadConfig reads configuration from the file `path`.
func LoadConfig(path string) (Configuration, error) {
	v, cfgPath, err := open(path)
	if err != nil {
		return Configuration{}, err
	}
	return decode(v, cfgPath)
}

// Watch loads the configuration file `path` and calls `onChange` each time
// the file is modified. `onChange` receives the decoding error, if any,
// together with the new configuration.
func Watch(path string, onChange func(Configuration, error)) (Configuration, error) {
	v, cfgPath, err := open(path)
	if err != nil {
		return Configuration{}, err
	}

	conf, err := decode(v, cfgPath)
	if err != nil {
		return conf, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Debugf("config file changed: %s (%s)", e.Name, e.Op)
		onChange(decode(v, cfgPath))
	})
	v.WatchConfig()

	return conf, nil
}

func open(path string) (*viper.Viper, string, error) {
	cfgPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", errors.Wrapf(err, "cannot resolve config path: %s", path)
	}

	if _, err := os.Stat(cfgPath); err != nil {
		return nil, "", errors.Wrapf(err, "cannot load config: %s", cfgPath)
	}

	v := newViper(cfgPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, "", errors.Wrap(err, "error reading config file")
	}
	return v, cfgPath, nil
}

func decode(v *viper.Viper, cfgPath string) (Configuration, error) {
	var conf Configuration
	// unknown keys are rejected, as viewer.Decode does for viewer_file
	if err := v.Unmarshal(&conf, func(dc *mapstructure.DecoderConfig) {
		dc.ErrorUnused = true
	}); err != nil {
		return Configuration{}, errors.Wrap(err, "unable to decode into struct")
	}

	if conf.ViewerFile != "" {
		p := conf.ViewerFile
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(cfgPath), p)
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return Configuration{}, errors.Wrapf(err, "cannot read viewer file: %s", p)
		}

		vc, err := viewer.Decode(data)
		if err != nil {
			return Configuration{}, errors.Wrapf(err, "invalid viewer file: %s", p)
		}
		conf.Viewer = vc
	}

	conf.Viewer = conf.Viewer.Normalize()

	return conf, nil
}
