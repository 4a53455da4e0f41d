package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/knadh/koanf/parsers/hjson"
	"github.com/knadh/koanf/providers/cliflagv2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v2"
)

const (
	configFile = "hotspotctl.conf"
	configDir  = "hotspotctl"
)

// Config describes the configuration for the app.
type Config struct {
	path string

	Values Values
}

// NewConfig returns a new configuration.
func NewConfig() *Config {
	return &Config{}
}

// Load loads the configuration from the configuration file and the command-line flags.
func (c *Config) Load(k *koanf.Koanf, cliCtx *cli.Context) error {
	if err := c.createConfigDir(); err != nil {
		return err
	}

	return c.load(k, cliCtx)
}

// load loads the configuration file from the configuration directory, and merges
// the command-line flags, if any, into it.
func (c *Config) load(k *koanf.Koanf, cliCtx *cli.Context) error {
	cfgfile, err := c.FilePath(configFile)
	if err != nil {
		return err
	}

	if err := k.Load(file.Provider(cfgfile), hjson.Parser()); err != nil {
		return err
	}

	if cliCtx != nil {
		if err := k.Load(cliflagv2.Provider(cliCtx, "."), nil); err != nil {
			return err
		}
	}

	return c.unmarshal(k)
}

// ValidateValues validates the configuration values.
func (c *Config) ValidateValues() error {
	return c.Values.validateValues()
}

// unmarshal decodes the loaded configuration into the configuration values.
func (c *Config) unmarshal(k *koanf.Koanf) error {
	return k.UnmarshalWithConf("", &c.Values, koanf.UnmarshalConf{Tag: "koanf"})
}

// createConfigDir checks for and/or creates a configuration directory.
// The directories are checked in order, and the first existing one is used.
// If none exist, the first directory that can be created is used.
func (c *Config) createConfigDir() error {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	var candidates []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, configDir))
	}
	candidates = append(candidates,
		filepath.Join(homedir, ".config", configDir),
		filepath.Join(homedir, "."+configDir),
	)

	for _, dir := range candidates {
		if stat, err := os.Stat(filepath.Clean(dir)); err == nil && stat.IsDir() {
			c.path = dir
			return nil
		}
	}

	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0o700); err == nil {
			c.path = dir
			return nil
		}
	}

	return fmt.Errorf("the configuration directories could not be created at:\n%s", strings.Join(candidates, "\n"))
}

// FilePath returns the absolute path for the given configuration file.
// The file is created if it does not exist.
func (c *Config) FilePath(configFile string) (string, error) {
	confPath := filepath.Join(c.path, configFile)

	if _, err := os.Stat(confPath); err == nil {
		return confPath, nil
	}

	fd, err := os.OpenFile(confPath, os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return "", fmt.Errorf("cannot create %s file at %s", configFile, confPath)
	}

	return confPath, fd.Close()
}

// GenerateAndSave generates and updates the configuration.
// Any existing values are appended to it.
func (c *Config) GenerateAndSave(currentCfg *koanf.Koanf) error {
	data, err := hjson.Parser().Marshal(currentCfg.All())
	if err != nil {
		return err
	}

	conf, err := c.FilePath(configFile)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(conf, os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err = f.Write(data); err != nil {
		return err
	}

	return f.Sync()
}

// SaveAccessPoint stores the provided access point configuration into the
// configuration file, along with the other loaded values.
func (c *Config) SaveAccessPoint(currentCfg *koanf.Koanf, ap hotspot.AccessPointConfig) error {
	if err := ap.Validate(); err != nil {
		return err
	}

	for key, value := range map[string]any{
		"ssid":       ap.Name,
		"passphrase": ap.Passphrase,
		"open":       ap.IsOpen(),
		"band":       ap.Band,
	} {
		if err := currentCfg.Set(key, value); err != nil {
			return err
		}
	}

	if err := c.unmarshal(currentCfg); err != nil {
		return err
	}

	return c.GenerateAndSave(currentCfg)
}
