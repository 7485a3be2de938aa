package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FileConfig is the optional TOML configuration file. Every field maps onto one of the
// environment variables read by the getters; values already present in the environment win.
type FileConfig struct {
	Server struct {
		Port     string `toml:"port"`
		AppName  string `toml:"app_name"`
		Env      string `toml:"env"`
		LogLevel string `toml:"log_level"`
	} `toml:"server"`
	Database struct {
		URL string `toml:"url"`
	} `toml:"database"`
	OAuth struct {
		ClientID     string `toml:"client_id"`
		ClientSecret string `toml:"client_secret"`
		Redirect     string `toml:"redirect"`
		Issuer       string `toml:"issuer"`
	} `toml:"oauth"`
	Cors struct {
		AllowedOrigins []string `toml:"allowed_origins"`
	} `toml:"cors"`
}

// LoadEnvFile loads a .env file without overriding variables that are already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("[config LoadEnvFile] %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a TOML file and exports its values as environment variables that are
// not already set.
func LoadFile(path string) error {
	if path == "" {
		return nil
	}
	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("[config LoadFile] %s: %w", path, err)
	}
	return fc.apply()
}

func (fc FileConfig) apply() error {
	values := map[string]string{
		portEnvVar:      fc.Server.Port,
		appNameVar:      fc.Server.AppName,
		"ENV":           fc.Server.Env,
		logLevelVar:     fc.Server.LogLevel,
		databaseURLVar:  fc.Database.URL,
		clientIDVar:     fc.OAuth.ClientID,
		clientSecretVar: fc.OAuth.ClientSecret,
		redirectVar:     fc.OAuth.Redirect,
		issuerVar:       fc.OAuth.Issuer,
		corsOriginsVar:  strings.Join(fc.Cors.AllowedOrigins, ","),
	}
	for key, value := range values {
		if value == "" {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("[config apply] %s: %w", key, err)
		}
	}
	return nil
}
