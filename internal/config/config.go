// Package config persists CLI settings and credentials under ~/.ghl.
// Settings live in config.yml; the API token lives in credentials.yml or,
// when requested, the system keyring. Environment variables always win over
// stored values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

const (
	configDirName   = ".ghl"
	configFileName  = "config.yml"
	credentialsFile = "credentials.yml"

	keyringService = "ghl-cli"
	keyringUser    = "api_token"

	// EnvToken overrides any stored API token.
	EnvToken = "GHL_API_TOKEN"
	// EnvLocation overrides the stored default location.
	EnvLocation = "GHL_LOCATION_ID"

	dirMode  = 0o700
	fileMode = 0o600
)

// DefaultAPIVersion is the Version header sent when none is configured.
const DefaultAPIVersion = "2021-07-28"

// Settings are the non-secret preferences stored in config.yml.
type Settings struct {
	LocationID   string `yaml:"location_id,omitempty"`
	APIVersion   string `yaml:"api_version"`
	OutputFormat string `yaml:"output_format"`
}

// DefaultSettings returns the settings used before anything is configured.
func DefaultSettings() Settings {
	return Settings{
		APIVersion:   DefaultAPIVersion,
		OutputFormat: "table",
	}
}

type credentials struct {
	APIToken string `yaml:"api_token"`
}

// Store reads and writes configuration rooted at one directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at ~/.ghl.
func NewStore() (*Store, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, fmt.Errorf("resolving home directory: %w", err)
	}

	return NewStoreAt(filepath.Join(home, configDirName)), nil
}

// NewStoreAt returns a store rooted at an explicit directory.
func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory the store reads and writes.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) configPath() string {
	return filepath.Join(s.dir, configFileName)
}

func (s *Store) credentialsPath() string {
	return filepath.Join(s.dir, credentialsFile)
}

func (s *Store) ensureDir() error {
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// MkdirAll leaves an existing directory's mode alone.
	if err := os.Chmod(s.dir, dirMode); err != nil {
		return fmt.Errorf("securing config directory: %w", err)
	}

	return nil
}

// Load reads the stored settings. A missing or unreadable file yields the
// defaults rather than an error; the CLI must work before `ghl config` has
// ever run.
func (s *Store) Load() Settings {
	settings := DefaultSettings()

	data, err := os.ReadFile(s.configPath())
	if err != nil {
		return settings
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return DefaultSettings()
	}

	if settings.APIVersion == "" {
		settings.APIVersion = DefaultAPIVersion
	}

	if settings.OutputFormat == "" {
		settings.OutputFormat = "table"
	}

	return settings
}

// Save writes settings to config.yml with owner-only permissions.
func (s *Store) Save(settings Settings) error {
	if err := s.ensureDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if err := os.WriteFile(s.configPath(), data, fileMode); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}

	return nil
}

// Token returns the API token from the first source that has one: the
// GHL_API_TOKEN environment variable, the credentials file, then the system
// keyring. Empty means no token is configured anywhere.
func (s *Store) Token() string {
	if token := os.Getenv(EnvToken); token != "" {
		return token
	}

	if data, err := os.ReadFile(s.credentialsPath()); err == nil {
		var creds credentials
		if err := yaml.Unmarshal(data, &creds); err == nil && creds.APIToken != "" {
			return creds.APIToken
		}
	}

	if token, err := keyring.Get(keyringService, keyringUser); err == nil {
		return token
	}

	return ""
}

// SetToken stores the API token, in the keyring when requested (falling back
// to the credentials file if the keyring is unavailable).
func (s *Store) SetToken(token string, useKeyring bool) error {
	if useKeyring {
		if err := keyring.Set(keyringService, keyringUser, token); err == nil {
			return nil
		}
	}

	if err := s.ensureDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(credentials{APIToken: token})
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.WriteFile(s.credentialsPath(), data, fileMode); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	return nil
}

// ClearToken removes the token from both the keyring and the credentials
// file. Absence in either place is not an error.
func (s *Store) ClearToken() error {
	// Keyring backends differ in how they report a missing entry, so any
	// delete error is ignored and file removal still proceeds.
	_ = keyring.Delete(keyringService, keyringUser)

	if err := os.Remove(s.credentialsPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing credentials: %w", err)
	}

	return nil
}

// ClearSettings removes the settings file; defaults apply afterwards.
func (s *Store) ClearSettings() error {
	if err := os.Remove(s.configPath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing settings: %w", err)
	}

	return nil
}

// LocationID returns the active location: GHL_LOCATION_ID when set,
// otherwise the stored default. Empty means no location is configured.
func (s *Store) LocationID() string {
	if location := os.Getenv(EnvLocation); location != "" {
		return location
	}

	return s.Load().LocationID
}
