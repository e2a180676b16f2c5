package feed

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// CredentialsCache loads per-feed credential files (*.yml) from a directory
// and keeps them in memory for the duration of a run.
type CredentialsCache struct {
	feedsDir string
	cache    map[string]*Credentials
	mu       sync.RWMutex
}

func NewCredentialsCache(feedsDir string) *CredentialsCache {
	return &CredentialsCache{
		feedsDir: feedsDir,
		cache:    make(map[string]*Credentials),
	}
}

func (cc *CredentialsCache) Run() error {
	if _, err := os.Stat(cc.feedsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.feedsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		// Derive feed name from filename (remove .yml extension)
		feedName := strings.TrimSuffix(filepath.Base(file), ".yml")

		credentials, err := cc.LoadCredentials(feedName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Credentials loaded", "feed", feedName, "url", credentials.URL, "enabled", credentials.Settings.Enabled)
	}

	return nil
}

func (cc *CredentialsCache) LoadCredentials(feedName string) (*Credentials, error) {
	credentialsFile := filepath.Join(cc.feedsDir, feedName+".yml")

	credentials, err := cc.parseCredentials(credentialsFile)
	if err != nil {
		return nil, err
	}

	credentials.Name = feedName

	if err := cc.validateCredentials(credentials); err != nil {
		return nil, fmt.Errorf("invalid credentials %s: %w", credentialsFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[credentials.Name] = credentials

	return credentials, nil
}

func (cc *CredentialsCache) GetCredentials(feedName string) (*Credentials, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	credentials, ok := cc.cache[feedName]
	if !ok {
		return nil, fmt.Errorf("feed credentials with name '%s' not found", feedName)
	}
	return credentials, nil
}

func (cc *CredentialsCache) GetAll() map[string]*Credentials {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	credentialsCopy := make(map[string]*Credentials, len(cc.cache))
	for k, v := range cc.cache {
		credentialsCopy[k] = v
	}
	return credentialsCopy
}

func (cc *CredentialsCache) GetEnabled() map[string]*Credentials {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabled := make(map[string]*Credentials)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabled[k] = v
		}
	}
	return enabled
}

// CriteriaByURL maps feed URL to filter criteria for cache reconciliation.
func (cc *CredentialsCache) CriteriaByURL() map[string]string {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	criteria := make(map[string]string, len(cc.cache))
	for _, v := range cc.cache {
		criteria[v.URL] = v.FilterCriteria
	}
	return criteria
}

func (cc *CredentialsCache) parseCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	credentials := &Credentials{
		Settings: CredentialSettings{
			Enabled: true,
			Timeout: 30,
		},
	}

	if err := yaml.Unmarshal(data, credentials); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return credentials, nil
}

func (cc *CredentialsCache) validateCredentials(credentials *Credentials) error {
	if credentials.URL == "" {
		return fmt.Errorf("feed URL is required")
	}
	if credentials.Settings.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}
