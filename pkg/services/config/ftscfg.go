package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

const (
	DefaultBaseURL = "https://api.hpc.tools/v1/public/"
	DefaultProfile = "DEFAULT"
	ProfileFile    = ".ftscfg"
)

// Source holds the connection details of one FTS API profile.
type Source struct {
	BaseURL  string
	ClientID string
	Password string
}

type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetSource(ctx context.Context, profile string) (*Source, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

// DefaultProfilePath returns ~/.ftscfg.
func DefaultProfilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ProfileFile), nil
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

// NewEmptyRegistry serves only the default profile with the public API.
func NewEmptyRegistry() Registry {
	return &cfgRegistry{cfg: ini.Empty()}
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetSource(_ context.Context, profile string) (*Source, error) {
	if profile == "" {
		profile = DefaultProfile
	}
	section, err := cr.cfg.GetSection(profile)
	if err != nil {
		if profile != DefaultProfile {
			return nil, fmt.Errorf("profile %s not found", profile)
		}
		section = cr.cfg.Section(profile)
	}

	return &Source{
		BaseURL:  section.Key("base_url").MustString(DefaultBaseURL),
		ClientID: section.Key("client_id").String(),
		Password: section.Key("password").String(),
	}, nil
}
