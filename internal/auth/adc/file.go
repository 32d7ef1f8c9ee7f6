// Package adc reads Google Application Default Credentials and the gcloud
// configuration so the Gemini embedder can run against Vertex AI without
// explicit project settings.
package adc

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/agentstation/fieldmatch/pkg/errors"
)

const (
	// TypeAuthorizedUser represents user credentials from gcloud auth.
	TypeAuthorizedUser = "authorized_user"
	// TypeServiceAccount represents service account credentials.
	TypeServiceAccount = "service_account"

	// EnvCredentials names the explicit ADC file location.
	EnvCredentials = "GOOGLE_APPLICATION_CREDENTIALS"
)

// File represents an Application Default Credentials JSON file.
type File struct {
	Type           string `json:"type"`
	QuotaProjectID string `json:"quota_project_id"`
	ProjectID      string `json:"project_id"`
}

// Project returns the project recorded in the credentials, preferring the
// quota project.
func (f *File) Project() string {
	if f.QuotaProjectID != "" {
		return f.QuotaProjectID
	}
	return f.ProjectID
}

// FindFile locates the ADC file using Google's standard search order.
// Returns empty string if not found.
//
// Search order:
//  1. GOOGLE_APPLICATION_CREDENTIALS environment variable
//  2. ~/.config/gcloud/application_default_credentials.json
func FindFile() string {
	if path := os.Getenv(EnvCredentials); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	defaultPath := filepath.Join(home, ".config", "gcloud", "application_default_credentials.json")
	if _, err := os.Stat(defaultPath); err == nil {
		return defaultPath
	}
	return ""
}

// ParseFile reads and validates an ADC JSON file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- Reading well-known ADC credential file
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}

	switch file.Type {
	case TypeAuthorizedUser, TypeServiceAccount:
		return &file, nil
	case "":
		return nil, errors.NewParseError("json", path, "missing 'type' field", nil)
	default:
		return nil, errors.NewParseError("json", path, "unknown credential type "+file.Type, nil)
	}
}
