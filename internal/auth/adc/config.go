package adc

import (
	"os"
	"path/filepath"
	"strings"
)

// Project resolves the Vertex AI project from ambient Google credentials:
// the ADC file first, then the active gcloud configuration.
// Returns empty string when neither names one.
func Project() string {
	if path := FindFile(); path != "" {
		if file, err := ParseFile(path); err == nil && file.Project() != "" {
			return file.Project()
		}
	}
	return ReadConfig("core", "project")
}

// Location resolves the Vertex AI location from the gcloud compute region.
func Location() string {
	return ReadConfig("compute", "region")
}

// ReadConfig reads key from section of the active gcloud configuration.
// Returns empty string if the configuration or key doesn't exist.
func ReadConfig(section, key string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	dir := filepath.Join(home, ".config", "gcloud")
	data, err := os.ReadFile(filepath.Join(dir, "configurations", "config_"+activeConfig(dir))) // #nosec G304 -- Reading well-known gcloud config file
	if err != nil {
		return ""
	}
	return parseINIValue(string(data), section, key)
}

// activeConfig returns the active gcloud configuration name, or "default".
func activeConfig(dir string) string {
	data, err := os.ReadFile(filepath.Join(dir, "active_config")) // #nosec G304 -- Reading well-known gcloud config file
	if err != nil {
		return "default"
	}
	if name := strings.TrimSpace(string(data)); name != "" {
		return name
	}
	return "default"
}

// parseINIValue extracts "key = value" from the named section.
func parseINIValue(content, section, key string) string {
	var current string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.Trim(line, "[]")
			continue
		}
		if current != section {
			continue
		}

		name, value, found := strings.Cut(line, "=")
		if found && strings.TrimSpace(name) == key {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
