// Package config reads settings shared by the CLI from Viper and the
// process environment.
package config

import (
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/agentstation/fieldmatch/internal/auth/adc"
	"github.com/agentstation/fieldmatch/pkg/errors"
)

// Keys understood by the CLI. Each can be set in the config file, as a
// FIELDMATCH_ prefixed environment variable or through a flag.
const (
	KeyLexicon         = "lexicon_file"
	KeyEmbedder        = "embedder"
	KeyModel           = "embedding_model"
	KeyProject         = "project"
	KeyLocation        = "location"
	KeyTopK            = "retrieval_top_k"
	KeyCacheTTL        = "cache_ttl"
	KeyInclude         = "include"
	KeyExclude         = "exclude"
	KeyJoinKey         = "join_key"
	KeyApproveModerate = "approve_moderate"
)

// Embedder names.
const (
	EmbedderNGram  = "ngram"
	EmbedderGemini = "gemini"
	EmbedderNone   = "none"
)

// Environment variables consulted for the Gemini API key, in order.
var APIKeyNames = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}

// Environment variables naming the Vertex AI project and location.
const (
	EnvProject  = "GOOGLE_CLOUD_PROJECT"
	EnvLocation = "GOOGLE_CLOUD_LOCATION"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	// Check OS env directly first
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return viperValue
}

// APIKey returns the first non-empty value among names.
func APIKey(names ...string) string {
	if len(names) == 0 {
		names = APIKeyNames
	}
	for _, name := range names {
		if v := GetString(name); v != "" {
			return v
		}
	}
	return ""
}

// Embedder returns the configured embedder name, defaulting to ngram.
func Embedder() (string, error) {
	name := viper.GetString(KeyEmbedder)
	switch name {
	case "":
		return EmbedderNGram, nil
	case EmbedderNGram, EmbedderGemini, EmbedderNone:
		return name, nil
	default:
		return "", errors.NewConfigError(KeyEmbedder, "unknown embedder \""+name+"\" (want ngram, gemini or none)", nil)
	}
}

// Project returns the Vertex AI project from config, GOOGLE_CLOUD_PROJECT,
// or the ambient Google credentials.
func Project() string {
	if v := viper.GetString(KeyProject); v != "" {
		return v
	}
	if v := GetString(EnvProject); v != "" {
		return v
	}
	return adc.Project()
}

// Location returns the Vertex AI location from config, GOOGLE_CLOUD_LOCATION,
// or the gcloud compute region.
func Location() string {
	if v := viper.GetString(KeyLocation); v != "" {
		return v
	}
	if v := GetString(EnvLocation); v != "" {
		return v
	}
	return adc.Location()
}

// CacheTTL returns the embedding cache lifetime. Zero disables the cache.
func CacheTTL() time.Duration {
	return viper.GetDuration(KeyCacheTTL)
}
