// Package constants provides shared constants used throughout the fieldmatch codebase.
// This includes scoring weights, classification thresholds, timeouts, and file
// permissions that must stay consistent between the engine, the CLI and tests.
package constants

import "time"

// Scoring weights for a heuristic (non-synonym) comparison.
const (
	// FieldNameWeight is the weight of field-name similarity.
	FieldNameWeight = 0.5

	// TypeWeight is the weight of type-compatibility similarity.
	TypeWeight = 0.3

	// SampleWeight is the weight of sample-value similarity.
	SampleWeight = 0.2
)

// Scoring weights for a synonym comparison. Sample similarity is not used.
const (
	// SynonymFieldWeight is the weight of the (always 1.0) field similarity of synonyms.
	SynonymFieldWeight = 0.9

	// SynonymTypeWeight is the weight of type similarity of synonyms.
	SynonymTypeWeight = 0.1
)

// Rule-based boost applied to confident name matches with identical types.
const (
	// BoostFieldThreshold is the minimum field similarity that qualifies for the boost.
	BoostFieldThreshold = 0.85

	// BoostAmount is added to the combined score. The result is not clamped.
	BoostAmount = 0.1
)

// Classification thresholds.
const (
	// NoMatchThreshold is the score below which a target field has no match.
	NoMatchThreshold = 0.7

	// StrongMatchThreshold is the score at or above which a match is strong.
	StrongMatchThreshold = 0.85

	// ModerateMatchThreshold is the score at or above which a match is moderate.
	ModerateMatchThreshold = 0.7
)

// Type similarity levels.
const (
	// TypeIdentical is the similarity of two identical type classes.
	TypeIdentical = 1.0

	// TypeSameBucket is the similarity of two classes in the same bucket.
	TypeSameBucket = 0.8

	// TypeUnrelated is the similarity of unrelated classes.
	TypeUnrelated = 0.0
)

// Labels used in results and reports.
const (
	// NoMatch marks an absent counterpart field.
	NoMatch = "No Match"

	// NotApplicable marks an absent score.
	NotApplicable = "n/a"
)

// Retrieval and embedding defaults
const (
	// DefaultTopK is the number of candidates a retriever returns per target field
	DefaultTopK = 3

	// DefaultEmbeddingModel is the Gemini embedding model used when none is configured
	DefaultEmbeddingModel = "text-embedding-004"

	// DefaultNGramSize is the character n-gram length of the local embedder
	DefaultNGramSize = 3

	// DefaultNGramDimensions is the vector width of the local embedder
	DefaultNGramDimensions = 512

	// DefaultJoinKey is the field used to pair records when merging
	DefaultJoinKey = "email"
)

// Timeout constants define various timeout durations used in the application
const (
	// DefaultTimeout is the standard timeout for a single collaborator call
	DefaultTimeout = 10 * time.Second
)

// Cache constants
const (
	// CacheTTL is the default time-to-live for cached embeddings
	CacheTTL = 15 * time.Minute

	// CacheCleanupInterval is how often to clean expired cache entries
	CacheCleanupInterval = 5 * time.Minute
)

// File permission constants
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)
