// Package matcher selects field names with glob or regex patterns. It backs
// the include and exclude filters applied to field sets before matching.
package matcher

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// PatternType is the pattern syntax.
type PatternType int

const (
	// Glob uses shell-style patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses RE2 regular expressions.
	Regex
	// Auto picks Regex when the pattern contains regex-only syntax.
	Auto
)

// Matcher tests field names against one pattern.
type Matcher interface {
	Match(name string) bool
	MatchAll(names ...string) []string
	Pattern() string
	Type() PatternType
}

type matcher struct {
	pattern         string
	patternType     PatternType
	compiled        *regexp.Regexp
	globPattern     string
	caseInsensitive bool
}

// Options configures matching.
type Options struct {
	// CaseInsensitive ignores case on both sides.
	CaseInsensitive bool
	// Anchored wraps regex patterns in ^...$ so they must match the whole name.
	Anchored bool
}

// DefaultOptions matches case-insensitively against whole names, which is
// what field filters want.
func DefaultOptions() *Options {
	return &Options{CaseInsensitive: true, Anchored: true}
}

// New compiles pattern.
func New(patternType PatternType, pattern string, opts ...*Options) (Matcher, error) {
	options := DefaultOptions()
	if len(opts) > 0 && opts[0] != nil {
		options = opts[0]
	}

	m := &matcher{pattern: pattern, patternType: patternType}
	if patternType == Auto {
		m.patternType = detectPatternType(pattern)
	}

	if err := m.compile(options); err != nil {
		return nil, fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
	}
	return m, nil
}

// MustNew is New for patterns known at compile time.
func MustNew(patternType PatternType, pattern string, opts ...*Options) Matcher {
	m, err := New(patternType, pattern, opts...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *matcher) compile(opts *Options) error {
	m.caseInsensitive = opts.CaseInsensitive

	switch m.patternType {
	case Glob:
		m.globPattern = m.pattern
		if opts.CaseInsensitive {
			m.globPattern = strings.ToLower(m.globPattern)
		}
		if _, err := path.Match(m.globPattern, ""); err != nil {
			return fmt.Errorf("invalid glob pattern: %w", err)
		}
	case Regex:
		pattern := m.pattern
		if opts.Anchored {
			if !strings.HasPrefix(pattern, "^") {
				pattern = "^(?:" + pattern
			} else {
				pattern = "^(?:" + pattern[1:]
			}
			pattern = strings.TrimSuffix(pattern, "$") + ")$"
		}
		if opts.CaseInsensitive {
			pattern = "(?i)" + pattern
		}
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid regex pattern: %w", err)
		}
		m.compiled = compiled
	default:
		return fmt.Errorf("unsupported pattern type: %v", m.patternType)
	}
	return nil
}

// Match reports whether name matches the pattern.
func (m *matcher) Match(name string) bool {
	switch m.patternType {
	case Glob:
		if m.caseInsensitive {
			name = strings.ToLower(name)
		}
		matched, _ := path.Match(m.globPattern, name)
		return matched
	case Regex:
		return m.compiled.MatchString(name)
	default:
		return false
	}
}

// MatchAll returns the matching names in input order.
func (m *matcher) MatchAll(names ...string) []string {
	results := make([]string, 0)
	for _, name := range names {
		if m.Match(name) {
			results = append(results, name)
		}
	}
	return results
}

func (m *matcher) Pattern() string {
	return m.pattern
}

func (m *matcher) Type() PatternType {
	return m.patternType
}

func detectPatternType(pattern string) PatternType {
	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "\\D", "\\W", "\\S",
		"(?:", "(?i)", "{", "}", "+", "|", "(", ")", ".*",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// String implements fmt.Stringer.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// MultiMatcher matches when any of its patterns does.
type MultiMatcher struct {
	matchers []Matcher
}

// NewMultiMatcher compiles every pattern with the same type and options.
func NewMultiMatcher(patterns []string, patternType PatternType, opts ...*Options) (*MultiMatcher, error) {
	mm := &MultiMatcher{matchers: make([]Matcher, 0, len(patterns))}
	for _, pattern := range patterns {
		m, err := New(patternType, pattern, opts...)
		if err != nil {
			return nil, err
		}
		mm.matchers = append(mm.matchers, m)
	}
	return mm, nil
}

// Match reports whether any pattern matches name.
func (mm *MultiMatcher) Match(name string) bool {
	for _, m := range mm.matchers {
		if m.Match(name) {
			return true
		}
	}
	return false
}

// Len returns the number of patterns.
func (mm *MultiMatcher) Len() int {
	return len(mm.matchers)
}

// Filter keeps names matching any include pattern (all names when there are
// none) and drops names matching any exclude pattern.
type Filter struct {
	include *MultiMatcher
	exclude *MultiMatcher
}

// NewFilter compiles include and exclude patterns with Auto detection.
func NewFilter(include, exclude []string) (*Filter, error) {
	inc, err := NewMultiMatcher(include, Auto)
	if err != nil {
		return nil, fmt.Errorf("include: %w", err)
	}
	exc, err := NewMultiMatcher(exclude, Auto)
	if err != nil {
		return nil, fmt.Errorf("exclude: %w", err)
	}
	return &Filter{include: inc, exclude: exc}, nil
}

// Allow reports whether name passes the filter. A nil filter allows everything.
func (f *Filter) Allow(name string) bool {
	if f == nil {
		return true
	}
	if f.include.Len() > 0 && !f.include.Match(name) {
		return false
	}
	return !f.exclude.Match(name)
}

// Empty reports whether the filter has no patterns.
func (f *Filter) Empty() bool {
	return f == nil || (f.include.Len() == 0 && f.exclude.Len() == 0)
}
