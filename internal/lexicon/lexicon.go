// Package lexicon holds the marker word tables and pattern sources used by
// the bias analyzer. A Store is built once at startup and never mutated.
package lexicon

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/zombar/biasanalyzer/internal/models"
)

// Marker group names
const (
	GroupCertaintyHigh           = "certainty_high"
	GroupCertaintyMedium         = "certainty_medium"
	GroupCertaintyLow            = "certainty_low"
	GroupIntensifiers            = "intensifiers"
	GroupHedges                  = "hedges"
	GroupModals                  = "modals"
	GroupPositiveExtreme         = "positive_extreme"
	GroupPositiveModerate        = "positive_moderate"
	GroupNegativeExtreme         = "negative_extreme"
	GroupNegativeModerate        = "negative_moderate"
	GroupSubjectiveVerbs         = "subjective_verbs"
	GroupSubjectiveAdjectives    = "subjective_adjectives"
	GroupFormalConnectives       = "formal_connectives"
	GroupInformalMarkers         = "informal_markers"
	GroupScientificContext       = "scientific_context"
	GroupScientificJustification = "scientific_justification"
	GroupEvidenceTerms           = "evidence_terms"
	GroupCounterpointQualifiers  = "counterpoint_qualifiers"
)

// Rhetorical frame names
const (
	FrameTechnologicalDeterminism = "technological_determinism"
	FrameAnthropomorphism         = "anthropomorphism"
	FrameFearMongering            = "fear_mongering"
	FrameHypeLanguage             = "hype_language"
	FramePoliticalBias            = "political_bias"
	FrameAbsoluteLanguage         = "absolute_language"
	FrameEmotionalAppeals         = "emotional_appeals"
)

var (
	// ErrEmptyGroup is returned when a required marker group has no entries
	ErrEmptyGroup = errors.New("lexicon group is empty")
	// ErrUnknownGroup is returned when an overlay names a group that does not exist
	ErrUnknownGroup = errors.New("unknown lexicon group")
	// ErrInvalidPattern is returned when a pattern does not compile
	ErrInvalidPattern = errors.New("invalid lexicon pattern")
	// ErrInvalidPolarity is returned when a polarity value is outside [-1, 1]
	ErrInvalidPolarity = errors.New("polarity out of range")
)

// Frame is a named set of rhetorical phrases
type Frame struct {
	Name    string
	Phrases []string
}

// PolarityTerm is a domain term with a fixed polarity in [-1, 1]
type PolarityTerm struct {
	Term     string
	Polarity float64
}

// Store is the read-only lexicon. Slices returned by its methods are shared
// and must not be modified.
type Store struct {
	groups               map[string][]string
	frames               []Frame
	polarity             []PolarityTerm
	patterns             [models.NumCategories][]string
	whitelist            []string
	technicalDefinitions []string
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
)

// Default returns the built-in store
func Default() *Store {
	defaultOnce.Do(func() {
		defaultStore = newDefault()
	})
	return defaultStore
}

func newDefault() *Store {
	s := &Store{
		groups:               defaultGroups(),
		frames:               defaultFrames(),
		polarity:             defaultPolarity(),
		patterns:             defaultPatterns(),
		whitelist:            defaultWhitelist(),
		technicalDefinitions: defaultTechnicalDefinitions(),
	}
	s.normalize()
	return s
}

// Overlay is the YAML document accepted by Load. Every list is appended to
// the built-in entries of the same name.
type Overlay struct {
	Groups    map[string][]string `yaml:"groups"`
	Frames    map[string][]string `yaml:"frames"`
	Patterns  map[string][]string `yaml:"patterns"`
	Whitelist []string            `yaml:"whitelist"`
	Polarity  map[string]float64  `yaml:"polarity"`
}

// Load builds a store from the built-in tables extended by the YAML overlay
// at path. The result is validated.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon overlay: %w", err)
	}

	var overlay Overlay
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon overlay: %w", err)
	}

	s, err := WithOverlay(overlay)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// WithOverlay returns a new store made of the built-in tables plus overlay
func WithOverlay(overlay Overlay) (*Store, error) {
	s := newDefault()

	for _, name := range sortedKeys(overlay.Groups) {
		if _, ok := s.groups[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, name)
		}
		s.groups[name] = append(s.groups[name], overlay.Groups[name]...)
	}

	for _, name := range sortedKeys(overlay.Frames) {
		idx := s.frameIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("%w: frame %s", ErrUnknownGroup, name)
		}
		s.frames[idx].Phrases = append(s.frames[idx].Phrases, overlay.Frames[name]...)
	}

	for _, name := range sortedKeys(overlay.Patterns) {
		c, err := models.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("%w: patterns %s", ErrUnknownGroup, name)
		}
		s.patterns[c] = append(s.patterns[c], overlay.Patterns[name]...)
	}

	s.whitelist = append(s.whitelist, overlay.Whitelist...)

	terms := make([]string, 0, len(overlay.Polarity))
	for term := range overlay.Polarity {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for _, term := range terms {
		s.polarity = append(s.polarity, PolarityTerm{Term: term, Polarity: overlay.Polarity[term]})
	}

	s.normalize()
	return s, nil
}

// Validate reports whether the store is usable
func (s *Store) Validate() error {
	for name, words := range s.groups {
		if len(words) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyGroup, name)
		}
	}
	for _, f := range s.frames {
		if len(f.Phrases) == 0 {
			return fmt.Errorf("%w: frame %s", ErrEmptyGroup, f.Name)
		}
	}
	for _, p := range s.polarity {
		if p.Polarity < -1 || p.Polarity > 1 {
			return fmt.Errorf("%w: %s=%v", ErrInvalidPolarity, p.Term, p.Polarity)
		}
	}
	for _, c := range models.Categories() {
		if len(s.patterns[c]) == 0 {
			return fmt.Errorf("%w: patterns %s", ErrEmptyGroup, c)
		}
		if err := compileAll(s.patterns[c]); err != nil {
			return err
		}
	}
	if err := compileAll(s.whitelist); err != nil {
		return err
	}
	return compileAll(s.technicalDefinitions)
}

// Group returns the markers of a named group, or nil
func (s *Store) Group(name string) []string {
	return s.groups[name]
}

// Frames returns the rhetorical frames in their fixed order
func (s *Store) Frames() []Frame {
	return s.frames
}

// Polarity returns the domain polarity terms
func (s *Store) Polarity() []PolarityTerm {
	return s.polarity
}

// Patterns returns the pattern sources for a category
func (s *Store) Patterns(c models.Category) []string {
	if !c.Valid() {
		return nil
	}
	return s.patterns[c]
}

// Whitelist returns the pattern sources of accepted scientific phrasing
func (s *Store) Whitelist() []string {
	return s.whitelist
}

// TechnicalDefinitions returns the sentence lead-in patterns that mark a
// plain technical definition
func (s *Store) TechnicalDefinitions() []string {
	return s.technicalDefinitions
}

// SplitBounds strips the leading and trailing \b markers from a pattern
// source and reports which sides asked for a word boundary. Go's \b only
// knows ASCII letters, so boundaries are checked by the matcher instead.
func SplitBounds(src string) (body string, left, right bool) {
	body = src
	if strings.HasPrefix(body, `\b`) {
		body = body[2:]
		left = true
	}
	if strings.HasSuffix(body, `\b`) && !strings.HasSuffix(body, `\\b`) {
		body = body[:len(body)-2]
		right = true
	}
	return body, left, right
}

// Compile compiles a pattern source body case-insensitively
func Compile(src string) (*regexp.Regexp, error) {
	body, _, _ := SplitBounds(src)
	re, err := regexp.Compile("(?i)" + body)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, src, err)
	}
	return re, nil
}

func compileAll(sources []string) error {
	for _, src := range sources {
		if _, err := Compile(src); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) frameIndex(name string) int {
	for i, f := range s.frames {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// normalize lowercases word markers and removes duplicates while keeping
// first-seen order
func (s *Store) normalize() {
	for name, words := range s.groups {
		s.groups[name] = dedupe(words, true)
	}
	for i := range s.frames {
		s.frames[i].Phrases = dedupe(s.frames[i].Phrases, true)
	}
	for c := range s.patterns {
		s.patterns[c] = dedupe(s.patterns[c], false)
	}
	s.whitelist = dedupe(s.whitelist, false)

	seen := make(map[string]bool, len(s.polarity))
	polarity := s.polarity[:0]
	for _, p := range s.polarity {
		p.Term = strings.ToLower(strings.TrimSpace(p.Term))
		if p.Term == "" || seen[p.Term] {
			continue
		}
		seen[p.Term] = true
		polarity = append(polarity, p)
	}
	s.polarity = polarity
}

func dedupe(items []string, lower bool) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if lower {
			item = strings.ToLower(item)
		}
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
