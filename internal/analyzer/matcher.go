package analyzer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/zombar/biasanalyzer/internal/lexicon"
	"github.com/zombar/biasanalyzer/internal/models"
)

// Pattern calibration. These values are empirically tuned and carried over
// as-is; confidence = min(matches*weight + base, cap).
type calibration struct {
	weight float64
	base   float64
	cap    float64
}

var patternCalibration = [...]calibration{
	models.TechnologicalDeterminism: {weight: 0.40, base: 0.30, cap: 1.0},
	models.Anthropomorphism:         {weight: 0.35, base: 0.40, cap: 1.0},
	models.HypeLanguage:             {weight: 0.30, base: 0.35, cap: 1.0},
	models.FearMongering:            {weight: 0.45, base: 0.40, cap: 1.0},
	models.FalseCertainty:           {weight: 0.35, base: 0.30, cap: 1.0},
	models.LoadedLanguage:           {weight: 0.25, base: 0.30, cap: 1.0},
	models.SubjectiveTerms:          {weight: 0.20, base: 0.30, cap: 0.85},
	models.OpinionAsFact:            {weight: 0.30, base: 0.40, cap: 0.90},
	models.EmotionalLanguage:        {weight: 0.25, base: 0.30, cap: 1.0},
	models.MissingCounterpoint:      {weight: 0.20, base: 0.35, cap: 0.85},
}

var _ = [1]struct{}{}[len(patternCalibration)-int(models.NumCategories)]

const (
	// scientificContextDiscount scales down loaded, subjective and
	// opinion-as-fact matches that co-occur with research vocabulary
	scientificContextDiscount = 0.6

	// counterpointMinLength is the rune length a sentence must exceed before
	// a missing counterpoint is reported
	counterpointMinLength = 60
)

// MatchResult is the pattern matcher verdict for one category
type MatchResult struct {
	Category    models.Category
	Matches     []string
	Confidence  float64
	Whitelisted bool
	Discounted  bool
}

// pattern is a compiled lexicon pattern with Unicode-aware boundaries
type pattern struct {
	src      string
	re       *regexp.Regexp
	left     bool
	right    bool
	anchored bool
}

func compilePattern(src string) (pattern, error) {
	body, left, right := lexicon.SplitBounds(src)
	re, err := lexicon.Compile(src)
	if err != nil {
		return pattern{}, err
	}
	return pattern{
		src:      src,
		re:       re,
		left:     left,
		right:    right,
		anchored: strings.HasPrefix(body, "^"),
	}, nil
}

func compilePatterns(sources []string) ([]pattern, error) {
	out := make([]pattern, 0, len(sources))
	for _, src := range sources {
		p, err := compilePattern(src)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// findAllIndex returns the byte spans of every non-overlapping match that
// satisfies the boundaries
func (p pattern) findAllIndex(s string) [][2]int {
	var out [][2]int
	for pos := 0; pos <= len(s); {
		loc := p.re.FindStringIndex(s[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end > start && boundaryOK(s, start, end, p.left, p.right) {
			out = append(out, [2]int{start, end})
			pos = end
		} else {
			if p.anchored || start >= len(s) {
				break
			}
			_, size := utf8.DecodeRuneInString(s[start:])
			pos = start + size
		}
		if p.anchored {
			break
		}
	}
	return out
}

func (p pattern) findAll(s string) []string {
	spans := p.findAllIndex(s)
	if len(spans) == 0 {
		return nil
	}
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = s[sp[0]:sp[1]]
	}
	return out
}

// replaceAll substitutes repl for every bounded match
func (p pattern) replaceAll(s, repl string) string {
	spans := p.findAllIndex(s)
	if len(spans) == 0 {
		return s
	}
	var b strings.Builder
	prev := 0
	for _, sp := range spans {
		b.WriteString(s[prev:sp[0]])
		b.WriteString(repl)
		prev = sp[1]
	}
	b.WriteString(s[prev:])
	return b.String()
}

func (p pattern) matches(s string) bool {
	return len(p.findAll(s)) > 0
}

// Matcher applies the per-category pattern tables to single sentences
type Matcher struct {
	lex       *lexicon.Store
	rules     [models.NumCategories][]pattern
	whitelist []pattern
	technical []pattern
}

// NewMatcher compiles the lexicon's pattern sources
func NewMatcher(lex *lexicon.Store) (*Matcher, error) {
	m := &Matcher{lex: lex}
	for _, c := range models.Categories() {
		compiled, err := compilePatterns(lex.Patterns(c))
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", c, err)
		}
		m.rules[c] = compiled
	}

	var err error
	if m.whitelist, err = compilePatterns(lex.Whitelist()); err != nil {
		return nil, fmt.Errorf("whitelist: %w", err)
	}
	if m.technical, err = compilePatterns(lex.TechnicalDefinitions()); err != nil {
		return nil, fmt.Errorf("technical definitions: %w", err)
	}
	return m, nil
}

// Whitelisted reports whether the sentence contains accepted scientific phrasing
func (m *Matcher) Whitelisted(sentence string) bool {
	lower := strings.ToLower(sentence)
	for _, p := range m.whitelist {
		if p.matches(lower) {
			return true
		}
	}
	return false
}

// TechnicalDefinition reports whether the sentence opens like a plain
// technical definition ("Modelos de ...", "X é um método ...")
func (m *Matcher) TechnicalDefinition(sentence string) bool {
	for _, p := range m.technical {
		if p.matches(sentence) {
			return true
		}
	}
	return false
}

// Match runs the patterns of one category against a sentence
func (m *Matcher) Match(sentence string, c models.Category) MatchResult {
	res := MatchResult{Category: c}
	if !c.Valid() {
		return res
	}
	lower := strings.ToLower(sentence)

	if c == models.LoadedLanguage && m.Whitelisted(lower) {
		res.Whitelisted = true
		return res
	}

	seen := make(map[string]bool)
	count := 0
	for _, p := range m.rules[c] {
		for _, hit := range p.findAll(lower) {
			count++
			if !seen[hit] {
				seen[hit] = true
				res.Matches = append(res.Matches, hit)
			}
		}
	}
	if count == 0 {
		return res
	}

	if c == models.MissingCounterpoint {
		if utf8.RuneCountInString(strings.TrimSpace(sentence)) <= counterpointMinLength ||
			anyPrefixTerm(lower, m.lex.Group(lexicon.GroupCounterpointQualifiers)) {
			res.Matches = nil
			return res
		}
	}

	cal := patternCalibration[c]
	res.Confidence = min(float64(count)*cal.weight+cal.base, cal.cap)

	if m.scientificContext(c, lower) {
		res.Confidence *= scientificContextDiscount
		res.Discounted = true
	}
	return res
}

func (m *Matcher) scientificContext(c models.Category, lower string) bool {
	switch c {
	case models.LoadedLanguage:
		return anyPrefixTerm(lower, m.lex.Group(lexicon.GroupScientificContext))
	case models.SubjectiveTerms:
		return anyPrefixTerm(lower,
			m.lex.Group(lexicon.GroupScientificContext),
			m.lex.Group(lexicon.GroupScientificJustification))
	case models.OpinionAsFact:
		return anyPrefixTerm(lower,
			m.lex.Group(lexicon.GroupScientificContext),
			m.lex.Group(lexicon.GroupEvidenceTerms))
	}
	return false
}
