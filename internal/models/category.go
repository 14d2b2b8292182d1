package models

import "fmt"

// Category identifies one kind of textual bias. Declaration order is the
// evaluation order of the detector and the tie-break order of reports.
type Category int

const (
	TechnologicalDeterminism Category = iota
	Anthropomorphism
	HypeLanguage
	FearMongering
	FalseCertainty
	LoadedLanguage
	SubjectiveTerms
	OpinionAsFact
	EmotionalLanguage
	MissingCounterpoint

	// NumCategories is the number of defined categories.
	NumCategories
)

var categoryNames = [...]string{
	TechnologicalDeterminism: "technological_determinism",
	Anthropomorphism:         "anthropomorphism",
	HypeLanguage:             "hype_language",
	FearMongering:            "fear_mongering",
	FalseCertainty:           "false_certainty",
	LoadedLanguage:           "loaded_language",
	SubjectiveTerms:          "subjective_terms",
	OpinionAsFact:            "opinion_as_fact",
	EmotionalLanguage:        "emotional_language",
	MissingCounterpoint:      "missing_counterpoint",
}

// Adding a category without a name fails to compile here.
var _ = [1]struct{}{}[len(categoryNames)-int(NumCategories)]

// Categories returns every category in evaluation order.
func Categories() []Category {
	out := make([]Category, NumCategories)
	for i := range out {
		out[i] = Category(i)
	}
	return out
}

// Valid reports whether c is a defined category.
func (c Category) Valid() bool {
	return c >= 0 && c < NumCategories
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory returns the category with the given wire name.
func ParseCategory(name string) (Category, error) {
	for i, n := range categoryNames {
		if n == name {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown bias category %q", name)
}

// MarshalText implements encoding.TextMarshaler so categories serialize by
// name, including as JSON map keys.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid bias category %d", int(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
