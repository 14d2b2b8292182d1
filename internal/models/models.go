package models

import "time"

// Segment is a contiguous span of a document. Start and End are character
// (code point) offsets, End exclusive, so that
// string([]rune(doc)[Start:End]) == Text. ByteStart and ByteEnd locate the
// same span in the UTF-8 bytes: doc[ByteStart:ByteEnd] == Text.
type Segment struct {
	Text      string `json:"text"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	ByteStart int    `json:"byte_start"`
	ByteEnd   int    `json:"byte_end"`
}

// SemanticFeatures holds lexical and sentiment measurements for a segment
type SemanticFeatures struct {
	SentimentPolarity   float64 `json:"sentiment_polarity"`   // -1.0 to 1.0
	SentimentConfidence float64 `json:"sentiment_confidence"` // 0.0 to 1.0
	Subjectivity        float64 `json:"subjectivity"`
	EmotionalIntensity  float64 `json:"emotional_intensity"`
	Certainty           float64 `json:"certainty"`
	Formality           float64 `json:"formality"` // 0.5 is neutral
}

// SyntacticFeatures holds parse-derived measurements for a segment.
// Annotated is false when no syntactic annotation was available, in which
// case every ratio is zero.
type SyntacticFeatures struct {
	DependencyComplexity float64 `json:"dependency_complexity"` // mean governor-chain depth
	POSDiversity         float64 `json:"pos_diversity"`
	ModalRatio           float64 `json:"modal_ratio"`
	PassiveRatio         float64 `json:"passive_ratio"`
	HedgeRatio           float64 `json:"hedge_ratio"`
	IntensifierRatio     float64 `json:"intensifier_ratio"`
	Annotated            bool    `json:"annotated"`
}

// Evidence lists what triggered a finding
type Evidence struct {
	Markers           []string            `json:"markers,omitempty"`            // literal pattern matches
	Frames            []string            `json:"frames,omitempty"`             // rhetorical frame phrases, "frame: phrase"
	LinguisticMarkers map[string][]string `json:"linguistic_markers,omitempty"` // detailed mode only
}

// Finding is one bias category flagged on one segment
type Finding struct {
	Segment      Segment           `json:"segment"`
	Category     Category          `json:"category"`
	Confidence   float64           `json:"confidence"`
	Explanation  string            `json:"explanation"`
	Evidence     Evidence          `json:"evidence"`
	SegmentScore float64           `json:"segment_score"`
	Semantic     SemanticFeatures  `json:"semantic_features"`
	Syntactic    SyntacticFeatures `json:"syntactic_features"`

	// Populated in detailed mode
	Suggestions []string `json:"suggestions,omitempty"`
	Rewrite     string   `json:"rewrite,omitempty"`
}

// Report status values
const (
	StatusBiasDetected   = "bias_detected"
	StatusNoBiasDetected = "no_bias_detected"
)

// Report summarizes the findings of one document
type Report struct {
	Status               string            `json:"status"`
	Summary              string            `json:"summary"`
	TotalSegmentsFlagged int               `json:"total_segments_flagged"`
	TotalFindings        int               `json:"total_findings"`
	AverageConfidence    float64           `json:"average_confidence"`
	MostCommonCategory   *Category         `json:"most_common_category,omitempty"`
	CategoryCounts       map[Category]int  `json:"category_counts"`
	SemanticProfile      *SemanticProfile  `json:"semantic_profile,omitempty"`
	SyntacticProfile     *SyntacticProfile `json:"syntactic_profile,omitempty"`
	TopFindings          []FindingSummary  `json:"top_findings,omitempty"`
	Recommendations      []string          `json:"recommendations"`
}

// SemanticProfile averages semantic features over flagged segments
type SemanticProfile struct {
	AvgSentimentPolarity  float64 `json:"avg_sentiment_polarity"`
	AvgSubjectivity       float64 `json:"avg_subjectivity"`
	AvgEmotionalIntensity float64 `json:"avg_emotional_intensity"`
	AvgCertainty          float64 `json:"avg_certainty"`
	AvgFormality          float64 `json:"avg_formality"`
}

// SyntacticProfile averages syntactic features over flagged segments
type SyntacticProfile struct {
	AvgDependencyComplexity float64 `json:"avg_dependency_complexity"`
	AvgPOSDiversity         float64 `json:"avg_pos_diversity"`
	AvgModalRatio           float64 `json:"avg_modal_ratio"`
	AvgPassiveRatio         float64 `json:"avg_passive_ratio"`
	AvgHedgeRatio           float64 `json:"avg_hedge_ratio"`
}

// FindingSummary is a shortened exemplar finding used in reports
type FindingSummary struct {
	Text        string   `json:"text"`
	Category    Category `json:"category"`
	Confidence  float64  `json:"confidence"`
	Start       int      `json:"start"`
	Explanation string   `json:"explanation"`
}

// Article is an encyclopedia article fetched for analysis
type Article struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	URL       string    `json:"url"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ArticleAnalysis is the full result of analyzing one article
type ArticleAnalysis struct {
	Article          Article   `json:"article"`
	Findings         []Finding `json:"findings"`
	Report           Report    `json:"report"`
	Summary          string    `json:"summary"`
	SegmentsAnalyzed int       `json:"segments_analyzed"`
	Detailed         bool      `json:"detailed"`
}

// TextAnalysis is the result of analyzing free text
type TextAnalysis struct {
	Findings         []Finding `json:"findings"`
	Report           Report    `json:"report"`
	SegmentsAnalyzed int       `json:"segments_analyzed"`
	Detailed         bool      `json:"detailed"`
}

// ArticleSummary is a cached article without its content
type ArticleSummary struct {
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	ContentLength int       `json:"content_length"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// Analysis sources, used as metric labels
const (
	SourceText    = "text"
	SourceArticle = "article"
)
