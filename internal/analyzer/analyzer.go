package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/zombar/biasanalyzer/internal/lexicon"
	"github.com/zombar/biasanalyzer/internal/models"
	"github.com/zombar/biasanalyzer/internal/nlp"
)

const (
	// minSegmentLength is the rune length below which a segment is skipped
	minSegmentLength = 20

	// dedupeMargin: two categories of one segment whose confidences are
	// closer than this are reported once, keeping the earlier category
	dedupeMargin = 0.2

	scoreEpsilon = 1e-9
)

// RewriteRequest asks a rewrite capability for a neutral version of a segment
type RewriteRequest struct {
	Text        string
	Category    models.Category
	Explanation string
}

// Rewriter generates neutral rewrites of biased segments
type Rewriter interface {
	Rewrite(ctx context.Context, req RewriteRequest) (string, error)
}

// Capabilities bundles the long-lived collaborators of an Analyzer. It is
// built once at startup and shared read-only; every field may be left nil.
type Capabilities struct {
	Lexicon   *lexicon.Store
	Annotator nlp.Annotator
	Sentiment nlp.SentimentClassifier
	Rewriter  Rewriter
	Logger    *slog.Logger
}

// Analyzer detects bias in documents. It holds no per-call state and is safe
// for concurrent use.
type Analyzer struct {
	caps     Capabilities
	lex      *lexicon.Store
	matcher  *Matcher
	features *FeatureExtractor
	scorer   *Scorer
	logger   *slog.Logger
}

// New creates an Analyzer over the built-in lexicon without external
// capabilities
func New() *Analyzer {
	a, err := NewWithCapabilities(Capabilities{})
	if err != nil {
		panic(fmt.Sprintf("analyzer: built-in lexicon is invalid: %v", err))
	}
	return a
}

// NewWithCapabilities creates an Analyzer using the given capabilities.
// An invalid lexicon is reported as an error.
func NewWithCapabilities(caps Capabilities) (*Analyzer, error) {
	if caps.Lexicon == nil {
		caps.Lexicon = lexicon.Default()
	}
	if caps.Logger == nil {
		caps.Logger = slog.Default()
	}
	if err := caps.Lexicon.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lexicon: %w", err)
	}

	matcher, err := NewMatcher(caps.Lexicon)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		caps:     caps,
		lex:      caps.Lexicon,
		matcher:  matcher,
		features: NewFeatureExtractor(caps.Lexicon, caps.Sentiment, caps.Logger),
		scorer:   NewScorer(caps.Lexicon, matcher),
		logger:   caps.Logger,
	}, nil
}

// Matcher returns the analyzer's pattern matcher
func (a *Analyzer) Matcher() *Matcher {
	return a.matcher
}

// Analyze returns the bias findings of a document ordered by position
func (a *Analyzer) Analyze(text string) []models.Finding {
	return a.AnalyzeWithContext(context.Background(), text)
}

// AnalyzeWithContext is Analyze with a context passed to the capabilities
func (a *Analyzer) AnalyzeWithContext(ctx context.Context, text string) []models.Finding {
	findings, _ := a.run(ctx, text, false)
	return findings
}

// AnalyzeDetailed is the feature-rich mode: findings additionally carry the
// linguistic markers found, rewrite suggestions and a suggested rewrite
func (a *Analyzer) AnalyzeDetailed(ctx context.Context, text string) []models.Finding {
	findings, _ := a.run(ctx, text, true)
	return findings
}

// AnalyzeDocument analyzes a document and aggregates its report
func (a *Analyzer) AnalyzeDocument(ctx context.Context, text string, detailed bool) models.TextAnalysis {
	findings, analyzed := a.run(ctx, text, detailed)
	if findings == nil {
		findings = []models.Finding{}
	}
	return models.TextAnalysis{
		Findings:         findings,
		Report:           Aggregate(findings),
		SegmentsAnalyzed: analyzed,
		Detailed:         detailed,
	}
}

// run analyzes every segment and returns the findings plus the number of
// segments long enough to be analyzed
func (a *Analyzer) run(ctx context.Context, text string, detailed bool) ([]models.Finding, int) {
	if strings.TrimSpace(text) == "" {
		return nil, 0
	}

	segments := a.segment(ctx, text)
	a.logger.Debug("segmented document", "segments", len(segments), "bytes", len(text))

	var findings []models.Finding
	analyzed := 0
	for _, in := range segments {
		if utf8.RuneCountInString(in.segment.Text) < minSegmentLength {
			continue
		}
		analyzed++
		findings = append(findings, a.analyzeSegment(ctx, in, detailed)...)
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Segment.Start != findings[j].Segment.Start {
			return findings[i].Segment.Start < findings[j].Segment.Start
		}
		return findings[i].Category < findings[j].Category
	})

	a.logger.Debug("analysis complete", "segments_analyzed", analyzed, "findings", len(findings))
	return findings, analyzed
}

// segment splits the document using the annotator when available
func (a *Analyzer) segment(ctx context.Context, text string) []segmentInput {
	if a.caps.Annotator != nil {
		sents, err := a.caps.Annotator.Annotate(ctx, text)
		if err != nil {
			a.logger.Warn("annotation capability unavailable, using punctuation splitting", "error", err)
		} else if segs, ok := annotatedSegments(text, sents); ok {
			return segs
		} else {
			a.logger.Warn("annotator returned invalid sentence spans, using punctuation splitting")
		}
	}

	plain := splitSentences(text)
	out := make([]segmentInput, len(plain))
	for i, seg := range plain {
		out[i] = segmentInput{segment: seg}
	}
	return out
}

// analyzeSegment scores one segment and builds its findings
func (a *Analyzer) analyzeSegment(ctx context.Context, in segmentInput, detailed bool) []models.Finding {
	seg := in.segment
	if a.matcher.TechnicalDefinition(seg.Text) {
		return nil
	}

	sem := a.features.Semantic(ctx, seg.Text, in.tokens)
	syn := a.features.Syntactic(in.tokens)

	scores, errs := a.scorer.Score(seg.Text, sem, syn)
	for _, err := range errs {
		a.logger.Warn("bias rule failed", "category", err.Category.String(), "start", seg.Start, "error", err.Err)
	}

	kept := dedupeScores(scores)
	if len(kept) == 0 {
		return nil
	}

	var total float64
	for _, sc := range kept {
		total += sc.Confidence
	}
	segmentScore := total / float64(len(kept))

	var markers map[string][]string
	var advice []string
	if detailed {
		markers = a.linguisticMarkers(strings.ToLower(seg.Text))
		categories := make([]models.Category, len(kept))
		for i, sc := range kept {
			categories[i] = sc.Category
		}
		advice = suggestions(categories, sem)
	}

	findings := make([]models.Finding, 0, len(kept))
	for _, sc := range kept {
		f := models.Finding{
			Segment:      seg,
			Category:     sc.Category,
			Confidence:   sc.Confidence,
			Explanation:  explain(sc, sem, syn),
			Evidence:     models.Evidence{Markers: sc.Pattern.Matches, Frames: sc.Frames},
			SegmentScore: segmentScore,
			Semantic:     sem,
			Syntactic:    syn,
		}
		if detailed {
			f.Evidence.LinguisticMarkers = markers
			f.Suggestions = advice
			f.Rewrite = a.rewrite(ctx, f)
		}
		findings = append(findings, f)
	}
	return findings
}

// dedupeScores drops categories whose confidence is within dedupeMargin of an
// already kept category; categories arrive in evaluation order
func dedupeScores(scores []CategoryScore) []CategoryScore {
	var kept []CategoryScore
	for _, sc := range scores {
		if sc.Confidence <= 0 {
			continue
		}
		similar := false
		for _, k := range kept {
			if math.Abs(k.Confidence-sc.Confidence) < dedupeMargin-scoreEpsilon {
				similar = true
				break
			}
		}
		if !similar {
			kept = append(kept, sc)
		}
	}
	return kept
}

// rewrite asks the rewrite capability for a neutral version of the segment,
// falling back to local substitutions
func (a *Analyzer) rewrite(ctx context.Context, f models.Finding) string {
	if a.caps.Rewriter != nil {
		out, err := a.caps.Rewriter.Rewrite(ctx, RewriteRequest{
			Text:        f.Segment.Text,
			Category:    f.Category,
			Explanation: f.Explanation,
		})
		if err == nil && strings.TrimSpace(out) != "" {
			return out
		}
		a.logger.Warn("rewrite capability unavailable, using local fallback",
			"category", f.Category.String(), "error", err)
	}
	return FallbackRewrite(f.Segment.Text, f.Category)
}
