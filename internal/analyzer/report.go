package analyzer

import (
	"fmt"
	"sort"

	"github.com/zombar/biasanalyzer/internal/models"
)

const (
	topFindingsLimit = 5
	exemplarMaxRunes = 100

	// Recommendation triggers: feature threshold and the share of flagged
	// segments that must exceed it
	highCertaintyLevel = 0.7
	highCertaintyShare = 0.3
	highEmotionLevel   = 0.6
	highEmotionShare   = 0.2
	lowFormalityLevel  = 0.3
	lowFormalityShare  = 0.4
)

// Recommendation texts
const (
	RecommendReduceCertainty = "Reduce excessive categorical claims by adding qualifiers and references to sources."
	RecommendReduceEmotion   = "Replace emotionally charged language with more technical and neutral terms."
	RecommendRaiseFormality  = "Raise the formal register of the text to improve its academic credibility."
	RecommendPerspectives    = "Consider including alternative perspectives and the limitations of the technologies discussed."
)

// NoBiasSummary is the summary of a report without findings
const NoBiasSummary = "No significant bias detected"

// NoBiasReport returns the fixed report for documents without findings
func NoBiasReport() models.Report {
	return models.Report{
		Status:          models.StatusNoBiasDetected,
		Summary:         NoBiasSummary,
		CategoryCounts:  map[models.Category]int{},
		Recommendations: []string{},
	}
}

// Aggregate reduces findings into document-level statistics. It never fails;
// an empty input yields NoBiasReport.
func Aggregate(findings []models.Finding) models.Report {
	if len(findings) == 0 {
		return NoBiasReport()
	}

	report := models.Report{
		Status:         models.StatusBiasDetected,
		TotalFindings:  len(findings),
		CategoryCounts: make(map[models.Category]int),
	}

	var confidenceSum float64
	for _, f := range findings {
		report.CategoryCounts[f.Category]++
		confidenceSum += f.Confidence
	}
	report.AverageConfidence = confidenceSum / float64(len(findings))

	best := models.Category(-1)
	for _, c := range models.Categories() {
		if n := report.CategoryCounts[c]; n > 0 && (best < 0 || n > report.CategoryCounts[best]) {
			best = c
		}
	}
	if best >= 0 {
		report.MostCommonCategory = &best
	}

	segments := flaggedSegments(findings)
	report.TotalSegmentsFlagged = len(segments)
	report.SemanticProfile, report.SyntacticProfile = profiles(segments)
	report.Recommendations = recommendations(segments)
	report.TopFindings = topFindings(findings, topFindingsLimit)
	report.Summary = fmt.Sprintf("%d findings across %d segments; most common bias: %s (mean confidence %.2f)",
		report.TotalFindings, report.TotalSegmentsFlagged, best, report.AverageConfidence)

	return report
}

// flaggedSegments returns one finding per distinct segment span, in order of
// first appearance
func flaggedSegments(findings []models.Finding) []models.Finding {
	type span struct{ start, end int }
	seen := make(map[span]bool)
	var out []models.Finding
	for _, f := range findings {
		key := span{f.Segment.Start, f.Segment.End}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

func profiles(segments []models.Finding) (*models.SemanticProfile, *models.SyntacticProfile) {
	sem := &models.SemanticProfile{}
	syn := &models.SyntacticProfile{}
	n := float64(len(segments))
	if n == 0 {
		return sem, syn
	}

	for _, f := range segments {
		sem.AvgSentimentPolarity += f.Semantic.SentimentPolarity
		sem.AvgSubjectivity += f.Semantic.Subjectivity
		sem.AvgEmotionalIntensity += f.Semantic.EmotionalIntensity
		sem.AvgCertainty += f.Semantic.Certainty
		sem.AvgFormality += f.Semantic.Formality

		syn.AvgDependencyComplexity += f.Syntactic.DependencyComplexity
		syn.AvgPOSDiversity += f.Syntactic.POSDiversity
		syn.AvgModalRatio += f.Syntactic.ModalRatio
		syn.AvgPassiveRatio += f.Syntactic.PassiveRatio
		syn.AvgHedgeRatio += f.Syntactic.HedgeRatio
	}

	sem.AvgSentimentPolarity /= n
	sem.AvgSubjectivity /= n
	sem.AvgEmotionalIntensity /= n
	sem.AvgCertainty /= n
	sem.AvgFormality /= n

	syn.AvgDependencyComplexity /= n
	syn.AvgPOSDiversity /= n
	syn.AvgModalRatio /= n
	syn.AvgPassiveRatio /= n
	syn.AvgHedgeRatio /= n

	return sem, syn
}

func recommendations(segments []models.Finding) []string {
	var certain, emotional, informal int
	for _, f := range segments {
		if f.Semantic.Certainty > highCertaintyLevel {
			certain++
		}
		if f.Semantic.EmotionalIntensity > highEmotionLevel {
			emotional++
		}
		if f.Semantic.Formality < lowFormalityLevel {
			informal++
		}
	}

	n := float64(len(segments))
	var out []string
	if float64(certain) > n*highCertaintyShare {
		out = append(out, RecommendReduceCertainty)
	}
	if float64(emotional) > n*highEmotionShare {
		out = append(out, RecommendReduceEmotion)
	}
	if float64(informal) > n*lowFormalityShare {
		out = append(out, RecommendRaiseFormality)
	}
	return append(out, RecommendPerspectives)
}

// topFindings returns up to limit findings by descending confidence, ties
// broken by document position
func topFindings(findings []models.Finding, limit int) []models.FindingSummary {
	sorted := make([]models.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].Segment.Start < sorted[j].Segment.Start
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	out := make([]models.FindingSummary, len(sorted))
	for i, f := range sorted {
		out[i] = models.FindingSummary{
			Text:        truncateRunes(f.Segment.Text, exemplarMaxRunes),
			Category:    f.Category,
			Confidence:  f.Confidence,
			Start:       f.Segment.Start,
			Explanation: f.Explanation,
		}
	}
	return out
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
