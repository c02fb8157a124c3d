package scoring

import "github.com/abhisek/examina/internal/questionbank"

// Percentile maps a score ratio onto a fixed percentile table.
// The table is a product heuristic, not a statistical model.
func Percentile(score, total int) int {
	switch {
	case total <= 0:
		return 25
	case atLeast(score, total, 90):
		return 95
	case atLeast(score, total, 80):
		return 85
	case atLeast(score, total, 70):
		return 70
	case atLeast(score, total, 60):
		return 55
	case atLeast(score, total, 50):
		return 40
	default:
		return 25
	}
}

// Likelihood is the tier of a success prediction.
type Likelihood string

const (
	LikelihoodHigh      Likelihood = "High"
	LikelihoodModerate  Likelihood = "Moderate"
	LikelihoodLow       Likelihood = "Low"
	LikelihoodNeedsWork Likelihood = "Needs Work"
)

// SuccessPrediction is a display-only view derived from a score. The
// thresholds are calibrated by product design.
type SuccessPrediction struct {
	Likelihood Likelihood `json:"likelihood"`
	Percentage int        `json:"percentage"`
	Message    string     `json:"message"`
	Color      string     `json:"color"`
}

// Display colors for each tier.
const (
	ColorGreen  = "#22C55E"
	ColorYellow = "#EAB308"
	ColorOrange = "#F97316"
	ColorRed    = "#EF4444"
)

var predictionTiers = map[Likelihood]SuccessPrediction{
	LikelihoodHigh: {
		Likelihood: LikelihoodHigh,
		Percentage: 85,
		Message:    "You are on track to clear SSC CGL. Keep taking full-length mocks to hold this level.",
		Color:      ColorGreen,
	},
	LikelihoodModerate: {
		Likelihood: LikelihoodModerate,
		Percentage: 60,
		Message:    "You are close to the cut-off. Tighten your weaker sections to move into the safe zone.",
		Color:      ColorYellow,
	},
	LikelihoodLow: {
		Likelihood: LikelihoodLow,
		Percentage: 35,
		Message:    "You need focused practice. Work on your weak sections every day before the next mock.",
		Color:      ColorOrange,
	},
	LikelihoodNeedsWork: {
		Likelihood: LikelihoodNeedsWork,
		Percentage: 15,
		Message:    "Build your basics first. Follow your study plan and retake a mock in a week.",
		Color:      ColorRed,
	},
}

// PredictSuccess derives the success tier from the overall score and the
// per-section breakdown. A section scoring below 40% blocks the top tier.
func PredictSuccess(score, total int, sections map[questionbank.Subject]SectionScore) SuccessPrediction {
	weak := HasWeakSection(sections)

	switch {
	case total > 0 && atLeast(score, total, 80) && !weak:
		return predictionTiers[LikelihoodHigh]
	case total > 0 && atLeast(score, total, 65):
		return predictionTiers[LikelihoodModerate]
	case total > 0 && atLeast(score, total, 45):
		return predictionTiers[LikelihoodLow]
	default:
		return predictionTiers[LikelihoodNeedsWork]
	}
}

// HasWeakSection reports whether any section with questions is below 40%.
func HasWeakSection(sections map[questionbank.Subject]SectionScore) bool {
	for _, s := range sections {
		if s.Total > 0 && !atLeast(s.Score, s.Total, 40) {
			return true
		}
	}
	return false
}

// Band labels a percentage as Strong, Average or Weak.
func Band(pct int) string {
	switch {
	case pct >= 70:
		return "Strong"
	case pct >= 40:
		return "Average"
	default:
		return "Weak"
	}
}

// atLeast reports score/total >= pct/100 using integer arithmetic.
func atLeast(score, total, pct int) bool {
	return score*100 >= pct*total
}
