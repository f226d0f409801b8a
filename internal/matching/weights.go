// internal/matching/weights.go
package matching

import (
	"math"

	"unimatch/internal/models"
)

type Weights struct {
	Academic  float64 `json:"academic"`
	Financial float64 `json:"financial"`
	Location  float64 `json:"location"`
	Social    float64 `json:"social"`
	Future    float64 `json:"future"`
}

func (w Weights) Sum() float64 {
	return w.Academic + w.Financial + w.Location + w.Social + w.Future
}

// normalized rescales w to sum to 1, returning fallback when w carries no weight.
func (w Weights) normalized(fallback Weights) Weights {
	w = Weights{
		Academic:  math.Max(w.Academic, 0),
		Financial: math.Max(w.Financial, 0),
		Location:  math.Max(w.Location, 0),
		Social:    math.Max(w.Social, 0),
		Future:    math.Max(w.Future, 0),
	}
	sum := w.Sum()
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return fallback
	}
	return Weights{
		Academic:  w.Academic / sum,
		Financial: w.Financial / sum,
		Location:  w.Location / sum,
		Social:    w.Social / sum,
		Future:    w.Future / sum,
	}
}

// NormalizeImportance turns 1-10 importance factors into fractional weights.
// A nil or all-zero set yields fallback.
func NormalizeImportance(f *models.ImportanceFactors, fallback Weights) Weights {
	if f == nil {
		return fallback
	}
	return Weights{
		Academic:  float64(f.Academics),
		Financial: float64(f.Cost),
		Location:  float64(f.Location),
		Social:    float64(f.Social),
		Future:    float64(f.Future),
	}.normalized(fallback)
}

// WeightsFromCriteria normalizes the percentage-like weights carried by discovery criteria.
func WeightsFromCriteria(cw *models.CriteriaWeights, fallback Weights) Weights {
	if cw == nil {
		return fallback
	}
	return Weights{
		Academic:  float64(cw.Academic),
		Financial: float64(cw.Financial),
		Location:  float64(cw.Location),
		Social:    float64(cw.Social),
		Future:    float64(cw.Future),
	}.normalized(fallback)
}

// CriteriaWeightsFrom expresses w in the integer percentage units used by DiscoveryCriteria.
func CriteriaWeightsFrom(w Weights) *models.CriteriaWeights {
	return &models.CriteriaWeights{
		Academic:  int(math.Round(w.Academic * 100)),
		Financial: int(math.Round(w.Financial * 100)),
		Location:  int(math.Round(w.Location * 100)),
		Social:    int(math.Round(w.Social * 100)),
		Future:    int(math.Round(w.Future * 100)),
	}
}

type CategoryScores struct {
	Academic  float64
	Financial float64
	Social    float64
	Location  float64
	Future    float64
}

func neutralScores() CategoryScores {
	return CategoryScores{
		Academic:  NeutralScore,
		Financial: NeutralScore,
		Social:    NeutralScore,
		Location:  NeutralScore,
		Future:    NeutralScore,
	}
}

// Aggregate combines category scores under w into the match percentage and
// its per-category breakdown.
func Aggregate(scores CategoryScores, w Weights) (int, models.ScoreBreakdown) {
	academic := categoryView(scores.Academic, w.Academic)
	financial := categoryView(scores.Financial, w.Financial)
	social := categoryView(scores.Social, w.Social)
	location := categoryView(scores.Location, w.Location)
	future := categoryView(scores.Future, w.Future)

	total := scores.Academic*w.Academic +
		scores.Financial*w.Financial +
		scores.Social*w.Social +
		scores.Location*w.Location +
		scores.Future*w.Future

	percentage := int(math.Round(clamp(total, 0, 100)))

	return percentage, models.ScoreBreakdown{
		Academic:  academic,
		Financial: financial,
		Social:    social,
		Location:  location,
		Future:    future,
		Total:     round2(total),
	}
}

func categoryView(score, weight float64) models.CategoryScoreView {
	return models.CategoryScoreView{
		Score:        round2(score),
		Weight:       int(math.Round(weight * 100)),
		Contribution: round2(score * weight),
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
