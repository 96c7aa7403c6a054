package sampling

import "github.com/shopspring/decimal"

// Objective is the auditor's test objective, driving which sampling
// method Recommend selects (spec §4 supplemented feature).
type Objective string

const (
	ObjectiveOverstatement  Objective = "overstatement"
	ObjectiveUnderstatement Objective = "understatement"
	ObjectiveControls       Objective = "controls"
)

// Method names a recommended sampling method.
type Method string

const (
	MethodMUS         Method = "MUS"
	MethodMeanPerUnit Method = "MEAN_PER_UNIT"
	MethodAttribute   Method = "ATTRIBUTE"
)

// lowErrorRateThreshold is the expected-error-rate cutoff below which
// overstatement testing favors MUS (recommend_sampling_method's 0.05).
var lowErrorRateThreshold = decimal.NewFromFloat(0.05)

// smallPopulationThreshold below which the fall-through branch recommends
// mean-per-unit (recommend_sampling_method's population_size < 100); the
// controls and low-error overstatement branches are decided before it.
const smallPopulationThreshold = 100

// Recommend picks a sampling method from the test objective, expected
// error rate, and population size, following
// sampling_service.py's recommend_sampling_method: controls testing
// always uses attribute sampling; substantive overstatement testing
// with a low expected error rate favors MUS; everything else, small
// populations included, falls back to mean-per-unit.
// populationValue is accepted to keep the signature aligned with the
// rest of the package's Size/Evaluate calls but does not affect the
// decision, matching the original.
func Recommend(populationSize int, populationValue decimal.Decimal, objective Objective, expectedErrorRate decimal.Decimal) Method {
	if objective == ObjectiveControls {
		return MethodAttribute
	}

	if objective == ObjectiveOverstatement && expectedErrorRate.LessThan(lowErrorRateThreshold) {
		return MethodMUS
	}

	if populationSize < smallPopulationThreshold {
		return MethodMeanPerUnit
	}

	return MethodMeanPerUnit
}
