package fuzzy

import "math"

type (
	AndMethod             string
	OrMethod              string
	ImplicationMethod     string
	AggregationMethod     string
	DefuzzificationMethod string
)

const (
	AndMin  AndMethod = "min"
	AndProd AndMethod = "prod"

	OrMax    OrMethod = "max"
	OrProbOr OrMethod = "probor"

	ImplicationMin  ImplicationMethod = "min"
	ImplicationProd ImplicationMethod = "prod"

	AggregationMax    AggregationMethod = "max"
	AggregationSum    AggregationMethod = "sum"
	AggregationProbOr AggregationMethod = "probor"

	DefuzzCentroid DefuzzificationMethod = "centroid"
	DefuzzBisector DefuzzificationMethod = "bisector"
	DefuzzMOM      DefuzzificationMethod = "mom"
	DefuzzSOM      DefuzzificationMethod = "som"
	DefuzzLOM      DefuzzificationMethod = "lom"
)

// Methods selects the strategy used at each inference stage.
type Methods struct {
	And             AndMethod             `json:"and"`
	Or              OrMethod              `json:"or"`
	Implication     ImplicationMethod     `json:"implication"`
	Aggregation     AggregationMethod     `json:"aggregation"`
	Defuzzification DefuzzificationMethod `json:"defuzzification"`
}

// DefaultMethods returns the classic Mamdani configuration.
func DefaultMethods() Methods {
	return Methods{
		And:             AndMin,
		Or:              OrMax,
		Implication:     ImplicationMin,
		Aggregation:     AggregationMax,
		Defuzzification: DefuzzCentroid,
	}
}

// binaryOp folds two degrees into one.
type binaryOp func(a, b float64) float64

// defuzzifier reduces a sampled aggregate to a crisp value. ys is sorted
// ascending. It returns false when the aggregate is empty.
type defuzzifier func(ys, mu []float64) (float64, bool)

func probOr(a, b float64) float64  { return a + b - a*b }
func product(a, b float64) float64 { return a * b }

var andMethods = map[AndMethod]binaryOp{
	AndMin:  math.Min,
	AndProd: product,
}

var orMethods = map[OrMethod]binaryOp{
	OrMax:    math.Max,
	OrProbOr: probOr,
}

var implicationMethods = map[ImplicationMethod]binaryOp{
	ImplicationMin:  math.Min,
	ImplicationProd: product,
}

var aggregationMethods = map[AggregationMethod]binaryOp{
	AggregationMax:    math.Max,
	AggregationSum:    func(a, b float64) float64 { return math.Min(1, a+b) },
	AggregationProbOr: probOr,
}

var defuzzMethods = map[DefuzzificationMethod]defuzzifier{
	DefuzzCentroid: centroid,
	DefuzzBisector: bisector,
	DefuzzMOM:      meanOfMaximum,
	DefuzzSOM:      smallestOfMaximum,
	DefuzzLOM:      largestOfMaximum,
}
