package engine

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// WelchResult is the outcome of a two-sided Welch's t-test.
type WelchResult struct {
	Statistic float64 // signed t-statistic
	PValue    float64 // two-sided, in [0, 1]
	DF        float64 // Welch-Satterthwaite degrees of freedom
}

// WelchTTest runs a two-sided Welch's t-test (unequal variances) comparing
// the means of two samples. A pair where either sample has fewer than 2
// values carries no information and scores p=1, t=0 rather than erroring.
func WelchTTest(a, b []float64) WelchResult {
	n1 := float64(len(a))
	n2 := float64(len(b))
	if n1 < 2 || n2 < 2 {
		return WelchResult{Statistic: 0, PValue: 1}
	}

	mean1, _ := stats.Mean(a)
	mean2, _ := stats.Mean(b)
	var1, _ := stats.SampleVariance(a)
	var2, _ := stats.SampleVariance(b)

	se := math.Sqrt(var1/n1 + var2/n2)
	if se == 0 {
		// Both samples are constant. Equal means carry no signal;
		// unequal constant means separate perfectly. The statistic is
		// clamped to a finite value so results always serialize.
		if mean1 == mean2 {
			return WelchResult{Statistic: 0, PValue: 1}
		}
		return WelchResult{Statistic: math.Copysign(math.MaxFloat64, mean1-mean2), PValue: 0}
	}

	t := (mean1 - mean2) / se

	// Welch-Satterthwaite equation
	df := math.Pow(var1/n1+var2/n2, 2) /
		(math.Pow(var1/n1, 2)/(n1-1) + math.Pow(var2/n2, 2)/(n2-1))
	if math.IsNaN(df) || df <= 0 {
		return WelchResult{Statistic: t, PValue: 1, DF: df}
	}

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - dist.CDF(math.Abs(t)))
	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}

	return WelchResult{Statistic: t, PValue: p, DF: df}
}
