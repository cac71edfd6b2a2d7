package app

import "math"

// Statistical helpers for the pattern engine. All functions are pure and
// operate on plain float slices so they stay testable without a database.

// pearsonCorrelation calculates the Pearson correlation coefficient between
// two equal-length datasets using the sum formulation. Returns 0 when either
// series has no variance. The result is clamped to [-1, 1] to absorb
// floating point drift in the sum formula.
func pearsonCorrelation(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 2 {
		return 0
	}

	sumX, sumY, sumXY, sumX2, sumY2 := 0.0, 0.0, 0.0, 0.0, 0.0
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
		sumY2 += y[i] * y[i]
	}

	numerator := float64(n)*sumXY - sumX*sumY
	denominator := math.Sqrt((float64(n)*sumX2 - sumX*sumX) * (float64(n)*sumY2 - sumY*sumY))

	if denominator == 0 {
		return 0
	}

	r := numerator / denominator
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// correlationPValue estimates the two-tailed p-value for a Pearson
// coefficient via t = r*sqrt((n-2)/(1-r^2)) and a normal approximation to
// the t distribution. The normal approximation understates tail mass for
// small n; callers additionally gate significance on a minimum sample size.
func correlationPValue(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	denom := 1 - r*r
	if denom <= 0 {
		return 0
	}

	t := r * math.Sqrt(float64(n-2)/denom)
	p := 2 * (1 - normalCDF(math.Abs(t)))

	if p < 0 {
		p = 0
	} else if p > 1 {
		p = 1
	}
	return p
}

// normalCDF evaluates the standard normal CDF using the Abramowitz-Stegun
// 7.1.26 polynomial approximation of erf (max error ~1.5e-7)
func normalCDF(z float64) float64 {
	return 0.5 * (1 + erfApprox(z/math.Sqrt2))
}

func erfApprox(x float64) float64 {
	sign := 1.0
	if x < 0 {
		sign = -1.0
		x = -x
	}

	const (
		a1 = 0.254829592
		a2 = -0.284496736
		a3 = 1.421413741
		a4 = -1.453152027
		a5 = 1.061405429
		p  = 0.3275911
	)

	t := 1.0 / (1.0 + p*x)
	y := 1.0 - (((((a5*t+a4)*t)+a3)*t+a2)*t+a1)*t*math.Exp(-x*x)

	return sign * y
}

// meanOf returns the arithmetic mean, 0 for an empty slice
func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation (n-1 denominator),
// 0 when fewer than two values
func sampleStdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := meanOf(values)
	sumSq := 0.0
	for _, v := range values {
		sumSq += (v - m) * (v - m)
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// sharpeRatio returns mean/stdev of the return series, 0 when the series
// has no variance
func sharpeRatio(returns []float64) float64 {
	sd := sampleStdDev(returns)
	if sd == 0 {
		return 0
	}
	return meanOf(returns) / sd
}

// maxDrawdown returns the largest peak-to-trough decline of the cumulative
// return sequence, as a positive magnitude
func maxDrawdown(returns []float64) float64 {
	cumulative := 0.0
	peak := 0.0
	maxDD := 0.0
	for _, r := range returns {
		cumulative += r
		if cumulative > peak {
			peak = cumulative
		}
		if dd := peak - cumulative; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// profitFactorSentinel stands in for an infinite profit factor when a
// series has gains but no losses
const profitFactorSentinel = 999.0

// profitFactor returns gross gains divided by gross losses
func profitFactor(returns []float64) float64 {
	grossGain := 0.0
	grossLoss := 0.0
	for _, r := range returns {
		if r > 0 {
			grossGain += r
		} else if r < 0 {
			grossLoss += -r
		}
	}
	if grossLoss == 0 {
		if grossGain > 0 {
			return profitFactorSentinel
		}
		return 0
	}
	return grossGain / grossLoss
}

// linearSlope returns the least-squares slope of y over x
func linearSlope(x, y []float64) float64 {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	if n < 2 {
		return 0
	}

	sumX, sumY, sumXY, sumX2 := 0.0, 0.0, 0.0, 0.0
	for i := 0; i < n; i++ {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
	}

	denominator := float64(n)*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0
	}
	return (float64(n)*sumXY - sumX*sumY) / denominator
}
