package trueskill

import "math"

// gaussian is a normal distribution stored in its natural parameters:
// precision (pi = 1/σ²) and precision adjusted mean (tau = pi·μ).
// The zero value is the uniform "no information" distribution.
type gaussian struct {
	pi, tau float64
}

func newGaussian(mu, sigma float64) gaussian {
	pi := 1 / (sigma * sigma)
	return gaussian{pi: pi, tau: pi * mu}
}

func (g gaussian) mu() float64 {
	if g.pi == 0 {
		return 0
	}

	return g.tau / g.pi
}

func (g gaussian) sigma() float64 {
	if g.pi == 0 {
		return math.Inf(1)
	}

	return math.Sqrt(1 / g.pi)
}

func (g gaussian) mul(o gaussian) gaussian {
	return gaussian{pi: g.pi + o.pi, tau: g.tau + o.tau}
}

func (g gaussian) div(o gaussian) gaussian {
	return gaussian{pi: g.pi - o.pi, tau: g.tau - o.tau}
}

// delta is the convergence measure between two successive values of a
// variable.
func (g gaussian) delta(o gaussian) float64 {
	piDelta := math.Abs(g.pi - o.pi)
	if math.IsInf(piDelta, 1) {
		return 0
	}

	return math.Max(math.Abs(g.tau-o.tau), math.Sqrt(piDelta))
}

// Standard normal helpers.

func cdf(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

func pdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

func ppf(x float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*x-1)
}

// vWin and wWin are the additive and multiplicative corrections applied to a
// performance difference known to be greater than the draw margin.
func vWin(diff, drawMargin float64) float64 {
	x := diff - drawMargin
	denom := cdf(x)
	if denom == 0 {
		return -x
	}

	return pdf(x) / denom
}

func wWin(diff, drawMargin float64) (float64, error) {
	x := diff - drawMargin
	v := vWin(diff, drawMargin)
	w := v * (v + x)
	if !(w > 0 && w < 1) {
		return 0, ErrNumerical
	}

	return w, nil
}

// vDraw and wDraw are the corrections for a performance difference known to
// be within the draw margin.
func vDraw(diff, drawMargin float64) float64 {
	absDiff := math.Abs(diff)
	a, b := drawMargin-absDiff, -drawMargin-absDiff
	denom := cdf(a) - cdf(b)
	numer := pdf(b) - pdf(a)

	v := a
	if denom != 0 {
		v = numer / denom
	}
	if diff < 0 {
		return -v
	}

	return v
}

func wDraw(diff, drawMargin float64) (float64, error) {
	absDiff := math.Abs(diff)
	a, b := drawMargin-absDiff, -drawMargin-absDiff
	denom := cdf(a) - cdf(b)
	if denom == 0 {
		return 0, ErrNumerical
	}

	v := vDraw(absDiff, drawMargin)
	w := v*v + (a*pdf(a)-b*pdf(b))/denom
	if !(w > 0 && w < 1) {
		return 0, ErrNumerical
	}

	return w, nil
}
