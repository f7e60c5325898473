package trueskill

import "math"

// variable is a node of the factor graph. It keeps its current marginal and
// the last message received from each attached factor.
type variable struct {
	value    gaussian
	messages map[factor]gaussian
}

type factor interface{}

func newVariable() *variable {
	return &variable{messages: map[factor]gaussian{}}
}

func (v *variable) set(val gaussian) float64 {
	delta := v.value.delta(val)
	v.value = val
	return delta
}

// updateMessage replaces the message sent by f and folds it into the value.
func (v *variable) updateMessage(f factor, msg gaussian) float64 {
	old := v.messages[f]
	v.messages[f] = msg
	return v.set(v.value.div(old).mul(msg))
}

// updateValue forces the marginal to val and derives the message f must have
// sent for that to hold.
func (v *variable) updateValue(f factor, val gaussian) float64 {
	old := v.messages[f]
	v.messages[f] = val.mul(old).div(v.value)
	return v.set(val)
}

// priorFactor injects a player's prior skill, widened by the dynamics factor.
type priorFactor struct {
	v       *variable
	prior   Rating
	dynamic float64
}

func (f *priorFactor) down() float64 {
	sigma := math.Sqrt(f.prior.Sigma*f.prior.Sigma + f.dynamic*f.dynamic)
	return f.v.updateValue(f, newGaussian(f.prior.Mu, sigma))
}

// likelihoodFactor links a skill to a performance with the given variance.
type likelihoodFactor struct {
	mean, value *variable
	variance    float64
}

func (f *likelihoodFactor) a(g gaussian) float64 {
	return 1 / (1 + f.variance*g.pi)
}

func (f *likelihoodFactor) down() float64 {
	msg := f.mean.value.div(f.mean.messages[f])
	a := f.a(msg)
	return f.value.updateMessage(f, gaussian{pi: a * msg.pi, tau: a * msg.tau})
}

func (f *likelihoodFactor) up() float64 {
	msg := f.value.value.div(f.value.messages[f])
	a := f.a(msg)
	return f.mean.updateMessage(f, gaussian{pi: a * msg.pi, tau: a * msg.tau})
}

// sumFactor constrains sum = Σ coeffs[i]·terms[i].
type sumFactor struct {
	sum    *variable
	terms  []*variable
	coeffs []float64
}

func (f *sumFactor) down() float64 {
	msgs := make([]gaussian, len(f.terms))
	for i, t := range f.terms {
		msgs[i] = t.messages[f]
	}

	return f.update(f.sum, f.terms, msgs, f.coeffs)
}

// up sends a message to the term at index, solving the sum for it.
func (f *sumFactor) up(index int) float64 {
	coeff := f.coeffs[index]
	coeffs := make([]float64, len(f.coeffs))
	for i, c := range f.coeffs {
		switch {
		case coeff == 0:
			coeffs[i] = 0
		case i == index:
			coeffs[i] = 1 / coeff
		default:
			coeffs[i] = -c / coeff
		}
	}

	vals := make([]*variable, len(f.terms))
	copy(vals, f.terms)
	vals[index] = f.sum

	msgs := make([]gaussian, len(vals))
	for i, v := range vals {
		msgs[i] = v.messages[f]
	}

	return f.update(f.terms[index], vals, msgs, coeffs)
}

func (f *sumFactor) update(v *variable, vals []*variable, msgs []gaussian, coeffs []float64) float64 {
	var piInv, mu float64
	for i := range vals {
		div := vals[i].value.div(msgs[i])
		mu += coeffs[i] * div.mu()
		if math.IsInf(piInv, 1) {
			continue
		}

		if div.pi == 0 {
			piInv = math.Inf(1)
			continue
		}
		piInv += coeffs[i] * coeffs[i] / div.pi
	}

	pi := 1 / piInv
	return v.updateMessage(f, gaussian{pi: pi, tau: pi * mu})
}

// truncateFactor observes the sign of a team performance difference: a win
// (difference above the draw margin) or a draw (within the margin).
type truncateFactor struct {
	v          *variable
	draw       bool
	drawMargin float64
}

func (f *truncateFactor) up() (float64, error) {
	div := f.v.value.div(f.v.messages[f])
	sqrtPi := math.Sqrt(div.pi)
	diff, margin := div.tau/sqrtPi, f.drawMargin*sqrtPi

	var (
		v, w float64
		err  error
	)
	if f.draw {
		v = vDraw(diff, margin)
		w, err = wDraw(diff, margin)
	} else {
		v = vWin(diff, margin)
		w, err = wWin(diff, margin)
	}
	if err != nil {
		return 0, err
	}

	denom := 1 - w
	return f.v.updateValue(f, gaussian{
		pi:  div.pi / denom,
		tau: (div.tau + sqrtPi*v) / denom,
	}), nil
}
