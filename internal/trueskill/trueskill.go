// Package trueskill implements the TrueSkill Bayesian rating system for
// free-for-all and team matches.
//
// Every party's performance is modeled as a Gaussian centered on the sum of
// its members' skills. Ranks are turned into win/draw observations between
// adjacent parties and the resulting factor graph is solved by message
// passing, giving a posterior (μ, σ) for every player.
package trueskill

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

const (
	// DefaultMu and DefaultSigma are the initial skill of an unrated player.
	DefaultMu    = 100.0
	DefaultSigma = 25.0 / 3.0

	// fallbackDrawProbability is used to evaluate tied ranks when the Env
	// does not allow draws at all.
	fallbackDrawProbability = 0.10

	maxIterations = 10
	minDelta      = 0.0001
)

var (
	// ErrInvalidInput is returned when Rate is given an unusable match.
	ErrInvalidInput = errors.New("invalid rating input")
	// ErrNumerical is returned when the message passing diverges.
	ErrNumerical = errors.New("numerical error while rating")
)

// Rating is a skill estimate.
type Rating struct {
	Mu    float64
	Sigma float64
}

// Exposure is the conservative skill estimate μ-3σ.
func (r Rating) Exposure() float64 {
	return r.Mu - 3*r.Sigma
}

func (r Rating) String() string {
	return fmt.Sprintf("%.3f±%.3f", r.Mu, r.Sigma)
}

// Env holds the rating parameters shared by every computation.
type Env struct {
	Mu, Sigma float64
	// Beta is the distance in skill guaranteeing ~76% chance of winning.
	Beta float64
	// Tau is the uncertainty added before each match.
	Tau             float64
	DrawProbability float64
}

// NewEnv returns an Env with β = σ/2 and τ = σ/100.
func NewEnv(mu, sigma, drawProbability float64) Env {
	return Env{
		Mu:              mu,
		Sigma:           sigma,
		Beta:            sigma / 2,
		Tau:             sigma / 100,
		DrawProbability: drawProbability,
	}
}

// DefaultEnv is the Env built from DefaultMu and DefaultSigma without draws.
func DefaultEnv() Env {
	return NewEnv(DefaultMu, DefaultSigma, 0)
}

// NewRating returns the initial rating of an unrated player.
func (e Env) NewRating() Rating {
	return Rating{Mu: e.Mu, Sigma: e.Sigma}
}

// Validate returns ErrInvalidInput if the parameters cannot produce finite
// ratings.
func (e Env) Validate() error {
	switch {
	case !(e.Sigma > 0) || math.IsInf(e.Sigma, 0):
		return fmt.Errorf("%w: sigma must be positive, got %f", ErrInvalidInput, e.Sigma)
	case math.IsNaN(e.Mu) || math.IsInf(e.Mu, 0):
		return fmt.Errorf("%w: mu must be finite, got %f", ErrInvalidInput, e.Mu)
	case !(e.Beta > 0) || !(e.Tau >= 0):
		return fmt.Errorf("%w: beta must be positive and tau not negative", ErrInvalidInput)
	case !(e.DrawProbability >= 0 && e.DrawProbability < 1):
		return fmt.Errorf(
			"%w: draw probability must be in [0, 1), got %f",
			ErrInvalidInput, e.DrawProbability,
		)
	}

	return nil
}

func (e Env) drawMargin(drawProbability float64, size int) float64 {
	return ppf((drawProbability+1)/2) * math.Sqrt(float64(size)) * e.Beta
}

// Rate computes the posterior ratings of every player of a match.
// groups[i] is a party (one player, or teammates) and ranks[i] its finishing
// position, lower is better, equal ranks are draws. The returned groups have
// the same shape and order as the input.
//
// Every posterior σ is below sqrt(σ²+τ²) of its prior in exact arithmetic
// only: a very lopsided expected result can round it to that bound.
func (e Env) Rate(groups [][]Rating, ranks []int) ([][]Rating, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if len(groups) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 groups, got %d", ErrInvalidInput, len(groups))
	}
	if len(ranks) != len(groups) {
		return nil, fmt.Errorf(
			"%w: got %d ranks for %d groups",
			ErrInvalidInput, len(ranks), len(groups),
		)
	}
	for k := range groups {
		if len(groups[k]) == 0 {
			return nil, fmt.Errorf("%w: group #%d is empty", ErrInvalidInput, k)
		}
	}

	// Order parties best first, remembering where they came from.
	order := make([]int, len(groups))
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(i, j int) bool {
		return ranks[order[i]] < ranks[order[j]]
	})

	sorted := make([][]Rating, len(groups))
	sortedRanks := make([]int, len(groups))
	for k, idx := range order {
		sorted[k] = groups[idx]
		sortedRanks[k] = ranks[idx]
	}

	g := e.buildGraph(sorted, sortedRanks)
	if err := g.run(); err != nil {
		return nil, err
	}

	ret := make([][]Rating, len(groups))
	pos := 0
	for k, idx := range order {
		ret[idx] = make([]Rating, len(sorted[k]))
		for j := range sorted[k] {
			v := g.ratingVars[pos].value
			ret[idx][j] = Rating{Mu: v.mu(), Sigma: v.sigma()}
			pos++
		}
	}

	return ret, nil
}

// Rate1vs1 is a shorthand for a two player free-for-all.
func (e Env) Rate1vs1(winner, loser Rating, drawn bool) (Rating, Rating, error) {
	ranks := []int{0, 1}
	if drawn {
		ranks[1] = 0
	}

	ret, err := e.Rate([][]Rating{{winner}, {loser}}, ranks)
	if err != nil {
		return Rating{}, Rating{}, err
	}

	return ret[0][0], ret[1][0], nil
}

type graph struct {
	ratingVars []*variable

	ratingLayer   []*priorFactor
	perfLayer     []*likelihoodFactor
	teamPerfLayer []*sumFactor
	teamDiffLayer []*sumFactor
	truncLayer    []*truncateFactor
}

func (e Env) buildGraph(groups [][]Rating, ranks []int) *graph {
	g := &graph{}

	var perfVars []*variable
	teamPerfVars := make([]*variable, len(groups))
	for k, group := range groups {
		start := len(perfVars)
		for _, r := range group {
			ratingVar, perfVar := newVariable(), newVariable()
			g.ratingVars = append(g.ratingVars, ratingVar)
			perfVars = append(perfVars, perfVar)

			g.ratingLayer = append(g.ratingLayer, &priorFactor{v: ratingVar, prior: r, dynamic: e.Tau})
			g.perfLayer = append(g.perfLayer, &likelihoodFactor{
				mean:     ratingVar,
				value:    perfVar,
				variance: e.Beta * e.Beta,
			})
		}

		coeffs := make([]float64, len(group))
		for j := range coeffs {
			coeffs[j] = 1
		}

		teamPerfVars[k] = newVariable()
		g.teamPerfLayer = append(g.teamPerfLayer, &sumFactor{
			sum:    teamPerfVars[k],
			terms:  perfVars[start:],
			coeffs: coeffs,
		})
	}

	for k := 0; k < len(groups)-1; k++ {
		diffVar := newVariable()
		g.teamDiffLayer = append(g.teamDiffLayer, &sumFactor{
			sum:    diffVar,
			terms:  teamPerfVars[k : k+2],
			coeffs: []float64{1, -1},
		})

		draw := ranks[k] == ranks[k+1]
		p := e.DrawProbability
		if draw && p <= 0 {
			p = fallbackDrawProbability
		}

		g.truncLayer = append(g.truncLayer, &truncateFactor{
			v:          diffVar,
			draw:       draw,
			drawMargin: e.drawMargin(p, len(groups[k])+len(groups[k+1])),
		})
	}

	return g
}

func (g *graph) run() error {
	for _, f := range g.ratingLayer {
		f.down()
	}
	for _, f := range g.perfLayer {
		f.down()
	}
	for _, f := range g.teamPerfLayer {
		f.down()
	}

	n := len(g.teamDiffLayer)
	for i := 0; i < maxIterations; i++ {
		var delta float64
		if n == 1 {
			g.teamDiffLayer[0].down()
			d, err := g.truncLayer[0].up()
			if err != nil {
				return err
			}
			delta = d
		} else {
			for x := 0; x < n-1; x++ {
				g.teamDiffLayer[x].down()
				d, err := g.truncLayer[x].up()
				if err != nil {
					return err
				}
				delta = math.Max(delta, d)
				g.teamDiffLayer[x].up(1)
			}
			for x := n - 1; x > 0; x-- {
				g.teamDiffLayer[x].down()
				d, err := g.truncLayer[x].up()
				if err != nil {
					return err
				}
				delta = math.Max(delta, d)
				g.teamDiffLayer[x].up(0)
			}
		}

		if delta <= minDelta {
			break
		}
	}

	g.teamDiffLayer[0].up(0)
	g.teamDiffLayer[n-1].up(1)
	for _, f := range g.teamPerfLayer {
		for x := range f.terms {
			f.up(x)
		}
	}
	for _, f := range g.perfLayer {
		f.up()
	}

	return nil
}
