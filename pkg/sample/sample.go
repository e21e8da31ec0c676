// Package sample provides the random sources consumed by the noise filters.
//
// Filters never reach for a global generator: callers hand them a Source or a
// Sampler, so tests can substitute a scripted sequence and production code can
// seed a reproducible run.
package sample

import (
	"math"

	"github.com/valyala/fastrand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Source yields uniformly distributed values in [0,1).
type Source interface {
	Float64() float64
}

// Sampler draws from the distributions used by the noise models.
type Sampler interface {
	Source
	// Gaussian draws from a normal distribution with standard deviation
	// spread and the given mean.
	Gaussian(spread, mean float64) float64
	// Rayleigh draws from a Rayleigh distribution with scale xi.
	Rayleigh(xi float64) float64
	// Exponential draws from an exponential distribution with rate lambda.
	Exponential(lambda float64) float64
}

// RNG is the default Sampler. Uniform values come from fastrand and are
// pushed through inverse CDFs for the other distributions.
//
// RNG is not safe for concurrent use.
type RNG struct {
	r fastrand.RNG
}

// New returns an RNG seeded with seed. A zero seed draws its state from the
// process-wide generator, so runs are not reproducible.
func New(seed uint32) *RNG {
	g := &RNG{}
	if seed != 0 {
		g.r.Seed(seed)
	}
	return g
}

// Float64 returns a value in [0,1).
func (g *RNG) Float64() float64 {
	return float64(g.r.Uint32()) / (1 << 32)
}

// open returns a value strictly inside (0,1), safe for inverse CDFs.
func (g *RNG) open() float64 {
	return (float64(g.r.Uint32()) + 0.5) / (1 << 32)
}

func (g *RNG) Gaussian(spread, mean float64) float64 {
	if spread <= 0 {
		return mean
	}
	return distuv.Normal{Mu: mean, Sigma: spread}.Quantile(g.open())
}

// Rayleigh is a Weibull distribution with shape 2 and scale xi*sqrt(2).
func (g *RNG) Rayleigh(xi float64) float64 {
	if xi <= 0 {
		return 0
	}
	return distuv.Weibull{K: 2, Lambda: xi * math.Sqrt2}.Quantile(g.open())
}

func (g *RNG) Exponential(lambda float64) float64 {
	if lambda <= 0 {
		return 0
	}
	return distuv.Exponential{Rate: lambda}.Quantile(g.open())
}
