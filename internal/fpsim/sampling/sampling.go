// Package sampling wraps a seeded PRNG with the two distributions the
// simulation needs: Exponential inter-arrival times and Gamma service
// times. It follows the same thin-wrapper-over-math/rand pattern the
// teacher's own noise generator uses, swapping Gaussian/Uniform shaping for
// the two distributions this domain requires.
package sampling

import (
	"math"
	"math/rand"
)

// minDuration is the floor every sampled service and inter-arrival duration
// is clamped to, preventing zero-duration events from stacking at a single
// timestamp.
const minDuration = 0.001

// Source is a seeded sampler. Two Sources constructed with the same seed
// and driven through the same sequence of calls produce bit-identical
// output, which is what makes simulation runs reproducible.
type Source struct {
	rng *rand.Rand
}

// NewSource returns a Source seeded deterministically from seed.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Exponential samples from an Exponential distribution with the given rate
// (events per unit time), clamped to minDuration. rate must be positive;
// callers are responsible for that invariant — Source does not validate
// domain parameters, matching the teacher's noise generator which trusts
// its callers with distribution parameters.
func (s *Source) Exponential(rate float64) float64 {
	d := s.rng.ExpFloat64() / rate
	if d < minDuration {
		return minDuration
	}
	return d
}

// Gamma samples from a Gamma distribution with the given mean and
// coefficient of variation. cv <= 0 returns mean (deterministic), clamped
// to minDuration like every other sample. Otherwise it samples shape = 1/cv², scale = mean·cv² — algebraically the
// same parameterization as shape = 1/cv², scale = mean/shape — clamped to
// minDuration.
func (s *Source) Gamma(mean, cv float64) float64 {
	if cv <= 0 {
		if mean < minDuration {
			return minDuration
		}
		return mean
	}
	shape := 1 / (cv * cv)
	scale := mean * cv * cv
	d := s.sampleGamma(shape) * scale
	if d < minDuration {
		return minDuration
	}
	return d
}

// sampleGamma draws from a standard Gamma(shape, 1) distribution using the
// Marsaglia-Tsang method, the standard rejection-sampling technique for
// shape >= 1. For shape < 1 it uses the usual boost-by-one-and-rescale
// transform (Gamma(shape) = Gamma(shape+1) * U^(1/shape)). Go's math/rand
// has no native Gamma distribution and nothing in the retrieval pack
// supplies one, so this implements the textbook algorithm directly over
// the wrapped *rand.Rand (see DESIGN.md for the stdlib-use justification).
func (s *Source) sampleGamma(shape float64) float64 {
	if shape < 1 {
		u := s.rng.Float64()
		return s.sampleGamma(shape+1) * math.Pow(u, 1/shape)
	}

	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9*d)
	for {
		var x, v float64
		for {
			x = s.rng.NormFloat64()
			v = 1 + c*x
			if v > 0 {
				break
			}
		}
		v = v * v * v
		u := s.rng.Float64()
		if u < 1-0.0331*(x*x*x*x) {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
