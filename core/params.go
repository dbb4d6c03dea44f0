package core

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameters is wrapped by every validation failure of ModelParameters.
var ErrInvalidParameters = errors.New("invalid model parameters")

// ModelParameters configures a simulated two-bidder auction.
// Values are treated as immutable; use the With* helpers to derive variants.
type ModelParameters struct {
	// EV1Initial and EV2Initial are the bidders' initial expected valuations
	EV1Initial float64 `json:"ev1_i" yaml:"ev1_i"`
	EV2Initial float64 `json:"ev2_i" yaml:"ev2_i"`

	// K is the countdown (overtime) policy: consecutive no-bid ticks before close
	K int `json:"k" yaml:"k"`

	// PLearn is the probability of a learning event once a valuation is exhausted
	PLearn float64 `json:"p_learn" yaml:"p_learn"`

	// EJump is the Poisson mean of the markup drawn on a learning event
	EJump float64 `json:"e_i" yaml:"e_i"`

	// GammaBidder is the bidders' quadratic attention cost coefficient
	GammaBidder float64 `json:"gamma_i" yaml:"gamma_i"`

	// Theta is the deterministic bound of decision, in (0, 1]
	Theta float64 `json:"theta" yaml:"theta"`

	// PHold is the snipe/hold probability dampening uncertain bids
	PHold float64 `json:"p_hold" yaml:"p_hold"`

	// MarkupAH is the auction house markup over the final price
	MarkupAH float64 `json:"markup_ah" yaml:"markup_ah"`

	// GammaAH is the auction house's quadratic duration cost coefficient
	GammaAH float64 `json:"gamma_ah" yaml:"gamma_ah"`
}

// DefaultParameters returns the calibrated default parameter set.
func DefaultParameters() ModelParameters {
	return ModelParameters{
		EV1Initial:  10,
		EV2Initial:  10,
		K:           10,
		PLearn:      0.6,
		EJump:       3,
		GammaBidder: 0.0003,
		Theta:       0.8,
		PHold:       0.1,
		MarkupAH:    0.24,
		GammaAH:     0.0005,
	}
}

// WithK returns a copy of p with the countdown policy replaced.
func (p ModelParameters) WithK(k int) ModelParameters {
	p.K = k
	return p
}

// WithValuations returns a copy of p with both initial valuations replaced.
func (p ModelParameters) WithValuations(ev1, ev2 float64) ModelParameters {
	p.EV1Initial = ev1
	p.EV2Initial = ev2
	return p
}

// WithPLearn returns a copy of p with the learning probability replaced.
func (p ModelParameters) WithPLearn(pLearn float64) ModelParameters {
	p.PLearn = pLearn
	return p
}

// Validate checks every field against its domain. It must pass before any
// simulation tick executes.
func (p ModelParameters) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"ev1_i", p.EV1Initial},
		{"ev2_i", p.EV2Initial},
		{"p_learn", p.PLearn},
		{"e_i", p.EJump},
		{"gamma_i", p.GammaBidder},
		{"theta", p.Theta},
		{"p_hold", p.PHold},
		{"markup_ah", p.MarkupAH},
		{"gamma_ah", p.GammaAH},
	}
	for _, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidParameters, f.name, f.value)
		}
	}

	if p.EV1Initial <= 0 {
		return fmt.Errorf("%w: ev1_i must be positive, got %.4f", ErrInvalidParameters, p.EV1Initial)
	}
	if p.EV2Initial <= 0 {
		return fmt.Errorf("%w: ev2_i must be positive, got %.4f", ErrInvalidParameters, p.EV2Initial)
	}
	if p.K < 1 {
		return fmt.Errorf("%w: k must be at least 1, got %d", ErrInvalidParameters, p.K)
	}

	probabilities := []struct {
		name  string
		value float64
	}{
		{"p_learn", p.PLearn},
		{"p_hold", p.PHold},
		{"markup_ah", p.MarkupAH},
	}
	for _, f := range probabilities {
		if f.value < 0 || f.value > 1 {
			return fmt.Errorf("%w: %s must be in [0, 1], got %.4f", ErrInvalidParameters, f.name, f.value)
		}
	}

	if p.Theta <= 0 || p.Theta > 1 {
		return fmt.Errorf("%w: theta must be in (0, 1], got %.4f", ErrInvalidParameters, p.Theta)
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"e_i", p.EJump},
		{"gamma_i", p.GammaBidder},
		{"gamma_ah", p.GammaAH},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %.4f", ErrInvalidParameters, f.name, f.value)
		}
	}

	return nil
}
