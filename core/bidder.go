package core

import "math"

// TickContext is the auction state a bidder observes when deciding on a tick.
type TickContext struct {
	Price   int
	Tick    int
	KRemain int

	// WonLastTick is true when this bidder placed the most recent successful bid
	WonLastTick bool
}

// BidderDecision is the outcome of the bidder decision model for one tick.
type BidderDecision struct {
	// State is the (possibly revised) valuation after the learning step
	State BidderState

	// Learned is true when a learning event replaced the valuation
	Learned bool

	// Pi is the expected surplus of bidding the next increment
	Pi float64

	// S is the probability of bidding on this tick, in [0, 1]
	S float64
}

// Decide runs the bidder decision model for one bidder on one tick.
//
// Processing flow:
//  1. A bidder that won the previous tick neither learns nor bids
//  2. If theta*ev no longer clears the next increment, draw a learning event
//  3. Compute the surplus pi = ev - (p+1) - gamma_i*t^2
//  4. Map pi to a bid probability (loss, certain bid, or urgency-weighted)
func Decide(params ModelParameters, state BidderState, tick TickContext, rng RandSource) BidderDecision {
	next := float64(tick.Price + 1)
	attentionCost := params.GammaBidder * float64(tick.Tick) * float64(tick.Tick)

	if tick.WonLastTick {
		return BidderDecision{
			State: state,
			Pi:    state.EV - next - attentionCost,
			S:     0,
		}
	}

	learned := false
	if params.Theta*state.EV < next {
		if rng.Float64() < params.PLearn {
			state.EV = next + float64(rng.Poisson(params.EJump))
			learned = true
		}
	}

	pi := state.EV - next - attentionCost

	return BidderDecision{
		State:   state,
		Learned: learned,
		Pi:      pi,
		S:       BidProbability(params, state.EV, pi, tick.KRemain),
	}
}

// BidProbability maps a bidder's surplus to a bid probability.
// The +2 and +1 offsets keep both logarithms finite at k_remain=0 and pi=0.
func BidProbability(params ModelParameters, ev, pi float64, kRemain int) float64 {
	switch {
	case pi <= 0:
		return 0
	case pi >= params.Theta*ev:
		return 1
	}

	urgency := 1 / math.Log(float64(kRemain)+2)
	value := math.Log(pi + 1)
	return math.Min(urgency*value, 1) * (1 - params.PHold)
}
