package core

import (
	"errors"
	"fmt"
)

// DefaultMaxTicks bounds a single run when RunOptions.MaxTicks is unset.
const DefaultMaxTicks = 100000

// ErrTickLimit is matched by errors.Is for every *TickLimitError.
var ErrTickLimit = errors.New("auction exceeded tick limit")

// TickLimitError reports a run that did not terminate within the safety bound.
type TickLimitError struct {
	Params   ModelParameters
	MaxTicks int
	Price    int
}

func (e *TickLimitError) Error() string {
	return fmt.Sprintf("auction did not terminate within %d ticks (price %d, params %+v)", e.MaxTicks, e.Price, e.Params)
}

func (e *TickLimitError) Unwrap() error {
	return ErrTickLimit
}

// TickTrace captures the per-tick dynamics of a run for observers.
type TickTrace struct {
	Tick       int
	Price      int
	KRemain    int
	LastBidder Bidder
	Bidder1    BidderDecision
	Bidder2    BidderDecision
	Bid1       bool
	Bid2       bool
}

// RunOptions tunes a single run without changing the model.
type RunOptions struct {
	// MaxTicks is the safety bound on ticks per run (DefaultMaxTicks when <= 0)
	MaxTicks int

	// Observer, when non-nil, is called after every resolved tick
	Observer func(TickTrace)
}

// RunAuction simulates one auction until the countdown expires.
//
// Processing flow per tick:
//  1. Advance the tick counter
//  2. Run the bidder decision model for both bidders
//  3. Draw independent Bernoulli bids
//  4. Resolve simultaneous bids (uniform tie-break), reset or decrement the countdown
//  5. Terminate when the countdown reaches zero
//
// Parameters are validated before the first tick. A run that exceeds the tick
// limit returns a *TickLimitError rather than a truncated outcome.
func RunAuction(params ModelParameters, rng RandSource, opts RunOptions) (*RunOutcome, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	maxTicks := opts.MaxTicks
	if maxTicks <= 0 {
		maxTicks = DefaultMaxTicks
	}

	state := AuctionRunState{KRemain: params.K, LastBidder: BidderNone}
	bidders := [2]BidderState{{EV: params.EV1Initial}, {EV: params.EV2Initial}}
	record := make([]BidRecord, 0, 16)

	for !state.Terminated {
		if state.T >= maxTicks {
			return nil, &TickLimitError{Params: params, MaxTicks: maxTicks, Price: state.P}
		}
		state.T++

		tick := TickContext{Price: state.P, Tick: state.T, KRemain: state.KRemain}

		tick.WonLastTick = state.LastBidder == Bidder1
		d1 := Decide(params, bidders[0], tick, rng)
		tick.WonLastTick = state.LastBidder == Bidder2
		d2 := Decide(params, bidders[1], tick, rng)
		bidders[0], bidders[1] = d1.State, d2.State

		b1 := rng.Float64() < d1.S
		b2 := rng.Float64() < d2.S

		var winner Bidder
		switch {
		case b1 && b2:
			winner = Bidder(rng.Intn(2) + 1)
		case b1:
			winner = Bidder1
		case b2:
			winner = Bidder2
		}

		if winner != BidderNone {
			state.LastBidder = winner
			state.P++
			record = append(record, BidRecord{Price: state.P, Tick: state.T, Bidder: winner})
			state.KRemain = params.K
		} else {
			state.KRemain--
		}

		if opts.Observer != nil {
			opts.Observer(TickTrace{
				Tick:       state.T,
				Price:      state.P,
				KRemain:    state.KRemain,
				LastBidder: state.LastBidder,
				Bidder1:    d1,
				Bidder2:    d2,
				Bid1:       b1,
				Bid2:       b2,
			})
		}

		if state.KRemain == 0 {
			state.Terminated = true
		}
	}

	t := float64(state.T)
	return &RunOutcome{
		Record:             record,
		LastBidder:         state.LastBidder,
		FinalPrice:         state.P,
		FinalTick:          state.T,
		AuctionHouseProfit: params.MarkupAH*float64(state.P) - params.GammaAH*t*t,
	}, nil
}
