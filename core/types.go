package core

import "fmt"

// Bidder identifies one of the two participants of a simulated auction.
type Bidder int

const (
	// BidderNone means no successful bid has been placed yet.
	BidderNone Bidder = iota
	Bidder1
	Bidder2
)

func (b Bidder) String() string {
	switch b {
	case BidderNone:
		return "none"
	case Bidder1:
		return "bidder1"
	case Bidder2:
		return "bidder2"
	default:
		return fmt.Sprintf("bidder(%d)", int(b))
	}
}

// BidderState holds a bidder's current expected valuation.
// It is mutated only by the learning rule.
type BidderState struct {
	EV float64 `json:"ev"`
}

// AuctionRunState is the mutable state of a single run. It lives only for the
// duration of RunAuction.
type AuctionRunState struct {
	T          int    `json:"t"`
	P          int    `json:"p"`
	KRemain    int    `json:"k_remain"`
	LastBidder Bidder `json:"last_bidder"`
	Terminated bool   `json:"terminated"`
}

// BidRecord is appended exactly once per successful bid.
type BidRecord struct {
	Price  int    `json:"price"`
	Tick   int    `json:"tick"`
	Bidder Bidder `json:"bidder"`
}

// RunOutcome contains the complete result of a single simulated auction.
type RunOutcome struct {
	// Record lists every successful bid in nondecreasing tick order
	Record []BidRecord `json:"record"`

	// LastBidder is the winner of the auction (BidderNone if nobody bid)
	LastBidder Bidder `json:"last_bidder"`

	FinalPrice int `json:"final_price"`
	FinalTick  int `json:"final_tick"`

	// AuctionHouseProfit is markup_ah*p - gamma_ah*t^2
	AuctionHouseProfit float64 `json:"auction_house_profit"`
}

// AggregateResult contains sample means over independent runs under one parameter set.
type AggregateResult struct {
	MeanPrice  float64 `json:"mean_price"`
	MeanTick   float64 `json:"mean_tick"`
	MeanProfit float64 `json:"mean_profit"`
}

// PolicyEvaluation is the estimate for a single countdown policy.
type PolicyEvaluation struct {
	K       int             `json:"k"`
	Outcome AggregateResult `json:"outcome"`
}

// PolicySearchResult holds the best countdown policy by price and by profit.
type PolicySearchResult struct {
	BestKByPrice          int             `json:"best_k_by_price"`
	OutcomeAtBestKByPrice AggregateResult `json:"outcome_at_best_k_by_price"`

	BestKByProfit          int             `json:"best_k_by_profit"`
	OutcomeAtBestKByProfit AggregateResult `json:"outcome_at_best_k_by_profit"`

	// Candidates contains every evaluated policy in ascending k order
	Candidates []PolicyEvaluation `json:"candidates"`
}
