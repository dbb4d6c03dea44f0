package core

import (
	"crypto/sha256"
	"fmt"
)

// ComputeParamsHash fingerprints a parameter set together with the seed that
// drove its simulation. Reports and the table store use it as a provenance key.
//
// Formula: SHA256("ev1_i=%.6f|ev2_i=%.6f|k=%d|...|seed=%d")
//
// Floats are formatted to exactly 6 decimal places to ensure consistent hashing
// regardless of how the float is represented in memory.
func ComputeParamsHash(params ModelParameters, seed uint64) string {
	data := fmt.Sprintf("ev1_i=%.6f|ev2_i=%.6f|k=%d|p_learn=%.6f|e_i=%.6f|gamma_i=%.6f|theta=%.6f|p_hold=%.6f|markup_ah=%.6f|gamma_ah=%.6f|seed=%d",
		params.EV1Initial,
		params.EV2Initial,
		params.K,
		params.PLearn,
		params.EJump,
		params.GammaBidder,
		params.Theta,
		params.PHold,
		params.MarkupAH,
		params.GammaAH,
		seed,
	)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
