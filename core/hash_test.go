package core

import (
	"crypto/sha256"
	"fmt"
	"testing"
)

func TestComputeParamsHash(t *testing.T) {
	params := DefaultParameters()

	hash := ComputeParamsHash(params, 42)

	// Verify hash is 64 characters (SHA256 hex encoding)
	if len(hash) != 64 {
		t.Errorf("ComputeParamsHash() hash length = %d, want 64", len(hash))
	}

	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			t.Errorf("ComputeParamsHash() contains non-hex character: %c", c)
		}
	}

	if hash != ComputeParamsHash(params, 42) {
		t.Errorf("ComputeParamsHash() not deterministic")
	}

	// Verify exact hash calculation
	expectedData := "ev1_i=10.000000|ev2_i=10.000000|k=10|p_learn=0.600000|e_i=3.000000|gamma_i=0.000300|theta=0.800000|p_hold=0.100000|markup_ah=0.240000|gamma_ah=0.000500|seed=42"
	expectedHash := fmt.Sprintf("%x", sha256.Sum256([]byte(expectedData)))
	if hash != expectedHash {
		t.Errorf("ComputeParamsHash() = %v, want %v", hash, expectedHash)
	}
}

func TestComputeParamsHash_DifferentInputs(t *testing.T) {
	base := DefaultParameters()
	hash := ComputeParamsHash(base, 1)

	if hash == ComputeParamsHash(base, 2) {
		t.Errorf("Different seeds should produce different hashes")
	}
	if hash == ComputeParamsHash(base.WithK(11), 1) {
		t.Errorf("Different k should produce different hashes")
	}
	if hash == ComputeParamsHash(base.WithValuations(10, 12), 1) {
		t.Errorf("Different valuations should produce different hashes")
	}
	if hash == ComputeParamsHash(base.WithPLearn(0.5), 1) {
		t.Errorf("Different p_learn should produce different hashes")
	}
}

func TestComputeParamsHash_FloatFormatting(t *testing.T) {
	// Same to 6 decimal places
	a := DefaultParameters().WithPLearn(0.1234560)
	b := DefaultParameters().WithPLearn(0.12345600000)
	if ComputeParamsHash(a, 0) != ComputeParamsHash(b, 0) {
		t.Errorf("Values with same 6 decimal places should produce same hash")
	}

	c := DefaultParameters().WithPLearn(0.123457)
	if ComputeParamsHash(a, 0) == ComputeParamsHash(c, 0) {
		t.Errorf("Values with different 6th decimal should produce different hashes")
	}
}
