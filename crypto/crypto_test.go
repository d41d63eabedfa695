package crypto

import (
	"testing"
	"time"
)

func TestSha256Hex(t *testing.T) {
	// Known digest of the empty string.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := Sha256Hex(""); got != want {
		t.Errorf("Sha256Hex(\"\") = %q, want %q", got, want)
	}
	if got := Sha256Hex("+15551234567"); !ValidSha256Hex(got) {
		t.Errorf("Sha256Hex output %q is not a valid digest", got)
	}
}

func TestValidSha256Hex(t *testing.T) {
	valid := Sha256Hex("x")
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"valid", valid, true},
		{"empty", "", false},
		{"too short", valid[:63], false},
		{"too long", valid + "0", false},
		{"uppercase", "ABCDEF" + valid[6:], false},
		{"non-hex", "zz" + valid[2:], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidSha256Hex(tt.in); got != tt.want {
				t.Errorf("ValidSha256Hex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestConstantTimeEqual(t *testing.T) {
	if !ConstantTimeEqual("secret", "secret") {
		t.Error("equal strings compared unequal")
	}
	if ConstantTimeEqual("secret", "secreT") {
		t.Error("different strings compared equal")
	}
	if ConstantTimeEqual("short", "longer-string") {
		t.Error("different lengths compared equal")
	}
}

func TestConstantTimeEqualMismatchPosition(t *testing.T) {
	allowed := Sha256Hex("+15551234567")

	// Same length, differing only in the last character vs. differing
	// everywhere. Both must compare unequal, and the running time must not
	// reveal where the first mismatching byte sits.
	last := byte('0')
	if allowed[63] == '0' {
		last = '1'
	}
	nearMiss := allowed[:63] + string(last)
	allMiss := Sha256Hex("someone-else")
	if allMiss == allowed {
		t.Fatal("test digests collide")
	}

	if ConstantTimeEqual(nearMiss, allowed) {
		t.Fatal("near-miss digest compared equal")
	}
	if ConstantTimeEqual(allMiss, allowed) {
		t.Fatal("all-miss digest compared equal")
	}

	measure := func(candidate string) time.Duration {
		const rounds = 200000
		start := time.Now()
		for i := 0; i < rounds; i++ {
			ConstantTimeEqual(candidate, allowed)
		}
		return time.Since(start)
	}
	measure(allowed) // warm up
	near := measure(nearMiss)
	all := measure(allMiss)

	// Coarse bound: a short-circuiting comparison would make the all-miss
	// case dramatically faster than the near-miss case.
	if near > 4*all || all > 4*near {
		t.Errorf("comparison time depends on mismatch position: near-miss %v vs all-miss %v", near, all)
	}
}

func TestSecretHashing(t *testing.T) {
	hash, err := HashSecret("pairing-code-123")
	if err != nil {
		t.Fatalf("HashSecret failed: %v", err)
	}
	if hash == "pairing-code-123" {
		t.Fatal("secret stored in the clear")
	}
	if !CompareSecret(hash, "pairing-code-123") {
		t.Error("CompareSecret rejected the right secret")
	}
	if CompareSecret(hash, "pairing-code-124") {
		t.Error("CompareSecret accepted a wrong secret")
	}
}
