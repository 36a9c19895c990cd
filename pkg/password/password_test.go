package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	record, err := Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}

	parts := strings.Split(record, ".")
	if len(parts) != 2 {
		t.Fatalf("expected digest.salt format, got %q", record)
	}
	if len(parts[0]) != digestLength*2 || len(parts[1]) != saltLength*2 {
		t.Fatalf("unexpected component lengths: digest=%d salt=%d", len(parts[0]), len(parts[1]))
	}

	if !Verify("correct horse battery staple", record) {
		t.Fatalf("expected correct password to verify")
	}
	if Verify("wrong password", record) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestHashProducesUniqueSalts(t *testing.T) {
	first, err := Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	second, err := Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash() error: %v", err)
	}
	if first == second {
		t.Fatalf("expected different records for same password (random salt)")
	}
}

func TestVerifyMalformedRecord(t *testing.T) {
	tests := []struct {
		name   string
		record string
	}{
		{"empty", ""},
		{"no separator", "deadbeef"},
		{"too many parts", "aa.bb.cc"},
		{"non-hex digest", "zz.00112233445566778899aabbccddeeff"},
		{"non-hex salt", "00112233.zz"},
		{"wrong salt length", "00112233.aabb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Malformed records must behave like a mismatch, never panic.
			if Verify("anything", tt.record) {
				t.Fatalf("expected malformed record %q to fail verification", tt.record)
			}
		})
	}
}
