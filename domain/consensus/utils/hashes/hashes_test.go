package hashes

import (
	"testing"
)

func TestKeccak256(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Legacy Keccak-256, not SHA3-256
		{"", "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{"abc", "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
	}
	for _, test := range tests {
		hash := Keccak256([]byte(test.input))
		if hash.String() != test.expected {
			t.Errorf("Keccak256(%q): expected %s, got %s", test.input, test.expected, hash)
		}
	}
}

func TestDomainWriterSeparates(t *testing.T) {
	a := NewDomainWriter("a")
	a.InfallibleWrite([]byte("payload"))
	b := NewDomainWriter("b")
	b.InfallibleWrite([]byte("payload"))
	if a.Finalize().Equal(b.Finalize()) {
		t.Fatalf("different domains produced the same hash")
	}
}
