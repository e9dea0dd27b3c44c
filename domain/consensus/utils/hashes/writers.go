package hashes

import (
	"hash"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// HashWriter is used to incrementally hash data without concatenating all of
// the data to a single buffer. It exposes an io.Writer api and a Finalize
// function to get the resulting hash.
type HashWriter struct {
	hash.Hash
}

// InfallibleWrite is just like write but doesn't return anything
func (h HashWriter) InfallibleWrite(p []byte) {
	// This write can never return an error, this is part of the hash.Hash interface contract.
	_, err := h.Write(p)
	if err != nil {
		panic(errors.Wrap(err, "this should never happen. hash.Hash interface promises to not return errors."))
	}
}

// Finalize returns the resulting hash
func (h HashWriter) Finalize() *externalapi.DomainHash {
	var sum [externalapi.DomainHashSize]byte
	copy(sum[:], h.Sum(nil))
	return externalapi.NewDomainHashFromByteArray(&sum)
}

// NewKeccakWriter returns a writer computing the legacy (pre-standard)
// Keccak-256 used by every consensus hash
func NewKeccakWriter() HashWriter {
	return HashWriter{sha3.NewLegacyKeccak256()}
}

// NewDomainWriter returns a Keccak writer prefixed with a domain separation
// tag
func NewDomainWriter(domain string) HashWriter {
	writer := NewKeccakWriter()
	writer.InfallibleWrite([]byte(domain))
	return writer
}

// NewBlake2bWriter returns a 256-bit BLAKE2b writer keyed with key
func NewBlake2bWriter(key []byte) HashWriter {
	blake, err := blake2b.New256(key)
	if err != nil {
		panic(errors.Wrapf(err, "invalid blake2b key of length %d", len(key)))
	}
	return HashWriter{blake}
}

// Keccak256 returns the Keccak-256 hash of the concatenation of data
func Keccak256(data ...[]byte) *externalapi.DomainHash {
	writer := NewKeccakWriter()
	for _, d := range data {
		writer.InfallibleWrite(d)
	}
	return writer.Finalize()
}
