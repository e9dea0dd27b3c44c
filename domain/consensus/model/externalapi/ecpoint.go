package externalapi

import (
	"encoding/hex"
)

// ECPointSize is the size of a compressed curve point
const ECPointSize = 33

// ECScalarSize is the size of a serialized curve scalar
const ECScalarSize = 32

// ECPoint is a compressed curve point as it appears on the wire. Output keys,
// key images and amount commitments are all ECPoints. Whether the bytes
// decode to a valid point is checked by the verifier, not by this type.
type ECPoint [ECPointSize]byte

// String returns the hex encoding of the point
func (p ECPoint) String() string {
	return hex.EncodeToString(p[:])
}

// ECScalar is a big-endian curve scalar as it appears on the wire
type ECScalar [ECScalarSize]byte

// String returns the hex encoding of the scalar
func (s ECScalar) String() string {
	return hex.EncodeToString(s[:])
}

// KeyImage uniquely identifies a spent output without revealing it
type KeyImage = ECPoint
