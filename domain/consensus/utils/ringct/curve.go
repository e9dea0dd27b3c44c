package ringct

import (
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/utils/hashes"
	"github.com/pkg/errors"
)

// ErrInvalidPoint indicates bytes that do not decode to a curve point
var ErrInvalidPoint = errors.New("invalid curve point")

// ErrInvalidScalar indicates bytes that are not a canonical scalar
var ErrInvalidScalar = errors.New("invalid scalar")

type point = secp256k1.JacobianPoint
type scalar = secp256k1.ModNScalar

// generatorH is the second generator used for amounts in commitments. Its
// discrete log with respect to G is unknown.
var generatorH = func() point {
	var g point
	one := new(scalar).SetInt(1)
	secp256k1.ScalarBaseMultNonConst(one, &g)
	encodedG, err := encodePoint(&g)
	if err != nil {
		panic(err)
	}
	return hashToPoint("ringd/generator-h", encodedG[:])
}()

// DecodePoint parses a compressed point
func DecodePoint(encoded externalapi.ECPoint) (*point, error) {
	publicKey, err := secp256k1.ParsePubKey(encoded[:])
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPoint, "%s: %s", encoded, err)
	}
	result := &point{}
	publicKey.AsJacobian(result)
	return result, nil
}

func encodePoint(p *point) (externalapi.ECPoint, error) {
	affine := *p
	affine.ToAffine()
	if isInfinity(&affine) {
		return externalapi.ECPoint{}, errors.Wrap(ErrInvalidPoint, "the point at infinity has no encoding")
	}
	var encoded externalapi.ECPoint
	copy(encoded[:], secp256k1.NewPublicKey(&affine.X, &affine.Y).SerializeCompressed())
	return encoded, nil
}

func mustEncodePoint(p *point) externalapi.ECPoint {
	encoded, err := encodePoint(p)
	if err != nil {
		panic(errors.Wrap(err, "encoding a point derived from a non-zero secret"))
	}
	return encoded
}

func isInfinity(p *point) bool {
	return (p.X.IsZero() && p.Y.IsZero()) || p.Z.IsZero()
}

func decodeScalar(encoded externalapi.ECScalar) (*scalar, error) {
	bytes := [32]byte(encoded)
	result := &scalar{}
	if overflow := result.SetBytes(&bytes); overflow != 0 {
		return nil, errors.Wrapf(ErrInvalidScalar, "%s is not reduced", encoded)
	}
	return result, nil
}

func encodeScalar(s *scalar) externalapi.ECScalar {
	return externalapi.ECScalar(s.Bytes())
}

// hashToScalar maps a domain separated transcript to a scalar
func hashToScalar(domain string, data ...[]byte) *scalar {
	writer := hashes.NewDomainWriter(domain)
	for _, d := range data {
		writer.InfallibleWrite(d)
	}
	result := &scalar{}
	result.SetByteSlice(writer.Finalize().ByteSlice())
	return result
}

// hashToPoint deterministically maps data to a curve point with unknown
// discrete log by hashing it to x coordinates until one is on the curve.
func hashToPoint(domain string, data []byte) point {
	var counter [4]byte
	candidate := make([]byte, externalapi.ECPointSize)
	candidate[0] = 0x02
	for i := uint32(0); ; i++ {
		binary.LittleEndian.PutUint32(counter[:], i)
		x := hashes.Keccak256([]byte(domain), data, counter[:])
		copy(candidate[1:], x.ByteSlice())
		publicKey, err := secp256k1.ParsePubKey(candidate)
		if err != nil {
			continue
		}
		var result point
		publicKey.AsJacobian(&result)
		return result
	}
}

// keyImageBase returns Hp(K), the point a key image of K is a multiple of
func keyImageBase(key externalapi.ECPoint) point {
	return hashToPoint("ringd/key-image", key[:])
}

func scalarBaseMult(k *scalar) *point {
	result := &point{}
	secp256k1.ScalarBaseMultNonConst(k, result)
	return result
}

func scalarMult(k *scalar, p *point) *point {
	result := &point{}
	secp256k1.ScalarMultNonConst(k, p, result)
	return result
}

func addPoints(a, b *point) *point {
	result := &point{}
	secp256k1.AddNonConst(a, b, result)
	return result
}

func negatePoint(p *point) *point {
	result := *p
	result.ToAffine()
	result.Y.Negate(1).Normalize()
	return &result
}

// amountScalar returns amount as a scalar
func amountScalar(amount uint64) *scalar {
	var bytes [32]byte
	binary.BigEndian.PutUint64(bytes[24:], amount)
	result := &scalar{}
	result.SetBytes(&bytes)
	return result
}

// commit returns mask*G + amount*H
func commit(amount uint64, mask *scalar) *point {
	if amount == 0 {
		return scalarBaseMult(mask)
	}
	return addPoints(scalarBaseMult(mask), scalarMult(amountScalar(amount), &generatorH))
}

// Commit returns the encoded commitment to amount with the given mask
func Commit(amount uint64, mask *secp256k1.ModNScalar) (externalapi.ECPoint, error) {
	return encodePoint(commit(amount, mask))
}

// ZeroCommit returns the commitment to amount with mask one. It is the
// implicit commitment of outputs whose amount is public.
func ZeroCommit(amount uint64) externalapi.ECPoint {
	return mustEncodePoint(commit(amount, new(scalar).SetInt(1)))
}
