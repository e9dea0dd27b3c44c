package ringct

import (
	"crypto/rand"
	"encoding/binary"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/pkg/errors"
)

type term struct {
	coefficient scalar
	base        point
}

// linearCheck asserts that g*G + h*H + sum(terms) is the point at infinity
type linearCheck struct {
	g     scalar
	h     scalar
	terms []term
}

func (c *linearCheck) addG(s *scalar) *linearCheck {
	c.g.Add(s)
	return c
}

func (c *linearCheck) addH(s *scalar) *linearCheck {
	c.h.Add(s)
	return c
}

func (c *linearCheck) add(s *scalar, p *point) *linearCheck {
	c.terms = append(c.terms, term{coefficient: *s, base: *p})
	return c
}

func (c *linearCheck) subtract(p *point) *linearCheck {
	minusOne := new(scalar).SetInt(1)
	minusOne.Negate()
	return c.add(minusOne, p)
}

// Checks is the set of curve equations that must hold for a transaction's
// signatures to be valid. Checks from many transactions can be folded into
// a single BatchVerifier.
type Checks struct {
	checks []*linearCheck
}

func (c *Checks) newCheck() *linearCheck {
	check := &linearCheck{}
	c.checks = append(c.checks, check)
	return check
}

// Len returns the number of equations
func (c *Checks) Len() int {
	return len(c.checks)
}

// Verify evaluates every equation on its own
func (c *Checks) Verify() bool {
	for _, check := range c.checks {
		if !evaluate(&check.g, &check.h, check.terms) {
			return false
		}
	}
	return true
}

func evaluate(g, h *scalar, terms []term) bool {
	sum := scalarBaseMult(g)
	if !h.IsZero() {
		sum = addPoints(sum, scalarMult(h, &generatorH))
	}
	for i := range terms {
		if terms[i].coefficient.IsZero() {
			continue
		}
		sum = addPoints(sum, scalarMult(&terms[i].coefficient, &terms[i].base))
	}
	sum.ToAffine()
	return isInfinity(sum)
}

// BatchVerifier verifies the equations of many transactions at once by
// checking a random linear combination of them. The G and H coefficients of
// all equations are merged so that each costs a single multiplication.
type BatchVerifier struct {
	seed    [32]byte
	counter uint64
	g       scalar
	h       scalar
	terms   []term
	checks  int
}

// NewBatchVerifier returns an empty BatchVerifier with fresh random weights
func NewBatchVerifier() (*BatchVerifier, error) {
	verifier := &BatchVerifier{}
	_, err := rand.Read(verifier.seed[:])
	if err != nil {
		return nil, errors.Wrap(err, "could not seed batch weights")
	}
	return verifier, nil
}

func (b *BatchVerifier) nextWeight() *scalar {
	var counter [8]byte
	binary.LittleEndian.PutUint64(counter[:], b.counter)
	b.counter++
	weight := hashToScalar("ringd/batch-weight", b.seed[:], counter[:])
	if weight.IsZero() {
		weight.SetInt(1)
	}
	return weight
}

// Add folds checks into the batch
func (b *BatchVerifier) Add(checks *Checks) {
	for _, check := range checks.checks {
		weight := b.nextWeight()
		b.g.Add(new(scalar).Mul2(weight, &check.g))
		b.h.Add(new(scalar).Mul2(weight, &check.h))
		for _, t := range check.terms {
			b.terms = append(b.terms, term{
				coefficient: *new(scalar).Mul2(weight, &t.coefficient),
				base:        t.base,
			})
		}
		b.checks++
	}
}

// Len returns the number of equations folded into the batch
func (b *BatchVerifier) Len() int {
	return b.checks
}

// Verify returns true if every equation added to the batch holds, except
// with negligible probability
func (b *BatchVerifier) Verify() bool {
	if b.checks == 0 {
		return true
	}
	return evaluate(&b.g, &b.h, b.terms)
}

// RandomScalar returns a uniformly random non-zero scalar
func RandomScalar() (*secp256k1.ModNScalar, error) {
	privateKey, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &privateKey.Key, nil
}
