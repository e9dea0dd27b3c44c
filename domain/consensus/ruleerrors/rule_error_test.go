package ruleerrors

import (
	"errors"
	"testing"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	pkgerrors "github.com/pkg/errors"
)

func TestNewErrInvalidTransactionsInBatch(t *testing.T) {
	hash := externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{255, 255, 255})
	outer := NewErrInvalidTransactionsInBatch([]InvalidTransaction{{Index: 3, Hash: hash, Error: ErrInvalidRingSignature}})
	expectedOuterErr := "ErrInvalidRingSignature: [(3 ffffff0000000000000000000000000000000000000000000000000000000000: ErrInvalidRingSignature)]"

	inner := &ErrInvalidTransactionsInBatch{}
	if !errors.As(outer, inner) {
		t.Fatal("TestNewErrInvalidTransactionsInBatch: Outer should contain ErrInvalidTransactionsInBatch in it")
	}
	if len(inner.InvalidTransactions) != 1 || inner.InvalidTransactions[0].Index != 3 {
		t.Fatalf("TestNewErrInvalidTransactionsInBatch: unexpected inner %v", inner.InvalidTransactions)
	}

	rule := &RuleError{}
	if !errors.As(outer, rule) {
		t.Fatal("TestNewErrInvalidTransactionsInBatch: Outer should contain RuleError in it")
	}
	if rule.message != "ErrInvalidRingSignature" {
		t.Fatalf("TestNewErrInvalidTransactionsInBatch: Expected message = 'ErrInvalidRingSignature', found: '%s'", rule.message)
	}
	if outer.Error() != expectedOuterErr {
		t.Fatalf("TestNewErrInvalidTransactionsInBatch: Expected %s. found: %s", expectedOuterErr, outer.Error())
	}
}

func TestDeferredErrorMatchesByKind(t *testing.T) {
	err := pkgerrors.Wrapf(NewErrMissingRingMember(0, 42), "input 1")
	if !errors.Is(err, ErrMissingRingMember) {
		t.Fatalf("expected %s to match ErrMissingRingMember", err)
	}
	if errors.Is(err, ErrMissingParent) {
		t.Fatalf("expected %s not to match ErrMissingParent", err)
	}
	missing := MissingRingMember{}
	if !errors.As(err, &missing) || missing.GlobalIndex != 42 {
		t.Fatalf("expected the missing ring member details, got %+v", missing)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Category
	}{
		{"nil", nil, CategoryNone},
		{"rule", pkgerrors.Wrapf(ErrDoubleSpend, "key image %d", 1), CategoryRejection},
		{"batch", NewErrInvalidTransactionsInBatch(nil), CategoryRejection},
		{"deferred", NewErrMissingRingMember(1, 2), CategoryDeferred},
		{"state", pkgerrors.Wrapf(ErrOutOfOrderCommit, "height %d", 11), CategoryState},
		{"persist", NewErrPersistFailed(pkgerrors.New("disk full")), CategoryState},
		{"overloaded", pkgerrors.WithStack(ErrOverloaded), CategoryOverloaded},
		{"other", pkgerrors.New("boom"), CategoryOther},
	}
	for _, test := range tests {
		if category := Classify(test.err); category != test.expected {
			t.Errorf("%s: expected category %s, got %s", test.name, test.expected, category)
		}
	}
}

func TestNewVerificationOutcome(t *testing.T) {
	outcome, err := NewVerificationOutcome(pkgerrors.Wrap(ErrWrongParent, "stale"), nil)
	if err != nil {
		t.Fatalf("NewVerificationOutcome: %+v", err)
	}
	if outcome.Status != externalapi.StatusRejected || !errors.Is(outcome.Err, ErrWrongParent) {
		t.Fatalf("unexpected outcome %s", outcome)
	}

	outcome, err = NewVerificationOutcome(ErrMissingParent, nil)
	if err != nil || outcome.Status != externalapi.StatusDeferred {
		t.Fatalf("expected a deferred outcome, got %v, %v", outcome, err)
	}

	_, err = NewVerificationOutcome(ErrStoreHalted, nil)
	if !errors.Is(err, ErrStoreHalted) {
		t.Fatalf("expected the state error to be returned, got %v", err)
	}
}
