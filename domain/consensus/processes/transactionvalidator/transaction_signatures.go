package transactionvalidator

import (
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/consensushashing"
	"github.com/ringnet/ringd/domain/consensus/utils/ringct"
	"github.com/ringnet/ringd/infrastructure/logger"
)

// VerifyTransactionSignatures verifies the ring signatures, range proofs and
// balance proofs of transactions whose ring members are populated. All of
// them are first checked as one randomized batch. If the batch fails, each
// transaction is checked on its own so that exactly the invalid ones are
// reported. The returned slice holds the result of every transaction, in
// order. The error is non-nil only for failures that are not verdicts.
func (v *transactionValidator) VerifyTransactionSignatures(transactions []*externalapi.DomainTransaction) ([]error, error) {
	onEnd := logger.LogAndMeasureExecutionTime(log, "VerifyTransactionSignatures")
	defer onEnd()

	results := make([]error, len(transactions))
	batch, err := ringct.NewBatchVerifier()
	if err != nil {
		return nil, err
	}

	type batchMember struct {
		index  int
		hash   *externalapi.DomainHash
		checks *ringct.Checks
	}
	members := make([]batchMember, 0, len(transactions))
	for i, tx := range transactions {
		hash, err := consensushashing.TransactionHash(tx)
		if err != nil {
			results[i] = err
			continue
		}
		if v.verifiedTransactionCache.Contains(hash) {
			continue
		}
		checks, err := ringct.TransactionChecks(tx, v.params.RangeProofBits)
		if err != nil {
			verdict := signatureVerdict(err, hash)
			if verdict == nil {
				return nil, err
			}
			results[i] = verdict
			continue
		}
		batch.Add(checks)
		members = append(members, batchMember{index: i, hash: hash, checks: checks})
	}

	if len(members) == 0 {
		return results, nil
	}

	if batch.Verify() {
		for _, member := range members {
			v.verifiedTransactionCache.Add(member.hash)
		}
		return results, nil
	}

	log.Debugf("A batch of %d transactions failed verification, verifying them one by one", len(members))
	for _, member := range members {
		if !member.checks.Verify() {
			results[member.index] = errors.Wrapf(ruleerrors.ErrInvalidRingSignature,
				"signatures of transaction %s do not verify", member.hash)
			continue
		}
		v.verifiedTransactionCache.Add(member.hash)
	}
	return results, nil
}

// signatureVerdict turns an error building the checks of a transaction into
// a rule error. It returns nil for errors that say nothing about the
// transaction.
func signatureVerdict(err error, hash *externalapi.DomainHash) error {
	switch {
	case errors.Is(err, ringct.ErrSignatureShape):
		return errors.Wrapf(ruleerrors.ErrMalformedTransaction, "transaction %s: %s", hash, err)
	case errors.Is(err, ringct.ErrInvalidPoint), errors.Is(err, ringct.ErrInvalidScalar):
		return errors.Wrapf(ruleerrors.ErrInvalidRingSignature, "transaction %s: %s", hash, err)
	default:
		return nil
	}
}
