package consensushashing

import (
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/ruleerrors"
	"github.com/ringnet/ringd/domain/consensus/utils/hashes"
	"github.com/ringnet/ringd/domain/consensus/utils/serialization"
)

// TransactionHash returns the hash of the full encoding of tx. It is the
// transaction's id. A transaction that cannot be encoded is reported as
// ErrMalformedTransaction.
func TransactionHash(tx *externalapi.DomainTransaction) (*externalapi.DomainHash, error) {
	writer := hashes.NewKeccakWriter()
	// The keccak writer never fails, so the only error is an unencodable tx
	err := serialization.SerializeTransaction(writer, tx)
	if err != nil {
		return nil, errors.Wrapf(ruleerrors.ErrMalformedTransaction, "%s", err)
	}
	return writer.Finalize(), nil
}

// TransactionPrefixHash returns the hash of the signed prefix of tx
func TransactionPrefixHash(tx *externalapi.DomainTransaction) (*externalapi.DomainHash, error) {
	writer := hashes.NewKeccakWriter()
	err := serialization.SerializeTransactionPrefix(writer, tx)
	if err != nil {
		return nil, errors.Wrapf(ruleerrors.ErrMalformedTransaction, "%s", err)
	}
	return writer.Finalize(), nil
}

// SignatureMessage returns the message every ring signature of tx signs:
// the prefix hash bound to the fee and pseudo-outputs.
func SignatureMessage(tx *externalapi.DomainTransaction) (*externalapi.DomainHash, error) {
	prefixHash, err := TransactionPrefixHash(tx)
	if err != nil {
		return nil, err
	}
	writer := hashes.NewDomainWriter("ringd/signature-message")
	writer.InfallibleWrite(prefixHash.ByteSlice())
	err = serialization.SerializeSignatureBase(writer, tx)
	if err != nil {
		return nil, errors.Wrapf(ruleerrors.ErrMalformedTransaction, "%s", err)
	}
	return writer.Finalize(), nil
}
