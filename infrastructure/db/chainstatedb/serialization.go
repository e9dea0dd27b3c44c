package chainstatedb

import (
	"bytes"
	"io"
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
	"github.com/ringnet/ringd/domain/consensus/utils/mathutil"
	"github.com/ringnet/ringd/domain/consensus/utils/multiset"
	"github.com/ringnet/ringd/domain/consensus/utils/serialization"
)

// chainContextVersion is bumped whenever the encoding below changes
const chainContextVersion uint8 = 1

// maxWindowLength bounds the windows read back from the database
const maxWindowLength = 1 << 20

func serializeOutputCommitment(output *externalapi.OutputCommitment) ([]byte, error) {
	w := &bytes.Buffer{}
	err := serialization.WriteElements(w, output.Key, output.Commitment, output.Height, output.UnlockTime)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func deserializeOutputCommitment(outputBytes []byte) (*externalapi.OutputCommitment, error) {
	output := &externalapi.OutputCommitment{}
	err := serialization.ReadElements(bytes.NewReader(outputBytes),
		&output.Key, &output.Commitment, &output.Height, &output.UnlockTime)
	if err != nil {
		return nil, errors.Wrap(err, "corrupted output")
	}
	return output, nil
}

func writeUint256(w io.Writer, value *uint256.Int) error {
	valueBytes := value.Bytes32()
	_, err := w.Write(valueBytes[:])
	return err
}

func readUint256(r io.Reader, value *uint256.Int) error {
	var valueBytes [32]byte
	_, err := io.ReadFull(r, valueBytes[:])
	if err != nil {
		return errors.WithStack(err)
	}
	value.SetBytes32(valueBytes[:])
	return nil
}

func writeUint64Window(w io.Writer, window []uint64) error {
	err := serialization.WriteVarInt(w, uint64(len(window)))
	if err != nil {
		return err
	}
	for _, value := range window {
		err := serialization.WriteElement(w, value)
		if err != nil {
			return err
		}
	}
	return nil
}

func readLength(r io.Reader) (int, error) {
	length, err := serialization.ReadVarInt(r)
	if err != nil {
		return 0, err
	}
	if length > maxWindowLength {
		return 0, errors.Wrapf(serialization.ErrMalformed, "window of length %d exceeds %d", length, maxWindowLength)
	}
	return int(length), nil
}

func readUint64Window(r io.Reader) ([]uint64, error) {
	length, err := readLength(r)
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	window := make([]uint64, length)
	for i := range window {
		err := serialization.ReadElement(r, &window[i])
		if err != nil {
			return nil, err
		}
	}
	return window, nil
}

func serializeChainContext(chainContext *externalapi.ChainContext) ([]byte, error) {
	w := &bytes.Buffer{}
	err := serialization.WriteElements(w, chainContextVersion, chainContext.Height, !chainContext.IsEmpty())
	if err != nil {
		return nil, err
	}
	if !chainContext.IsEmpty() {
		err = serialization.WriteElement(w, chainContext.TopHash)
		if err != nil {
			return nil, err
		}
	}
	err = serialization.WriteElement(w, uint8(chainContext.HardForkVersion))
	if err != nil {
		return nil, err
	}

	for _, value := range []*uint256.Int{
		&chainContext.Difficulty, &chainContext.NextDifficulty, &chainContext.CumulativeDifficulty} {

		err := writeUint256(w, value)
		if err != nil {
			return nil, err
		}
	}
	err = serialization.WriteElements(w, chainContext.AlreadyGeneratedCoins, chainContext.EffectiveMedianWeight)
	if err != nil {
		return nil, err
	}

	for _, window := range [][]uint64{chainContext.TimestampWindow, chainContext.DifficultyTimestamps,
		chainContext.BlockWeightWindow, chainContext.LongTermWeightWindow} {

		err := writeUint64Window(w, window)
		if err != nil {
			return nil, err
		}
	}

	err = serialization.WriteVarInt(w, uint64(len(chainContext.DifficultyCumulative)))
	if err != nil {
		return nil, err
	}
	for i := range chainContext.DifficultyCumulative {
		err := writeUint256(w, &chainContext.DifficultyCumulative[i])
		if err != nil {
			return nil, err
		}
	}

	err = serialization.WriteVarInt(w, uint64(len(chainContext.HardForkVotes)))
	if err != nil {
		return nil, err
	}
	for _, vote := range chainContext.HardForkVotes {
		err := serialization.WriteElement(w, uint8(vote))
		if err != nil {
			return nil, err
		}
	}

	err = serialization.WriteVarInt(w, uint64(len(chainContext.SeedHashes)))
	if err != nil {
		return nil, err
	}
	for _, seedHash := range chainContext.SeedHashes {
		err := serialization.WriteElements(w, seedHash.Height, seedHash.Hash)
		if err != nil {
			return nil, err
		}
	}

	// Buckets are written in ascending order so that equal contexts
	// serialize to equal bytes
	amounts := make([]uint64, 0, len(chainContext.OutputAmountIndex))
	for amount := range chainContext.OutputAmountIndex {
		amounts = append(amounts, amount)
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i] < amounts[j] })
	err = serialization.WriteVarInt(w, uint64(len(amounts)))
	if err != nil {
		return nil, err
	}
	for _, amount := range amounts {
		err := serialization.WriteElements(w, amount, chainContext.OutputAmountIndex[amount])
		if err != nil {
			return nil, err
		}
	}

	err = serialization.WriteElement(w, chainContext.KeyImageSet.Serialize())
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func deserializeChainContext(contextBytes []byte) (*externalapi.ChainContext, error) {
	chainContext, err := readChainContext(bytes.NewReader(contextBytes))
	if err != nil {
		return nil, errors.Wrap(err, "corrupted chain context")
	}
	return chainContext, nil
}

func readChainContext(r *bytes.Reader) (*externalapi.ChainContext, error) {
	chainContext := &externalapi.ChainContext{}

	var version uint8
	var hasTop bool
	err := serialization.ReadElements(r, &version, &chainContext.Height, &hasTop)
	if err != nil {
		return nil, err
	}
	if version != chainContextVersion {
		return nil, errors.Errorf("unknown chain context encoding version %d", version)
	}
	if hasTop {
		err = serialization.ReadElement(r, &chainContext.TopHash)
		if err != nil {
			return nil, err
		}
	}
	var hardForkVersion uint8
	err = serialization.ReadElement(r, &hardForkVersion)
	if err != nil {
		return nil, err
	}
	chainContext.HardForkVersion, err = externalapi.HardForkVersionFromByte(hardForkVersion)
	if err != nil {
		return nil, err
	}

	for _, value := range []*uint256.Int{
		&chainContext.Difficulty, &chainContext.NextDifficulty, &chainContext.CumulativeDifficulty} {

		err := readUint256(r, value)
		if err != nil {
			return nil, err
		}
	}
	err = serialization.ReadElements(r, &chainContext.AlreadyGeneratedCoins, &chainContext.EffectiveMedianWeight)
	if err != nil {
		return nil, err
	}

	for _, window := range []*[]uint64{&chainContext.TimestampWindow, &chainContext.DifficultyTimestamps,
		&chainContext.BlockWeightWindow, &chainContext.LongTermWeightWindow} {

		*window, err = readUint64Window(r)
		if err != nil {
			return nil, err
		}
	}
	chainContext.SortedLongTermWeights = mathutil.SortedCopy(chainContext.LongTermWeightWindow)

	length, err := readLength(r)
	if err != nil {
		return nil, err
	}
	chainContext.DifficultyCumulative = make([]uint256.Int, length)
	for i := range chainContext.DifficultyCumulative {
		err := readUint256(r, &chainContext.DifficultyCumulative[i])
		if err != nil {
			return nil, err
		}
	}

	length, err = readLength(r)
	if err != nil {
		return nil, err
	}
	chainContext.HardForkVotes = make([]externalapi.HardForkVersion, length)
	for i := range chainContext.HardForkVotes {
		var vote uint8
		err := serialization.ReadElement(r, &vote)
		if err != nil {
			return nil, err
		}
		chainContext.HardForkVotes[i] = externalapi.HardForkVersion(vote)
	}

	length, err = readLength(r)
	if err != nil {
		return nil, err
	}
	chainContext.SeedHashes = make([]externalapi.SeedHash, length)
	for i := range chainContext.SeedHashes {
		err := serialization.ReadElements(r, &chainContext.SeedHashes[i].Height, &chainContext.SeedHashes[i].Hash)
		if err != nil {
			return nil, err
		}
	}

	length, err = readLength(r)
	if err != nil {
		return nil, err
	}
	chainContext.OutputAmountIndex = make(map[uint64]uint64, length)
	for i := 0; i < length; i++ {
		var amount, count uint64
		err := serialization.ReadElements(r, &amount, &count)
		if err != nil {
			return nil, err
		}
		chainContext.OutputAmountIndex[amount] = count
	}

	var keyImageSetBytes []byte
	err = serialization.ReadElement(r, &keyImageSetBytes)
	if err != nil {
		return nil, err
	}
	chainContext.KeyImageSet, err = multiset.FromBytes(keyImageSetBytes)
	if err != nil {
		return nil, err
	}

	if r.Len() != 0 {
		return nil, errors.Wrapf(serialization.ErrMalformed, "%d trailing bytes", r.Len())
	}

	// Empty windows are restored as nil, the way they are built in memory
	if len(chainContext.DifficultyCumulative) == 0 {
		chainContext.DifficultyCumulative = nil
	}
	if len(chainContext.HardForkVotes) == 0 {
		chainContext.HardForkVotes = nil
	}
	if len(chainContext.SeedHashes) == 0 {
		chainContext.SeedHashes = nil
	}
	return chainContext, nil
}
