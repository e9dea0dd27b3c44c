package chainparams

import (
	"github.com/pkg/errors"
)

// PowAlgorithm identifies a proof-of-work hash function
type PowAlgorithm uint8

// Known proof-of-work algorithms
const (
	// PowAlgorithmKeccak is the legacy Keccak-256 hash of the hashing blob
	PowAlgorithmKeccak PowAlgorithm = iota
	// PowAlgorithmArgon2id is a memory-hard Argon2id hash of the hashing blob
	PowAlgorithmArgon2id
	// PowAlgorithmDataset mixes the hashing blob with lookups into a large
	// read-only dataset derived from an epoch seed
	PowAlgorithmDataset
)

var powAlgorithmNames = map[PowAlgorithm]string{
	PowAlgorithmKeccak:   "keccak",
	PowAlgorithmArgon2id: "argon2id",
	PowAlgorithmDataset:  "dataset",
}

func (algorithm PowAlgorithm) String() string {
	if name, ok := powAlgorithmNames[algorithm]; ok {
		return name
	}
	return "unknown"
}

// PowAlgorithmFromString parses an algorithm name
func PowAlgorithmFromString(name string) (PowAlgorithm, error) {
	for algorithm, algorithmName := range powAlgorithmNames {
		if algorithmName == name {
			return algorithm, nil
		}
	}
	return 0, errors.Errorf("unknown proof-of-work algorithm %q", name)
}

// MarshalText implements encoding.TextMarshaler
func (algorithm PowAlgorithm) MarshalText() ([]byte, error) {
	if _, ok := powAlgorithmNames[algorithm]; !ok {
		return nil, errors.Errorf("unknown proof-of-work algorithm %d", algorithm)
	}
	return []byte(algorithm.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (algorithm *PowAlgorithm) UnmarshalText(text []byte) error {
	parsed, err := PowAlgorithmFromString(string(text))
	if err != nil {
		return err
	}
	*algorithm = parsed
	return nil
}
