package chainparams

import (
	"math"

	"github.com/ringnet/ringd/domain/consensus/model/externalapi"
)

const (
	genesisNonceMainnet  = 10000
	genesisNonceTestnet  = 10001
	genesisNonceStagenet = 10002
	genesisNonceSimnet   = 10003
)

// genesisOutputKey is the compressed secp256k1 generator
var genesisOutputKey = externalapi.ECPoint{
	0x02, 0x79, 0xbe, 0x66, 0x7e, 0xf9, 0xdc, 0xbb, 0xac, 0x55, 0xa0, 0x62, 0x95, 0xce,
	0x87, 0x0b, 0x07, 0x02, 0x9b, 0xfc, 0xdb, 0x2d, 0xce, 0x28, 0xd9, 0x59, 0xf2, 0x81,
	0x5b, 0x16, 0xf8, 0x17, 0x98,
}

var genesisExtra = []byte("ringd genesis")

// genesisReward is the base reward of the first block: the full supply
// shifted by the V1 emission speed factor.
const genesisReward = uint64(math.MaxUint64) >> emissionSpeedFactor

func genesisBlock(nonce uint32, minedMoneyUnlockWindow uint64) *externalapi.DomainBlock {
	return &externalapi.DomainBlock{
		Header: &externalapi.DomainBlockHeader{
			MajorVersion: uint8(externalapi.HardForkV1),
			MinorVersion: 0,
			Timestamp:    0,
			PrevHash:     externalapi.ZeroHash,
			Nonce:        nonce,
		},
		MinerTransaction: &externalapi.DomainTransaction{
			Version:    externalapi.TransactionVersionTransparent,
			UnlockTime: minedMoneyUnlockWindow,
			Inputs: []*externalapi.DomainTransactionInput{
				{Type: externalapi.InputTypeGen, Height: 0},
			},
			Outputs: []*externalapi.DomainTransactionOutput{
				{Amount: genesisReward, Key: genesisOutputKey},
			},
			Extra: genesisExtra,
		},
		TransactionHashes: []*externalapi.DomainHash{},
		Transactions:      []*externalapi.DomainTransaction{},
	}
}
