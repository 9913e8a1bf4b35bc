package entity

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ContractArtifact is the compiled output for one contract.
type ContractArtifact struct {
	ContractName string
	SourceName   string
	ABI          string // raw JSON ABI
	Bytecode     []byte
}

// DeploymentRequest describes a single contract-creation run.
type DeploymentRequest struct {
	ContractName string
	// Artifact is fetched from the artifact source when nil.
	Artifact *ContractArtifact
	// ConstructorArguments are passed in order. Strings are coerced to the
	// constructor's ABI input types.
	ConstructorArguments []any
}

// PendingDeployment is a submitted, not yet confirmed, creation transaction.
type PendingDeployment struct {
	TxHash           common.Hash
	Nonce            uint64
	From             common.Address
	PredictedAddress common.Address
	Transaction      *types.Transaction
}

// Confirmation is the on-chain outcome of a creation transaction.
type Confirmation struct {
	ContractAddress common.Address
	TxHash          common.Hash
	BlockNumber     uint64
	BlockHash       common.Hash
	GasUsed         uint64
}

// DeploymentResult is populated only after on-chain confirmation.
type DeploymentResult struct {
	Network         string         `json:"network"`
	ContractName    string         `json:"contractName"`
	DeployerAddress common.Address `json:"deployerAddress"`
	// DeployerBalanceAtStart is diagnostic only; nil when the query failed.
	DeployerBalanceAtStart *big.Int       `json:"deployerBalanceAtStart,omitempty"`
	FormattedBalance       string         `json:"formattedBalance,omitempty"`
	DeployedAddress        common.Address `json:"deployedAddress"`
	TransactionHash        common.Hash    `json:"transactionHash"`
	BlockNumber            uint64         `json:"blockNumber"`
	GasUsed                uint64         `json:"gasUsed"`
	Duration               time.Duration  `json:"duration"`
}

// DeploymentOutcome pairs a network with the result or error of its run.
type DeploymentOutcome struct {
	Network string
	Result  *DeploymentResult
	Err     error
}
