package config

import "time"

// Gas limits used when the node cannot estimate a call.
const (
	GasLimitMint     = uint64(250_000) // safeMint with a URI stored on-chain
	GasLimitTransfer = uint64(120_000) // transferFrom
)

// Timeout constants used by cmd. The gateway and token service impose none
// of their own; cancellation comes from the wallet or from these contexts.
const (
	RPCSelectTimeout = 10 * time.Second // endpoint benchmark
	ReadTimeout      = 2 * time.Minute  // whole-collection scans
	MetadataTimeout  = 20 * time.Second // per-document metadata fetch
)

// DefaultIPFSGateway is used to resolve ipfs:// URIs when none is configured.
const DefaultIPFSGateway = "https://ipfs.io"
