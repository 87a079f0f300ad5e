package domain

import (
	"fmt"
	"regexp"
	"strings"

	"stablecoin-gateway/pkg/evmaddr"
)

// Network identifies the chain a payment settles on.
type Network string

const (
	NetworkEthereum  Network = "ethereum"
	NetworkPolygon   Network = "polygon"
	NetworkBSC       Network = "bsc"
	NetworkArbitrum  Network = "arbitrum"
	NetworkOptimism  Network = "optimism"
	NetworkBase      Network = "base"
	NetworkAvalanche Network = "avalanche"
	NetworkTron      Network = "tron"
	NetworkSolana    Network = "solana"
)

// DefaultRequiredConfirmations is the block depth after which a transaction
// on each network is treated as final.
var DefaultRequiredConfirmations = map[Network]int{
	NetworkEthereum:  12,
	NetworkPolygon:   128,
	NetworkBSC:       15,
	NetworkArbitrum:  20,
	NetworkOptimism:  20,
	NetworkBase:      20,
	NetworkAvalanche: 12,
	NetworkTron:      19,
	NetworkSolana:    32,
}

var (
	tronAddrRe   = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)
	solanaAddrRe = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)
)

// ParseNetwork normalises a user supplied network name.
func ParseNetwork(s string) (Network, bool) {
	n := Network(strings.ToLower(strings.TrimSpace(s)))
	_, ok := DefaultRequiredConfirmations[n]
	return n, ok
}

// IsEVM reports whether addresses on n are 20-byte hex accounts.
func (n Network) IsEVM() bool {
	switch n {
	case NetworkTron, NetworkSolana:
		return false
	}
	_, ok := DefaultRequiredConfirmations[n]
	return ok
}

// ValidateAddress checks that addr is a well-formed receiving address on n.
func (n Network) ValidateAddress(addr string) error {
	switch {
	case n.IsEVM():
		if err := evmaddr.Validate(addr); err != nil {
			return fmt.Errorf("%s address: %w", n, err)
		}
	case n == NetworkTron:
		if !tronAddrRe.MatchString(addr) {
			return fmt.Errorf("tron address: malformed")
		}
	case n == NetworkSolana:
		if !solanaAddrRe.MatchString(addr) {
			return fmt.Errorf("solana address: malformed")
		}
	default:
		return fmt.Errorf("unsupported network %q", n)
	}
	return nil
}

// FinalityPolicy maps networks to their required confirmation depth.
type FinalityPolicy map[Network]int

// NewFinalityPolicy starts from the defaults and applies overrides keyed by
// network name. Unknown names are ignored.
func NewFinalityPolicy(overrides map[string]int) FinalityPolicy {
	p := make(FinalityPolicy, len(DefaultRequiredConfirmations))
	for n, depth := range DefaultRequiredConfirmations {
		p[n] = depth
	}
	for name, depth := range overrides {
		if n, ok := ParseNetwork(name); ok && depth > 0 {
			p[n] = depth
		}
	}
	return p
}

// Required returns the confirmation depth for n.
func (p FinalityPolicy) Required(n Network) (int, bool) {
	depth, ok := p[n]
	return depth, ok
}
