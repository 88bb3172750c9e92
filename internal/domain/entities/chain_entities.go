package entities

// ChainID identifies a blockchain network. The set of valid ids is fixed at
// configuration load; every route validation starts with IsSupported.
type ChainID string

const (
	ChainEthereum ChainID = "ethereum"
	ChainPolygon  ChainID = "polygon"
	ChainArbitrum ChainID = "arbitrum"
	ChainOptimism ChainID = "optimism"
	ChainBase     ChainID = "base"
	ChainSolana   ChainID = "solana"
)

// Chain is static per-network reference data loaded from configuration.
// Never mutated after load.
type Chain struct {
	ID             ChainID `json:"id"`
	Name           string  `json:"name"`
	NetworkID      int     `json:"network_id"`
	EVM            bool    `json:"evm"`
	RiskMultiplier string  `json:"risk_multiplier"` // decimal string, used by the fee calculator
	GasConstant    string  `json:"gas_constant"`    // flat gas estimate in stablecoin units
	PriceSource    string  `json:"price_source"`    // fixed source family for this chain
}

// Token is immutable stablecoin reference data
type Token struct {
	Symbol   string  `json:"symbol"`
	Chain    ChainID `json:"chain"`
	Address  string  `json:"address"`
	Decimals int     `json:"decimals"`
}

// ChainSet is the static supported-chain set consulted before any route is
// accepted. Built once from configuration and treated as read-only.
type ChainSet struct {
	chains map[ChainID]*Chain
	order  []ChainID
}

// NewChainSet builds a chain set preserving insertion order
func NewChainSet(chains []*Chain) *ChainSet {
	cs := &ChainSet{chains: make(map[ChainID]*Chain, len(chains))}
	for _, c := range chains {
		if _, exists := cs.chains[c.ID]; exists {
			continue
		}
		cs.chains[c.ID] = c
		cs.order = append(cs.order, c.ID)
	}
	return cs
}

// IsSupported reports whether the chain is in the supported set
func (cs *ChainSet) IsSupported(id ChainID) bool {
	_, ok := cs.chains[id]
	return ok
}

// Get returns the chain record, or nil if unsupported
func (cs *ChainSet) Get(id ChainID) *Chain {
	return cs.chains[id]
}

// IsEVM reports whether a supported chain is EVM-compatible.
// Unknown chains are treated as non-EVM.
func (cs *ChainSet) IsEVM(id ChainID) bool {
	c, ok := cs.chains[id]
	return ok && c.EVM
}

// IDs returns all chain ids in configuration order
func (cs *ChainSet) IDs() []ChainID {
	out := make([]ChainID, len(cs.order))
	copy(out, cs.order)
	return out
}
