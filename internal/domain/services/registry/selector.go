package registry

import (
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
	domainErrors "github.com/stableroute/stableroute_service/internal/domain/errors"
	"github.com/stableroute/stableroute_service/pkg/metrics"
)

// LargeAmountThreshold is where pooled-liquidity bridges start winning over
// the default bridge on EVM-to-EVM routes.
var LargeAmountThreshold = decimal.NewFromInt(500000)

// Selector picks a bridge for a route. A preferred override always wins, even
// when the pinned bridge is inactive; callers that need an active bridge are
// expected to have pinned one.
type Selector struct {
	registry *Registry
	chains   *entities.ChainSet
	logger   *zap.Logger
}

// NewSelector builds a selector over the registry and supported chain set
func NewSelector(registry *Registry, chains *entities.ChainSet, logger *zap.Logger) *Selector {
	return &Selector{registry: registry, chains: chains, logger: logger}
}

// Select resolves the bridge for a cross-chain leg.
//
// A pin for the destination token short-circuits everything. Otherwise
// candidates are the active bridges serving the route, and the pick follows
// the amount and chain profile: messaging bridges for non-EVM legs, pooled
// liquidity for very large amounts, highest priority otherwise.
func (s *Selector) Select(src, dst entities.ChainID, token string, amount decimal.Decimal) (*entities.Bridge, error) {
	if pinned, ok := s.registry.Preferred(dst, token); ok {
		metrics.BridgeSelectionsTotal.WithLabelValues(pinned.Protocol).Inc()
		s.logger.Debug("preferred bridge pinned",
			zap.String("bridge", pinned.Name),
			zap.String("dest", string(dst)),
			zap.String("token", token),
			zap.Bool("active", pinned.Active))
		return pinned, nil
	}

	candidates := s.registry.ActiveForRoute(src, dst)
	if len(candidates) == 0 {
		return nil, domainErrors.NoBridgeAvailableError(string(src), string(dst))
	}

	// Lower priority value wins; registration order breaks ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Priority < candidates[j].Priority
	})

	var pick *entities.Bridge
	switch {
	case !s.chains.IsEVM(src) || !s.chains.IsEVM(dst):
		pick = firstOfKind(candidates, entities.BridgeKindMessaging)
	case amount.GreaterThanOrEqual(LargeAmountThreshold):
		pick = firstOfKind(candidates, entities.BridgeKindLiquidityPool)
	}
	if pick == nil {
		pick = &candidates[0]
	}

	metrics.BridgeSelectionsTotal.WithLabelValues(pick.Protocol).Inc()
	return pick, nil
}

func firstOfKind(candidates []entities.Bridge, kind entities.BridgeKind) *entities.Bridge {
	for i := range candidates {
		if candidates[i].Kind == kind {
			return &candidates[i]
		}
	}
	return nil
}
