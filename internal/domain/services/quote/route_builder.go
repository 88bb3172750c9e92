package quote

import (
	"fmt"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
)

// buildSameChainRoute is the single-hop route used by the fast path
func buildSameChainRoute(chain entities.ChainID, token string) entities.Route {
	return entities.Route{
		SourceChain: chain,
		DestChain:   chain,
		Steps: []entities.RouteStep{
			{
				Action:      "transfer",
				Chain:       chain,
				Description: fmt.Sprintf("transfer %s on %s", token, chain),
			},
		},
	}
}

// buildCrossChainRoute is the bridge-then-deliver route
func buildCrossChainRoute(src, dst entities.ChainID, token string, bridge *entities.Bridge) entities.Route {
	return entities.Route{
		SourceChain: src,
		DestChain:   dst,
		BridgeID:    bridge.ID,
		Bridge:      bridge.Name,
		Steps: []entities.RouteStep{
			{
				Action:      "bridge",
				Chain:       src,
				Protocol:    bridge.Protocol,
				Description: fmt.Sprintf("bridge %s from %s via %s", token, src, bridge.Name),
			},
			{
				Action:      "deliver",
				Chain:       dst,
				Protocol:    bridge.Protocol,
				Description: fmt.Sprintf("deliver %s on %s", token, dst),
			},
		},
	}
}
