package registry

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
	domainErrors "github.com/stableroute/stableroute_service/internal/domain/errors"
)

const eventBufferSize = 64

// BridgeID derives the deterministic id for a bridge from its name and
// adapter address. Re-registering the same adapter always yields the same id.
func BridgeID(name, adapterAddress string) uuid.UUID {
	seed := "bridge:" + strings.ToLower(name) + ":" + strings.ToLower(adapterAddress)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed))
}

// Registry holds all known bridges. Records live in an append-only slice with
// a map from id to slice index; records are mutated in place, never removed,
// so indexes stay stable for the life of the process.
type Registry struct {
	mu        sync.RWMutex
	records   []entities.Bridge
	index     map[uuid.UUID]int
	preferred map[entities.TokenRoute]uuid.UUID

	events chan entities.BridgeEvent
	logger *zap.Logger
}

// NewRegistry builds an empty registry
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		index:     make(map[uuid.UUID]int),
		preferred: make(map[entities.TokenRoute]uuid.UUID),
		events:    make(chan entities.BridgeEvent, eventBufferSize),
		logger:    logger,
	}
}

// Events exposes registry mutations to audit consumers. Events are dropped
// when no consumer keeps up; the registry never blocks on its own feed.
func (r *Registry) Events() <-chan entities.BridgeEvent {
	return r.events
}

// Register adds a bridge. The id is derived from name and adapter address;
// registering the same pair twice is a conflict.
func (r *Registry) Register(req *entities.RegisterBridgeRequest) (*entities.Bridge, error) {
	if req.Name == "" || req.AdapterAddress == "" {
		return nil, domainErrors.ValidationError("name", "name and adapter_address are required")
	}

	kind := entities.BridgeKind(req.Kind)
	switch kind {
	case entities.BridgeKindNative, entities.BridgeKindLiquidityPool, entities.BridgeKindMessaging:
	default:
		return nil, domainErrors.ValidationError("kind", "kind must be native, liquidity_pool or messaging")
	}

	feeMultiplier := decimal.NewFromInt(1)
	if req.FeeMultiplier != "" {
		m, err := decimal.NewFromString(req.FeeMultiplier)
		if err != nil || !m.IsPositive() {
			return nil, domainErrors.ValidationError("fee_multiplier", "fee_multiplier must be a positive decimal")
		}
		feeMultiplier = m
	}

	id := BridgeID(req.Name, req.AdapterAddress)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.index[id]; exists {
		return nil, domainErrors.AlreadyExistsError("BRIDGE")
	}

	now := time.Now()
	bridge := entities.Bridge{
		ID:             id,
		Name:           req.Name,
		Protocol:       req.Protocol,
		Kind:           kind,
		AdapterAddress: req.AdapterAddress,
		Priority:       req.Priority,
		Active:         true,
		FeeMultiplier:  feeMultiplier,
		SourceChains:   toChainIDs(req.SourceChains),
		DestChains:     toChainIDs(req.DestChains),
		RegisteredAt:   now,
		UpdatedAt:      now,
	}

	r.records = append(r.records, bridge)
	r.index[id] = len(r.records) - 1

	r.emit(entities.BridgeEvent{
		Type:       "registered",
		BridgeID:   id,
		BridgeName: bridge.Name,
		OccurredAt: now,
	})
	r.logger.Info("bridge registered",
		zap.String("bridge_id", id.String()),
		zap.String("name", bridge.Name),
		zap.String("kind", string(kind)))

	out := bridge
	return &out, nil
}

// Update mutates a bridge in place. Nil request fields are left unchanged.
func (r *Registry) Update(id uuid.UUID, req *entities.UpdateBridgeRequest) (*entities.Bridge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.index[id]
	if !ok {
		return nil, domainErrors.NotFoundError("BRIDGE")
	}
	bridge := &r.records[idx]

	if req.Priority != nil {
		bridge.Priority = *req.Priority
	}
	if req.Active != nil {
		bridge.Active = *req.Active
	}
	if req.FeeMultiplier != nil {
		m, err := decimal.NewFromString(*req.FeeMultiplier)
		if err != nil || !m.IsPositive() {
			return nil, domainErrors.ValidationError("fee_multiplier", "fee_multiplier must be a positive decimal")
		}
		bridge.FeeMultiplier = m
	}
	bridge.UpdatedAt = time.Now()

	eventType := "updated"
	if req.Active != nil {
		if *req.Active {
			eventType = "activated"
		} else {
			eventType = "deactivated"
		}
	}
	r.emit(entities.BridgeEvent{
		Type:       eventType,
		BridgeID:   id,
		BridgeName: bridge.Name,
		OccurredAt: bridge.UpdatedAt,
	})

	out := *bridge
	return &out, nil
}

// Get returns a copy of the bridge record
func (r *Registry) Get(id uuid.UUID) (*entities.Bridge, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.index[id]
	if !ok {
		return nil, domainErrors.NotFoundError("BRIDGE")
	}
	out := r.records[idx]
	return &out, nil
}

// List returns copies of every registered bridge in registration order
func (r *Registry) List() []entities.Bridge {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entities.Bridge, len(r.records))
	copy(out, r.records)
	return out
}

// ActiveForRoute returns copies of the active bridges able to carry the leg
func (r *Registry) ActiveForRoute(src, dst entities.ChainID) []entities.Bridge {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []entities.Bridge
	for i := range r.records {
		b := &r.records[i]
		if b.Active && b.SupportsRoute(src, dst) {
			out = append(out, *b)
		}
	}
	return out
}

// SetPreferred pins a bridge for a token on a destination chain. The pinned
// bridge must exist but does not have to be active. Tokens on the same chain
// without a pin of their own keep priority-based selection.
func (r *Registry) SetPreferred(dst entities.ChainID, token string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[id]; !ok {
		return domainErrors.NotFoundError("BRIDGE")
	}
	r.preferred[tokenRoute(dst, token)] = id

	r.emit(entities.BridgeEvent{
		Type:       "preferred_set",
		BridgeID:   id,
		DestChain:  dst,
		Token:      token,
		OccurredAt: time.Now(),
	})
	return nil
}

// ClearPreferred removes a preferred-bridge override
func (r *Registry) ClearPreferred(dst entities.ChainID, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	route := tokenRoute(dst, token)
	id, ok := r.preferred[route]
	if !ok {
		return
	}
	delete(r.preferred, route)

	r.emit(entities.BridgeEvent{
		Type:       "preferred_cleared",
		BridgeID:   id,
		DestChain:  dst,
		Token:      token,
		OccurredAt: time.Now(),
	})
}

// Preferred returns the pinned bridge for a token on a destination chain, if
// any. The pinned record is returned regardless of its active flag.
func (r *Registry) Preferred(dst entities.ChainID, token string) (*entities.Bridge, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.preferred[tokenRoute(dst, token)]
	if !ok {
		return nil, false
	}
	idx, ok := r.index[id]
	if !ok {
		return nil, false
	}
	out := r.records[idx]
	return &out, true
}

func tokenRoute(dst entities.ChainID, token string) entities.TokenRoute {
	return entities.TokenRoute{DestChain: dst, Token: strings.ToLower(token)}
}

func (r *Registry) emit(event entities.BridgeEvent) {
	select {
	case r.events <- event:
	default:
		r.logger.Warn("bridge event dropped", zap.String("type", event.Type))
	}
}

func toChainIDs(in []string) []entities.ChainID {
	out := make([]entities.ChainID, 0, len(in))
	for _, s := range in {
		out = append(out, entities.ChainID(s))
	}
	return out
}
