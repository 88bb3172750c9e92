package messenger

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/stableroute/stableroute_service/internal/domain/entities"
	domainErrors "github.com/stableroute/stableroute_service/internal/domain/errors"
	"github.com/stableroute/stableroute_service/pkg/metrics"
)

const eventBufferSize = 64

// MessageID derives the deterministic id for a send. Replaying the same
// sender, destination, nonce and payload always produces the same id.
func MessageID(sender string, destChain entities.ChainID, nonce uint64, payload []byte) string {
	h := sha256.New()
	h.Write([]byte(sender))
	h.Write([]byte(destChain))
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], nonce)
	h.Write(n[:])
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// Messenger tracks cross-chain messages through SENT to DELIVERED. A message
// has no failed state: it stays SENT until a delivery confirmation arrives.
// Delivery is exactly-once; a second confirmation for the same id is rejected.
type Messenger struct {
	sourceChain entities.ChainID

	mu        sync.Mutex
	messages  map[string]*entities.CrossChainMessage
	supported map[entities.ChainID]string
	nonce     uint64
	paused    bool

	events chan entities.MessageEvent
	logger *zap.Logger
}

// NewMessenger builds a messenger anchored to the given source chain. No
// destination is supported until AddSupportedChain allows it.
func NewMessenger(sourceChain entities.ChainID, logger *zap.Logger) *Messenger {
	return &Messenger{
		sourceChain: sourceChain,
		messages:    make(map[string]*entities.CrossChainMessage),
		supported:   make(map[entities.ChainID]string),
		events:      make(chan entities.MessageEvent, eventBufferSize),
		logger:      logger,
	}
}

// AddSupportedChain allows sends to a destination chain via the given relay
// endpoint. Re-adding a chain overwrites its endpoint.
func (m *Messenger) AddSupportedChain(chain entities.ChainID, endpoint string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.supported[chain] = endpoint
	m.emit(entities.MessageEvent{Type: "chain_supported", Chain: chain, OccurredAt: time.Now()})
	m.logger.Info("chain supported",
		zap.String("chain", string(chain)),
		zap.String("endpoint", endpoint))
}

// RemoveSupportedChain blocks new sends to a chain. Messages already in
// flight toward it are unaffected and can still be delivered.
func (m *Messenger) RemoveSupportedChain(chain entities.ChainID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.supported[chain]; !ok {
		return
	}
	delete(m.supported, chain)
	m.emit(entities.MessageEvent{Type: "chain_removed", Chain: chain, OccurredAt: time.Now()})
	m.logger.Info("chain removed", zap.String("chain", string(chain)))
}

// SupportsChain reports whether sends may target the chain
func (m *Messenger) SupportsChain(chain entities.ChainID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.supported[chain]
	return ok
}

// SupportedChains returns the destination chains and their relay endpoints
func (m *Messenger) SupportedChains() map[entities.ChainID]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[entities.ChainID]string, len(m.supported))
	for chain, endpoint := range m.supported {
		out[chain] = endpoint
	}
	return out
}

// Events exposes messenger transitions to audit consumers
func (m *Messenger) Events() <-chan entities.MessageEvent {
	return m.events
}

// SendMessage dispatches a message and tracks it as SENT. Sends are rejected
// while the messenger is paused or when the destination is not supported.
func (m *Messenger) SendMessage(sender string, destChain entities.ChainID, recipient string, payload []byte) (*entities.CrossChainMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// the pause switch outranks every other validation
	if m.paused {
		return nil, domainErrors.SystemPausedError()
	}
	if _, ok := m.supported[destChain]; !ok {
		return nil, domainErrors.DestinationNotSupportedError(string(m.sourceChain), string(destChain))
	}
	if recipient == "" {
		return nil, domainErrors.InvalidRecipientError(recipient)
	}

	m.nonce++
	id := MessageID(sender, destChain, m.nonce, payload)

	msg := &entities.CrossChainMessage{
		ID:          id,
		Sender:      sender,
		SourceChain: m.sourceChain,
		DestChain:   destChain,
		Recipient:   recipient,
		Payload:     payload,
		Nonce:       m.nonce,
		Status:      entities.MessageStatusSent,
		SentAt:      time.Now(),
	}
	m.messages[id] = msg

	metrics.MessagesTotal.WithLabelValues(string(entities.MessageStatusSent)).Inc()
	m.emit(entities.MessageEvent{
		Type:       "sent",
		MessageID:  id,
		Status:     entities.MessageStatusSent,
		OccurredAt: msg.SentAt,
	})
	m.logger.Info("message sent",
		zap.String("message_id", id),
		zap.String("dest_chain", string(destChain)),
		zap.Uint64("nonce", m.nonce))

	out := *msg
	return &out, nil
}

// ReceiveMessage confirms delivery of a sent message and records who
// confirmed it. Unknown ids and repeat confirmations are errors; delivery
// happens exactly once per message.
func (m *Messenger) ReceiveMessage(id, confirmedBy string) (*entities.CrossChainMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.messages[id]
	if !ok {
		return nil, domainErrors.MessageNotFoundError(id)
	}
	if msg.Status == entities.MessageStatusDelivered {
		return nil, domainErrors.MessageAlreadyDeliveredError(id)
	}

	now := time.Now()
	msg.Status = entities.MessageStatusDelivered
	msg.DeliveredAt = &now
	msg.ConfirmedBy = confirmedBy

	metrics.MessagesTotal.WithLabelValues(string(entities.MessageStatusDelivered)).Inc()
	m.emit(entities.MessageEvent{
		Type:       "delivered",
		MessageID:  id,
		Chain:      msg.SourceChain,
		Recipient:  msg.Recipient,
		Status:     entities.MessageStatusDelivered,
		OccurredAt: now,
	})
	m.logger.Info("message delivered",
		zap.String("message_id", id),
		zap.String("confirmed_by", confirmedBy))

	out := *msg
	return &out, nil
}

// Status returns the lifecycle state of a message id. Unknown ids report
// NONE rather than erroring.
func (m *Messenger) Status(id string) entities.MessageStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.messages[id]
	if !ok {
		return entities.MessageStatusNone
	}
	return msg.Status
}

// Get returns a copy of a tracked message
func (m *Messenger) Get(id string) (*entities.CrossChainMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msg, ok := m.messages[id]
	if !ok {
		return nil, domainErrors.MessageNotFoundError(id)
	}
	out := *msg
	return &out, nil
}

// ListSent returns copies of every message still awaiting delivery
func (m *Messenger) ListSent() []entities.CrossChainMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []entities.CrossChainMessage
	for _, msg := range m.messages {
		if msg.Status == entities.MessageStatusSent {
			out = append(out, *msg)
		}
	}
	return out
}

// Pause stops new sends. In-flight messages still accept delivery
// confirmations while paused.
func (m *Messenger) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.paused {
		return
	}
	m.paused = true
	m.emit(entities.MessageEvent{Type: "paused", OccurredAt: time.Now()})
	m.logger.Warn("messenger paused")
}

// Unpause resumes sends
func (m *Messenger) Unpause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.paused {
		return
	}
	m.paused = false
	m.emit(entities.MessageEvent{Type: "unpaused", OccurredAt: time.Now()})
	m.logger.Info("messenger unpaused")
}

// IsPaused reports whether sends are currently rejected
func (m *Messenger) IsPaused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paused
}

func (m *Messenger) emit(event entities.MessageEvent) {
	select {
	case m.events <- event:
	default:
		m.logger.Warn("message event dropped", zap.String("type", event.Type))
	}
}
