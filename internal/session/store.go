package session

import "sync"

// State describes what kind of input a conversation is expecting next.
type State int

const (
	// Idle means the next message is interpreted as a command.
	Idle State = iota
	// AwaitingReceiptCode means the next message is treated as a receipt scan code.
	AwaitingReceiptCode
	// AwaitingProductName means the next message is treated as a product-name query.
	AwaitingProductName
)

func (s State) String() string {
	switch s {
	case AwaitingReceiptCode:
		return "awaiting_receipt_code"
	case AwaitingProductName:
		return "awaiting_product_name"
	default:
		return "idle"
	}
}

const shardCount = 32

// Store holds the per-conversation input-expectation state. It is process-local
// and volatile; an absent entry reads as Idle. Owners map onto fixed shards so
// concurrent conversations never contend on a single lock.
type Store struct {
	shards [shardCount]shard
}

type shard struct {
	mu     sync.RWMutex
	states map[int64]State
}

// NewStore creates an empty Store.
func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i].states = make(map[int64]State)
	}
	return s
}

func (s *Store) shardFor(owner int64) *shard {
	return &s.shards[uint64(owner)%shardCount]
}

// Set records the state for an owner, replacing any previous one.
func (s *Store) Set(owner int64, state State) {
	sh := s.shardFor(owner)
	sh.mu.Lock()
	sh.states[owner] = state
	sh.mu.Unlock()
}

// Get returns the current state for an owner, defaulting to Idle.
func (s *Store) Get(owner int64) State {
	sh := s.shardFor(owner)
	sh.mu.RLock()
	state := sh.states[owner]
	sh.mu.RUnlock()
	return state
}

// Clear resets an owner back to Idle.
func (s *Store) Clear(owner int64) {
	sh := s.shardFor(owner)
	sh.mu.Lock()
	delete(sh.states, owner)
	sh.mu.Unlock()
}
