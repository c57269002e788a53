package services

import (
	"sync"

	"ai-act-chat/internal/models"
)

// DefaultMemoryWindow is how many exchanges (user + assistant pairs) the
// conversation memory keeps
const DefaultMemoryWindow = 10

// ConversationMemory is a bounded sliding window over conversation turns.
// The window holds the most recent N exchanges; older turns are evicted on
// append. Safe for concurrent use, though the orchestrator serializes all
// writes anyway.
type ConversationMemory struct {
	mu       sync.RWMutex
	turns    []models.ChatMessage
	maxTurns int
}

// NewConversationMemory creates a memory holding the last `window`
// exchanges
func NewConversationMemory(window int) *ConversationMemory {
	if window < 1 {
		window = DefaultMemoryWindow
	}
	return &ConversationMemory{
		maxTurns: window * 2, // each exchange is a user turn plus an assistant turn
	}
}

// Append adds a turn, evicting the oldest beyond the window
func (m *ConversationMemory) Append(role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.turns = append(m.turns, models.ChatMessage{Role: role, Content: content})
	if len(m.turns) > m.maxTurns {
		m.turns = m.turns[len(m.turns)-m.maxTurns:]
	}
}

// Snapshot returns a copy of the turns, oldest first
func (m *ConversationMemory) Snapshot() []models.ChatMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ChatMessage, len(m.turns))
	copy(out, m.turns)
	return out
}

// Len returns the number of stored turns
func (m *ConversationMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}

// Clear drops all turns
func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}
