package bot

import "sync"

// AuthGate is the admission check over the allow-list of chat ids. An
// empty allow-list denies every caller. Administrative Allow/Revoke are
// expected to be rare; reads take the cheap path.
type AuthGate struct {
	mu      sync.RWMutex
	allowed map[int64]struct{}
}

// NewAuthGate creates a gate admitting exactly the given chat ids.
func NewAuthGate(chatIDs []int64) *AuthGate {
	allowed := make(map[int64]struct{}, len(chatIDs))
	for _, id := range chatIDs {
		allowed[id] = struct{}{}
	}
	return &AuthGate{allowed: allowed}
}

// IsAuthorized reports whether chatID may use the bot. Fail-closed: an
// empty allow-list denies everyone.
func (g *AuthGate) IsAuthorized(chatID int64) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if len(g.allowed) == 0 {
		return false
	}
	_, ok := g.allowed[chatID]
	return ok
}

// Allow adds a chat id to the allow-list.
func (g *AuthGate) Allow(chatID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.allowed[chatID] = struct{}{}
}

// Revoke removes a chat id from the allow-list.
func (g *AuthGate) Revoke(chatID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.allowed, chatID)
}

// Size returns the current allow-list size.
func (g *AuthGate) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.allowed)
}
