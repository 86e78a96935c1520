package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// cursorColors are handed out to clients in join order.
var cursorColors = []string{"#f43f5e", "#3b82f6", "#22c55e", "#f59e0b", "#a855f7", "#14b8a6", "#ec4899", "#64748b"}

// PresenceManager tracks the cursor and selection of every connected client. Clients are
// keyed by client id so one user may have several tabs open.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // clientID -> presence
	joined    int
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

// Join registers a client and returns its cursor color.
func (pm *PresenceManager) Join(clientID, displayName string) string {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	color := cursorColors[pm.joined%len(cursorColors)]
	pm.joined++
	pm.presences[clientID] = &PresencePayload{DisplayName: displayName, Color: color}
	return color
}

// Update replaces the cursor and selection of a joined client, keeping its name and
// color. It returns the stored presence, or nil for an unknown client.
func (pm *PresenceManager) Update(clientID string, p PresencePayload) *PresencePayload {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	cur, ok := pm.presences[clientID]
	if !ok {
		return nil
	}
	next := &PresencePayload{
		Cursor:      p.Cursor,
		Selection:   p.Selection,
		DisplayName: cur.DisplayName,
		Color:       cur.Color,
	}
	pm.presences[clientID] = next
	return next
}

func (pm *PresenceManager) Remove(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, clientID)
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*PresencePayload, len(pm.presences))
	for k, v := range pm.presences {
		result[k] = v
	}
	return result
}

func (pm *PresenceManager) StateMessage() *Message {
	payload, err := json.Marshal(PresenceStatePayload{Presences: pm.GetAll()})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{
		Type:    TypePresenceState,
		Payload: payload,
	}
}
