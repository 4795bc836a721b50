package server

import (
	"encoding/json"
	"sync"
)

// Event is the payload published to a team's quest event subscribers.
type Event struct {
	Type          string `json:"type"`
	Level         int    `json:"level,omitempty"`
	PuzzleID      string `json:"puzzleId,omitempty"`
	PointsAwarded int    `json:"pointsAwarded,omitempty"`
	TotalPoints   int    `json:"totalPoints,omitempty"`
}

const (
	eventQuestStarted  = "quest_started"
	eventLevelComplete = "level_completed"
	eventWrongAnswer   = "wrong_answer"
	eventHintRevealed  = "hint_revealed"
	eventQuestComplete = "quest_complete"
	eventQuestExpired  = "quest_expired"
)

// Broker is an in-process pub/sub for SSE events, keyed by team ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded events for the given team.
func (b *Broker) Subscribe(teamID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[teamID] == nil {
		b.subs[teamID] = make(map[chan []byte]struct{})
	}
	b.subs[teamID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the team's subscribers.
func (b *Broker) Unsubscribe(teamID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[teamID], ch)
	if len(b.subs[teamID]) == 0 {
		delete(b.subs, teamID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the given team.
func (b *Broker) Publish(teamID string, event Event) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[teamID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
