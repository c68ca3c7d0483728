package realtime

import (
	"sync"

	"sheetdesk/internal/logging"
)

const ActionInserted = "inserted"

// SheetEvent tells dashboards that a partition changed and should be refetched.
type SheetEvent struct {
	Sheet  string `json:"sheet"`
	Action string `json:"action"`
	Rows   int    `json:"rows"`
}

// Subscriber is anything that can receive an event; *Conn in production.
type Subscriber interface {
	WriteJSON(v any) error
	Close() error
}

type SheetHub struct {
	mu   sync.RWMutex
	subs map[Subscriber]struct{}
}

func NewSheetHub() *SheetHub {
	return &SheetHub{subs: make(map[Subscriber]struct{})}
}

func (h *SheetHub) Register(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[s] = struct{}{}
}

func (h *SheetHub) Unregister(s Subscriber) {
	h.mu.Lock()
	_, ok := h.subs[s]
	delete(h.subs, s)
	h.mu.Unlock()
	if ok {
		_ = s.Close()
	}
}

func (h *SheetHub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast sends ev to every subscriber. Subscribers that fail a write are dropped.
func (h *SheetHub) Broadcast(ev SheetEvent) {
	h.mu.RLock()
	var failed []Subscriber
	for s := range h.subs {
		if err := s.WriteJSON(ev); err != nil {
			failed = append(failed, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range failed {
		h.Unregister(s)
	}
	if len(failed) > 0 {
		l := logging.Component("realtime")
		l.Debug().Int("dropped", len(failed)).Str("sheet", ev.Sheet).Msg("[ws][broadcast][drop]")
	}
}

// Inserted is a shorthand for broadcasting an insert event.
func (h *SheetHub) Inserted(sheet string, rows int) {
	h.Broadcast(SheetEvent{Sheet: sheet, Action: ActionInserted, Rows: rows})
}
