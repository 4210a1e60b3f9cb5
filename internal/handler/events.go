package handler

import (
	"encoding/json"
	"log"

	"github.com/vendordesk/api/internal/enum"
	"github.com/vendordesk/api/internal/service"
	"github.com/vendordesk/api/internal/ws"
)

// Broadcaster fans an event out to connected dashboards. Satisfied by *ws.Hub.
type Broadcaster interface {
	Broadcast(event ws.Event)
}

type eventPayload struct {
	Orders   []orderResponse `json:"orders"`
	Count    int             `json:"count"`
	Expanded *bool           `json:"expanded,omitempty"`
}

// EventRelay returns a listener that forwards lifecycle events to b.
// It only uses the event itself and never calls back into the manager.
func EventRelay(b Broadcaster) service.Listener {
	return func(ev service.Event) {
		p := eventPayload{
			Orders: make([]orderResponse, len(ev.Orders)),
			Count:  len(ev.Orders),
		}
		for i, o := range ev.Orders {
			p.Orders[i] = toOrderResponse(o, ev.At)
		}
		if ev.Type == enum.EventOrderExpanded {
			e := ev.Expanded
			p.Expanded = &e
		}

		raw, err := json.Marshal(p)
		if err != nil {
			log.Printf("ERROR: marshal %s event: %v", ev.Type, err)
			return
		}
		b.Broadcast(ws.Event{Type: ev.Type, Payload: raw})
	}
}
