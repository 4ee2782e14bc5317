package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/rmacdonaldsmith/georelay-go/pkg/relay"
)

// sseSubscriber bridges the node's fan-out path to a server-sent-events
// response. Deliver never blocks the publisher: a slow consumer whose buffer
// is full simply drops messages, the same trade a lossy live feed makes.
type sseSubscriber struct {
	id     string
	filter relay.Filter
	ch     chan *relay.Message
}

func newSSESubscriber(filter relay.Filter) *sseSubscriber {
	return &sseSubscriber{
		id:     uuid.NewString(),
		filter: filter,
		ch:     make(chan *relay.Message, 64),
	}
}

// ID implements relay.Subscriber.
func (s *sseSubscriber) ID() string {
	return s.id
}

// Deliver implements relay.Subscriber.
func (s *sseSubscriber) Deliver(msg *relay.Message) {
	if !s.filter.MatchesMessage(msg) {
		return
	}
	select {
	case s.ch <- msg:
	default:
	}
}

// Stream handles GET /api/v1/messages/stream as a server-sent-events feed of
// messages stored into the caller's bound scope.
func (h *Handlers) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, "Invalid query parameters: "+err.Error(), http.StatusBadRequest)
		return
	}

	conn := h.conn(r)
	subscriber := newSSESubscriber(filter)
	if err := h.node.Subscribe(r.Context(), conn, filter, subscriber); err != nil {
		if rejection, ok := err.(*relay.Rejection); ok {
			h.writeRejection(w, rejection)
			return
		}
		h.writeError(w, "Failed to subscribe: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer h.node.Unsubscribe(r.Context(), conn, subscriber.ID())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg := <-subscriber.ch:
			payload, err := json.Marshal(toMessageResponse(msg))
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
