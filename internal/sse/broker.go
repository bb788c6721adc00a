// Package sse streams scale library changes to browsers as Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// scaleEventReq is a family change, or a reset when kind is kindReset and
// name holds the reset mode.
type scaleEventReq struct {
	kind string
	name string
}

const kindReset = "reset"

// Event types sent to clients.
const (
	TypeScaleCreated     = "scale.created"
	TypeScaleUpdated     = "scale.updated"
	TypeScaleDeleted     = "scale.deleted"
	TypeChartInvalidated = "chart.invalidated"
	TypeScalesReset      = "scales.reset"
)

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the client set and the pending chart
// invalidation. Public methods talk to the loop over channels.
type Broker struct {
	chartMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	scaleEventCh  chan scaleEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. chart.invalidated is sent at most once
// per chartThrottle; changes inside the window are merged into one trailing
// event.
func NewBroker(chartThrottle time.Duration) *Broker {
	if chartThrottle <= 0 {
		chartThrottle = 2 * time.Second
	}

	b := &Broker{
		chartMin:      chartThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		scaleEventCh:  make(chan scaleEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

// invalidation collects the families whose charts went stale since the last
// chart.invalidated event.
type invalidation struct {
	all      bool
	families map[string]struct{}
}

func (inv *invalidation) add(req scaleEventReq) {
	if req.kind == kindReset {
		inv.all = true
		return
	}
	if inv.families == nil {
		inv.families = make(map[string]struct{})
	}
	inv.families[req.name] = struct{}{}
}

func (inv *invalidation) empty() bool {
	return !inv.all && len(inv.families) == 0
}

// take returns the chart.invalidated payload and clears inv.
func (inv *invalidation) take() ChartInvalidation {
	out := ChartInvalidation{All: inv.all, Families: []string{}}
	if !inv.all {
		for name := range inv.families {
			out.Families = append(out.Families, name)
		}
		slices.Sort(out.Families)
	}
	*inv = invalidation{}
	return out
}

// ChartInvalidation is the data of a chart.invalidated event. All is set
// after a reset; otherwise Families lists the changed families.
type ChartInvalidation struct {
	All      bool     `json:"all"`
	Families []string `json:"families"`
}

func encode(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return fmt.Appendf(nil, "id: %s\nevent: %s\ndata: %s\n\n", uuid.NewString(), event.Type, payload), nil
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	send := func(event Event) {
		msg, err := encode(event)
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- msg:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	var (
		pending   invalidation
		lastChart time.Time
		flush     *time.Timer
		flushC    <-chan time.Time
	)
	defer func() {
		if flush != nil {
			flush.Stop()
		}
	}()
	sendCharts := func(now time.Time) {
		lastChart = now
		flushC = nil
		send(Event{Type: TypeChartInvalidated, Data: pending.take()})
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			send(event)

		case req := <-b.scaleEventCh:
			switch req.kind {
			case "created":
				send(Event{Type: TypeScaleCreated, Data: map[string]string{"name": req.name}})
			case "updated":
				send(Event{Type: TypeScaleUpdated, Data: map[string]string{"name": req.name}})
			case "deleted":
				send(Event{Type: TypeScaleDeleted, Data: map[string]string{"name": req.name}})
			case kindReset:
				send(Event{Type: TypeScalesReset, Data: map[string]string{"mode": req.name}})
			default:
				continue
			}
			pending.add(req)
			if flushC != nil {
				continue
			}
			now := time.Now()
			wait := b.chartMin - now.Sub(lastChart)
			if wait <= 0 {
				sendCharts(now)
				continue
			}
			if flush == nil {
				flush = time.NewTimer(wait)
			} else {
				flush.Reset(wait)
			}
			flushC = flush.C

		case now := <-flushC:
			if !pending.empty() {
				sendCharts(now)
			}
			flushC = nil

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishScaleEvent publishes a family change ("created", "updated" or
// "deleted") and marks the family's charts stale.
func (b *Broker) PublishScaleEvent(kind, name string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.scaleEventCh <- scaleEventReq{kind: kind, name: name}:
	case <-b.stopped:
	}
}

// PublishReset publishes scales.reset with the reset mode ("reset" or
// "restore") and marks every chart stale.
func (b *Broker) PublishReset(mode string) {
	b.PublishScaleEvent(kindReset, mode)
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
