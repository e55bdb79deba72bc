package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Prabisha01/de/internal/boards"
	"github.com/gin-gonic/gin"
)

const (
	RealtimeEventBoardChanged = "board-change"
	realtimeEventHeartbeat    = "heartbeat"
	realtimeSourceBackend     = "boards-api"
	defaultHeartbeatInterval  = 25 * time.Second
)

// RealtimeMessage is a board change addressed to one owner's subscribers.
type RealtimeMessage struct {
	UserID    string
	EventType string
	BoardIDs  []string
	Action    string
	Timestamp time.Time
}

// RealtimeDispatcher fans board changes out to the streams of the owning user.
// Slow subscribers drop messages instead of blocking publishers.
type RealtimeDispatcher struct {
	mu          sync.RWMutex
	subscribers map[string]map[int64]*realtimeSubscriber
	nextID      int64
	bufferSize  int
	clock       func() time.Time
}

type realtimeSubscriber struct {
	id     int64
	stream chan RealtimeMessage
}

func NewRealtimeDispatcher() *RealtimeDispatcher {
	return &RealtimeDispatcher{
		subscribers: make(map[string]map[int64]*realtimeSubscriber),
		bufferSize:  16,
		clock:       time.Now,
	}
}

func (d *RealtimeDispatcher) Subscribe(ctx context.Context, userID string) (<-chan RealtimeMessage, func()) {
	if userID == "" {
		ch := make(chan RealtimeMessage)
		close(ch)
		return ch, func() {}
	}
	subscriber := &realtimeSubscriber{
		id:     d.nextSequence(),
		stream: make(chan RealtimeMessage, d.bufferSize),
	}
	d.registerSubscriber(userID, subscriber)
	cleanup := func() {
		d.unregisterSubscriber(userID, subscriber.id)
	}
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return subscriber.stream, cleanup
}

func (d *RealtimeDispatcher) Publish(message RealtimeMessage) {
	if message.UserID == "" || message.EventType == "" {
		return
	}
	d.mu.RLock()
	subscribers := d.subscribers[message.UserID]
	if len(subscribers) == 0 {
		d.mu.RUnlock()
		return
	}
	copies := make([]*realtimeSubscriber, 0, len(subscribers))
	for _, subscriber := range subscribers {
		copies = append(copies, subscriber)
	}
	d.mu.RUnlock()
	for _, subscriber := range copies {
		select {
		case subscriber.stream <- message:
		default:
		}
	}
}

// NotifyBoardChange implements boards.ChangeNotifier.
func (d *RealtimeDispatcher) NotifyBoardChange(ownerID string, change boards.Change) {
	if change.BoardID == "" {
		return
	}
	d.Publish(RealtimeMessage{
		UserID:    ownerID,
		EventType: RealtimeEventBoardChanged,
		BoardIDs:  []string{change.BoardID},
		Action:    change.Action,
		Timestamp: d.clock().UTC(),
	})
}

func (d *RealtimeDispatcher) subscriberCount(userID string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.subscribers[userID])
}

func (d *RealtimeDispatcher) nextSequence() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	return d.nextID
}

func (d *RealtimeDispatcher) registerSubscriber(userID string, subscriber *realtimeSubscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.subscribers[userID]; !ok {
		d.subscribers[userID] = make(map[int64]*realtimeSubscriber)
	}
	d.subscribers[userID][subscriber.id] = subscriber
}

func (d *RealtimeDispatcher) unregisterSubscriber(userID string, subscriberID int64) {
	d.mu.Lock()
	subscribers := d.subscribers[userID]
	if subscribers != nil {
		delete(subscribers, subscriberID)
		if len(subscribers) == 0 {
			delete(d.subscribers, userID)
		}
	}
	d.mu.Unlock()
}

type realtimeEventPayload struct {
	BoardIDs  []string `json:"boardIds,omitempty"`
	Action    string   `json:"action,omitempty"`
	Timestamp string   `json:"timestamp"`
	Source    string   `json:"source"`
}

// handleBoardStream serves the caller's board changes as server-sent events until the client leaves.
func (h *httpHandler) handleBoardStream(c *gin.Context) {
	actor := actorFromContext(c)
	ctx := c.Request.Context()
	stream, cleanup := h.realtime.Subscribe(ctx, actor.UserID)
	defer cleanup()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	heartbeat := time.NewTicker(h.settings.HeartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case message, ok := <-stream:
			if !ok {
				return false
			}
			c.SSEvent(message.EventType, realtimeEventPayload{
				BoardIDs:  message.BoardIDs,
				Action:    message.Action,
				Timestamp: message.Timestamp.Format(time.RFC3339Nano),
				Source:    realtimeSourceBackend,
			})
			return true
		case tick := <-heartbeat.C:
			c.SSEvent(realtimeEventHeartbeat, realtimeEventPayload{
				Timestamp: tick.UTC().Format(time.RFC3339Nano),
				Source:    realtimeSourceBackend,
			})
			return true
		}
	})
}
