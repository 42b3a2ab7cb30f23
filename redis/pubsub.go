package redis

import (
	"context"
	"encoding/json"
	"sync"

	"nexussync/internal/collab"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// PubSubChannel implements collab.Channel over Redis pub/sub, one Redis
// channel per event name under a shared prefix. When the client is nil or
// the server is unreachable the channel stays disconnected and Emit becomes
// a no-op; the coordinator then operates on local state alone.
type PubSubChannel struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger

	mu       sync.Mutex
	status   collab.ConnStatus
	handlers map[string]map[int]collab.HandlerFunc
	pubsubs  map[string]*redis.PubSub
	nextID   int
	closed   bool
}

func NewPubSubChannel(client *redis.Client, prefix string, log zerolog.Logger) *PubSubChannel {
	ch := &PubSubChannel{
		client:   client,
		prefix:   prefix,
		log:      log.With().Str("component", "pubsub-channel").Logger(),
		status:   collab.StatusConnecting,
		handlers: make(map[string]map[int]collab.HandlerFunc),
		pubsubs:  make(map[string]*redis.PubSub),
	}

	if client == nil {
		ch.status = collab.StatusDisconnected
		return ch
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		ch.log.Warn().Err(err).Msg("redis unreachable, channel degraded to local-only")
		ch.status = collab.StatusDisconnected
		return ch
	}
	ch.status = collab.StatusConnected
	return ch
}

func (ch *PubSubChannel) Emit(event string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	ch.mu.Lock()
	client := ch.client
	connected := ch.status == collab.StatusConnected
	ch.mu.Unlock()

	if client == nil || !connected {
		// Degraded mode: propagation is deferred/lost, never an error.
		return nil
	}
	return client.Publish(context.Background(), ch.prefix+":"+event, b).Err()
}

func (ch *PubSubChannel) On(event string, h collab.HandlerFunc) collab.Subscription {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.handlers[event] == nil {
		ch.handlers[event] = make(map[int]collab.HandlerFunc)
	}
	id := ch.nextID
	ch.nextID++
	ch.handlers[event][id] = h

	if ch.client != nil && ch.status == collab.StatusConnected && ch.pubsubs[event] == nil {
		ps := ch.client.Subscribe(context.Background(), ch.prefix+":"+event)
		ch.pubsubs[event] = ps
		go ch.pump(event, ps)
	}

	return &pubsubSub{ch: ch, event: event, id: id}
}

func (ch *PubSubChannel) Status() collab.ConnStatus {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.status
}

// Close tears down all subscriptions.
func (ch *PubSubChannel) Close() {
	ch.mu.Lock()
	ch.closed = true
	ch.status = collab.StatusDisconnected
	pubsubs := ch.pubsubs
	ch.pubsubs = make(map[string]*redis.PubSub)
	ch.mu.Unlock()

	for _, ps := range pubsubs {
		_ = ps.Close()
	}
}

// pump delivers inbound messages for one event name to its handlers.
func (ch *PubSubChannel) pump(event string, ps *redis.PubSub) {
	for msg := range ps.Channel() {
		ch.mu.Lock()
		hs := make([]collab.HandlerFunc, 0, len(ch.handlers[event]))
		for _, h := range ch.handlers[event] {
			hs = append(hs, h)
		}
		ch.mu.Unlock()

		for _, h := range hs {
			h([]byte(msg.Payload))
		}
	}
}

type pubsubSub struct {
	ch    *PubSubChannel
	event string
	id    int
	once  sync.Once
}

func (s *pubsubSub) Close() {
	s.once.Do(func() {
		s.ch.mu.Lock()
		delete(s.ch.handlers[s.event], s.id)
		var ps *redis.PubSub
		if len(s.ch.handlers[s.event]) == 0 {
			ps = s.ch.pubsubs[s.event]
			delete(s.ch.pubsubs, s.event)
		}
		s.ch.mu.Unlock()

		if ps != nil {
			_ = ps.Close()
		}
	})
}
