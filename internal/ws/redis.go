package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/pinball/internal/game"
	tablestore "github.com/playmatatu/pinball/internal/redis"
	"github.com/redis/go-redis/v9"
)

// PublishTableEvent relays ev to the table's room. It lets the hub act as
// the event sink when Redis is not configured.
func (h *Hub) PublishTableEvent(_ context.Context, ev game.TableEvent) error {
	h.relay(ev)
	return nil
}

func (h *Hub) relay(ev game.TableEvent) {
	log.Printf("[WS] event received: type=%s table=%s room_size=%d", ev.Type, ev.TableID, h.RoomSize(ev.TableID))
	h.BroadcastToTable(ev.TableID, ev)
	if ev.Type == game.EventTableClosed {
		h.closeRoom(ev.TableID)
	}
}

// StartTableEventSubscriber subscribes to the table_events channel and
// relays incoming events to table rooms.
func StartTableEventSubscriber(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; table event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, tablestore.TableEventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Println("[WS] table_events subscriber started")
		for msg := range ch {
			var ev game.TableEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}
			if ev.TableID == "" {
				log.Printf("[WS] event %s without table id", ev.Type)
				continue
			}
			GameHub.relay(ev)
		}
	}()
}
