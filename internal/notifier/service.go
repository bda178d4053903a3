package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ariefcatur/go-market-orders/internal/kafka"
	"github.com/ariefcatur/go-market-orders/internal/orders"
	"github.com/ariefcatur/go-market-orders/internal/redisx"
)

// Service consumes order.recorded events, prints the pickup ticket and
// warms the confirmation cache so the customer's poll loop mostly hits
// redis instead of the database.
type Service struct {
	Orders      *orders.Repo
	Redis       *redis.Client
	ServiceName string
}

func (s *Service) HandleOrderRecorded(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderRecorded {
		return nil
	}

	// dedup by event id; redeliveries of the same recording are no-ops
	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderRecordedPayload](env.Payload)
	if err != nil {
		return err
	}

	receipt, err := s.Orders.GetByPaymentRef(ctx, p.PaymentRef)
	if errors.Is(err, orders.ErrNotFound) {
		// recorded then removed before we got here; nothing to warm
		return nil
	}
	if err != nil {
		return err
	}

	b, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	key := fmt.Sprintf(redisx.KeyOrderByIntent, p.PaymentRef)
	_ = s.Redis.Set(ctx, key, b, redisx.TTLOrderCache).Err()

	log.Info().
		Str("service", s.ServiceName).
		Str("payment_ref", p.PaymentRef).
		Str("market_id", receipt.Order.MarketID).
		Time("pickup_slot", receipt.Order.PickupSlot).
		Int("total_cents", receipt.Order.TotalCents).
		Int("lines", len(receipt.Items)).
		Msg("pickup ticket")
	return nil
}
