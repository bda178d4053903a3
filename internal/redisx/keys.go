package redisx

import "time"

const (
	// Next-occurrence cache: response JSON for the public read paths.
	KeyNextMarket     = "market:next"
	KeyNextOpenMarket = "market:next_open"

	// Menu cache: menu:catalog -> {"items":[...],"sides":[...]}
	KeyMenu = "menu:catalog"

	// Confirmation cache: order:intent:{payment_ref} -> receipt JSON.
	// Warmed by the notifier so the confirmation page polls cheaply.
	KeyOrderByIntent = "order:intent:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLNextMarket = 30 * time.Second
	TTLMenu       = 2 * time.Minute
	TTLOrderCache = 15 * time.Minute
	TTLDedup      = 48 * time.Hour
)
