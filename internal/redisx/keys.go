package redisx

import "time"

const (
	// Bearer sessions, keyed separately per principal kind:
	// session:admin:{token} / session:user:{token} -> principal JSON
	KeySessionAdmin = "session:admin:%s"
	KeySessionUser  = "session:user:%s"

	// Cache order status: order_status:{order_id} -> {"status": n}
	KeyOrderStatus = "order_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSession     = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
