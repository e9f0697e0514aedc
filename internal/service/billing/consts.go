package billing

import "time"

// metadataUserIDKey is the metadata field the checkout flow writes on every
// subscription so webhook events can be attributed to a local user.
const metadataUserIDKey = "userId"

const (
	defaultDedupeTTL   = 24 * time.Hour
	defaultDedupeSweep = time.Hour
)
