package auth

import "time"

type mintOptions struct {
	issuedAt time.Time
	ttl      time.Duration
}

// MintOption tweaks a single mint call.
type MintOption func(*mintOptions)

// MintIssuedAt overrides the token's issue time.
func MintIssuedAt(t time.Time) MintOption {
	return func(o *mintOptions) {
		o.issuedAt = t
	}
}

// MintTTL overrides the token's lifetime for this call only.
func MintTTL(d time.Duration) MintOption {
	return func(o *mintOptions) {
		if d > 0 {
			o.ttl = d
		}
	}
}
