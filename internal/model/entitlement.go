package model

import "time"

// EntitlementRecord is a player's ownership of one emote pack, cached on the
// live session and mirrored in durable storage. ExpireAt is a unix timestamp;
// zero means the entitlement never expires, matching the storage sentinel.
type EntitlementRecord struct {
	PackID   uint32    `json:"pack_id"`
	Scope    PackScope `json:"scope"`
	ExpireAt int64     `json:"expire_at"`
}

// Expired reports whether the record's expiry is strictly in the past.
// Non-expiring records (ExpireAt == 0) never expire.
func (e EntitlementRecord) Expired(now time.Time) bool {
	return e.ExpireAt != 0 && now.Unix() > e.ExpireAt
}

// EntitlementRow is one stored row, before it is tagged with its scope.
type EntitlementRow struct {
	PackID   uint32
	ExpireAt int64
}
