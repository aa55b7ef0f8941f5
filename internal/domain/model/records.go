package model

import "time"

// AttendanceRecord is one raider's presence and selection outcome for one
// encounter of a raid night. Records are never mutated; newer records
// supersede older ones.
type AttendanceRecord struct {
	RaiderID    string
	GuildID     string
	InstanceID  string
	EncounterID string
	RaidDate    time.Time
	Attended    bool
	Selected    bool
}

// AwardStatus is the lifecycle state of a loot award.
type AwardStatus string

// Award states.
const (
	AwardActive  AwardStatus = "ACTIVE"
	AwardRevoked AwardStatus = "REVOKED"
)

// LootAward records one item granted to one raider.
type LootAward struct {
	ID          string
	ItemID      string
	RaiderID    string
	GuildID     string
	AwardedAt   time.Time
	FlpsAtAward float64
	Tier        Tier
	Status      AwardStatus
	RevokedAt   *time.Time
}

// IsActive reports whether the award still counts towards loot history.
func (a LootAward) IsActive() bool { return a.Status == AwardActive }

// Revoked returns a revoked copy of a. The receiver is left untouched.
func (a LootAward) Revoked(at time.Time) LootAward {
	a.Status = AwardRevoked
	a.RevokedAt = &at
	return a
}

// LootBan restricts a raider from loot within one guild.
type LootBan struct {
	ID        string
	RaiderID  string
	GuildID   string
	Reason    string
	StartsAt  time.Time
	ExpiresAt *time.Time
}

// IsActive holds for permanent bans and for bans whose expiry is still ahead of now.
func (b LootBan) IsActive(now time.Time) bool {
	return b.ExpiresAt == nil || now.Before(*b.ExpiresAt)
}
