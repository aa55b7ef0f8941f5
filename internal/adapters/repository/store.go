// Package repository provides the collaborator contracts the engine's callers
// read from, plus in-memory implementations for tests and small deployments.
//
// The in-memory stores keep an append-only arena of values and an index of
// positions keyed by identifier. Nothing is ever deleted; a revoked award is
// a new version appended to the arena.
package repository

import (
	"context"
	"time"

	"github.com/okian/flps/internal/domain/model"
)

// AttendanceSource yields attendance records for one raider in one guild.
type AttendanceSource interface {
	Records(ctx context.Context, guildID, raiderID string) ([]model.AttendanceRecord, error)
}

// AwardLedger yields award history and accepts new awards and revocations.
type AwardLedger interface {
	// Awards returns the latest version of each award for the raider, oldest first.
	Awards(ctx context.Context, guildID, raiderID string) ([]model.LootAward, error)
	// Award returns the latest version of one award.
	Award(ctx context.Context, id string) (model.LootAward, error)
	// Record stores a new award. An empty ID is filled in.
	Record(ctx context.Context, award model.LootAward) (model.LootAward, error)
	// Revoke appends a revoked version, provided the award is active and
	// now precedes its revocation deadline.
	Revoke(ctx context.Context, id string, maxRevocationDays int, now time.Time) (model.LootAward, error)
}

// BanRegistry yields and accepts loot bans.
type BanRegistry interface {
	Bans(ctx context.Context, guildID, raiderID string) ([]model.LootBan, error)
	Add(ctx context.Context, ban model.LootBan) (model.LootBan, error)
}

// scope is the raider+guild key shared by every store.
type scope struct {
	guildID  string
	raiderID string
}
