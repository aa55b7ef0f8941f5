// Package roster loads a guild roster snapshot from YAML: the raiders to
// score plus the attendance, award and ban history the service hydrates
// them with.
package roster

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/flps/internal/domain/model"
)

var validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // validator caches struct metadata

// Snapshot is one guild's roster at one instant.
type Snapshot struct {
	GuildID    string
	Now        time.Time
	Raiders    []model.RaiderInput
	Attendance []model.AttendanceRecord
	Awards     []model.LootAward
	Bans       []model.LootBan
}

type document struct {
	GuildID    string          `koanf:"guild_id" validate:"required"`
	Now        string          `koanf:"now"`
	Raiders    []raiderDoc     `koanf:"raiders" validate:"dive"`
	Attendance []attendanceDoc `koanf:"attendance" validate:"dive"`
	Awards     []awardDoc      `koanf:"awards" validate:"dive"`
	Bans       []banDoc        `koanf:"bans" validate:"dive"`
}

type baselineDoc struct {
	DeathsPerAttempt   float64 `koanf:"deaths_per_attempt"`
	AvoidableDamagePct float64 `koanf:"avoidable_damage_pct"`
}

type raiderDoc struct {
	ID                  string       `koanf:"id" validate:"required"`
	Name                string       `koanf:"name" validate:"required"`
	Role                string       `koanf:"role" validate:"required,oneof=dps tank healer"`
	AttendancePercent   int          `koanf:"attendance_percent"`
	DeathsPerAttempt    float64      `koanf:"deaths_per_attempt"`
	AvoidableDamagePct  float64      `koanf:"avoidable_damage_pct"`
	Baseline            *baselineDoc `koanf:"baseline"`
	VaultSlots          int          `koanf:"vault_slots"`
	CrestUsageRatio     float64      `koanf:"crest_usage_ratio"`
	HeroicBossesCleared int          `koanf:"heroic_bosses_cleared"`
	TierPiecesOwned     int          `koanf:"tier_pieces_owned"`
	SimulatedGain       float64      `koanf:"simulated_gain"`
	SpecBaselineOutput  float64      `koanf:"spec_baseline_output"`
	ActivityScore       float64      `koanf:"activity_score"`
}

type attendanceDoc struct {
	RaiderID    string `koanf:"raider_id" validate:"required"`
	InstanceID  string `koanf:"instance_id" validate:"required"`
	EncounterID string `koanf:"encounter_id"`
	RaidDate    string `koanf:"raid_date" validate:"required"`
	Attended    bool   `koanf:"attended"`
	Selected    bool   `koanf:"selected"`
}

type awardDoc struct {
	ID          string  `koanf:"id"`
	ItemID      string  `koanf:"item_id" validate:"required"`
	RaiderID    string  `koanf:"raider_id" validate:"required"`
	AwardedAt   string  `koanf:"awarded_at" validate:"required"`
	FlpsAtAward float64 `koanf:"flps_at_award" validate:"gte=0,lte=1"`
	Tier        string  `koanf:"tier"`
	Status      string  `koanf:"status" validate:"omitempty,oneof=ACTIVE REVOKED"`
	RevokedAt   string  `koanf:"revoked_at"`
}

type banDoc struct {
	ID        string `koanf:"id"`
	RaiderID  string `koanf:"raider_id" validate:"required"`
	Reason    string `koanf:"reason"`
	StartsAt  string `koanf:"starts_at"`
	ExpiresAt string `koanf:"expires_at"`
}

// Load reads and validates the roster snapshot at path. A missing "now"
// leaves Snapshot.Now zero for the caller to fill.
func Load(path string) (Snapshot, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %w", ErrLoadRoster, path, err)
	}

	var doc document
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %s: %w", ErrLoadRoster, path, err)
	}

	if err := validate.Struct(doc); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidRoster, describe(err))
	}

	snap, err := doc.snapshot()
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidRoster, err)
	}
	return snap, nil
}

func describe(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "document.")
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s, got %v", field, fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s, got %v", field, fe.Tag(), fe.Param(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func (d document) snapshot() (Snapshot, error) {
	snap := Snapshot{GuildID: d.GuildID}

	var err error
	if d.Now != "" {
		if snap.Now, err = ParseTime(d.Now); err != nil {
			return Snapshot{}, fmt.Errorf("now: %w", err)
		}
	}

	snap.Raiders = make([]model.RaiderInput, len(d.Raiders))
	for i, r := range d.Raiders {
		snap.Raiders[i] = r.input(d.GuildID)
	}

	snap.Attendance = make([]model.AttendanceRecord, len(d.Attendance))
	for i, a := range d.Attendance {
		date, err := ParseTime(a.RaidDate)
		if err != nil {
			return Snapshot{}, fmt.Errorf("attendance[%d].raid_date: %w", i, err)
		}
		snap.Attendance[i] = model.AttendanceRecord{
			RaiderID:    a.RaiderID,
			GuildID:     d.GuildID,
			InstanceID:  a.InstanceID,
			EncounterID: a.EncounterID,
			RaidDate:    date,
			Attended:    a.Attended,
			Selected:    a.Selected,
		}
	}

	snap.Awards = make([]model.LootAward, len(d.Awards))
	for i, a := range d.Awards {
		award, err := a.award(d.GuildID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("awards[%d]: %w", i, err)
		}
		snap.Awards[i] = award
	}

	snap.Bans = make([]model.LootBan, len(d.Bans))
	for i, b := range d.Bans {
		ban, err := b.ban(d.GuildID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("bans[%d]: %w", i, err)
		}
		snap.Bans[i] = ban
	}

	return snap, nil
}

func (r raiderDoc) input(guildID string) model.RaiderInput {
	in := model.RaiderInput{
		ID:                  r.ID,
		Name:                r.Name,
		GuildID:             guildID,
		Role:                model.Role(r.Role),
		AttendancePercent:   r.AttendancePercent,
		DeathsPerAttempt:    r.DeathsPerAttempt,
		AvoidableDamagePct:  r.AvoidableDamagePct,
		VaultSlots:          r.VaultSlots,
		CrestUsageRatio:     r.CrestUsageRatio,
		HeroicBossesCleared: r.HeroicBossesCleared,
		TierPiecesOwned:     r.TierPiecesOwned,
		SimulatedGain:       r.SimulatedGain,
		SpecBaselineOutput:  r.SpecBaselineOutput,
		ActivityScore:       r.ActivityScore,
	}
	if r.Baseline != nil {
		in.Baseline = &model.SpecBaseline{
			DeathsPerAttempt:   r.Baseline.DeathsPerAttempt,
			AvoidableDamagePct: r.Baseline.AvoidableDamagePct,
		}
	}
	return in
}

func (a awardDoc) award(guildID string) (model.LootAward, error) {
	at, err := ParseTime(a.AwardedAt)
	if err != nil {
		return model.LootAward{}, fmt.Errorf("awarded_at: %w", err)
	}
	award := model.LootAward{
		ID:          a.ID,
		ItemID:      a.ItemID,
		RaiderID:    a.RaiderID,
		GuildID:     guildID,
		AwardedAt:   at,
		FlpsAtAward: a.FlpsAtAward,
		Status:      model.AwardActive,
	}
	if a.Tier != "" {
		if award.Tier, err = model.ParseTier(a.Tier); err != nil {
			return model.LootAward{}, err
		}
	}
	if a.Status != "" {
		award.Status = model.AwardStatus(a.Status)
	}
	if a.RevokedAt != "" {
		revoked, err := ParseTime(a.RevokedAt)
		if err != nil {
			return model.LootAward{}, fmt.Errorf("revoked_at: %w", err)
		}
		award.RevokedAt = &revoked
	}
	return award, nil
}

func (b banDoc) ban(guildID string) (model.LootBan, error) {
	ban := model.LootBan{ID: b.ID, RaiderID: b.RaiderID, GuildID: guildID, Reason: b.Reason}
	if b.StartsAt != "" {
		starts, err := ParseTime(b.StartsAt)
		if err != nil {
			return model.LootBan{}, fmt.Errorf("starts_at: %w", err)
		}
		ban.StartsAt = starts
	}
	if b.ExpiresAt != "" {
		expires, err := ParseTime(b.ExpiresAt)
		if err != nil {
			return model.LootBan{}, fmt.Errorf("expires_at: %w", err)
		}
		ban.ExpiresAt = &expires
	}
	return ban, nil
}

// ParseTime accepts RFC 3339 timestamps and bare dates, both read as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC 3339 or YYYY-MM-DD, got %q", s)
	}
	return t, nil
}
