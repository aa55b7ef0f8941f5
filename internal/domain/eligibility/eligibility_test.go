package eligibility_test

import (
	"testing"
	"time"

	"github.com/okian/flps/internal/domain/eligibility"
	"github.com/okian/flps/internal/domain/guild"
	"github.com/okian/flps/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGate_Evaluate(t *testing.T) {
	now := time.Date(2025, 3, 20, 21, 0, 0, 0, time.UTC)
	future := now.Add(48 * time.Hour)
	past := now.Add(-time.Hour)

	Convey("Given the default gate", t, func() {
		gate := eligibility.New(guild.Default().Eligibility)
		subject := eligibility.Subject{RaiderID: "r1", GuildID: "g1", Attendance: 0.9}

		Convey("A committed raider without bans is eligible", func() {
			v := gate.Evaluate(subject, nil, now)
			So(v.Eligible, ShouldBeTrue)
			So(v.Reasons, ShouldBeEmpty)
		})

		Convey("Attendance exactly at the threshold passes", func() {
			subject.Attendance = 0.8
			So(gate.Evaluate(subject, nil, now).Eligible, ShouldBeTrue)
		})

		Convey("Attendance below the threshold fails", func() {
			subject.Attendance = 0.79
			v := gate.Evaluate(subject, nil, now)
			So(v.Eligible, ShouldBeFalse)
			So(v.Reasons, ShouldResemble, []model.Reason{model.ReasonLowAttendance})
		})

		Convey("An active ban always fails regardless of scores", func() {
			subject.Attendance = 1
			subject.Activity = 1
			for _, ban := range []model.LootBan{
				{RaiderID: "r1", GuildID: "g1"},
				{RaiderID: "r1", GuildID: "g1", ExpiresAt: &future},
			} {
				v := gate.Evaluate(subject, []model.LootBan{ban}, now)
				So(v.Eligible, ShouldBeFalse)
				So(v.Reasons, ShouldResemble, []model.Reason{model.ReasonBanned})
			}
		})

		Convey("Expired bans and bans scoped elsewhere are ignored", func() {
			bans := []model.LootBan{
				{RaiderID: "r1", GuildID: "g1", ExpiresAt: &past},
				{RaiderID: "r2", GuildID: "g1"},
				{RaiderID: "r1", GuildID: "g2"},
			}
			So(gate.Evaluate(subject, bans, now).Eligible, ShouldBeTrue)
		})
	})

	Convey("Given a raised activity threshold", t, func() {
		gate := eligibility.New(guild.Eligibility{MinAttendance: 0.5, MinActivity: 0.6})

		Convey("Every failing check is reported", func() {
			v := gate.Evaluate(eligibility.Subject{RaiderID: "r1", GuildID: "g1", Attendance: 0.4, Activity: 0.2},
				[]model.LootBan{{RaiderID: "r1", GuildID: "g1"}}, now)
			So(v.Eligible, ShouldBeFalse)
			So(v.Reasons, ShouldResemble, []model.Reason{model.ReasonBanned, model.ReasonLowAttendance, model.ReasonLowActivity})
		})
	})
}
