package attendance_test

import (
	"testing"
	"time"

	"github.com/okian/flps/internal/domain/attendance"
	"github.com/okian/flps/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func night(day int) time.Time {
	return time.Date(2025, 3, day, 20, 0, 0, 0, time.UTC)
}

func rec(day int, encounter string, attended, selected bool) model.AttendanceRecord {
	return model.AttendanceRecord{
		RaiderID:    "r1",
		GuildID:     "g1",
		InstanceID:  "liberation",
		EncounterID: encounter,
		RaidDate:    night(day),
		Attended:    attended,
		Selected:    selected,
	}
}

func TestAggregate(t *testing.T) {
	Convey("Given no attendance records", t, func() {
		stats := attendance.Aggregate(nil)

		Convey("Then the stats are all zero without a division fault", func() {
			So(stats, ShouldResemble, attendance.Stats{})
			So(stats.Percentage(), ShouldEqual, 0.0)
			So(stats.SelectionPercentage(), ShouldEqual, 0.0)
			So(stats.MeetsThreshold(0.8), ShouldBeFalse)
			So(stats.MeetsThreshold(0), ShouldBeTrue)
		})
	})

	Convey("Given four raid nights with several encounters each", t, func() {
		records := []model.AttendanceRecord{
			rec(1, "boss1", true, true), rec(1, "boss2", true, false),
			rec(4, "boss1", true, true), rec(4, "boss2", true, true),
			rec(8, "boss1", false, false),
			rec(11, "boss1", true, false), rec(11, "boss2", true, true),
		}
		stats := attendance.Aggregate(records)

		Convey("Then raids are counted per night and encounters per record", func() {
			So(stats.TotalRaids, ShouldEqual, 4)
			So(stats.AttendedRaids, ShouldEqual, 3)
			So(stats.TotalEncounters, ShouldEqual, 7)
			So(stats.SelectedEncounters, ShouldEqual, 4)
			So(stats.Percentage(), ShouldEqual, 0.75)
			So(stats.SelectionPercentage(), ShouldAlmostEqual, 4.0/7.0, 1e-12)
		})

		Convey("Then the threshold check is inclusive", func() {
			So(stats.MeetsThreshold(0.75), ShouldBeTrue)
			So(stats.MeetsThreshold(0.8), ShouldBeFalse)
		})

		Convey("When restricting to a date window", func() {
			w := attendance.AggregateWindow(records, night(4), night(11))
			So(w.TotalRaids, ShouldEqual, 2)
			So(w.AttendedRaids, ShouldEqual, 1)
		})

		Convey("When keeping only the two most recent raids", func() {
			r := attendance.AggregateRecent(records, 2)
			So(r.TotalRaids, ShouldEqual, 2)
			So(r.AttendedRaids, ShouldEqual, 1)
			So(r.TotalEncounters, ShouldEqual, 3)
		})

		Convey("When asking for more raids than exist", func() {
			So(attendance.AggregateRecent(records, 10), ShouldResemble, stats)
			So(attendance.AggregateRecent(records, 0), ShouldResemble, attendance.Stats{})
		})
	})
}

func TestForRaider(t *testing.T) {
	Convey("Given records from several raiders and guilds", t, func() {
		other := rec(1, "boss1", true, true)
		other.RaiderID = "r2"
		foreign := rec(1, "boss1", true, true)
		foreign.GuildID = "g2"
		records := []model.AttendanceRecord{rec(1, "boss1", true, true), other, foreign}

		Convey("Then only the raider's own guild records remain", func() {
			got := attendance.ForRaider(records, "r1", "g1")
			So(len(got), ShouldEqual, 1)
			So(got[0].RaiderID, ShouldEqual, "r1")
			So(got[0].GuildID, ShouldEqual, "g1")
		})
	})
}
