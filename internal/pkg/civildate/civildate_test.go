package civildate

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestIn(t *testing.T) {
	Convey("In labels an instant with the civil date of the given timezone", t, func() {
		seoul, err := time.LoadLocation("Asia/Seoul")
		So(err, ShouldBeNil)

		Convey("late UTC evening is already the next day in Seoul", func() {
			// 23:30 UTC on Jan 1 is 08:30 KST on Jan 2.
			instant := time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC)

			So(In(instant, time.UTC), ShouldEqual, "2025-01-01")
			So(In(instant, seoul), ShouldEqual, "2025-01-02")
		})

		Convey("Seoul midnight is the rollover boundary", func() {
			// 14:59:59 UTC is 23:59:59 KST; one second later the label flips.
			before := time.Date(2025, 6, 10, 14, 59, 59, 0, time.UTC)
			after := before.Add(time.Second)

			So(In(before, seoul), ShouldEqual, "2025-06-10")
			So(In(after, seoul), ShouldEqual, "2025-06-11")
		})

		Convey("the label follows the fixed Layout", func() {
			instant := time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC)
			So(In(instant, time.UTC), ShouldEqual, "2025-03-07")

			parsed, err := time.Parse(Layout, In(instant, time.UTC))
			So(err, ShouldBeNil)
			So(parsed.Year(), ShouldEqual, 2025)
		})
	})
}

func TestToday(t *testing.T) {
	Convey("Today agrees with In at the current instant", t, func() {
		So(Today(time.UTC), ShouldEqual, In(time.Now(), time.UTC))
	})
}
