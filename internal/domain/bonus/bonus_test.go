package bonus_test

import (
	"testing"

	"github.com/okian/xpoints/internal/domain/bonus"
	"github.com/okian/xpoints/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAward(t *testing.T) {
	Convey("Given a match with BPS [50, 40, 40, 10]", t, func() {
		match := []int{10, 40, 50, 40}

		Convey("Then the top score gets three", func() {
			So(bonus.Award(50, match), ShouldEqual, 3)
		})

		Convey("Then every player on 40 takes the first 40's rank", func() {
			So(bonus.Award(40, match), ShouldEqual, 2)
			So(bonus.Award(40, match), ShouldEqual, 2)
		})

		Convey("Then the fourth score gets nothing", func() {
			So(bonus.Award(10, match), ShouldEqual, 0)
		})

		Convey("Then the input slice is not reordered", func() {
			bonus.Award(50, match)
			So(match, ShouldResemble, []int{10, 40, 50, 40})
		})
	})

	Convey("Given missing context", t, func() {
		Convey("When the match set is empty", func() {
			So(bonus.Award(30, nil), ShouldEqual, 0)
			So(bonus.Award(30, []int{}), ShouldEqual, 0)
		})

		Convey("When the score is not in the set", func() {
			So(bonus.Award(30, []int{50, 40}), ShouldEqual, 0)
		})
	})

	Convey("Given three distinct scores", t, func() {
		match := []int{12, 30, 21}
		So(bonus.Award(30, match), ShouldEqual, 3)
		So(bonus.Award(21, match), ShouldEqual, 2)
		So(bonus.Award(12, match), ShouldEqual, 1)
	})
}

func TestAwardMatches(t *testing.T) {
	Convey("Given records across two matches", t, func() {
		recs := []model.PlayerMatchRecord{
			{MatchID: "m1", BPS: model.IntPtr(50)},
			{MatchID: "m2", BPS: model.IntPtr(5)},
			{MatchID: "m1", BPS: model.IntPtr(40)},
			{MatchID: "m1"},
			{MatchID: "m1", BPS: model.IntPtr(40)},
			{MatchID: "m1", BPS: model.IntPtr(10)},
		}

		Convey("When awarding per match", func() {
			got := bonus.AwardMatches(recs)

			Convey("Then each record is ranked within its own match", func() {
				So(got, ShouldResemble, []int{3, 3, 2, 0, 2, 0})
			})
		})
	})

	Convey("Given scored results", t, func() {
		results := []model.PointsResult{
			{Record: model.PlayerMatchRecord{MatchID: "m1", BPS: model.IntPtr(20)}},
			{Record: model.PlayerMatchRecord{MatchID: "m1", BPS: model.IntPtr(30)}},
		}

		Convey("When applying estimates", func() {
			out := bonus.Apply(results)

			Convey("Then copies carry the estimate", func() {
				So(out[0].EstimatedBonusPoints, ShouldEqual, 2)
				So(out[1].EstimatedBonusPoints, ShouldEqual, 3)
				So(results[0].EstimatedBonusPoints, ShouldEqual, 0)
			})
		})
	})
}
