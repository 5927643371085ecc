package service_test

import (
	"context"
	"errors"
	"testing"

	service "github.com/okian/xpoints/internal/app"
	"github.com/okian/xpoints/internal/domain/aggregate"
	"github.com/okian/xpoints/internal/domain/model"
	"github.com/okian/xpoints/internal/domain/rules"
	"github.com/okian/xpoints/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// batch is one match of three starters, a repeated row and a short substitute
// appearance in a second match.
func batch() []model.PlayerMatchRecord {
	saka := model.PlayerMatchRecord{
		PlayerID: 7, PlayerName: "Saka", Position: model.PositionMidfielder, TeamCode: "ARS", MatchID: "m1",
		MinutesPlayed: 90, Goals: 1, XG: 0.4, BPS: model.IntPtr(40),
	}
	return []model.PlayerMatchRecord{
		saka,
		{
			PlayerID: 6, PlayerName: "Gabriel", Position: model.PositionDefender, TeamCode: "ARS", MatchID: "m1",
			MinutesPlayed: 90, Goals: 1, XG: 0.25, Clearances: 5, Blocks: 2, Interceptions: 2, TacklesWon: 2,
			Bonus: model.IntPtr(3), BPS: model.IntPtr(38),
		},
		{
			PlayerID: 1, PlayerName: "Raya", Position: model.PositionGoalkeeper, TeamCode: "ARS", MatchID: "m1",
			MinutesPlayed: 90, Saves: 9, TeamGoalsConceded: 3, BPS: model.IntPtr(20),
		},
		saka,
		{
			PlayerID: 9, PlayerName: "Havertz", Position: model.PositionForward, TeamCode: "ARS", MatchID: "m2",
			MinutesPlayed: 20, XG: 0.8, TeamGoalsConceded: 1,
		},
	}
}

func fixedRunID() string { return "run-1" }

func TestService_Analyze(t *testing.T) {
	Convey("Given a service with a small worker pool", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(3),
			service.WithQueueSize(2),
			service.WithMinMinutes(0),
			service.WithRunIDFunc(fixedRunID),
		)

		Convey("When nothing was analyzed yet", func() {
			_, err := svc.Latest()
			So(errors.Is(err, service.ErrNoReport), ShouldBeTrue)
			_, err = svc.Stats(ctx)
			So(errors.Is(err, service.ErrNoReport), ShouldBeTrue)
		})

		Convey("When analyzing a batch", func() {
			report, err := svc.Analyze(ctx, batch())
			So(err, ShouldBeNil)

			Convey("Then the duplicate row is dropped and order is kept", func() {
				So(report.RunID, ShouldEqual, "run-1")
				So(report.RuleVersion, ShouldEqual, rules.Version2024)
				So(report.Duplicates, ShouldEqual, 1)
				So(len(report.Results), ShouldEqual, 4)
				names := []string{}
				for _, r := range report.Results {
					names = append(names, r.Record.PlayerName)
				}
				So(names, ShouldResemble, []string{"Saka", "Gabriel", "Raya", "Havertz"})
			})

			Convey("Then every record is scored under the rule set", func() {
				saka, gabriel, raya, havertz := report.Results[0], report.Results[1], report.Results[2], report.Results[3]
				So(saka.ActualBasePoints, ShouldEqual, 8)
				So(saka.ExpectedBasePoints, ShouldAlmostEqual, 5.0, 1e-9)
				So(gabriel.ActualBasePoints, ShouldEqual, 14)
				So(gabriel.ActualTotalPoints, ShouldEqual, 17)
				So(gabriel.DefensiveContributionPoints, ShouldEqual, 2)
				So(raya.ActualBasePoints, ShouldEqual, 4)
				So(havertz.ActualBasePoints, ShouldEqual, 1)
				So(havertz.ExpectedBasePoints, ShouldAlmostEqual, 4.2, 1e-9)
			})

			Convey("Then bonus is estimated per match from BPS", func() {
				So(report.Results[0].EstimatedBonusPoints, ShouldEqual, 3)
				So(report.Results[1].EstimatedBonusPoints, ShouldEqual, 2)
				So(report.Results[2].EstimatedBonusPoints, ShouldEqual, 1)
				So(report.Results[3].EstimatedBonusPoints, ShouldEqual, 0)
			})

			Convey("Then the summary and positions are attached", func() {
				So(report.Summary.Records, ShouldEqual, 4)
				So(report.Summary.Matches, ShouldEqual, 2)
				So(report.Summary.DefensiveContributors, ShouldEqual, 1)
				So(len(report.Positions), ShouldEqual, 4)
				So(report.Positions[0].Position, ShouldEqual, "Defender")
			})

			Convey("Then it becomes the latest report", func() {
				latest, err := svc.Latest()
				So(err, ShouldBeNil)
				So(latest, ShouldEqual, report)

				stats, err := svc.Stats(ctx)
				So(err, ShouldBeNil)
				So(stats.RunID, ShouldEqual, "run-1")
				So(stats.Duplicates, ShouldEqual, 1)
			})
		})

		Convey("When analyzing an empty batch", func() {
			report, err := svc.Analyze(ctx, nil)
			So(err, ShouldBeNil)
			So(report.Results, ShouldBeEmpty)
			So(report.Summary, ShouldResemble, aggregate.Summary{})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Analyze(cctx, batch())

			Convey("Then the run fails and no report is stored", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				_, err := svc.Latest()
				So(errors.Is(err, service.ErrNoReport), ShouldBeTrue)
			})
		})
	})

	Convey("Given the previous season's rules", t, func() {
		svc := service.New(service.WithRuleSet(rules.Season2023()), service.WithWorkerCount(1))
		report, err := svc.Analyze(context.Background(), batch())

		Convey("Then defensive contributions score nothing", func() {
			So(err, ShouldBeNil)
			So(report.RuleVersion, ShouldEqual, rules.Version2023)
			So(report.Results[1].ActualBasePoints, ShouldEqual, 12)
			So(report.Results[1].DefensiveContributionPoints, ShouldEqual, 0)
		})
	})
}

func TestService_Queries(t *testing.T) {
	Convey("Given an analyzed batch", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2))
		_, err := svc.Analyze(ctx, batch())
		So(err, ShouldBeNil)

		Convey("When reading the leaderboard", func() {
			entries, err := svc.Leaderboard(ctx, aggregate.MetricActualBase, 2)
			So(err, ShouldBeNil)
			So(len(entries), ShouldEqual, 2)
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[0].PlayerName, ShouldEqual, "Gabriel")
			So(entries[0].Value, ShouldEqual, 14.0)
			So(entries[1].PlayerName, ShouldEqual, "Saka")
		})

		Convey("When the metric is unknown", func() {
			_, err := svc.Leaderboard(ctx, aggregate.Metric("shots"), 2)
			So(errors.Is(err, aggregate.ErrUnknownMetric), ShouldBeTrue)
		})

		Convey("When reading the value table", func() {
			rows, err := svc.Value(ctx, 10)

			Convey("Then short appearances are left out", func() {
				So(err, ShouldBeNil)
				So(len(rows), ShouldEqual, 3)
				So(rows[0].PlayerName, ShouldEqual, "Gabriel")
				So(rows[0].ExpectedBasePer90, ShouldAlmostEqual, 9.5, 1e-9)
			})
		})

		Convey("When reading performers", func() {
			over, err := svc.Performers(ctx, service.DirectionOver, 10)
			So(err, ShouldBeNil)
			So(len(over), ShouldEqual, 2)
			So(over[0].PlayerName, ShouldEqual, "Gabriel")
			So(over[1].PlayerName, ShouldEqual, "Saka")

			under, err := svc.Performers(ctx, service.DirectionUnder, 10)
			So(err, ShouldBeNil)
			So(under, ShouldBeEmpty)

			_, err = svc.Performers(ctx, "sideways", 10)
			So(errors.Is(err, service.ErrUnknownDirection), ShouldBeTrue)
		})

		Convey("When reading positions", func() {
			groups, err := svc.Positions(ctx)
			So(err, ShouldBeNil)
			So(len(groups), ShouldEqual, 3)
		})
	})
}

func TestService_MinMinutes(t *testing.T) {
	Convey("Given a match with a high-BPS cameo and a short appearance elsewhere", t, func() {
		ctx := context.Background()
		records := append(batch(), model.PlayerMatchRecord{
			PlayerID: 19, PlayerName: "Trossard", Position: model.PositionForward, TeamCode: "ARS", MatchID: "m1",
			MinutesPlayed: 10, Goals: 1, XG: 0.3, BPS: model.IntPtr(45),
		})
		svc := service.New(service.WithWorkerCount(2), service.WithMinMinutes(30))

		Convey("When analyzing", func() {
			report, err := svc.Analyze(ctx, records)
			So(err, ShouldBeNil)

			Convey("Then appearances under the cut are left out of the report", func() {
				So(report.MinMinutes, ShouldEqual, 30)
				So(report.ShortAppearances, ShouldEqual, 2)
				So(len(report.Results), ShouldEqual, 3)
				for _, r := range report.Results {
					So(r.Record.MinutesPlayed, ShouldBeGreaterThanOrEqualTo, 30)
				}
				So(report.Summary.Records, ShouldEqual, 3)
				So(report.Summary.AvgActualBase, ShouldAlmostEqual, 26.0/3, 1e-9)
				So(len(report.Positions), ShouldEqual, 3)
			})

			Convey("Then bonus still ranks against the whole match", func() {
				So(report.Results[0].Record.PlayerName, ShouldEqual, "Saka")
				So(report.Results[0].EstimatedBonusPoints, ShouldEqual, 2)
				So(report.Results[1].EstimatedBonusPoints, ShouldEqual, 1)
				So(report.Results[2].EstimatedBonusPoints, ShouldEqual, 0)
			})

			Convey("Then the queries only see the kept records", func() {
				stats, err := svc.Stats(ctx)
				So(err, ShouldBeNil)
				So(stats.Short, ShouldEqual, 2)

				top, err := svc.Leaderboard(ctx, aggregate.MetricXG, 10)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 3)
				So(top[0].PlayerName, ShouldEqual, "Saka")
			})
		})
	})
}
