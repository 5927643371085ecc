package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/xpoints/internal/adapters/export"
	"github.com/okian/xpoints/internal/config"
	"github.com/okian/xpoints/internal/domain/rules"
	"github.com/smartystreets/goconvey/convey"
)

const inputCSV = `web_name,element_type,team,match_id,minutes,goals_scored,assists,expected_goals,expected_assists,goals_conceded,saves
Gabriel,DEF,ARS,m1,90,1,0,0.25,0,0,0
Raya,GKP,ARS,m1,90,0,0,0,0,0,6
Saka,MID,ARS,m1,90,1,1,0.5,0.25,0,0
Saka,MID,ARS,m1,90,1,1,0.5,0.25,0,0
`

// execute runs the root command with args and returns stdout.
func execute(args ...string) (string, error) {
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeInput(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "player_match.csv")
	if err := os.WriteFile(p, []byte(inputCSV), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return p
}

func TestRulesCommand(t *testing.T) {
	t.Setenv("XPOINTS_CONFIG", "")

	convey.Convey("Given the rules command", t, func() {
		convey.Convey("When printing the default rule set", func() {
			out, err := execute("rules")

			convey.Convey("Then the output decodes back to the same rules", func() {
				convey.So(err, convey.ShouldBeNil)
				rs, err := rules.Decode(bytes.NewBufferString(out))
				convey.So(err, convey.ShouldBeNil)
				convey.So(rs, convey.ShouldResemble, rules.Season2024())
			})
		})

		convey.Convey("When asking for an older season", func() {
			out, err := execute("rules", "--rules-version", rules.Version2023)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, rules.Version2023)
		})

		convey.Convey("When listing versions", func() {
			out, err := execute("rules", "--list")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, rules.Version2024)
			convey.So(out, convey.ShouldContainSubstring, rules.Version2023)
		})

		convey.Convey("When the version is unknown", func() {
			_, err := execute("rules", "--rules-version", "1999-00")
			convey.So(errors.Is(err, rules.ErrUnknownVersion), convey.ShouldBeTrue)
		})
	})
}

func TestAnalyzeCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir)
	exportDir := filepath.Join(dir, "exports")
	t.Setenv("XPOINTS_CONFIG", "")
	t.Setenv("XPOINTS_EXPORT_DIR", exportDir)

	convey.Convey("Given a player-match CSV with a duplicate row", t, func() {
		convey.Convey("When analyzing with JSON output", func() {
			out, err := execute("analyze", "--input", input, "--output", "json")
			convey.So(err, convey.ShouldBeNil)

			var doc analysisOutput
			convey.So(json.Unmarshal([]byte(out), &doc), convey.ShouldBeNil)

			convey.Convey("Then the duplicate is dropped and the rest scored", func() {
				convey.So(doc.Duplicates, convey.ShouldEqual, 1)
				convey.So(doc.Summary.Records, convey.ShouldEqual, 3)
				convey.So(doc.RuleVersion, convey.ShouldEqual, rules.Version2024)
				convey.So(doc.Top, convey.ShouldNotBeEmpty)
				convey.So(doc.Top[0].PlayerName, convey.ShouldEqual, "Gabriel")
			})

			convey.Convey("Then the results CSV is exported under the run id", func() {
				_, err := os.Stat(filepath.Join(exportDir, doc.RunID, export.ResultsFile))
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When analyzing with text output and export disabled", func() {
			out, err := execute("analyze", "--input", input, "--export", "none")
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Records: 3")
			convey.So(out, convey.ShouldContainSubstring, "Duplicates dropped: 1")
			convey.So(out, convey.ShouldContainSubstring, "OVERPERFORMER")
		})

		convey.Convey("When no input is configured", func() {
			_, err := execute("analyze", "--export", "none")
			convey.So(errors.Is(err, errNoInput), convey.ShouldBeTrue)
		})

		convey.Convey("When the output format is unknown", func() {
			_, err := execute("analyze", "--input", input, "--export", "none", "--output", "xml")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When a flag produces an invalid configuration", func() {
			_, err := execute("analyze", "--input", input, "--table", "mongo")
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

func TestServeHandler(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XPOINTS_CONFIG", "")

	convey.Convey("Given a service analyzed from configuration", t, func() {
		cfg := config.New()
		cfg.InputPath = writeInput(t, dir)
		cfg.ExportBackend = config.BackendNone
		cfg.WorkerCount = 2

		ctx := context.Background()
		svc, report, err := analyzeOnce(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(len(report.Results), convey.ShouldEqual, 3)

		h := newHandler(ctx, svc, cfg.MaxLeaderboardLimit)

		convey.Convey("When requesting stats", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))

			convey.Convey("Then the latest run is served", func() {
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(rec.Body.String(), convey.ShouldContainSubstring, report.RunID)
			})
		})

		convey.Convey("When the leaderboard limit exceeds the cap", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard?limit=1000", nil))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("When fetching the API document", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("When scraping health", func() {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}
