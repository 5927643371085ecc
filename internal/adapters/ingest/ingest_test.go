package ingest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/okian/xpoints/internal/domain/model"
	"github.com/okian/xpoints/internal/domain/rules"
	"github.com/okian/xpoints/internal/domain/scoring"
)

func TestReadCSVAliases(t *testing.T) {
	in := "\ufeffweb_name,element_type,team,match_id,minutes,goals_scored,assists,expected_goals,expected_assists,goals_conceded,saves,bonus,bps\n" +
		"Saka,MID,ARS,m1,90,1,1,0.5,0.25,0,0,3,40\n" +
		"Raya,GKP,ARS,m1,90,0,0,0,0,0,4,,\n"

	recs, rep, err := ReadCSV(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 2, rep.Rows)
	assert.Empty(t, rep.Warnings)

	saka := recs[0]
	assert.Equal(t, "Saka", saka.PlayerName)
	assert.Equal(t, model.PositionMidfielder, saka.Position)
	assert.Equal(t, "MID", saka.PositionLabel)
	assert.Equal(t, "ARS", saka.TeamCode)
	assert.Equal(t, 90, saka.MinutesPlayed)
	assert.Equal(t, 1, saka.Goals)
	assert.Equal(t, 0.5, saka.XG)
	assert.Equal(t, 0.25, saka.XA)
	require.NotNil(t, saka.Bonus)
	assert.Equal(t, 3, *saka.Bonus)
	require.NotNil(t, saka.BPS)
	assert.Equal(t, 40, *saka.BPS)
	assert.Nil(t, saka.EventPoints, "absent column stays null")

	raya := recs[1]
	assert.Equal(t, model.PositionGoalkeeper, raya.Position)
	assert.Equal(t, 4, raya.Saves)
	assert.Nil(t, raya.Bonus)
	assert.Nil(t, raya.BPS)
}

func TestReadCSVDefaultsAndWarnings(t *testing.T) {
	in := "player_name,position,minutes_played,xg,clearances,bonus\n" +
		"A,Defender,NaN,nan,3.0,\n" +
		"B,Wingback,ninety,0.x,,NaN\n" +
		",,,,,\n" +
		"C,4,45\n"

	recs, rep, err := ReadCSV(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 3, "blank rows are skipped")

	a := recs[0]
	assert.Equal(t, 0, a.MinutesPlayed)
	assert.Equal(t, 0.0, a.XG)
	assert.Equal(t, 3, a.Clearances, "integral floats are accepted")
	assert.Nil(t, a.Bonus)

	b := recs[1]
	assert.Equal(t, model.PositionUnknown, b.Position)
	assert.Equal(t, "Wingback", b.PositionName())
	assert.Equal(t, 0, b.MinutesPlayed)
	assert.Equal(t, 0.0, b.XG)

	c := recs[2]
	assert.Equal(t, model.PositionForward, c.Position)
	assert.Equal(t, 45, c.MinutesPlayed)
	assert.Equal(t, 0, c.Goals, "missing columns read as zero")

	require.Len(t, rep.Warnings, 2)
	assert.Equal(t, Warning{Row: 2, Column: "minutes_played", Value: "ninety"}, rep.Warnings[0])
	assert.Equal(t, "xg", rep.Warnings[1].Column)
}

func TestReadCSVErrors(t *testing.T) {
	_, _, err := ReadCSV(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = ReadCSV(ctx, strings.NewReader("player_name\nA\n"))
	assert.ErrorIs(t, err, context.Canceled)

	_, _, err = ReadCSVFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestReadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")
	require.NoError(t, os.WriteFile(path, []byte("web_name,minutes\nA,90\n"), 0o644))

	recs, _, err := ReadCSVFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 90, recs[0].MinutesPlayed)
}

func TestMergePlayerStats(t *testing.T) {
	stats, _, err := ReadPlayerStats(context.Background(), strings.NewReader(
		"web_name,gw,bonus,bps,event_points\n"+
			"Saka,1,3,40,15\n"+
			"Saka,1,0,10,2\n"+
			"Rice,2,1,30,8\n"+
			"Rice,1,,22,6\n"))
	require.NoError(t, err)
	require.Len(t, stats, 4)

	records := []model.PlayerMatchRecord{
		{PlayerName: "Saka", MatchID: "m1"},
		{PlayerName: "Rice", MatchID: "m1"},
		{PlayerName: "Odegaard", MatchID: "m1", Bonus: model.IntPtr(1)},
	}

	merged, matched := MergePlayerStats(records, stats, 1)
	assert.Equal(t, 2, matched)
	assert.Equal(t, 3, *merged[0].Bonus, "first occurrence wins")
	assert.Equal(t, 40, *merged[0].BPS)
	assert.Equal(t, 15, *merged[0].EventPoints)
	assert.Nil(t, merged[1].Bonus)
	assert.Equal(t, 22, *merged[1].BPS)
	assert.Equal(t, 1, *merged[2].Bonus, "unmatched records keep their values")
	assert.Nil(t, records[0].Bonus, "input is not modified")

	untagged, matched := MergePlayerStats(records, stats, 0)
	assert.Equal(t, 0, matched, "records without a gameweek are not joined across gameweeks")
	assert.Nil(t, untagged[0].BPS)
}

func TestMergePlayerStatsByRecordGameweek(t *testing.T) {
	stats := []PlayerStat{
		{Name: "Saka", Gameweek: 1, Bonus: model.IntPtr(3), BPS: model.IntPtr(40)},
		{Name: "Saka", Gameweek: 2, Bonus: model.IntPtr(0), BPS: model.IntPtr(5)},
	}
	records := []model.PlayerMatchRecord{
		{PlayerName: "Saka", MatchID: "m1", Gameweek: 1},
		{PlayerName: "Saka", MatchID: "m12", Gameweek: 2},
	}

	merged, matched := MergePlayerStats(records, stats, 0)
	assert.Equal(t, 2, matched)
	assert.Equal(t, 40, *merged[0].BPS)
	assert.Equal(t, 5, *merged[1].BPS, "a gameweek 2 match gets gameweek 2 stats")
	assert.Equal(t, 0, *merged[1].Bonus)

	pinned, matched := MergePlayerStats(records, stats, 1)
	assert.Equal(t, 1, matched)
	assert.Equal(t, 3, *pinned[0].Bonus)
	assert.Nil(t, pinned[1].BPS, "records tagged with another gameweek are skipped")
}

func TestReadCSVPlayerMatchStatsColumns(t *testing.T) {
	// column order of the playermatchstats export: the goalkeeper-only
	// goals_conceded and tackles come before team_goals_conceded and after
	// tackles_won respectively
	in := "web_name,position,player_id,match_id,minutes_played,goals,assists,xg,xa," +
		"tackles_won,interceptions,recoveries,blocks,clearances,saves,goals_conceded," +
		"tackles,team_goals_conceded,penalties_missed,gw\n" +
		"White,DEF,12,m1,90,0,0,0,0,2,1,4,1,3,,,5,3,0,1\n" +
		"Raya,GKP,1,m1,90,0,0,0,0,0,0,6,0,1,4,3,0,3,0,1\n"

	recs, rep, err := ReadCSV(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Empty(t, rep.Warnings)

	white := recs[0]
	assert.Equal(t, 3, white.TeamGoalsConceded, "team_goals_conceded wins over the goalkeeper column")
	assert.Equal(t, 2, white.TacklesWon, "tackles_won wins over tackles")
	assert.Equal(t, 1, white.Gameweek)
	assert.Equal(t, 1, scoring.ActualBasePoints(&white, rules.Season2024()), "no clean sheet and one point conceded")

	raya := recs[1]
	assert.Equal(t, 3, raya.TeamGoalsConceded)
	assert.Equal(t, 4, raya.Saves)
}

func TestLayoutPrefersCanonicalHeaders(t *testing.T) {
	l := newLayout([]string{"goals_conceded", "tackles", "team_goals_conceded", "tackles_won", "minutes"})
	assert.Equal(t, 2, l[fieldConceded])
	assert.Equal(t, 3, l[fieldTacklesWon])
	assert.Equal(t, 4, l[fieldMinutes], "an alias binds when no canonical header exists")

	l = newLayout([]string{"goals_conceded", "web_name", "name"})
	assert.Equal(t, 0, l[fieldConceded])
	assert.Equal(t, 1, l[fieldPlayerName], "the leftmost alias wins")
}

func TestReadPlayerStatsNeedsName(t *testing.T) {
	_, _, err := ReadPlayerStats(context.Background(), strings.NewReader("gw,bonus\n1,3\n"))
	assert.ErrorIs(t, err, ErrNoNameColumn)
}

func TestFindPlayerStatsFiles(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"GW2", "GW1", "other"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	write := func(rel, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(root, rel), []byte(body), 0o644))
	}
	write("GW1/playerstats.csv", "web_name,gw,bps\nA,1,10\n")
	write("GW2/playerstats.csv", "web_name,gw,bps\nA,2,20\n")
	write("other/players.csv", "web_name\nB\n")

	paths, err := FindPlayerStatsFiles(root)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.True(t, strings.HasSuffix(paths[0], filepath.Join("GW1", PlayerStatsFile)))

	stats, err := ReadPlayerStatsFiles(context.Background(), paths...)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 2, stats[1].Gameweek)
}

func TestPostgresSourceQuery(t *testing.T) {
	// The join query is plain SQL, so an in-memory SQLite database stands in.
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx := context.Background()
	for _, stmt := range []string{
		`CREATE TABLE players (player_id INTEGER, web_name TEXT, position TEXT, team_code TEXT)`,
		`CREATE TABLE playermatchstats (id INTEGER, player_id INTEGER, match_id TEXT,
			minutes_played INTEGER, goals INTEGER, assists INTEGER, xg REAL, xa REAL,
			team_goals_conceded INTEGER, saves INTEGER, tackles_won INTEGER)`,
		`INSERT INTO players VALUES (7, 'Saka', 'Midfielder', 'ARS'), (1, 'Raya', 'Goalkeeper', 'ARS')`,
		`INSERT INTO playermatchstats VALUES
			(100, 7, 'm1', 90, 1, 0, 0.75, 0.5, 1, NULL, 3),
			(101, 1, 'm1', 90, 0, 0, 0, 0, 1, 5, NULL)`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	src := NewPostgresSourceFromDB(db)
	recs, rep, err := src.Records(ctx)
	require.NoError(t, err)
	require.NoError(t, src.Close())
	require.Len(t, recs, 2)
	assert.Empty(t, rep.Warnings)

	// ordered by web_name
	raya, saka := recs[0], recs[1]
	assert.Equal(t, "Raya", raya.PlayerName)
	assert.Equal(t, 1, raya.PlayerID)
	assert.Equal(t, model.PositionGoalkeeper, raya.Position)
	assert.Equal(t, 5, raya.Saves)
	assert.Equal(t, 0, raya.TacklesWon)

	assert.Equal(t, 7, saka.PlayerID)
	assert.Equal(t, "ARS", saka.TeamCode)
	assert.Equal(t, 0.75, saka.XG)
	assert.Equal(t, 3, saka.TacklesWon)
	assert.Nil(t, saka.Bonus)
}

func TestPostgresSourcePrefersTeamConceded(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	ctx := context.Background()
	for _, stmt := range []string{
		`CREATE TABLE players (player_id INTEGER, web_name TEXT, position TEXT, team_code TEXT)`,
		`CREATE TABLE playermatchstats (player_id INTEGER, match_id TEXT, minutes_played INTEGER,
			saves INTEGER, goals_conceded INTEGER, team_goals_conceded INTEGER)`,
		`INSERT INTO players VALUES (12, 'White', 'Defender', 'ARS')`,
		`INSERT INTO playermatchstats VALUES (12, 'm1', 90, NULL, NULL, 3)`,
	} {
		_, err := db.ExecContext(ctx, stmt)
		require.NoError(t, err)
	}

	recs, _, err := NewPostgresSourceFromDB(db).Records(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 3, recs[0].TeamGoalsConceded)
}
