package ingest

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/okian/xpoints/internal/domain/model"
)

// PlayerStatsFile is the file name searched for by FindPlayerStatsFiles.
const PlayerStatsFile = "playerstats.csv"

// PlayerStat is one row of a per-gameweek player stats file.
type PlayerStat struct {
	Name        string
	Gameweek    int
	Bonus       *int
	BPS         *int
	EventPoints *int
}

// ReadPlayerStats reads gameweek player stats from r.
func ReadPlayerStats(ctx context.Context, r io.Reader) ([]PlayerStat, Report, error) {
	var out []PlayerStat
	p, err := readRows(ctx, r, func(p *rowParser, cells []string) {
		out = append(out, PlayerStat{
			Name:        p.cell(cells, fieldPlayerName),
			Gameweek:    p.int(cells, fieldGameweek),
			Bonus:       p.nullableInt(cells, fieldBonus),
			BPS:         p.nullableInt(cells, fieldBPS),
			EventPoints: p.nullableInt(cells, fieldEventPoints),
		})
	})
	if err != nil {
		return nil, Report{}, err
	}
	if !p.layout.has(fieldPlayerName) {
		return nil, Report{}, ErrNoNameColumn
	}
	rep := Report{Rows: len(out), Warnings: p.warnings}
	logWarnings(ctx, "player_stats", rep)
	return out, rep, nil
}

// ReadPlayerStatsFiles reads and concatenates every file in paths.
func ReadPlayerStatsFiles(ctx context.Context, paths ...string) ([]PlayerStat, error) {
	var out []PlayerStat
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		stats, _, err := ReadPlayerStats(ctx, f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		out = append(out, stats...)
	}
	return out, nil
}

// FindPlayerStatsFiles returns every playerstats.csv below root, sorted.
func FindPlayerStatsFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == PlayerStatsFile {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}

type statKey struct {
	name string
	gw   int
}

// MergePlayerStats fills Bonus, BPS and EventPoints on records from gameweek
// player stats matched by name. Only the first stats row per (name, gameweek)
// is used.
//
// With gw > 0 only that gameweek's stats are merged, and records tagged with a
// different gameweek are skipped. With gw <= 0 every record joins on its own
// Gameweek, so records without one are skipped. Stats never cross gameweeks.
//
// Skipped and unmatched records keep their own values. The input slice is not
// modified; matched is the number of records that received stats.
func MergePlayerStats(records []model.PlayerMatchRecord, stats []PlayerStat, gw int) (out []model.PlayerMatchRecord, matched int) {
	byKey := make(map[statKey]*PlayerStat, len(stats))
	for i := range stats {
		s := &stats[i]
		if gw > 0 && s.Gameweek != gw {
			continue
		}
		k := statKey{name: s.Name, gw: s.Gameweek}
		if _, ok := byKey[k]; !ok {
			byKey[k] = s
		}
	}

	out = make([]model.PlayerMatchRecord, len(records))
	copy(out, records)
	for i := range out {
		target := gw
		switch {
		case gw > 0 && out[i].Gameweek != 0 && out[i].Gameweek != gw:
			continue
		case gw <= 0:
			if out[i].Gameweek <= 0 {
				continue
			}
			target = out[i].Gameweek
		}
		s, ok := byKey[statKey{name: out[i].PlayerName, gw: target}]
		if !ok {
			continue
		}
		out[i].Bonus = copyInt(s.Bonus)
		out[i].BPS = copyInt(s.BPS)
		out[i].EventPoints = copyInt(s.EventPoints)
		matched++
	}
	return out, matched
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	return model.IntPtr(*p)
}
