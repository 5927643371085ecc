package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/xpoints/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("XPOINTS_ADDR", ":8080")
			_ = os.Setenv("XPOINTS_WORKER_COUNT", "16")
			_ = os.Setenv("XPOINTS_RULES_VERSION", "2023-24")
			_ = os.Setenv("XPOINTS_TOLERANCE", "1.5")
			_ = os.Setenv("XPOINTS_EXPORT_BACKEND", "none")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.RulesVersion, convey.ShouldEqual, "2023-24")
				convey.So(cfg.Tolerance, convey.ShouldEqual, 1.5)
				convey.So(cfg.ExportBackend, convey.ShouldEqual, config.BackendNone)
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := writeConfigFile(t, `
addr: ":9090"
queue_size: 4096
worker_count: 24
table_backend: sqlite
sqlite_path: points.db
min_minutes: 45
`)
			_ = os.Setenv("XPOINTS_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 4096)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 24)
				convey.So(cfg.TableBackend, convey.ShouldEqual, config.BackendSQLite)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "points.db")
				convey.So(cfg.MinMinutes, convey.ShouldEqual, 45)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := writeConfigFile(t, `
addr: ":9090"
queue_size: 4096
worker_count: 24
`)
			_ = os.Setenv("XPOINTS_CONFIG", tmpFile)
			_ = os.Setenv("XPOINTS_ADDR", ":8080")
			_ = os.Setenv("XPOINTS_WORKER_COUNT", "32")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 4096)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 32)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_ = os.Setenv("XPOINTS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)

			convey.Convey("Then a load error is returned", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value fails validation", func() {
			_ = os.Setenv("XPOINTS_WORKER_COUNT", "0")

			_, err := config.Load(ctx)

			convey.Convey("Then an invalid config error is returned", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		if name, _, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(name, "XPOINTS_") {
			_ = os.Unsetenv(name)
		}
	}
}
