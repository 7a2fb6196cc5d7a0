package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/lookbook/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

var configEnvVars = []string{
	"LOOKBOOK_CONFIG",
	"LOOKBOOK_ADDR",
	"LOOKBOOK_DEFAULT_K",
	"LOOKBOOK_MAX_K",
	"LOOKBOOK_FALLBACK_FACTOR",
	"LOOKBOOK_ORACLE_URL",
	"LOOKBOOK_IMAGE_BASE_URL",
	"LOOKBOOK_BREAKER_MAX_REQUESTS",
	"LOOKBOOK_LOG_FORMAT",
}

func clearConfigEnvVars() {
	for _, name := range configEnvVars {
		_ = os.Unsetenv(name)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "lookbook.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.DefaultK, convey.ShouldEqual, 5)
				convey.So(cfg.MaxUploadBytes, convey.ShouldEqual, int64(10<<20))
				convey.So(cfg.BreakerMaxRequests, convey.ShouldEqual, uint32(1))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("LOOKBOOK_ADDR", ":8080")
			_ = os.Setenv("LOOKBOOK_DEFAULT_K", "3")
			_ = os.Setenv("LOOKBOOK_ORACLE_URL", "http://oracle:8000/analyze")
			_ = os.Setenv("LOOKBOOK_BREAKER_MAX_REQUESTS", "4")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DefaultK, convey.ShouldEqual, 3)
				convey.So(cfg.OracleURL, convey.ShouldEqual, "http://oracle:8000/analyze")
				convey.So(cfg.BreakerMaxRequests, convey.ShouldEqual, uint32(4))
				convey.So(cfg.MaxK, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			path := createTempConfigFile(t, `
addr: ":9090"
default_k: 4
image_base_url: "https://cdn.example.com/output"
log_format: json
`)
			_ = os.Setenv("LOOKBOOK_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge the file over the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DefaultK, convey.ShouldEqual, 4)
				convey.So(cfg.ImageBaseURL, convey.ShouldEqual, "https://cdn.example.com/output")
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.FallbackFactor, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			path := createTempConfigFile(t, `
addr: ":9090"
default_k: 4
`)
			_ = os.Setenv("LOOKBOOK_CONFIG", path)
			_ = os.Setenv("LOOKBOOK_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DefaultK, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			path := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("LOOKBOOK_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a non-existent file", func() {
			_ = os.Setenv("LOOKBOOK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("LOOKBOOK_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When k bounds contradict each other", func() {
			_ = os.Setenv("LOOKBOOK_DEFAULT_K", "10")
			_ = os.Setenv("LOOKBOOK_MAX_K", "2")

			_, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("LOOKBOOK_DEFAULT_K", "invalid")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}
