package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/scoreview/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.SettleDelayMS, convey.ShouldEqual, 300)
				convey.So(cfg.CacheTTLMS, convey.ShouldEqual, 30_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SCOREVIEW_ADDR", ":8081")
			_ = os.Setenv("SCOREVIEW_API_BASE_URL", "http://board.example:8080")
			_ = os.Setenv("SCOREVIEW_SETTLE_DELAY_MS", "150")
			_ = os.Setenv("SCOREVIEW_CACHE_TTL_MS", "60000")
			_ = os.Setenv("SCOREVIEW_PAGE_SIZE", "20")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8081")
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://board.example:8080")
				convey.So(cfg.SettleDelayMS, convey.ShouldEqual, 150)
				convey.So(cfg.CacheTTLMS, convey.ShouldEqual, 60000)
				convey.So(cfg.PageSize, convey.ShouldEqual, 20)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
api_base_url: "https://board.example"
settle_delay_ms: 500
timezone: "UTC"
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SCOREVIEW_CONFIG", tmpFile)
			_ = os.Setenv("SCOREVIEW_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "https://board.example")
				convey.So(cfg.SettleDelayMS, convey.ShouldEqual, 500)
				convey.So(cfg.Timezone, convey.ShouldEqual, "UTC")
				convey.So(cfg.PageSize, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SCOREVIEW_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("SCOREVIEW_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("SCOREVIEW_SETTLE_DELAY_MS", "soon")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given invalid settings", t, func() {
		ctx := context.Background()
		defer clearConfigEnvVars()

		cases := map[string]string{
			"SCOREVIEW_ADDR":              "",
			"SCOREVIEW_API_BASE_URL":      "not a url",
			"SCOREVIEW_SETTLE_DELAY_MS":   "-1",
			"SCOREVIEW_CACHE_TTL_MS":      "0",
			"SCOREVIEW_CACHE_MAX_ENTRIES": "0",
			"SCOREVIEW_PAGE_SIZE":         "0",
			"SCOREVIEW_MAILBOX_SIZE":      "0",
			"SCOREVIEW_TIMEZONE":          "Mars/Olympus",
		}
		for key, value := range cases {
			clearConfigEnvVars()
			_ = os.Setenv(key, value)

			cfg, err := config.Load(ctx)

			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(cfg, convey.ShouldBeNil)
		}
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SCOREVIEW_CONFIG",
		"SCOREVIEW_ADDR",
		"SCOREVIEW_API_BASE_URL",
		"SCOREVIEW_SETTLE_DELAY_MS",
		"SCOREVIEW_CACHE_TTL_MS",
		"SCOREVIEW_CACHE_MAX_ENTRIES",
		"SCOREVIEW_PAGE_SIZE",
		"SCOREVIEW_MAILBOX_SIZE",
		"SCOREVIEW_TIMEZONE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "scoreview-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
