package config_test

import (
	"context"
	"testing"
	"time"

	"github.com/okian/scoreview/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://localhost:8080")
			convey.So(cfg.SettleDelay(), convey.ShouldEqual, 300*time.Millisecond)
			convey.So(cfg.CacheTTL(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, time.Duration(0))
			convey.So(cfg.PageSize, convey.ShouldEqual, 50)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the default timezone resolves", func() {
			loc, err := cfg.Location()
			convey.So(err, convey.ShouldBeNil)
			convey.So(loc.String(), convey.ShouldEqual, "Asia/Shanghai")
		})
	})
}
