package config_test

import (
	"runtime"
	"testing"

	"github.com/padelhq/matchrank/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.TopK, convey.ShouldEqual, 50)
			convey.So(cfg.ResultLimit, convey.ShouldEqual, 20)
			convey.So(cfg.ScoreWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.OpenAIModel, convey.ShouldEqual, "text-embedding-3-small")
			convey.So(cfg.OpenAITimeoutSeconds, convey.ShouldEqual, 30)
			convey.So(cfg.PineconeNamespace, convey.ShouldEqual, "players")
			convey.So(cfg.EmbeddingCacheTTLHours, convey.ShouldEqual, 24)
		})

		convey.Convey("Then collaborator credentials default to empty", func() {
			convey.So(cfg.OpenAIAPIKey, convey.ShouldBeEmpty)
			convey.So(cfg.PineconeAPIKey, convey.ShouldBeEmpty)
			convey.So(cfg.DatabaseURL, convey.ShouldBeEmpty)
			convey.So(cfg.RedisAddr, convey.ShouldBeEmpty)
		})
	})
}
