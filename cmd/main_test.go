package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	service "github.com/okian/lookbook/internal/app"
	"github.com/okian/lookbook/internal/config"
	"github.com/okian/lookbook/internal/domain/types"
	"github.com/okian/lookbook/pkg/logger"
	"github.com/okian/lookbook/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const testCorpus = `[
  {"gender": "women", "top": {"color": "Red", "style": "Solid", "category": "Shirt"},
   "bottom": {"color": "Blue", "style": "Solid", "category": "Jeans"}}
]`

const testIndex = "filename,gender,color,style,category\n" +
	"women_blue_solid_jeans.jpg,women,blue,solid,jeans\n"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.New()
	cfg.CorpusPath = filepath.Join(dir, "pairs.json")
	cfg.ImageIndexPath = filepath.Join(dir, "index.csv")
	if err := os.WriteFile(cfg.CorpusPath, []byte(testCorpus), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.ImageIndexPath, []byte(testIndex), 0o600); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestServiceOptions(t *testing.T) {
	convey.Convey("Given a configuration without an oracle endpoint", t, func() {
		cfg := testConfig(t)
		svc := service.New(serviceOptions(cfg, logger.Get())...)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("Then label requests should work and photo requests should not", func() {
			_, err := svc.RecommendImage(context.Background(), []byte("x"), "a.png", "women", 1)
			convey.So(err, convey.ShouldEqual, service.ErrNoLabeler)

			res, err := svc.RecommendLabel(context.Background(),
				types.Label{Color: "Red", Style: "Solid", Category: "Shirt", Part: "Top"}, "women", 0)
			convey.So(err, convey.ShouldBeNil)
			convey.So(len(res.Recommendations), convey.ShouldEqual, 1)
		})
	})

	convey.Convey("Given a configuration with an oracle endpoint", t, func() {
		cfg := testConfig(t)
		cfg.OracleURL = "http://127.0.0.1:1/analyze"
		opts := serviceOptions(cfg, logger.Get())

		convey.Convey("Then a labeler and its cache should be wired", func() {
			convey.So(len(opts), convey.ShouldEqual, 9)
		})

		convey.Convey("And the cache should be optional", func() {
			cfg.LabelCacheSize = 0
			convey.So(len(serviceOptions(cfg, logger.Get())), convey.ShouldEqual, 8)
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given a started service behind the mux", t, func() {
		ctx := context.Background()
		cfg := testConfig(t)
		svc := service.New(serviceOptions(cfg, logger.Get())...)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		mux := newMux(ctx, cfg, svc, logger.Get())

		for _, path := range []string{"/healthz", "/stats", "/api-docs", "/openapi.yaml", "/images/resolve?gender=women"} {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
		}
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("When sampling once", func() {
			updateSystemMetrics()

			convey.Convey("Then the goroutine gauge should be populated", func() {
				convey.So(gaugeValue("system_goroutine_count"), convey.ShouldBeGreaterThan, 0)
			})
		})

		convey.Convey("When the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx, 10*time.Millisecond) }, convey.ShouldNotPanic)
		})

		convey.Convey("When the interval is disabled", func() {
			convey.So(func() { startSystemMetricsUpdater(context.Background(), 0) }, convey.ShouldNotPanic)
		})
	})
}

func gaugeValue(suffix string) float64 {
	families, err := metrics.GetRegistry().Gather()
	if err != nil {
		return 0
	}
	for _, f := range families {
		if strings.HasSuffix(f.GetName(), suffix) {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return 0
}
