package app

import (
	"context"
	"testing"
	"time"

	"github.com/suwei8/lotto-ai4/internal/config"
	"github.com/suwei8/lotto-ai4/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv: config.EnvDev,
		DBURL:  "memory://",
		Collector: config.CollectorConfig{
			PrimaryDomain:   "api.primary.example",
			SecondaryDomain: "api.secondary.example",
			EndpointPath:    "/gateway/app",
			Token:           "token",
			AESKey:          []byte("0123456789abcdef"),
			AESIV:           []byte("abcdefghijklmnop"),
			LotteryID:       6,
			Retries:         1,
		},
		Schedule: config.ScheduleConfig{
			ExpertCron:  "0 */2 * * *",
			DrawCron:    "*/30 21-23 * * *",
			RunTimeout:  time.Minute,
			LotteryName: "福彩3D",
			LottoType:   "102",
		},
		CacheTTL: time.Minute,
	}
}

func TestNew_MemoryWiring(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	if a.Experts == nil || a.Draws == nil || a.Query == nil {
		t.Fatalf("expected every service to be wired")
	}

	dict, err := a.Query.PlaytypeDictionary(context.Background())
	if err != nil {
		t.Fatalf("playtype dictionary: %v", err)
	}
	if len(dict) == 0 {
		t.Fatalf("expected seeded playtype dictionary")
	}

	version, err := a.Query.CacheVersion(context.Background())
	if err != nil {
		t.Fatalf("cache version: %v", err)
	}
	if version != 0 {
		t.Fatalf("expected fresh version 0, got %d", version)
	}
}

func TestNew_RejectsBadCipherMaterial(t *testing.T) {
	cfg := memoryConfig()
	cfg.Collector.AESIV = []byte("short")

	if _, err := New(context.Background(), cfg, logging.NewNop()); err == nil {
		t.Fatalf("expected error for bad IV")
	}
}

func TestDefaultDrawInput(t *testing.T) {
	a := &App{Config: memoryConfig()}
	in := a.DefaultDrawInput()
	if in.LotteryName != "福彩3D" || in.LottoType != "102" || in.PageSize != DefaultDrawPageSize || in.MaxPages != DefaultDrawMaxPages {
		t.Fatalf("unexpected draw defaults: %+v", in)
	}
	if in.SleepMin > in.SleepMax {
		t.Fatalf("sleep bounds inverted: %+v", in)
	}
}
