package state

import (
	"context"
	"log"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"pagemaker/common"
	"pagemaker/config"
	"pagemaker/export"
	"pagemaker/sanitize"
	"pagemaker/split"
)

func TestEnvFromContext(t *testing.T) {
	t.Run("carried", func(t *testing.T) {
		ctx := ContextWithEnv(context.Background())
		env := EnvFromContext(ctx)
		if env == nil || env.start.IsZero() {
			t.Fatalf("unexpected environment %+v", env)
		}
		env.NoDirs = true
		if !EnvFromContext(ctx).NoDirs {
			t.Error("environment is not shared through context")
		}
		if env.Uptime() <= 0 || env.Uptime() > time.Minute {
			t.Errorf("Uptime() = %v", env.Uptime())
		}
	})

	t.Run("missing", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic for context without environment")
			}
		}()
		EnvFromContext(context.Background())
	})
}

func TestLocalEnv_StdLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	env := &LocalEnv{Log: zap.New(core)}

	env.RedirectStdLog()
	log.Print("from standard logger")
	env.RestoreStdLog()
	log.Print("after restore")

	if got := logs.FilterMessage("from standard logger").Len(); got != 1 {
		t.Errorf("redirected entries = %d, want 1", got)
	}
	if got := logs.FilterMessage("after restore").Len(); got != 0 {
		t.Errorf("entries after restore = %d, want 0", got)
	}

	t.Run("no logger", func(t *testing.T) {
		env := &LocalEnv{}
		env.RedirectStdLog()
		if env.restoreStdLog != nil {
			t.Error("nothing to redirect to")
		}
		env.RestoreStdLog()
	})
}

func TestLocalEnv_Defaults(t *testing.T) {
	env := &LocalEnv{}
	if got, want := env.SanitizeOptions(), sanitize.DefaultOptions(); got != want {
		t.Errorf("SanitizeOptions() = %+v, want %+v", got, want)
	}
	if got, want := env.SplitOptions(), split.DefaultOptions(); got != want {
		t.Errorf("SplitOptions() = %+v, want %+v", got, want)
	}
	if got, want := env.ExportOptions(), export.DefaultOptions(); got.Title != want.Title || got.IncludeStyles != want.IncludeStyles {
		t.Errorf("ExportOptions() = %+v, want %+v", got, want)
	}
}

func TestLocalEnv_Options(t *testing.T) {
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	cfg.Sanitizer.Target = common.TargetAreaMobile
	cfg.Splitter.WhitespaceGapNewlines = 2
	cfg.Export.MobileMode = true
	env := &LocalEnv{Cfg: cfg}

	so := env.SplitOptions()
	if so.Sanitize.Target != common.TargetAreaMobile || so.WhitespaceGapNewlines != 2 {
		t.Errorf("SplitOptions() = %+v", so)
	}
	if got := env.SanitizeOptions(); got.MinSpacerHeight != cfg.Sanitizer.MinSpacerHeight || got.MaxPasses != cfg.Sanitizer.MaxPasses {
		t.Errorf("SanitizeOptions() = %+v", got)
	}
	eo := env.ExportOptions()
	if !eo.MobileMode || eo.Language != "zh-CN" || eo.Title != cfg.Export.Title {
		t.Errorf("ExportOptions() = %+v", eo)
	}
}
