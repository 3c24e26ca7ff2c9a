package settings

import (
	"testing"

	"github.com/nhle/tasknest/internal/model"
)

func TestApplyCopiesFormValues(t *testing.T) {
	t.Parallel()

	m := New(t.TempDir()+"/config.yaml", 80, 24)
	m.Start(*model.DefaultAppConfig())

	m.fb.pageSize = " 20 "
	m.fb.weekStart = "monday"
	m.fb.seedDemo = false
	m.fb.loginDelay = "0"
	m.fb.identity = model.BackendKeyring
	m.fb.logLevel = "debug"

	cfg := m.apply()
	if cfg.Tasks.PageSize != 20 || cfg.Filter.WeekStart != "monday" || cfg.Tasks.SeedDemo {
		t.Errorf("Expected task and filter settings applied, got %+v %+v", cfg.Tasks, cfg.Filter)
	}
	if cfg.Session.LoginDelayMS != 0 || cfg.Session.IdentityBackend != model.BackendKeyring {
		t.Errorf("Expected session settings applied, got %+v", cfg.Session)
	}
	if cfg.Storage.Namespace != "tasknest" {
		t.Errorf("Expected untouched fields kept, got namespace %q", cfg.Storage.Namespace)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestNumberValidators(t *testing.T) {
	t.Parallel()

	if positiveInt("0") == nil || positiveInt("x") == nil || positiveInt("3") != nil {
		t.Error("positiveInt accepted or rejected the wrong values")
	}
	if nonNegativeInt("-1") == nil || nonNegativeInt("0") != nil {
		t.Error("nonNegativeInt accepted or rejected the wrong values")
	}
}
