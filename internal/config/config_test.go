package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adamancini/devsim/internal/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// isolate points every search location at empty temp directories.
func isolate(t *testing.T) (home string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("DEVSIM_CONFIG", "")
	chdir(t, t.TempDir())
	return home
}

func TestFindConfig(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		isolate(t)
		path := writeFile(t, t.TempDir(), "custom.yaml", "default_tenant: a\n")

		got, err := FindConfig(path)
		if err != nil || got != path {
			t.Errorf("FindConfig() = %q, %v; want %q", got, err, path)
		}
	})

	t.Run("explicit path missing", func(t *testing.T) {
		isolate(t)
		if _, err := FindConfig("/does/not/exist.yaml"); err == nil {
			t.Error("FindConfig() should fail for a missing explicit path")
		}
	})

	t.Run("environment variable", func(t *testing.T) {
		isolate(t)
		path := writeFile(t, t.TempDir(), "env.toml", "default_tenant = \"a\"\n")
		t.Setenv("DEVSIM_CONFIG", path)

		got, err := FindConfig("")
		if err != nil || got != path {
			t.Errorf("FindConfig() = %q, %v; want %q", got, err, path)
		}
	})

	t.Run("xdg config wins over home", func(t *testing.T) {
		home := isolate(t)
		xdg := writeFile(t, filepath.Join(home, ".config", "devsim"), "devsim.yaml", "default_tenant: a\n")
		writeFile(t, filepath.Join(home, ".devsim"), "devsim.yaml", "default_tenant: b\n")

		got, err := FindConfig("")
		if err != nil || got != xdg {
			t.Errorf("FindConfig() = %q, %v; want %q", got, err, xdg)
		}
	})

	t.Run("working directory", func(t *testing.T) {
		isolate(t)
		writeFile(t, ".", "devsim.json", `{"default_tenant": "a"}`)

		got, err := FindConfig("")
		if err != nil || filepath.Base(got) != "devsim.json" {
			t.Errorf("FindConfig() = %q, %v; want devsim.json", got, err)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		isolate(t)

		got, err := FindConfig("")
		if err != nil || got != "" {
			t.Errorf("FindConfig() = %q, %v; want empty path and no error", got, err)
		}
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := writeFile(t, dir, "devsim.yaml", "default_tenant: acme\nscheduler:\n  workers: 2\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.DefaultTenant != "acme" || cfg.Scheduler.Workers != 2 {
			t.Errorf("Load() = %+v", cfg)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "scheduler:\n  workers: 0\n")
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), "scheduler.workers") {
			t.Errorf("Load() error = %v, want workers validation error", err)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		path := writeFile(t, dir, ".devsim", "nothing to see")
		if _, err := Load(path); err == nil {
			t.Error("Load() should fail for undetectable content")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
			t.Error("Load() should fail for a missing file")
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("defaults when nothing found", func(t *testing.T) {
		isolate(t)

		cfg, path, err := Resolve("")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if path != "" {
			t.Errorf("path = %q, want empty", path)
		}
		if cfg.DefaultTenant != DefaultTenant || cfg.Scheduler.Delay.Std() != 2*time.Second {
			t.Errorf("Resolve() = %+v, want defaults", cfg)
		}
	})

	t.Run("loads explicit file", func(t *testing.T) {
		isolate(t)
		file := writeFile(t, t.TempDir(), "devsim.toml", "default_tenant = \"acme\"\n")

		cfg, path, err := Resolve(file)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if path != file || cfg.DefaultTenant != "acme" {
			t.Errorf("Resolve() = %+v from %q", cfg, path)
		}
	})
}

func TestConfigConversions(t *testing.T) {
	cfg := Default()
	cfg.DownloadAuthenticationEnabled = false
	cfg.Scheduler.Workers = 3
	cfg.Scheduler.Delay = Duration(time.Second)
	cfg.Attributes = []Attribute{{Key: "hw", Value: "2"}}
	cfg.Autostarts = []Autostart{{
		Name: "s", Amount: 2, Tenant: "t", API: types.ProtocolDDI,
		Endpoint: "http://hawkbit", PollDelay: 10, GatewayToken: "gw",
	}}

	opts := cfg.SchedulerOptions()
	if opts.Workers != 3 || opts.Delay != time.Second || opts.DownloadAuthenticationEnabled {
		t.Errorf("SchedulerOptions() = %+v", opts)
	}

	attrs := cfg.DeviceAttributes()
	if len(attrs) != 1 || attrs[0].Key != "hw" || attrs[0].Resolve() != "2" {
		t.Errorf("DeviceAttributes() = %+v", attrs)
	}

	autostarts := cfg.DeviceAutostarts()
	if len(autostarts) != 1 {
		t.Fatalf("DeviceAutostarts() count = %d, want 1", len(autostarts))
	}
	a := autostarts[0]
	if a.Name != "s" || a.Amount != 2 || a.Tenant != "t" || a.API != types.ProtocolDDI ||
		a.Endpoint != "http://hawkbit" || a.PollDelay != 10 || a.GatewayToken != "gw" {
		t.Errorf("DeviceAutostarts()[0] = %+v", a)
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1m30s")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if d.Std() != 90*time.Second {
		t.Errorf("Std() = %v, want 1m30s", d.Std())
	}

	text, err := d.MarshalText()
	if err != nil || string(text) != "1m30s" {
		t.Errorf("MarshalText() = %q, %v", text, err)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent to testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
