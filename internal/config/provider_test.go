// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestProvider_Load_ExplicitConfigFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "custom.toml")
	content := "output_path = \"dist\"\nminify = true\nnode_modules_mode = \"symlink\"\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	p := NewProvider()
	opts, err := p.Load(context.Background(), LoadOptions{ConfigFilePath: cfgPath, AppDir: "/tmp/app"})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if opts.OutputPath != "dist" {
		t.Errorf("OutputPath = %q, want %q", opts.OutputPath, "dist")
	}
	if !opts.Minify {
		t.Error("expected Minify to be true")
	}
	if opts.NodeModulesMode != NodeModulesSymlink {
		t.Errorf("NodeModulesMode = %q, want %q", opts.NodeModulesMode, NodeModulesSymlink)
	}
	if opts.AppDir != "/tmp/app" {
		t.Errorf("AppDir = %q, want %q", opts.AppDir, "/tmp/app")
	}
}

func TestProvider_Load_ExplicitConfigFile_NotFound(t *testing.T) {
	t.Parallel()

	p := NewProvider()
	_, err := p.Load(context.Background(), LoadOptions{ConfigFilePath: "/does/not/exist.toml"})
	if err == nil {
		t.Fatal("expected error for missing config file, got nil")
	}
}

func TestProvider_Load_NoConfigFile_ReturnsDefaults(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	p := NewProvider()
	opts, err := p.Load(context.Background(), LoadOptions{ConfigDirPath: tmpDir, AppDir: "/tmp/app"})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	defaults := DefaultBundleOptions()
	if opts.OutputPath != defaults.OutputPath {
		t.Errorf("OutputPath = %q, want %q", opts.OutputPath, defaults.OutputPath)
	}
	if opts.NodeModulesMode != defaults.NodeModulesMode {
		t.Errorf("NodeModulesMode = %q, want %q", opts.NodeModulesMode, defaults.NodeModulesMode)
	}
}

func TestProvider_Load_PackageDirsFromEnv(t *testing.T) {
	t.Setenv("PACKAGE_DIRS", "/one"+string(os.PathListSeparator)+"/two")

	tmpDir := t.TempDir()
	p := NewProvider()
	opts, err := p.Load(context.Background(), LoadOptions{ConfigDirPath: tmpDir, AppDir: "/tmp/app"})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if len(opts.PackageDirs) != 2 || opts.PackageDirs[0] != "/one" || opts.PackageDirs[1] != "/two" {
		t.Errorf("PackageDirs = %v, want [/one /two]", opts.PackageDirs)
	}
}

func TestProvider_Load_ConfigDirFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	content := "library = [\"/lib/one\"]\nrelease_stamp = \"v1.2.3\"\n"
	cfgPath := filepath.Join(tmpDir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	p := NewProvider()
	opts, err := p.Load(context.Background(), LoadOptions{ConfigDirPath: tmpDir, AppDir: "/tmp/app"})
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if len(opts.Library) != 1 || opts.Library[0] != "/lib/one" {
		t.Errorf("Library = %v, want [/lib/one]", opts.Library)
	}
	if opts.ReleaseStamp != "v1.2.3" {
		t.Errorf("ReleaseStamp = %q, want %q", opts.ReleaseStamp, "v1.2.3")
	}
}

func TestProvider_Load_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewProvider()
	_, err := p.Load(ctx, LoadOptions{AppDir: "/tmp/app"})
	if err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
}
