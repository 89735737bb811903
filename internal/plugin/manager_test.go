package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeManifest creates <root>/<dir>/plugin.json.
func writeManifest(t *testing.T, root, dir string, m Manifest) string {
	t.Helper()

	pluginDir := filepath.Join(root, dir)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

func TestManager_Discover(t *testing.T) {
	root := t.TempDir()
	pluginDir := writeManifest(t, root, "keyboard", Manifest{
		Name:        "keyboard",
		Version:     "1.0.0",
		Description: "Types the sentence",
		Executable:  "keyboard",
		Actions:     []string{"type", "keystroke"},
	})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	plugin := plugins[0]
	if plugin.Manifest.Name != "keyboard" || plugin.Manifest.Version != "1.0.0" {
		t.Errorf("manifest = %+v", plugin.Manifest)
	}
	if plugin.Path != pluginDir {
		t.Errorf("expected path %q, got %q", pluginDir, plugin.Path)
	}
	if plugin.Executable != filepath.Join(pluginDir, "keyboard") {
		t.Errorf("expected executable inside plugin dir, got %q", plugin.Executable)
	}
	if !plugin.Supports("type") {
		t.Error("plugin should support type")
	}
}

func TestManager_Discover_SkipsInvalid(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "b", Manifest{Name: "b", Executable: "b"})
	writeManifest(t, root, "a", Manifest{Name: "a", Executable: "a"})
	writeManifest(t, root, "nameless", Manifest{Executable: "x"})
	writeManifest(t, root, "no-exec", Manifest{Name: "no-exec"})

	bad := filepath.Join(root, "bad")
	os.MkdirAll(bad, 0755)
	os.WriteFile(filepath.Join(bad, "plugin.json"), []byte("not valid json"), 0644)
	os.MkdirAll(filepath.Join(root, "empty"), 0755)
	os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0644)

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed unexpectedly: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(plugins))
	}
	if plugins[0].Manifest.Name != "a" || plugins[1].Manifest.Name != "b" {
		t.Errorf("List() not sorted: %s, %s", plugins[0].Manifest.Name, plugins[1].Manifest.Name)
	}
}

func TestManager_Discover_Rescan(t *testing.T) {
	root := t.TempDir()
	dir := writeManifest(t, root, "a", Manifest{Name: "a", Executable: "a"})

	manager := NewManager(root)
	manager.Discover()
	os.RemoveAll(dir)
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}
	if _, err := manager.Get("a"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("removed plugin still listed: %v", err)
	}
}

func TestManager_Discover_EmptyOrMissingDir(t *testing.T) {
	for _, dir := range []string{t.TempDir(), "/path/that/does/not/exist"} {
		manager := NewManager(dir)
		if err := manager.Discover(); err != nil {
			t.Fatalf("Discover(%s) failed: %v", dir, err)
		}
		if n := len(manager.List()); n != 0 {
			t.Errorf("expected 0 plugins in %s, got %d", dir, n)
		}
	}
}

func TestManager_Get(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "my-plugin", Manifest{
		Name:       "my-plugin",
		Version:    "2.0.0",
		Executable: "my-plugin-bin",
		Actions:    []string{"run"},
	})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugin, err := manager.Get("my-plugin")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if plugin.Manifest.Version != "2.0.0" {
		t.Errorf("expected version '2.0.0', got %q", plugin.Manifest.Version)
	}

	if _, err := manager.Get("nonexistent-plugin"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestManager_Resolve(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "keyboard", Manifest{Name: "keyboard", Executable: "keyboard", Actions: []string{"type"}})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		plugin  string
		action  string
		wantErr error
	}{
		{"supported", "keyboard", "type", nil},
		{"unknown action", "keyboard", "explode", ErrActionNotSupported},
		{"unknown plugin", "speaker", "type", ErrPluginNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := manager.Resolve(tt.plugin, tt.action)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Resolve() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && p.Manifest.Name != tt.plugin {
				t.Errorf("Resolve() = %s", p.Manifest.Name)
			}
		})
	}
}

func TestManager_Discover_FileInsteadOfDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plugins")
	os.WriteFile(path, []byte("x"), 0644)

	manager := NewManager(path)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	if n := len(manager.List()); n != 0 {
		t.Errorf("expected 0 plugins, got %d", n)
	}
}

func TestManager_PluginDir(t *testing.T) {
	manager := NewManager("/path/to/plugins")
	if manager.PluginDir() != "/path/to/plugins" {
		t.Errorf("PluginDir() = %q", manager.PluginDir())
	}
}
