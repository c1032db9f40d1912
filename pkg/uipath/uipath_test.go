package uipath

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeMakesAbsolute(t *testing.T) {
	got, err := Normalize(filepath.Join("views", "settings.ui"))
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("Normalize() = %q, want absolute path", got)
	}
	if !strings.HasSuffix(got, filepath.Join("views", "settings.ui")) {
		t.Errorf("Normalize() = %q, want %q suffix", got, filepath.Join("views", "settings.ui"))
	}
}

func TestNormalizeCleans(t *testing.T) {
	base := t.TempDir()
	messy := filepath.Join(base, "views", "..", "views", "a.ui")
	got, err := Normalize(messy)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	want := filepath.Join(base, "views", "a.ui")
	if got != want {
		t.Errorf("Normalize(%q) = %q, want %q", messy, got, want)
	}
}

func TestKeyIgnoresPathSpelling(t *testing.T) {
	sep := string(filepath.Separator)
	plain := sep + "srv" + sep + "app" + sep + "a.ui"
	messy := sep + "srv" + sep + sep + "app" + sep + "." + sep + "a.ui"
	if Key(plain) != Key(messy) {
		t.Errorf("Key(%q) = %q, Key(%q) = %q, want equal", plain, Key(plain), messy, Key(messy))
	}
}

func TestKeyCaseFolding(t *testing.T) {
	old := caseInsensitive
	defer func() { caseInsensitive = old }()

	caseInsensitive = true
	if Key("/Views/A.ui") != Key("/views/a.ui") {
		t.Error("case-insensitive host: case variants should share a key")
	}

	caseInsensitive = false
	if Key("/Views/A.ui") == Key("/views/a.ui") {
		t.Error("case-sensitive host: case variants should have distinct keys")
	}
}

func TestEqual(t *testing.T) {
	sep := string(filepath.Separator)
	a := sep + "srv" + sep + "app" + sep + "a.ui"
	b := sep + "srv" + sep + "." + sep + "app" + sep + "a.ui"
	if !Equal(a, b) {
		t.Errorf("Equal(%q, %q) = false, want true", a, b)
	}
	if Equal(a, sep+"srv"+sep+"app"+sep+"b.ui") {
		t.Error("Equal() = true for distinct files, want false")
	}
}

func TestParseURI(t *testing.T) {
	host, rel, err := ParseURI("ui://app/views/settings.ui")
	if err != nil {
		t.Fatalf("ParseURI() error: %v", err)
	}
	if host != "app" {
		t.Errorf("host = %q, want %q", host, "app")
	}
	if rel != "views/settings.ui" {
		t.Errorf("rel = %q, want %q", rel, "views/settings.ui")
	}
}

func TestFromURI(t *testing.T) {
	root := t.TempDir()
	got, err := FromURI(root, "ui://app/views/settings.ui")
	if err != nil {
		t.Fatalf("FromURI() error: %v", err)
	}
	want := filepath.Join(root, "views", "settings.ui")
	if got != want {
		t.Errorf("FromURI() = %q, want %q", got, want)
	}
}

func TestFromURIRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{"wrong scheme", "file:///views/a.ui"},
		{"no path", "ui://app"},
		{"root only", "ui://app/"},
		{"escape", "ui://app/../secrets.ui"},
		{"dot segments", "ui://app/views/../views/a.ui"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromURI("/srv/app", tt.uri); err == nil {
				t.Errorf("FromURI(%q) succeeded, want error", tt.uri)
			}
		})
	}
}

func TestRootFromURI(t *testing.T) {
	root := t.TempDir()
	concrete := filepath.Join(root, "views", "settings.ui")
	got, err := RootFromURI("ui://app/views/settings.ui", concrete)
	if err != nil {
		t.Fatalf("RootFromURI() error: %v", err)
	}
	if got != root {
		t.Errorf("RootFromURI() = %q, want %q", got, root)
	}
}

func TestRootFromURISuffixMismatch(t *testing.T) {
	concrete := filepath.Join(t.TempDir(), "other", "file.ui")
	if _, err := RootFromURI("ui://app/views/settings.ui", concrete); err == nil {
		t.Error("expected error for path not matching URI suffix")
	}
}

func TestRootFromURIComponentBoundary(t *testing.T) {
	// "xviews" must not satisfy a "views" suffix.
	concrete := filepath.Join(t.TempDir(), "xviews", "a.ui")
	if _, err := RootFromURI("ui://app/views/a.ui", concrete); err == nil {
		t.Error("expected error for suffix match off a component boundary")
	}
}

func TestHasPathSuffixFolding(t *testing.T) {
	old := caseInsensitive
	defer func() { caseInsensitive = old }()

	abs := filepath.FromSlash("/srv/app/views/a.ui")
	suffix := filepath.FromSlash("Views/A.ui")

	caseInsensitive = true
	if !hasPathSuffix(abs, suffix) {
		t.Error("case-insensitive host: expected suffix to match across case")
	}

	caseInsensitive = false
	if hasPathSuffix(abs, suffix) {
		t.Error("case-sensitive host: expected suffix mismatch across case")
	}
}
