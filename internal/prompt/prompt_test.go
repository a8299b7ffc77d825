package prompt

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCapture_Args(t *testing.T) {
	got, err := Capture(ModeArgs, []string{"fix", "the", "auth", "bug"}, "", "")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if got != "fix the auth bug" {
		t.Errorf("got %q", got)
	}
}

func TestCapture_ArgsTrimmed(t *testing.T) {
	got, err := Capture(ModeArgs, []string{"  fix auth  "}, "", "")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if got != "fix auth" {
		t.Errorf("got %q", got)
	}
}

func TestCapture_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(path, []byte("task from a file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Capture(ModeFile, nil, path, "")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if got != "task from a file\n" {
		t.Errorf("got %q", got)
	}
}

func TestCapture_FileMissing(t *testing.T) {
	_, err := Capture(ModeFile, nil, filepath.Join(t.TempDir(), "missing.txt"), "")
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestStripComments(t *testing.T) {
	in := "# header\n# save and exit\n\nreal line one\n# inline comment line\nreal line two"
	want := "\nreal line one\nreal line two"
	if got := StripComments(in); got != want {
		t.Errorf("StripComments = %q, want %q", got, want)
	}
}

func TestEditorArgs(t *testing.T) {
	tests := []struct {
		editor string
		want   []string
	}{
		{"vim", []string{"/tmp/f", "+4"}},
		{"nvim", []string{"/tmp/f", "+4"}},
		{"nano", []string{"/tmp/f", "+4"}},
		{"hx", []string{"/tmp/f:4:1"}},
		{"code", []string{"/tmp/f"}},
	}
	for _, tt := range tests {
		if got := editorArgs(tt.editor, "/tmp/f"); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("editorArgs(%q) = %v, want %v", tt.editor, got, tt.want)
		}
	}
}
