package bridge

import (
	"bytes"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "password_data.json")
	data := []byte(`{"trash_can": []}`)

	if err := WriteFile(path, data, nil); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("file content = %q, want %q", got, data)
	}
}

func TestWriteFileOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	if err := os.WriteFile(path, []byte("old content that is longer"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := WriteFile(path, []byte("new"), nil); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Errorf("file content = %q, want %q", got, "new")
	}
}

func TestWriteFileMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "out.bin")
	var logs bytes.Buffer

	err := WriteFile(path, []byte("x"), log.New(&logs, "", 0))
	if err == nil {
		t.Fatal("WriteFile() error = nil, want an I/O error")
	}
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("WriteFile() error = %T, want *IOError", err)
	}
	if ioErr.Path != path {
		t.Errorf("Path = %q, want %q", ioErr.Path, path)
	}
	if !errors.Is(err, ErrIO) {
		t.Errorf("errors.Is(err, ErrIO) = false")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error %v does not wrap the underlying fs.ErrNotExist", err)
	}
	for _, want := range []string{"does not exist yet", "failed to write"} {
		if !strings.Contains(logs.String(), want) {
			t.Errorf("log missing %q:\n%s", want, logs.String())
		}
	}
}

func TestWriteFileRelativePath(t *testing.T) {
	origWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWD) })
	var logs bytes.Buffer
	b := New(WithLogger(log.New(&logs, "", 0)))

	if err := b.WriteFile("relative.txt", []byte("hi")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if got, _ := os.ReadFile("relative.txt"); string(got) != "hi" {
		t.Errorf("file content = %q, want %q", got, "hi")
	}
	if !strings.Contains(logs.String(), "not absolute") {
		t.Errorf("relative path not logged:\n%s", logs.String())
	}
}
