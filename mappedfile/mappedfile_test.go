package mappedfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenEmptyFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")

	mf, err := Open(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer mf.Close()

	if !mf.IsEmpty() {
		t.Error("expected a brand-new file to be empty")
	}
	if mf.EndPos() != 0 {
		t.Errorf("expected end pos 0, got %d", mf.EndPos())
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rw.db")

	mf, err := Open(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer mf.Close()

	payload := []byte("hello, offset-based b-tree")
	if err := mf.WriteAt(0, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := mf.ReadAt(0, len(payload))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("expected %q, got %q", payload, got)
	}
}

func TestWriteGrowsAcrossBlockBoundary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grow.db")

	mf, err := Open(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer mf.Close()

	payload := bytes.Repeat([]byte{0xAB}, BlockSize+128)
	pos := int64(BlockSize - 64)
	if err := mf.WriteAt(pos, payload); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := mf.ReadAt(pos, len(payload))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("data spanning a block boundary was not preserved")
	}
}

func TestReadPastEndIsOutOfBounds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oob.db")

	mf, err := Open(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer mf.Close()

	if err := mf.WriteAt(0, []byte("abc")); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := mf.ReadAt(0, 100); err == nil {
		t.Error("expected out-of-bounds error, got nil")
	}
}

func TestBlobRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.db")

	mf, err := Open(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer mf.Close()

	payload := []byte("a much longer value than before")
	next, err := mf.WriteBlob(0, payload)
	if err != nil {
		t.Fatalf("write blob: %v", err)
	}
	if next != int64(4+len(payload)) {
		t.Errorf("expected next pos %d, got %d", 4+len(payload), next)
	}

	got, next2, err := mf.ReadBlob(0)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("expected %q, got %q", payload, got)
	}
	if next2 != next {
		t.Errorf("expected matching next pos, got %d vs %d", next2, next)
	}
}

func TestShrinkToFitOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shrink.db")

	mf, err := Open(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := mf.WriteAt(0, []byte("13 bytes here")); err != nil {
		t.Fatalf("write: %v", err)
	}
	endPos := mf.EndPos()

	if err := mf.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != endPos {
		t.Errorf("expected file truncated to %d, got %d", endPos, info.Size())
	}
}

func TestReopenSeesPriorWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	mf, err := Open(path, 0)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := mf.WriteAt(0, []byte("persisted")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mf.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	mf2, err := Open(path, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer mf2.Close()

	got, err := mf2.ReadAt(0, len("persisted"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "persisted" {
		t.Errorf("expected %q, got %q", "persisted", got)
	}
}
