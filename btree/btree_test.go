package btree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"

	"github.com/oba-storage/mtree/codec"
)

func openInt32Tree(t *testing.T, path string, degree int) *BTree[int32, int32] {
	t.Helper()
	bt, err := Open[int32, int32](path, codec.NewIntegerCodec[int32](), codec.NewIntegerCodec[int32](), WithDegree(degree))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return bt
}

// Scenario 1: t=5, insert 0..49 with value 65+key, check exist/remove.
func TestSeedScenarioInsertExistRemoveRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s1.db")
	bt := openInt32Tree(t, path, 5)
	defer bt.Close()

	for i := int32(0); i < 50; i++ {
		if err := bt.Set(i, 65+i); err != nil {
			t.Fatalf("set(%d): %v", i, err)
		}
	}

	for i := int32(0); i < 50; i++ {
		ok, err := bt.Exist(i)
		if err != nil || !ok {
			t.Errorf("exist(%d) = %v, %v; want true, nil", i, ok, err)
		}
	}
	for i := int32(50); i < 100; i++ {
		ok, err := bt.Exist(i)
		if err != nil || ok {
			t.Errorf("exist(%d) = %v, %v; want false, nil", i, ok, err)
		}
	}

	for i := int32(0); i < 50; i++ {
		removed, err := bt.Remove(i)
		if err != nil || !removed {
			t.Fatalf("remove(%d) = %v, %v; want true, nil", i, removed, err)
		}
	}
	for i := int32(0); i < 50; i++ {
		removed, err := bt.Remove(i)
		if err != nil || removed {
			t.Errorf("second remove(%d) = %v, %v; want false, nil", i, removed, err)
		}
	}
}

// Scenario 2: t=2, insert 0..999, remove multiples of 7, 13, or 17,
// cross-check against a reference map.
func TestSeedScenarioAgainstReferenceMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s2.db")
	bt := openInt32Tree(t, path, 2)
	defer bt.Close()

	reference := make(map[int32]bool)
	for i := int32(0); i < 1000; i++ {
		if err := bt.Set(i, i*2); err != nil {
			t.Fatalf("set(%d): %v", i, err)
		}
		reference[i] = true
	}

	for i := int32(0); i < 1000; i++ {
		if i%7 == 0 || i%13 == 0 || i%17 == 0 {
			removed, err := bt.Remove(i)
			if err != nil {
				t.Fatalf("remove(%d): %v", i, err)
			}
			if removed {
				delete(reference, i)
			}
		}
	}

	count := 0
	for i := int32(0); i < 1000; i++ {
		want := reference[i]
		got, err := bt.Exist(i)
		if err != nil {
			t.Fatalf("exist(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("exist(%d) = %v, want %v", i, got, want)
		}
		if got {
			count++
		}
	}
	if count != len(reference) {
		t.Errorf("residual count = %d, want %d", count, len(reference))
	}
}

// Scenario 3: t=2, set one key, close, reopen, get.
func TestSeedScenarioCloseReopenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s3.db")

	bt := openInt32Tree(t, path, 2)
	if err := bt.Set(0, 123456789); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := bt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := openInt32Tree(t, path, 2)
	defer reopened.Close()

	v, ok, err := reopened.Get(0)
	if err != nil || !ok {
		t.Fatalf("get(0) = %v, %v, %v; want 123456789, true, nil", v, ok, err)
	}
	if v != 123456789 {
		t.Errorf("get(0) = %d, want 123456789", v)
	}
}

// Scenario 5: t=3, a blob value is overwritten with a longer one; the file
// grows, but key count does not change.
func TestSeedScenarioBlobValueGrowth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s5.db")

	bt, err := Open[int32, string](path, codec.NewIntegerCodec[int32](), codec.NewStringCodec(), WithDegree(3))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer bt.Close()

	if err := bt.Set(0, "A"); err != nil {
		t.Fatalf("set short: %v", err)
	}
	sizeAfterShort := bt.io.FileEndPos()

	if err := bt.Set(0, "A much longer value"); err != nil {
		t.Fatalf("set long: %v", err)
	}
	sizeAfterLong := bt.io.FileEndPos()

	if sizeAfterLong <= sizeAfterShort {
		t.Errorf("expected file to grow after longer value, before=%d after=%d", sizeAfterShort, sizeAfterLong)
	}

	v, ok, err := bt.Get(0)
	if err != nil || !ok {
		t.Fatalf("get(0) = %v, %v, %v", v, ok, err)
	}
	if v != "A much longer value" {
		t.Errorf("get(0) = %q, want %q", v, "A much longer value")
	}
	if bt.root.UsedKeys != 1 {
		t.Errorf("expected key count unchanged at 1, got %d", bt.root.UsedKeys)
	}
}

// Testable property: set then remove shrinks the file back to exactly the
// header size, independent of N and order.
func TestRemoveAllShrinksToHeaderSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shrink.db")
	bt := openInt32Tree(t, path, 3)
	defer bt.Close()

	keys := []int32{5, 1, 9, 3, 7, 2, 8, 4, 6, 0}
	for _, k := range keys {
		if err := bt.Set(k, k); err != nil {
			t.Fatalf("set(%d): %v", k, err)
		}
	}
	for _, k := range keys {
		if _, err := bt.Remove(k); err != nil {
			t.Fatalf("remove(%d): %v", k, err)
		}
	}

	if !bt.IsEmpty() {
		t.Fatal("expected tree to be empty after removing every inserted key")
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != HeaderSize {
		t.Errorf("file size = %d, want %d", info.Size(), HeaderSize)
	}
}

// Testable property: size-function — an empty tree's file is 0 bytes after
// open+close; after one set it is header + node(t) + entry(v).
func TestSizeFunctionProperty(t *testing.T) {
	emptyPath := filepath.Join(t.TempDir(), "empty.db")
	emptyTree := openInt32Tree(t, emptyPath, 4)
	if err := emptyTree.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	info, err := os.Stat(emptyPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("empty tree file size = %d, want 0", info.Size())
	}

	onePath := filepath.Join(t.TempDir(), "one.db")
	oneTree := openInt32Tree(t, onePath, 4)
	if err := oneTree.Set(1, 2); err != nil {
		t.Fatalf("set: %v", err)
	}
	wantSize := int64(HeaderSize) + nodeSizeInBytes(4) + int64(4+4)
	if err := oneTree.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	info, err = os.Stat(onePath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != wantSize {
		t.Errorf("one-entry tree file size = %d, want %d", info.Size(), wantSize)
	}
}

// Testable property: overwriting a key's value is visible immediately.
func TestSetOverwriteUpdatesValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overwrite.db")
	bt := openInt32Tree(t, path, 2)
	defer bt.Close()

	if err := bt.Set(42, 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := bt.Set(42, 2); err != nil {
		t.Fatalf("set: %v", err)
	}

	v, ok, err := bt.Get(42)
	if err != nil || !ok {
		t.Fatalf("get(42) = %v, %v, %v", v, ok, err)
	}
	if v != 2 {
		t.Errorf("get(42) = %d, want 2", v)
	}
}

// A node record whose stored used_keys exceeds the degree's capacity is a
// structural inconsistency, not a bad user offset: ReadNode must refuse it
// with ErrCorruptNode rather than silently reading past the key table.
func TestReadNodeRejectsOversizedUsedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt-node.db")
	bt := openInt32Tree(t, path, 2)
	defer bt.Close()

	if err := bt.Set(1, 1); err != nil {
		t.Fatalf("set: %v", err)
	}

	rootPos := bt.root.Pos
	if err := bt.io.file.WriteUint16(rootPos+1, 999); err != nil {
		t.Fatalf("corrupt used_keys: %v", err)
	}

	_, err := bt.io.ReadNode(rootPos)
	if !errors.Is(err, ErrCorruptNode) {
		t.Fatalf("ReadNode with oversized used_keys = %v, want ErrCorruptNode", err)
	}
}

// A stored offset that points past the file's current end indicates the
// on-disk structure is inconsistent with itself; the algorithmic layer
// reports this as ErrCorruptOffset rather than the lower-level
// ErrOutOfBounds a caller-supplied bad offset would produce.
func TestReadNodeAtOffsetPastEndOfFileIsCorruptOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt-offset.db")
	bt := openInt32Tree(t, path, 2)
	defer bt.Close()

	if err := bt.Set(1, 1); err != nil {
		t.Fatalf("set: %v", err)
	}

	_, err := bt.io.ReadNode(bt.io.FileEndPos() + 4096)
	if !errors.Is(err, ErrCorruptOffset) {
		t.Fatalf("ReadNode past end of file = %v, want ErrCorruptOffset", err)
	}
}

// Schema mismatch: reopening with a different degree fails deterministically.
func TestReopenWithDifferentDegreeFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.db")

	bt := openInt32Tree(t, path, 3)
	if err := bt.Set(1, 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := bt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err := Open[int32, int32](path, codec.NewIntegerCodec[int32](), codec.NewIntegerCodec[int32](), WithDegree(4))
	if err == nil {
		t.Fatal("expected schema mismatch error, got nil")
	}
}
