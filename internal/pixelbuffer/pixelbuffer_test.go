package pixelbuffer

import "testing"

func TestCopyFromTruncatesToCapacity(t *testing.T) {
	b := New(4)
	n := b.CopyFrom([]byte{1, 2, 3, 4, 5, 6})
	if n != 4 {
		t.Fatalf("expected 4 bytes copied, got %d", n)
	}
	if got := b.Bytes(); len(got) != 4 {
		t.Fatalf("expected 4 bytes retained, got %d", len(got))
	}
}

func TestCopyBoundedRespectsSmallestBound(t *testing.T) {
	b := New(10)
	n, err := b.CopyBounded([]byte{1, 2, 3}, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected bound by src length (3), got %d", n)
	}

	n, err = b.CopyBounded([]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 10 {
		t.Fatalf("expected bound by capacity (10), got %d", n)
	}
}

func TestCopyBoundedUnallocated(t *testing.T) {
	b := New(0)
	if _, err := b.CopyBounded([]byte{1}, 1); err == nil {
		t.Fatal("expected error for unallocated buffer")
	}
}

func TestIsAllocated(t *testing.T) {
	if (New(0)).IsAllocated() {
		t.Fatal("zero-capacity buffer should not be allocated")
	}
	if !(New(1)).IsAllocated() {
		t.Fatal("positive-capacity buffer should be allocated")
	}
}
