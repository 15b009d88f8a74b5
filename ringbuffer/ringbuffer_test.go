package ringbuffer

import "testing"

func TestAddValueAndGetValue(t *testing.T) {
	rb := New(3)
	rb.AddValue(0, 1.5)
	rb.AddValue(0, 0.5)
	rb.AddValue(2, 4.0)

	if got := rb.GetValue(0); got != 2.0 {
		t.Fatalf("lag 0 = %g, want 2.0", got)
	}
	if got := rb.GetValue(1); got != 0 {
		t.Fatalf("lag 1 = %g, want 0", got)
	}
	if got := rb.GetValue(2); got != 4.0 {
		t.Fatalf("lag 2 = %g, want 4.0", got)
	}
}

func TestRotateDrainsAndShifts(t *testing.T) {
	rb := New(3)
	rb.AddValue(0, 1.0)
	rb.AddValue(1, 2.0)
	rb.AddValue(2, 3.0)

	if got := rb.Rotate(); got != 1.0 {
		t.Fatalf("first rotate drained %g, want 1.0", got)
	}
	if got := rb.GetValue(0); got != 2.0 {
		t.Fatalf("after rotate, lag 0 = %g, want 2.0 (old lag 1)", got)
	}
	if got := rb.GetValue(1); got != 3.0 {
		t.Fatalf("after rotate, lag 1 = %g, want 3.0 (old lag 2)", got)
	}
	if got := rb.GetValue(2); got != 0 {
		t.Fatalf("after rotate, new tail lag 2 = %g, want 0", got)
	}
}

func TestClearZeroesWithoutResizing(t *testing.T) {
	rb := New(2)
	rb.AddValue(0, 5.0)
	rb.Clear()
	if got := rb.GetValue(0); got != 0 {
		t.Fatalf("after Clear, lag 0 = %g, want 0", got)
	}
	if rb.Len() != 2 {
		t.Fatalf("Clear changed Len to %d, want 2", rb.Len())
	}
}

func TestResizeGrowPreservesContent(t *testing.T) {
	rb := New(2)
	rb.AddValue(0, 1.0)
	rb.AddValue(1, 2.0)
	rb.Resize(4)

	if rb.Len() != 4 {
		t.Fatalf("Len = %d, want 4", rb.Len())
	}
	if got := rb.GetValue(0); got != 1.0 {
		t.Fatalf("lag 0 after grow = %g, want 1.0", got)
	}
	if got := rb.GetValue(1); got != 2.0 {
		t.Fatalf("lag 1 after grow = %g, want 2.0", got)
	}
	if got := rb.GetValue(3); got != 0 {
		t.Fatalf("new lag 3 after grow = %g, want 0", got)
	}
}

func TestResizeShrinkTruncates(t *testing.T) {
	rb := New(4)
	rb.AddValue(0, 1.0)
	rb.AddValue(1, 2.0)
	rb.Resize(2)

	if rb.Len() != 2 {
		t.Fatalf("Len = %d, want 2", rb.Len())
	}
	if got := rb.GetValue(0); got != 1.0 {
		t.Fatalf("lag 0 after shrink = %g, want 1.0", got)
	}
}

func TestNewRejectsNonPositiveMinDelay(t *testing.T) {
	rb := New(0)
	if rb.Len() != 1 {
		t.Fatalf("New(0) gave Len %d, want 1 (clamped)", rb.Len())
	}
}
