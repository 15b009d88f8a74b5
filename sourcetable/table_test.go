package sourcetable

import "testing"

func TestAddSourceGrowsRowsLazily(t *testing.T) {
	tab := New(1)
	if tab.RowCount(0) != 0 {
		t.Fatalf("RowCount = %d, want 0 on empty table", tab.RowCount(0))
	}
	tab.AddSource(0, 5, 100, true)
	if tab.RowCount(0) != 1 {
		t.Fatalf("RowCount = %d, want 1 after first synID", tab.RowCount(0))
	}
	tab.AddSource(0, 5, 101, true)
	if tab.RowCount(0) != 1 {
		t.Fatalf("RowCount = %d, want still 1 for same synID", tab.RowCount(0))
	}
	tab.AddSource(0, 7, 200, false)
	if tab.RowCount(0) != 2 {
		t.Fatalf("RowCount = %d, want 2 after second synID", tab.RowCount(0))
	}
}

func TestGetNextTargetDataWalksLastToFirst(t *testing.T) {
	tab := New(1)
	tab.AddSource(0, 0, 1, true)
	tab.AddSource(0, 0, 2, true)
	tab.AddSource(0, 1, 3, true)

	var got []int64
	for {
		src, _, ok := tab.GetNextTargetData(0)
		if !ok {
			break
		}
		got = append(got, src.NodeID)
	}
	want := []int64{3, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestGetNextTargetDataMarksProcessed(t *testing.T) {
	tab := New(1)
	tab.AddSource(0, 0, 1, true)
	tab.GetNextTargetData(0)
	tab.ResetEntryPoint(0)
	if _, _, ok := tab.GetNextTargetData(0); ok {
		t.Fatalf("expected no more entries after the single source was processed")
	}
}

func TestRejectLastUndoesProcessing(t *testing.T) {
	tab := New(1)
	tab.AddSource(0, 0, 42, true)
	src, pos, ok := tab.GetNextTargetData(0)
	if !ok || src.NodeID != 42 {
		t.Fatalf("GetNextTargetData = %+v, %v, want NodeID 42", src, ok)
	}
	tab.RejectLast(0)
	_ = pos

	tab.ResetEntryPoint(0)
	src2, _, ok2 := tab.GetNextTargetData(0)
	if !ok2 || src2.NodeID != 42 {
		t.Fatalf("expected source 42 to be available again after RejectLast, got %+v ok=%v", src2, ok2)
	}
}

func TestSaveAndRestoreEntryPoint(t *testing.T) {
	tab := New(1)
	tab.AddSource(0, 0, 1, true)
	tab.AddSource(0, 0, 2, true)

	tab.GetNextTargetData(0) // consumes NodeID 2
	tab.SaveEntryPoint(0)
	tab.GetNextTargetData(0) // consumes NodeID 1
	tab.RestoreEntryPoint(0)

	if _, _, ok := tab.GetNextTargetData(0); ok {
		t.Fatalf("expected no more entries: NodeID 1, consumed after the save point, stays processed across the restore")
	}
}

func TestCleanCompactsFullyProcessedRows(t *testing.T) {
	tab := New(1)
	tab.AddSource(0, 0, 1, true)
	tab.AddSource(0, 1, 2, true)

	for {
		if _, _, ok := tab.GetNextTargetData(0); !ok {
			break
		}
	}
	tab.Clean(0)
	if !tab.IsEmpty(0) {
		t.Fatalf("expected table to be empty after Clean on fully-processed rows")
	}
}

func TestCleanIsIdempotentOnEmptyTable(t *testing.T) {
	tab := New(1)
	tab.AddSource(0, 0, 1, true)
	for {
		if _, _, ok := tab.GetNextTargetData(0); !ok {
			break
		}
	}
	tab.Clean(0)
	tab.Clean(0)
	if !tab.IsEmpty(0) {
		t.Fatalf("expected Clean to remain idempotent on an already-empty table")
	}
}

func TestClearAndClearAll(t *testing.T) {
	tab := New(2)
	tab.AddSource(0, 0, 1, true)
	tab.AddSource(1, 0, 2, true)
	tab.Clear(0)
	if !tab.IsEmpty(0) {
		t.Fatalf("expected thread 0 empty after Clear")
	}
	if tab.IsEmpty(1) {
		t.Fatalf("expected thread 1 unaffected by Clear(0)")
	}
	tab.ClearAll()
	if !tab.IsEmpty(0) || !tab.IsEmpty(1) {
		t.Fatalf("expected both threads empty after ClearAll")
	}
}

func TestEnsureNoOverflow(t *testing.T) {
	if err := EnsureNoOverflow(5, 10); err != nil {
		t.Fatalf("unexpected error for used < capacity: %v", err)
	}
	if err := EnsureNoOverflow(11, 10); err == nil {
		t.Fatalf("expected error for used > capacity")
	}
}

func TestPositionCompareOrdering(t *testing.T) {
	a := Position{Tid: 0, SynID: 0, Idx: 5}
	b := Position{Tid: 0, SynID: 0, Idx: 3}
	if a.Compare(b) <= 0 {
		t.Fatalf("expected a (Idx=5) to compare greater than b (Idx=3)")
	}
	if InvalidPosition.IsInvalid() != true {
		t.Fatalf("expected InvalidPosition.IsInvalid() true")
	}
}

func TestDisabledSource(t *testing.T) {
	s := NewDisabledSource()
	if !s.Disabled() {
		t.Fatalf("expected NewDisabledSource to report Disabled() true")
	}
	if (Source{NodeID: 5}).Disabled() {
		t.Fatalf("expected ordinary source to report Disabled() false")
	}
}
