package sourcetable

import "github.com/SynapticNetworks/gridspike/kernelerr"

// Table is the three-dimensional (thread, synapse-type, local-connection-
// index) -> Source structure used during connection building. Synapse-id to
// row-index mapping is thread-local and grown lazily as new synapse models
// are encountered during connection building.
type Table struct {
	rows      [][][]Source   // rows[tid][rowIdx] -> []Source
	synToRow  []map[int]int  // synToRow[tid][synID] -> rowIdx
	cursor    []Position     // current iteration cursor per thread
	saved     []Position     // saved entry point per thread
	numThread int
}

// New creates a source table sized for numThreads worker threads.
func New(numThreads int) *Table {
	t := &Table{
		rows:      make([][][]Source, numThreads),
		synToRow:  make([]map[int]int, numThreads),
		cursor:    make([]Position, numThreads),
		saved:     make([]Position, numThreads),
		numThread: numThreads,
	}
	for tid := 0; tid < numThreads; tid++ {
		t.synToRow[tid] = make(map[int]int)
		t.cursor[tid] = InvalidPosition
		t.saved[tid] = InvalidPosition
	}
	return t
}

func (t *Table) rowFor(tid, synID int) int {
	idx, ok := t.synToRow[tid][synID]
	if ok {
		return idx
	}
	idx = len(t.rows[tid])
	t.rows[tid] = append(t.rows[tid], nil)
	t.synToRow[tid][synID] = idx
	return idx
}

// AddSource appends a presynaptic identity to the row for (tid, synID).
func (t *Table) AddSource(tid, synID int, nodeID int64, isPrimary bool) {
	row := t.rowFor(tid, synID)
	t.rows[tid][row] = append(t.rows[tid][row], Source{NodeID: nodeID, IsPrimary: isPrimary})
}

// GetNextTargetData advances the cursor for tid and returns the Source at
// the new position, walking rows from the last synapse type down to the
// first and, within a row, from the last entry down to the first.
// ok is false once the thread has no more unprocessed sources.
func (t *Table) GetNextTargetData(tid int) (Source, Position, bool) {
	rows := t.rows[tid]
	pos := t.cursor[tid]

	if pos.IsInvalid() {
		pos = Position{Tid: tid, SynID: len(rows) - 1}
		if pos.SynID >= 0 {
			pos.Idx = len(rows[pos.SynID]) - 1
		}
	} else {
		pos.Idx--
	}

	for pos.SynID >= 0 {
		if pos.Idx < 0 {
			pos.SynID--
			if pos.SynID < 0 {
				break
			}
			pos.Idx = len(rows[pos.SynID]) - 1
			continue
		}
		src := rows[pos.SynID][pos.Idx]
		if src.Disabled() || src.Processed {
			pos.Idx--
			continue
		}
		t.cursor[tid] = pos
		rows[pos.SynID][pos.Idx].Processed = true
		return src, pos, true
	}

	t.cursor[tid] = InvalidPosition
	return Source{}, InvalidPosition, false
}

// RejectLast undoes the last GetNextTargetData call for tid: the
// just-returned entry is marked unprocessed again and the cursor restored
// by one, used when the MPI send buffer would overflow mid-round.
func (t *Table) RejectLast(tid int) {
	pos := t.cursor[tid]
	if pos.IsInvalid() {
		return
	}
	t.rows[tid][pos.SynID][pos.Idx].Processed = false
	pos.Idx++
	t.cursor[tid] = pos
}

// SaveEntryPoint remembers the current cursor for tid so a later round can
// resume from it.
func (t *Table) SaveEntryPoint(tid int) { t.saved[tid] = t.cursor[tid] }

// RestoreEntryPoint resets the cursor for tid to its last saved value.
func (t *Table) RestoreEntryPoint(tid int) { t.cursor[tid] = t.saved[tid] }

// ResetEntryPoint clears the cursor for tid back to "start of iteration".
func (t *Table) ResetEntryPoint(tid int) { t.cursor[tid] = InvalidPosition }

// Clean compacts out rows where every entry has been marked processed.
// Re-applying Clean on a fully-processed table produces
// the empty table.
func (t *Table) Clean(tid int) {
	rows := t.rows[tid]
	out := rows[:0]
	synToRow := make(map[int]int, len(t.synToRow[tid]))
	for oldIdx, row := range rows {
		if allProcessed(row) {
			continue
		}
		newIdx := len(out)
		out = append(out, row)
		for synID, ri := range t.synToRow[tid] {
			if ri == oldIdx {
				synToRow[synID] = newIdx
			}
		}
	}
	t.rows[tid] = out
	t.synToRow[tid] = synToRow
}

func allProcessed(row []Source) bool {
	for _, s := range row {
		if !s.Processed && !s.Disabled() {
			return false
		}
	}
	return true
}

// Clear releases a thread's rows entirely.
func (t *Table) Clear(tid int) {
	t.rows[tid] = nil
	t.synToRow[tid] = make(map[int]int)
	t.cursor[tid] = InvalidPosition
	t.saved[tid] = InvalidPosition
}

// ClearAll clears every thread's rows.
func (t *Table) ClearAll() {
	for tid := 0; tid < t.numThread; tid++ {
		t.Clear(tid)
	}
}

// IsEmpty reports whether tid's table has no rows left (used to assert that
// Clean on a fully-processed table yields an empty table).
func (t *Table) IsEmpty(tid int) bool { return len(t.rows[tid]) == 0 }

// RowCount is exposed for tests asserting lazy growth of the synapse-id to
// row-index map.
func (t *Table) RowCount(tid int) int { return len(t.rows[tid]) }

// EnsureNoOverflow is a defensive guard a caller can use before accepting
// GetNextTargetData's result into a fixed-capacity MPI send buffer; if the
// buffer is already full, call RejectLast instead of this.
func EnsureNoOverflow(used, capacity int) error {
	if used > capacity {
		return kernelerr.NewKernelException("source_table", "mpi send buffer overflow")
	}
	return nil
}
