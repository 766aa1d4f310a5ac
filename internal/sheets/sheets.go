package sheets

import (
	"context"
	"sync"
)

// RowWriter replaces the contents of a worksheet with the given rows
type RowWriter interface {
	ReplaceRows(ctx context.Context, rows [][]string) (updatedRange string, err error)
}

// MemoryWriter keeps the last written rows. Used when Sheets is not configured in tests.
type MemoryWriter struct {
	mu     sync.Mutex
	rows   [][]string
	writes int
}

var _ RowWriter = (*MemoryWriter)(nil)

func NewMemoryWriter() *MemoryWriter {
	return &MemoryWriter{}
}

func (m *MemoryWriter) ReplaceRows(_ context.Context, rows [][]string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make([][]string, len(rows))
	for i, r := range rows {
		m.rows[i] = append([]string(nil), r...)
	}
	m.writes++
	return "mem!A1", nil
}

// Rows returns a copy of the last write
func (m *MemoryWriter) Rows() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.rows))
	for i, r := range m.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Writes counts ReplaceRows calls
func (m *MemoryWriter) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
