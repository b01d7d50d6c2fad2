package repository

import (
	"context"
	"fmt"

	"github.com/andres10976/keyword-service/internal/model"
)

// Memory keeps records in a slice. It is not safe for concurrent use on its
// own; KeywordRepository serializes access.
type Memory struct {
	records []model.Keyword
}

func NewMemory(seed ...model.Keyword) *Memory {
	return &Memory{records: append([]model.Keyword(nil), seed...)}
}

func (m *Memory) All(_ context.Context) ([]model.Keyword, error) {
	out := make([]model.Keyword, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *Memory) Append(_ context.Context, kw model.Keyword) error {
	m.records = append(m.records, kw)
	return nil
}

func (m *Memory) Replace(_ context.Context, pos int, kw model.Keyword) error {
	if pos < 0 || pos >= len(m.records) {
		return fmt.Errorf("position %d out of range [0,%d)", pos, len(m.records))
	}
	m.records[pos] = kw
	return nil
}
