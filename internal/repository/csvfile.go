package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/andres10976/keyword-service/internal/model"
)

var csvHeader = []string{"id", "keyword", "deleted"}

// CSVFile stores records in a delimited text file with an
// "id,keyword,deleted" header. Every mutation rewrites the whole file.
type CSVFile struct {
	path string
}

func NewCSVFile(path string) *CSVFile {
	return &CSVFile{path: path}
}

// All reads every record in file order. A missing file is an empty store.
func (f *CSVFile) All(_ context.Context) ([]model.Keyword, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.Keyword{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.path, err)
	}
	defer file.Close()

	return decodeCSV(file)
}

func (f *CSVFile) Append(ctx context.Context, kw model.Keyword) error {
	all, err := f.All(ctx)
	if err != nil {
		return err
	}
	return f.write(append(all, kw))
}

func (f *CSVFile) Replace(ctx context.Context, pos int, kw model.Keyword) error {
	all, err := f.All(ctx)
	if err != nil {
		return err
	}
	if pos < 0 || pos >= len(all) {
		return fmt.Errorf("position %d out of range [0,%d)", pos, len(all))
	}
	all[pos] = kw
	return f.write(all)
}

// write replaces the file through a temp file in the same directory so a
// crash mid-write leaves the previous contents intact.
func (f *CSVFile) write(keywords []model.Keyword) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encodeCSV(tmp, keywords); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func decodeCSV(r io.Reader) ([]model.Keyword, error) {
	rows := &rowReader{r: bufio.NewReader(r), line: 1}

	header, _, err := rows.read()
	if errors.Is(err, io.EOF) {
		return []model.Keyword{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, name := range csvHeader {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("header missing column %q", name)
		}
	}

	keywords := []model.Keyword{}
	for {
		row, line, err := rows.read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		field := func(name string) string {
			if i := col[name]; i < len(row) {
				return row[i]
			}
			return ""
		}

		id, err := strconv.Atoi(field("id"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid id %q", line, field("id"))
		}
		keywords = append(keywords, model.Keyword{
			ID:      id,
			Keyword: field("keyword"),
			Deleted: field("deleted") == "True",
		})
	}
	return keywords, nil
}

// encodeCSV quotes fields with encoding/csv and ends every row with \r\n.
// Line breaks inside fields are written as-is.
func encodeCSV(w io.Writer, keywords []model.Keyword) error {
	out := bufio.NewWriter(w)
	var row bytes.Buffer
	writer := csv.NewWriter(&row)

	writeRow := func(fields []string) error {
		row.Reset()
		if err := writer.Write(fields); err != nil {
			return err
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			return err
		}
		line := row.Bytes()
		out.Write(line[:len(line)-1]) // drop the writer's "\n" terminator
		_, err := out.WriteString("\r\n")
		return err
	}

	if err := writeRow(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, kw := range keywords {
		deleted := "False"
		if kw.Deleted {
			deleted = "True"
		}
		if err := writeRow([]string{strconv.Itoa(kw.ID), kw.Keyword, deleted}); err != nil {
			return fmt.Errorf("write keyword %d: %w", kw.ID, err)
		}
	}
	return out.Flush()
}

// rowReader splits CSV records without rewriting field contents: a quoted
// "\r\n" or bare "\r" comes back byte for byte. Rows may end in "\n" or
// "\r\n"; blank lines are skipped.
type rowReader struct {
	r    *bufio.Reader
	line int // line number of the next unread byte
}

// read returns the next record and the line it starts on, or io.EOF.
func (rr *rowReader) read() ([]string, int, error) {
	for {
		fields, start, err := rr.readRecord()
		if err != nil || fields != nil {
			return fields, start, err
		}
	}
}

// readRecord returns nil fields for a blank line.
func (rr *rowReader) readRecord() ([]string, int, error) {
	start := rr.line
	var (
		fields   []string
		field    []byte
		quoted   bool // inside a quoted section
		atStart  = true
		sawQuote bool
		consumed bool
	)

	endRecord := func() []string {
		if len(fields) == 0 && len(field) == 0 && !sawQuote {
			return nil
		}
		return append(fields, string(field))
	}

	for {
		b, err := rr.r.ReadByte()
		if errors.Is(err, io.EOF) {
			if quoted {
				return nil, start, fmt.Errorf("line %d: unterminated quoted field", start)
			}
			if !consumed {
				return nil, start, io.EOF
			}
			if rec := endRecord(); rec != nil {
				return rec, start, nil
			}
			return nil, start, io.EOF
		}
		if err != nil {
			return nil, start, err
		}
		consumed = true
		if b == '\n' {
			rr.line++
		}

		if quoted {
			if b != '"' {
				field = append(field, b)
				continue
			}
			next, err := rr.r.ReadByte()
			if err == nil && next == '"' {
				field = append(field, '"')
				continue
			}
			if err == nil {
				rr.r.UnreadByte()
			}
			quoted = false
			continue
		}

		switch b {
		case '"':
			if atStart {
				quoted, sawQuote, atStart = true, true, false
				continue
			}
			field = append(field, b)
		case ',':
			fields = append(fields, string(field))
			field = field[:0]
			atStart = true
			continue
		case '\n':
			return endRecord(), start, nil
		case '\r':
			next, err := rr.r.ReadByte()
			if err == nil && next == '\n' {
				rr.line++
				return endRecord(), start, nil
			}
			if err == nil {
				rr.r.UnreadByte()
			}
			field = append(field, '\r')
		default:
			field = append(field, b)
		}
		atStart = false
	}
}
