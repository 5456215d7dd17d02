// Package csvexport renders dashboard tables as CSV and delivers them to a
// download sink, falling back to an inline copy when the download fails.
package csvexport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/matthewbaird/intake/internal/blob"
)

// ContentType is the MIME type of every export.
const ContentType = "text/csv; charset=utf-8"

// Table is a header row plus data rows. Short rows are padded with empty
// cells; long rows are kept as-is.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends one data row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// WriteTo writes t with every cell double-quoted, embedded quotes doubled and
// each row terminated by "\n".
func (t Table) WriteTo(w io.Writer) (int64, error) {
	var n int64
	write := func(cells []string) error {
		var b strings.Builder
		for i, c := range cells {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(Quote(c))
		}
		for i := len(cells); i < len(t.Headers); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(`""`)
		}
		b.WriteByte('\n')
		m, err := io.WriteString(w, b.String())
		n += int64(m)
		return err
	}
	if err := write(t.Headers); err != nil {
		return n, err
	}
	for _, row := range t.Rows {
		if err := write(row); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Bytes renders t.
func (t Table) Bytes() []byte {
	var buf bytes.Buffer
	_, _ = t.WriteTo(&buf)
	return buf.Bytes()
}

// Quote wraps s in double quotes, doubling any quote inside it.
func Quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

var whitespace = regexp.MustCompile(`\s+`)

// Filename builds "<title with whitespace runs as _>_<YYYY-MM-DD>.csv".
func Filename(title string, on time.Time) string {
	return whitespace.ReplaceAllString(title, "_") + "_" + on.Format(time.DateOnly) + ".csv"
}

// File is a rendered export.
type File struct {
	Name string
	Data []byte
}

// Sink receives an export.
type Sink interface {
	Deliver(ctx context.Context, f File) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, f File) error

func (fn SinkFunc) Deliver(ctx context.Context, f File) error { return fn(ctx, f) }

// ErrUndelivered is returned when neither the primary nor the fallback sink
// accepted the export.
var ErrUndelivered = errors.New("csvexport: export could not be delivered")

// Result reports how an export reached the caller.
type Result struct {
	Filename   string `json:"filename"`
	Fallback   bool   `json:"fallback"`
	ArchiveKey string `json:"archive_key,omitempty"`
}

// Exporter archives exports in a blob store and delivers them.
type Exporter struct {
	Archive blob.Store // optional
	Prefix  string     // archive key prefix, default "exports/"
	Now     func() time.Time
}

func (e *Exporter) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Export renders t under a filename derived from title and delivers it to
// primary, or to fallback when primary fails. Archiving is best-effort.
func (e *Exporter) Export(ctx context.Context, title string, t Table, primary, fallback Sink) (Result, error) {
	return e.Deliver(ctx, File{Name: Filename(title, e.now()), Data: t.Bytes()}, primary, fallback)
}

// Deliver delivers an already named file and archives it once a sink has
// accepted it. Undelivered files are not archived.
func (e *Exporter) Deliver(ctx context.Context, f File, primary, fallback Sink) (Result, error) {
	res := Result{Filename: f.Name}

	if err := primary.Deliver(ctx, f); err != nil {
		log.Printf("csvexport: deliver %s: %v", f.Name, err)
		if fallback == nil {
			return res, fmt.Errorf("%w: %v", ErrUndelivered, err)
		}
		if ferr := fallback.Deliver(ctx, f); ferr != nil {
			log.Printf("csvexport: fallback for %s: %v", f.Name, ferr)
			return res, fmt.Errorf("%w: %v", ErrUndelivered, ferr)
		}
		res.Fallback = true
	}

	if e.Archive != nil {
		key, err := e.archive(ctx, f, e.now())
		if err != nil {
			log.Printf("csvexport: archive %s: %v", f.Name, err)
		} else {
			res.ArchiveKey = key
		}
	}
	return res, nil
}

func (e *Exporter) archive(ctx context.Context, f File, at time.Time) (string, error) {
	prefix := e.Prefix
	if prefix == "" {
		prefix = "exports/"
	}
	key := fmt.Sprintf("%s%s/%d-%s", prefix, at.Format(time.DateOnly), at.UnixNano(), f.Name)
	_, err := e.Archive.Put(ctx, key, bytes.NewReader(f.Data), blob.PutOptions{
		ContentType: ContentType,
		Metadata:    map[string]string{"filename": f.Name},
	})
	if err != nil {
		return "", err
	}
	return key, nil
}
