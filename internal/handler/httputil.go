package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matthewbaird/intake/internal/csvexport"
	"github.com/matthewbaird/intake/internal/event"
	"github.com/matthewbaird/intake/internal/intake"
	"github.com/matthewbaird/intake/internal/pager"
	"github.com/matthewbaird/intake/internal/store"
)

// AuditInfo holds audit metadata extracted from request headers.
type AuditInfo struct {
	Actor         string
	Source        string
	CorrelationID *string
}

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON encode error: %v", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// validationBody is the 400 body for a rejected intake: the toast line plus
// every individual message.
type validationBody struct {
	Error    string   `json:"error"`
	Code     string   `json:"code"`
	Messages []string `json:"messages"`
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// Paging holds the pager controls of a modal request.
type Paging struct {
	Page      int
	SortField string
	SortDir   pager.Direction
}

// parsePaging extracts page, sort and dir from query params. A missing sort
// leaves the pager's default order.
func parsePaging(r *http.Request) Paging {
	q := r.URL.Query()
	p := Paging{Page: 1, SortField: q.Get("sort"), SortDir: pager.ParseDirection(q.Get("dir"))}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Page = n
		}
	}
	return p
}

// paged sorts and positions pg, returning its snapshot.
func paged[T any](pg *pager.Pager[T], p Paging) pager.State[T] {
	if p.SortField != "" {
		pg.Sort(p.SortField, p.SortDir)
	}
	pg.GotoPage(p.Page)
	st := pg.Snapshot()
	if st.Records == nil {
		st.Records = []T{}
	}
	return st
}

// parseDate reads a YYYY-MM-DD query param; ok is false when it is present
// but malformed, in which case the error is already written.
func parseDate(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool, bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, false, true
	}
	t, err := time.ParseInLocation(time.DateOnly, v, time.Local)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_DATE", name+" must be YYYY-MM-DD: "+v)
		return time.Time{}, false, false
	}
	return t, true, true
}

// errorToHTTP maps service errors to appropriate HTTP responses.
func errorToHTTP(w http.ResponseWriter, err error) {
	var verr *intake.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, validationBody{
			Error:    verr.Summary(),
			Code:     "VALIDATION_ERROR",
			Messages: verr.Messages,
		})
	case store.IsNotFound(err):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case store.IsConstraint(err):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusServiceUnavailable, "CANCELLED", "request cancelled")
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// parseAuditContext extracts audit metadata from request headers.
func parseAuditContext(w http.ResponseWriter, r *http.Request) (AuditInfo, bool) {
	actor := r.Header.Get("X-Actor")
	if actor == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ACTOR", "X-Actor header is required")
		return AuditInfo{}, false
	}
	source := r.Header.Get("X-Source")
	if source == "" {
		source = "user"
	}
	info := AuditInfo{
		Actor:  actor,
		Source: source,
	}
	if cid := r.Header.Get("X-Correlation-ID"); cid != "" {
		info.CorrelationID = &cid
	}
	return info, true
}

// errCopyRequested makes the download step aside for the copy fallback.
var errCopyRequested = errors.New("client asked for an inline copy")

// exportResponse delivers an export over one response, either as a CSV
// download or, as the fallback, as the CSV text in a JSON body.
type exportResponse struct {
	w         http.ResponseWriter
	copy      bool
	committed bool
}

// newExportResponse honours ?delivery=copy and an Accept header of
// application/json as requests for the inline copy.
func newExportResponse(w http.ResponseWriter, r *http.Request) *exportResponse {
	return &exportResponse{
		w:    w,
		copy: r.URL.Query().Get("delivery") == "copy" || strings.HasPrefix(r.Header.Get("Accept"), "application/json"),
	}
}

// copiedExport is the JSON body of an inline copy.
type copiedExport struct {
	Filename string `json:"filename"`
	CSV      string `json:"csv"`
	Fallback bool   `json:"fallback"`
}

func (e *exportResponse) download(_ context.Context, f csvexport.File) error {
	if e.copy {
		return errCopyRequested
	}
	e.committed = true
	e.w.Header().Set("Content-Type", csvexport.ContentType)
	e.w.Header().Set("Content-Disposition", `attachment; filename="`+f.Name+`"`)
	e.w.WriteHeader(http.StatusOK)
	_, err := e.w.Write(f.Data)
	return err
}

func (e *exportResponse) inline(_ context.Context, f csvexport.File) error {
	if e.committed {
		return errors.New("response already started")
	}
	e.committed = true
	writeJSON(e.w, http.StatusOK, copiedExport{Filename: f.Name, CSV: string(f.Data), Fallback: true})
	return nil
}

// Base carries what every handler shares: the event recorder, the metrics
// hooks and the CSV exporter.
type Base struct {
	Recorder event.Recorder
	Exporter *csvexport.Exporter
	Metrics  Metrics
	Now      func() time.Time
}

// Metrics receives handler-level counts. A nil Metrics records nothing.
type Metrics interface {
	IntakeSaved(created bool)
	ConflictChecked(matches int, err error)
	Exported(report string)
}

func (b *Base) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// recordEvent records a domain event if a recorder is configured.
// Errors are logged but do not fail the request.
func (b *Base) recordEvent(ctx context.Context, evt event.DomainEvent) {
	if b.Recorder == nil {
		return
	}
	if err := b.Recorder.Record(ctx, evt); err != nil {
		log.Printf("event recording failed: %v", err)
	}
}

// export delivers f as a download, or as an inline copy when the download
// is declined, counts it and records the event. The response is already
// written when it returns, unless both deliveries failed.
func (b *Base) export(w http.ResponseWriter, r *http.Request, report string, f csvexport.File, rows int) {
	ex := b.Exporter
	if ex == nil {
		ex = &csvexport.Exporter{Now: b.Now}
	}
	resp := newExportResponse(w, r)
	res, err := ex.Deliver(r.Context(), f, csvexport.SinkFunc(resp.download), csvexport.SinkFunc(resp.inline))
	if err != nil {
		log.Printf("export %s: %v", report, err)
		if !resp.committed {
			writeError(w, http.StatusInternalServerError, "EXPORT_FAILED", "export could not be delivered")
		}
		return
	}
	if b.Metrics != nil {
		b.Metrics.Exported(report)
	}
	b.recordEvent(r.Context(), event.NewExportGenerated(r.Header.Get("X-Actor"), event.ExportGeneratedPayload{
		Report:   report,
		Filename: res.Filename,
		Rows:     rows,
		Key:      res.ArchiveKey,
	}))
}

// exportTable names t after title and the current date.
func (b *Base) exportTable(w http.ResponseWriter, r *http.Request, report, title string, t csvexport.Table) {
	b.export(w, r, report, csvexport.File{Name: csvexport.Filename(title, b.now()), Data: t.Bytes()}, len(t.Rows))
}
