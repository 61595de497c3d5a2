package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/insightboard/internal/analysis"
	"github.com/JonMunkholm/insightboard/internal/chart"
	"github.com/JonMunkholm/insightboard/internal/dataset"
	"github.com/JonMunkholm/insightboard/internal/export"
)

// ErrNoDataset is returned by read operations before the session has a
// successful upload.
var ErrNoDataset = errors.New("no dataset in session")

// DefaultMaxFileSize caps decompressed uploads (10MB).
const DefaultMaxFileSize int64 = 10 << 20

// DefaultIngestTimeout is the maximum duration for one ingest.
const DefaultIngestTimeout = 2 * time.Minute

// Options configures a Service. Zero fields select defaults.
type Options struct {
	MaxFileSize         int64
	MaxConcurrent       int
	MaxWait             time.Duration
	MaxSessions         int
	Timeout             time.Duration // per ingest
	ShortHeaderFallback bool
	Chart               chart.Options
	Responder           analysis.Responder
}

// Service owns the sessions and every operation on them.
type Service struct {
	opts     Options
	sessions *SessionStore
	limiter  *IngestLimiter
	seq      atomic.Uint64
}

// NewService creates a Service.
func NewService(opts Options) *Service {
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultIngestTimeout
	}
	if len(opts.Responder.Rules) == 0 && opts.Responder.Fallback == "" {
		opts.Responder = analysis.DefaultResponder
	}

	return &Service{
		opts:     opts,
		sessions: NewSessionStore(opts.MaxSessions, opts.Responder),
		limiter:  NewIngestLimiter(opts.MaxConcurrent, opts.MaxWait),
	}
}

// IngestResult summarises a successful upload.
type IngestResult struct {
	DatasetID string                `json:"dataset_id"`
	FileName  string                `json:"file_name"`
	Rows      int                   `json:"rows"`
	Header    []string              `json:"header"`
	Skipped   []dataset.SkippedLine `json:"skipped,omitempty"`
	Promoted  int                   `json:"promoted,omitempty"`
	Selection dataset.Selection     `json:"selection"`
	Duration  time.Duration         `json:"duration_ns"`
}

// Ingest parses an upload and makes it the session's dataset.
//
// size is the byte length of r when known (-1 otherwise). A zero-byte upload
// is reported like any other file without data rows: on dataset.ErrNoData the
// session keeps its previous dataset and the sentinel is returned wrapped. A successful ingest
// resets the session's conversation. When ingests for one session overlap,
// the one that started last wins.
func (s *Service) Ingest(ctx context.Context, sessionID, fileName string, r io.Reader, size int64) (*IngestResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: missing session", ErrBadRequest)
	}
	if r == nil {
		return nil, ErrNoFile
	}
	comp, err := DetectCompression(fileName)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, fmt.Errorf("ingest %q: %w: %w", fileName, ErrEmptyFile, dataset.ErrNoData)
	}
	if comp == CompressionNone && size > s.opts.MaxFileSize {
		return nil, fmt.Errorf("ingest %q: %w: %d bytes exceeds %d", fileName, ErrFileTooLarge, size, s.opts.MaxFileSize)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("ingest %q: %w", fileName, err)
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	seq := s.seq.Add(1)
	start := time.Now()
	log := slog.With(
		"session_id", sessionID,
		"file_name", fileName,
		"ip", IPAddressFromContext(ctx),
		"user_agent", UserAgentFromContext(ctx),
	)

	ds, err := s.parse(ctx, comp, fileName, r)
	if err != nil {
		if errors.Is(err, dataset.ErrNoData) {
			log.Info("upload had no data rows, keeping previous dataset",
				"skipped_lines", len(ds.Skipped))
		} else {
			log.Warn("ingest failed", "error", err)
		}
		return nil, fmt.Errorf("ingest %q: %w", fileName, err)
	}

	sess := s.sessions.getOrCreate(sessionID)
	if sess.install(ds, seq) {
		sess.conv.Clear()
	} else {
		log.Info("newer upload already installed, discarding", "dataset_id", ds.ID)
	}

	result := &IngestResult{
		DatasetID: ds.ID,
		FileName:  fileName,
		Rows:      ds.Len(),
		Header:    ds.Header,
		Skipped:   ds.Skipped,
		Promoted:  ds.Promoted,
		Selection: dataset.SelectFields(ds),
		Duration:  time.Since(start),
	}

	log.Info("dataset ingested",
		"dataset_id", ds.ID,
		"compression", comp.String(),
		"rows", result.Rows,
		"columns", len(ds.Header),
		"skipped_lines", len(ds.Skipped),
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// parse runs the reader chain and the dataset builder. The returned dataset
// is non-nil whenever err is dataset.ErrNoData.
func (s *Service) parse(ctx context.Context, comp Compression, fileName string, r io.Reader) (*dataset.Dataset, error) {
	src, closeFn, err := decompress(comp, r)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	if comp != CompressionNone {
		src = decodeErrorReader{c: comp, r: src}
	}

	opts := []dataset.Option{dataset.WithSource(fileName)}
	if s.opts.ShortHeaderFallback {
		opts = append(opts, dataset.WithShortHeaderFallback())
	}

	return dataset.Read(NewIngestReader(contextReader{ctx: ctx, r: src}, s.opts.MaxFileSize), opts...)
}

// contextReader stops reading once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Dataset returns the session's current dataset.
func (s *Service) Dataset(sessionID string) (*dataset.Dataset, error) {
	sess, ok := s.sessions.get(sessionID)
	if !ok {
		return nil, ErrNoDataset
	}
	ds := sess.current()
	if ds == nil {
		return nil, ErrNoDataset
	}
	return ds, nil
}

// Selection returns the default chart fields of the session's dataset.
func (s *Service) Selection(sessionID string) (dataset.Selection, error) {
	ds, err := s.Dataset(sessionID)
	if err != nil {
		return dataset.Selection{}, err
	}
	return dataset.SelectFields(ds), nil
}

// Stats returns per-column statistics of the session's dataset.
func (s *Service) Stats(sessionID string) ([]analysis.ColumnStats, error) {
	ds, err := s.Dataset(sessionID)
	if err != nil {
		return nil, err
	}
	return analysis.Describe(ds), nil
}

// RenderChart draws spec as PNG to w. Empty spec fields are filled from the
// default selection.
func (s *Service) RenderChart(w io.Writer, sessionID string, spec chart.Spec) error {
	ds, err := s.Dataset(sessionID)
	if err != nil {
		return err
	}
	spec = spec.WithDefaults(dataset.SelectFields(ds))
	return chart.Render(w, ds, spec, s.opts.Chart)
}

// Analyze returns the data-driven analysis text for prompt. An empty prompt
// uses the "Data Summary" template.
func (s *Service) Analyze(sessionID, prompt string) (string, error) {
	ds, err := s.Dataset(sessionID)
	if err != nil {
		return "", err
	}
	return analysis.Summarize(ds, defaultPrompt(prompt)), nil
}

func defaultPrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt != "" {
		return prompt
	}
	tpl, _ := analysis.TemplateByID("1")
	return tpl.Prompt
}

// Ask sends prompt to the session's conversation and returns the reply.
// Chat works before any upload.
func (s *Service) Ask(sessionID, prompt string) (analysis.Message, error) {
	if sessionID == "" {
		return analysis.Message{}, fmt.Errorf("%w: missing session", ErrBadRequest)
	}
	reply, ok := s.sessions.getOrCreate(sessionID).conv.Ask(prompt)
	if !ok {
		return analysis.Message{}, fmt.Errorf("%w: prompt is empty", ErrBadRequest)
	}
	return reply, nil
}

// Conversation returns the session's chat history.
func (s *Service) Conversation(sessionID string) ([]analysis.Message, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: missing session", ErrBadRequest)
	}
	return s.sessions.getOrCreate(sessionID).conv.Messages(), nil
}

// ClearConversation resets the chat to the greeting.
func (s *Service) ClearConversation(sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: missing session", ErrBadRequest)
	}
	s.sessions.getOrCreate(sessionID).conv.Clear()
	return nil
}

// Export writes the session's dataset (or its analysis) in format f.
// prompt is only used by FormatAnalysis.
func (s *Service) Export(w io.Writer, sessionID string, f export.Format, prompt string) error {
	ds, err := s.Dataset(sessionID)
	if err != nil {
		return err
	}

	switch f {
	case export.FormatXLSX:
		return export.WriteXLSX(w, ds)
	case export.FormatCSV:
		return export.WriteCSV(w, ds)
	case export.FormatSummary:
		return export.WriteSummaryCSV(w, analysis.Describe(ds))
	case export.FormatAnalysis:
		return export.WriteAnalysis(w, analysis.Summarize(ds, defaultPrompt(prompt)))
	default:
		return fmt.Errorf("%w: %q", export.ErrUnknownFormat, f)
	}
}

// DropSession forgets everything about a session.
func (s *Service) DropSession(sessionID string) bool {
	return s.sessions.Delete(sessionID)
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	return s.sessions.Len()
}

// LimiterStatus reports ingest slot usage.
func (s *Service) LimiterStatus() IngestLimiterStatus {
	return s.limiter.Status()
}

// WaitForIngests blocks until in-flight ingests finish or ctx ends.
func (s *Service) WaitForIngests(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// MaxFileSize returns the effective upload cap in bytes.
func (s *Service) MaxFileSize() int64 {
	return s.opts.MaxFileSize
}
