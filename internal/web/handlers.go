package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/insightboard/internal/analysis"
	"github.com/JonMunkholm/insightboard/internal/chart"
	"github.com/JonMunkholm/insightboard/internal/core"
	"github.com/JonMunkholm/insightboard/internal/dataset"
	"github.com/JonMunkholm/insightboard/internal/export"
	"github.com/JonMunkholm/insightboard/internal/logging"
	"github.com/JonMunkholm/insightboard/internal/web/templates"
)

const (
	// multipartOverhead is added to the body limit for form boundaries and headers.
	multipartOverhead = 1 << 20
	maxPromptBody     = 64 << 10
)

// handleDashboard renders the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	msgs, err := s.service.Conversation(sid)
	if err != nil {
		respondError(w, r, err)
		return
	}
	data := templates.DashboardData{
		ChartTypes:  chart.All(),
		Templates:   analysis.Templates(),
		Messages:    msgs,
		MaxFileSize: s.service.MaxFileSize(),
	}

	if ds, err := s.service.Dataset(sid); err == nil {
		data.Dataset = ds
		data.Selection = dataset.SelectFields(ds)
		data.Stats = analysis.Describe(ds)

		spec, err := chartSpecFromQuery(r)
		if err != nil {
			logging.FromContext(r.Context()).Debug("ignoring chart parameters", "error", err)
			spec = chart.Spec{}
		}
		data.Chart = spec.WithDefaults(data.Selection)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Layout("InsightBoard", templates.Dashboard(data)).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

// handleHealth reports liveness and ingest capacity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.service.SessionCount(),
		"ingests":  s.service.LimiterStatus(),
	})
}

// handleUpload ingests a multipart "file" into the caller's session.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.service.MaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, fmt.Errorf("upload: %w", core.ErrFileTooLarge))
			return
		}
		respondError(w, r, fmt.Errorf("%w: invalid multipart form: %v", core.ErrBadRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	ctx := withRequestMetadata(r.Context(), r)
	result, err := s.service.Ingest(ctx, sessionID(r), header.Filename, file, header.Size)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("HX-Refresh", "true")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// datasetResponse is the JSON view of a dataset, optionally truncated.
type datasetResponse struct {
	*dataset.Dataset
	TotalRows int  `json:"totalRows"`
	Truncated bool `json:"truncated,omitempty"`
}

// handleDataset returns the session's dataset. ?limit=N caps the rows.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.service.Dataset(sessionID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := datasetResponse{Dataset: ds, TotalRows: ds.Len()}
	if limit := parseIntParam(r, "limit", 0); limit > 0 && limit < ds.Len() {
		view := *ds
		view.Rows = ds.Rows[:limit]
		resp.Dataset = &view
		resp.Truncated = true
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleFields returns the default chart field selection.
func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	sel, err := s.service.Selection(sessionID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

// handleStats returns per-column statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(sessionID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type chartTypeResponse struct {
	Type        chart.Type `json:"type"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
}

// handleChartTypes lists the registered chart types.
func (s *Server) handleChartTypes(w http.ResponseWriter, r *http.Request) {
	defs := chart.All()
	out := make([]chartTypeResponse, len(defs))
	for i, d := range defs {
		out[i] = chartTypeResponse{Type: d.Type, Label: d.Label, Description: d.Description}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleChart renders the requested chart as PNG.
// Query: type, category, primary, secondary, title.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	spec, err := chartSpecFromQuery(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.service.RenderChart(&buf, sessionID(r), spec); err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}

func chartSpecFromQuery(r *http.Request) (chart.Spec, error) {
	q := r.URL.Query()
	t, err := chart.ParseType(q.Get("type"))
	if err != nil {
		return chart.Spec{}, err
	}
	return chart.Spec{
		Type:      t,
		Title:     strings.TrimSpace(q.Get("title")),
		Category:  strings.TrimSpace(q.Get("category")),
		Primary:   strings.TrimSpace(q.Get("primary")),
		Secondary: strings.TrimSpace(q.Get("secondary")),
	}, nil
}

// handleTemplates lists the prompt templates.
func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, analysis.Templates())
}

// promptRequest is the body of the analyze and chat endpoints.
// HTMX forms post the same fields form-encoded.
type promptRequest struct {
	Prompt     string `json:"prompt"`
	TemplateID string `json:"template_id"`
}

func decodePrompt(r *http.Request) (promptRequest, error) {
	var req promptRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(io.LimitReader(r.Body, maxPromptBody)).Decode(&req); err != nil {
			return req, fmt.Errorf("%w: invalid JSON body: %v", core.ErrBadRequest, err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return req, fmt.Errorf("%w: invalid form: %v", core.ErrBadRequest, err)
		}
		req.Prompt = r.PostForm.Get("prompt")
		req.TemplateID = r.PostForm.Get("template_id")
	}

	if req.TemplateID != "" {
		tpl, ok := analysis.TemplateByID(req.TemplateID)
		if !ok {
			return req, fmt.Errorf("%w: unknown template %q", core.ErrBadRequest, req.TemplateID)
		}
		if strings.TrimSpace(req.Prompt) == "" {
			req.Prompt = tpl.Prompt
		}
	}
	return req, nil
}

type analyzeResponse struct {
	Prompt   string `json:"prompt"`
	Analysis string `json:"analysis"`
}

// handleAnalyze returns the data-driven analysis for a prompt.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, err := decodePrompt(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	text, err := s.service.Analyze(sessionID(r), req.Prompt)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		templates.AnalysisResult(text).Render(r.Context(), w)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Prompt: req.Prompt, Analysis: text})
}

// handleChatHistory returns the conversation.
func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	s.respondChat(w, r, http.StatusOK)
}

// handleChatAsk posts a prompt and returns the updated conversation.
func (s *Server) handleChatAsk(w http.ResponseWriter, r *http.Request) {
	req, err := decodePrompt(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	reply, err := s.service.Ask(sessionID(r), req.Prompt)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if isHTMX(r) {
		s.respondChat(w, r, http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// handleChatClear resets the conversation to the greeting.
func (s *Server) handleChatClear(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearConversation(sessionID(r)); err != nil {
		respondError(w, r, err)
		return
	}
	s.respondChat(w, r, http.StatusOK)
}

func (s *Server) respondChat(w http.ResponseWriter, r *http.Request, status int) {
	msgs, err := s.service.Conversation(sessionID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		templates.ChatLog(msgs).Render(r.Context(), w)
		return
	}
	writeJSON(w, status, msgs)
}

// handleExport downloads the dataset or its analysis.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	sid := sessionID(r)
	ds, err := s.service.Dataset(sid)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.service.Export(&buf, sid, format, r.URL.Query().Get("prompt")); err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(ds.Source)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	buf.WriteTo(w)
}

// handleDropSession forgets the caller's dataset and conversation.
func (s *Server) handleDropSession(w http.ResponseWriter, r *http.Request) {
	dropped := s.service.DropSession(sessionID(r))
	writeJSON(w, http.StatusOK, map[string]bool{"dropped": dropped})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
