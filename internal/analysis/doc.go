// Package analysis produces the text side of the dashboard: per-column
// statistics, a data-driven summary, and a keyword-driven chat responder
// backed by local templates. Nothing here calls out to an inference service.
package analysis
