// Package core provides the upload and analysis service behind the dashboard.
//
// It holds no UI or transport code; the HTTP server and the CLI both drive
// it. All state is in memory and scoped to a session ID chosen by the caller.
//
// # Ingest Pipeline
//
// [Service.Ingest] runs every upload through the same chain:
//
//  1. Acquire a slot from the [IngestLimiter]
//  2. Pick a decompressor from the file name ([DetectCompression])
//  3. Cap decompressed bytes, skip a UTF-8 BOM and sanitize invalid UTF-8
//     ([NewIngestReader])
//  4. Parse with [dataset.Read]
//  5. Install the dataset on the session and reset its conversation
//
// An upload without data rows returns [dataset.ErrNoData] and leaves the
// previous dataset in place.
//
// # Sessions
//
// [SessionStore] keeps one dataset and one conversation per session. The
// janitor started by [Service.StartJanitor] drops sessions idle for longer
// than the configured TTL.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages with [MapError]. Each
// category has a code users can quote:
//
//   - FILE001-FILE006: File errors (size, type, read, decompression, empty)
//   - DATA001: No data rows
//   - UPL002-UPL005: Busy, cancelled, timed out
//   - SES001: No dataset in session
//   - CHART001-CHART002: Chart type and field errors
package core
