// Package dataset turns uploaded CSV text into an in-memory table ready for
// charting.
//
// # Pipeline
//
//  1. [SplitLines] breaks the text into records (LF or CRLF).
//  2. [ParseLine] splits each record into trimmed fields, honouring quotes.
//  3. [Coerce] converts each field to a [Value] based on its column name.
//  4. [Parse] assembles rows, drops malformed lines and runs the fallback
//     numeric pass when the first row has no numbers.
//  5. [SelectFields] proposes the default chart fields.
//
// A Dataset is never mutated after Parse returns. Consumers (charts, analysis,
// exports) only read it, so one Dataset can be shared between goroutines.
//
// # Empty input
//
// Parse reports [ErrNoData] together with an empty, non-nil Dataset when no
// valid row remains. Callers should surface it as "no data" rather than as a
// failed upload:
//
//	ds, err := dataset.Parse(text)
//	if errors.Is(err, dataset.ErrNoData) {
//	    // show "nothing to chart"
//	}
package dataset
