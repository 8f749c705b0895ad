package mitigate

import "fmt"

// CatalogError reports a malformed externally supplied rule catalog. It is
// fatal at construction; the built-in default catalog never produces one.
type CatalogError struct {
	Reason string
	Err    error
}

func (e *CatalogError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("catalog: %s", e.Reason)
}

func (e *CatalogError) Unwrap() error { return e.Err }

// AnalysisError reports a missing or unparseable required field on an
// anomalous record. The whole Analyze call fails; there is no partial
// result. Record is the index into the anomalous subset.
type AnalysisError struct {
	Field  string
	Record int
	Reason string
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("analysis: anomalous record %d: %s %s: %v", e.Record, e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("analysis: anomalous record %d: %s %s", e.Record, e.Field, e.Reason)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
