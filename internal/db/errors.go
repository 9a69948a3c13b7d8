package db

import (
	"fmt"
	"strings"
)

// maxStatementPreview bounds how much of a failing statement appears in the
// error message. The full text stays on the struct for callers that need it.
const maxStatementPreview = 120

// SQLError reports a failed statement together with the underlying driver
// error. It wraps the cause, so errors.Is/As see through it.
type SQLError struct {
	Statement string
	Err       error
}

func (e *SQLError) Error() string {
	return fmt.Sprintf("sql %q: %v", previewStatement(e.Statement), e.Err)
}

func (e *SQLError) Unwrap() error {
	return e.Err
}

// previewStatement collapses whitespace and truncates long statements so
// multi-line DDL stays readable in test failure output.
func previewStatement(stmt string) string {
	collapsed := strings.Join(strings.Fields(stmt), " ")
	if len(collapsed) > maxStatementPreview {
		return collapsed[:maxStatementPreview] + "..."
	}
	return collapsed
}
