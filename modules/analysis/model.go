package analysis

// Result is the structured attribute record returned by the vision model,
// keyed by the domain's analysis field names (e.g. faceShape, styleAdvice).
type Result map[string]string

// Error marks any analysis failure: transport/auth errors, an empty response,
// malformed JSON or missing required fields. The session controller recovers
// to Idle on it.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "analysis failed: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
