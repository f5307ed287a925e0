package synthesis

// Error marks any synthesis failure: transport/auth errors or a response
// without an inline image part. The session controller recovers to Selecting
// on it, preserving the captured image and the selection.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "synthesis failed: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
