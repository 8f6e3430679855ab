package corpus

import "fmt"

// LoadError reports a missing or malformed corpus or answer resource.
// Line is 1-based and zero when the failure is not tied to a line.
type LoadError struct {
	Resource string
	Line     int
	Err      error
}

func (e *LoadError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line > 0 {
		return fmt.Sprintf("corpus: load %s line %d: %v", e.Resource, e.Line, e.Err)
	}
	return fmt.Sprintf("corpus: load %s: %v", e.Resource, e.Err)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
