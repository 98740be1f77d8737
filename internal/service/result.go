package service

// Result is the outcome of a best-effort secondary effect. Callers log Err
// and carry on; a failed effect never rolls back the write that caused it.
type Result struct {
	Applied bool
	// Skipped 적용하지 않은 사유 (no-change, guard, redelivery)
	Skipped string
	Err     error
}

func applied() Result { return Result{Applied: true} }
func skipped(reason string) Result { return Result{Skipped: reason} }
func failed(err error) Result { return Result{Err: err} }
