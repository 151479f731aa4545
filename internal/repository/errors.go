package repository

import "errors"

// ErrRevisionConflict means a concurrent writer mutated the row between the
// caller's read and its guarded update. The caller should re-read and retry.
var ErrRevisionConflict = errors.New("revision conflict")
