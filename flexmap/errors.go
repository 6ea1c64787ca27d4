package flexmap

import "github.com/pkg/errors"

// InvalidRecordError is returned by Builder when a reference record contains
// a symbol outside the validator's accepted alphabet. It is fatal to the
// build: there is no local retry.
type InvalidRecordError struct {
	RecordName string
}

func (e *InvalidRecordError) Error() string {
	return errors.Errorf("flexmap: record %q contains a non-nucleotide symbol", e.RecordName).Error()
}

// CountOverflowError is returned when a single canonical core is observed
// more than 65535 times during pass 1; the 16-bit key cell cannot represent
// the count, and the build must not silently wrap.
type CountOverflowError struct {
	Core uint64
}

func (e *CountOverflowError) Error() string {
	return errors.Errorf("flexmap: core %d occurs more than 65535 times, count overflow", e.Core).Error()
}

// preconditionf panics with a diagnostic. Precondition violations (read
// before seal, double seal, write after freeze, out-of-range core) are
// programmer bugs, not recoverable runtime errors, so they panic rather than
// return an error -- matching kmerIndex.initShard's use of panic for
// analogous invariant violations.
func preconditionf(format string, args ...interface{}) {
	panic(errors.Errorf("flexmap: precondition violated: "+format, args...))
}
