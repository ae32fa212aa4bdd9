package testutil

import (
	"errors"
	"strings"

	"github.com/calvinalkan/vfat/pkg/fatfs"
)

// ErrorBuckets maps file system sentinels to the substrings the shell's
// error line must contain.
//
// The goal is loose matching: if both model and shell fail, we check that
// the shell's message falls into the bucket for the model's error. This
// avoids brittle exact string matching while still catching "wrong error"
// bugs.
var ErrorBuckets = map[error][]string{
	fatfs.ErrFormat:         {"invalid format"},
	fatfs.ErrNotFound:       {"not found"},
	fatfs.ErrExists:         {"already exists"},
	fatfs.ErrNoParent:       {"no parent"},
	fatfs.ErrNoSpace:        {"no space"},
	fatfs.ErrProtected:      {"protected"},
	fatfs.ErrTooManyEntries: {"too many entries"},
	fatfs.ErrPathTooDeep:    {"too deep"},
}

// Sentinel returns the bucketed sentinel err wraps, nil for nil, and err
// itself when it wraps none of them.
func Sentinel(err error) error {
	if err == nil {
		return nil
	}

	for s := range ErrorBuckets {
		if errors.Is(err, s) {
			return s
		}
	}

	return err
}

// MatchesErrorBucket checks if stderr contains any substring from the
// bucket associated with want.
//
// Returns true if:
//   - want has a bucket AND stderr matches any substring, OR
//   - want is nil or has no bucket (we don't validate unknown errors)
func MatchesErrorBucket(want error, stderr string) bool {
	if want == nil {
		return true
	}

	bucket, ok := ErrorBuckets[Sentinel(want)]
	if !ok {
		return true
	}

	lower := strings.ToLower(stderr)
	for _, substr := range bucket {
		if strings.Contains(lower, substr) {
			return true
		}
	}

	return false
}
