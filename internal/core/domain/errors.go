package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCorpus means the corpus root yielded no units; ingestion must
	// abort without touching any previously published index.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrEmptyIndex means the published collection has no points; the query
	// service refuses to serve rather than answer from silently empty context.
	ErrEmptyIndex   = errors.New("empty index")
	ErrInvalidInput = errors.New("invalid input")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
