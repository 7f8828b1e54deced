package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meenmo/quantlib/errs"
)

func TestErrorIsMatchesKind(t *testing.T) {
	t.Parallel()

	err := errs.New(errs.OutOfRange, "curve.RateAt", 900, "beyond last pillar %d", 504)
	wrapped := fmt.Errorf("pricing: %w", err)

	assert.ErrorIs(t, wrapped, errs.ErrOutOfRange)
	assert.NotErrorIs(t, wrapped, errs.ErrPrecondition)
	assert.Equal(t, errs.OutOfRange, errs.KindOf(wrapped))
	assert.Contains(t, err.Error(), "curve.RateAt")
	assert.Contains(t, err.Error(), "900")
}

func TestWrapNil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, errs.Wrap(errs.Precondition, "op", nil, nil))

	cause := errors.New("boom")
	err := errs.Wrap(errs.OptimisationFailed, "portfolio.MVP", nil, cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, errs.ErrOptimisationFailed)
	assert.Equal(t, errs.Kind(""), errs.KindOf(cause))
}
