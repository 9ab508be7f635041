package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	cause := errors.New("boom")

	t.Run("direct", func(t *testing.T) {
		err := New(CodeSubjectNotFound, "subject not found")
		assert.True(t, HasCode(err, CodeSubjectNotFound))
		assert.False(t, HasCode(err, CodeRecordNotFound))
	})

	t.Run("wrapped by fmt", func(t *testing.T) {
		err := fmt.Errorf("put record: %w", New(CodeInvalidPurpose, "unknown purpose"))
		assert.True(t, HasCode(err, CodeInvalidPurpose))
	})

	t.Run("nested coded errors", func(t *testing.T) {
		inner := Wrap(cause, CodeVersionConflict, "save record")
		outer := Wrap(inner, CodeInternal, "erase subject")
		assert.True(t, HasCode(outer, CodeInternal))
		assert.True(t, HasCode(outer, CodeVersionConflict))
		assert.True(t, errors.Is(outer, cause))
	})

	t.Run("uncoded", func(t *testing.T) {
		assert.False(t, HasCode(cause, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(cause))
	})
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "noop"))
}

func TestErrorMessage(t *testing.T) {
	err := Wrap(errors.New("connection reset"), CodeInternal, "load subject")
	assert.Equal(t, "load subject: connection reset", err.Error())
	assert.Equal(t, "record not found", New(CodeRecordNotFound, "record not found").Error())
}
