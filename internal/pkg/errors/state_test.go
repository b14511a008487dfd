package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	t.Run("zero value holds no error", func(t *testing.T) {
		var s State
		assert.False(t, s.HasError())
		assert.Nil(t, s.Err())
		assert.Equal(t, "", s.Message())
		assert.Equal(t, "", s.String())
	})

	t.Run("set records the error", func(t *testing.T) {
		var s State
		s.Set(NoMatch())

		assert.True(t, s.HasError())
		assert.Equal(t, "No match found.", s.Message())
		assert.Equal(t, "Error: No match found.", s.String())
	})

	t.Run("set nil clears", func(t *testing.T) {
		var s State
		s.Set(errors.New("x"))
		s.Set(nil)
		assert.False(t, s.HasError())
	})

	t.Run("set message", func(t *testing.T) {
		var s State
		s.SetMessage("No entity to save passed.")
		assert.Equal(t, "No entity to save passed.", s.Message())

		s.SetMessage("")
		assert.False(t, s.HasError())
	})

	t.Run("set innermost unwraps to the root cause", func(t *testing.T) {
		var s State
		root := errors.New("socket closed")
		s.SetInnermost(fmt.Errorf("save: %w", fmt.Errorf("write: %w", root)))

		assert.Equal(t, root, s.Err())
		assert.Equal(t, "socket closed", s.Message())
	})

	t.Run("each set overwrites and clear resets", func(t *testing.T) {
		var s State
		s.Set(errors.New("first"))
		s.Set(errors.New("second"))
		assert.Equal(t, "second", s.Message())

		s.Clear()
		assert.False(t, s.HasError())
	})
}
