package loaderr

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormat(t *testing.T) {
	err := New("obj", MalformedLine, "ship.obj", 12, "vertex needs 3 fields, got %d", 2)
	assert.Equal(t, "obj: parse ship.obj:12: malformed line: vertex needs 3 fields, got 2", err.Error())

	noLine := New("mtl", EmptyFile, "ship.mtl", 0, "")
	assert.Equal(t, "mtl: parse ship.mtl: empty file", noLine.Error())
}

func TestErrorIsKind(t *testing.T) {
	var err error = New("obj", UnknownDirective, "a.obj", 3, "%q", "o")
	wrapped := fmt.Errorf("scene: load: %w", err)

	assert.ErrorIs(t, wrapped, UnknownDirective)
	assert.False(t, errors.Is(wrapped, MalformedLine))

	var le *Error
	require.True(t, errors.As(wrapped, &le))
	assert.Equal(t, 3, le.Line)
	assert.Equal(t, "a.obj", le.File)
}

func TestWrapUnwraps(t *testing.T) {
	_, cause := strconv.ParseFloat("x", 32)
	err := Wrap("mtl", MalformedLine, "m.mtl", 4, cause, "Ns")

	assert.ErrorIs(t, err, MalformedLine)
	assert.ErrorIs(t, err, strconv.ErrSyntax)
	assert.Contains(t, err.Error(), "invalid syntax")
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "index out of range", IndexOutOfRange.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
