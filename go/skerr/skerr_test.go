package skerr

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type myError struct{ code int }

func (e *myError) Error() string { return "my error" }

func TestWrap_Nil_ReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil))
	assert.NoError(t, Wrapf(nil, "context %d", 1))
}

func TestWrap_AddsCallSite(t *testing.T) {
	err := Wrap(io.EOF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EOF. At skerr_test.go:")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, io.EOF, Unwrap(err))
}

func TestWrap_AlreadyWrapped_ReturnedUnchanged(t *testing.T) {
	err := Wrap(io.EOF)
	assert.Same(t, err, Wrap(err))
}

func TestWrapf_StacksContextOutermostFirst(t *testing.T) {
	err := Wrapf(io.EOF, "reading header")
	err = Wrapf(err, "loading %q", "a.png")
	assert.Contains(t, err.Error(), `loading "a.png": reading header: EOF. At`)
	assert.Equal(t, io.EOF, Unwrap(err))
}

func TestWrapf_TypedErrorStillReachable(t *testing.T) {
	err := Wrapf(&myError{code: 7}, "outer")
	var me *myError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, 7, me.code)
}

func TestFmt_FormatsMessage(t *testing.T) {
	err := Fmt("bad value %d", 42)
	assert.Contains(t, err.Error(), "bad value 42. At skerr_test.go:")
}
