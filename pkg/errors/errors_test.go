package errors

import (
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, "unused"))
}

func TestWrap_PreservesInnerStack(t *testing.T) {
	inner := New(ErrorTypeSchema, "column mixes types")
	outer := Wrap(inner, ErrorTypeWarehouse, "load failed")

	require.NotEmpty(t, inner.Stack)
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, stderrors.Is(outer, inner))
}

func TestNew_CapturesCaller(t *testing.T) {
	err := New(ErrorTypeInternal, "boom")
	require.NotEmpty(t, err.Stack)
	assert.True(t, strings.HasSuffix(err.Stack[0].Function, "TestNew_CapturesCaller"))
}

func TestDetail(t *testing.T) {
	err := Wrap(io.EOF, ErrorTypeIO, "failed to fetch object").WithDetail("key", "a.json")

	v, ok := Detail(err, "key")
	assert.True(t, ok)
	assert.Equal(t, "a.json", v)

	_, ok = Detail(err, "line")
	assert.False(t, ok)

	_, ok = Detail(io.EOF, "key")
	assert.False(t, ok)
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		typ  ErrorType
		want bool
	}{
		{"match", New(ErrorTypeParse, "bad"), ErrorTypeParse, true},
		{"mismatch", New(ErrorTypeParse, "bad"), ErrorTypeIO, false},
		{"plain error", io.EOF, ErrorTypeIO, false},
		{"nil", nil, ErrorTypeIO, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.typ))
		})
	}
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "config: bad value", New(ErrorTypeConfig, "bad value").Error())
	assert.Equal(t, "io: get failed: EOF", Wrap(io.EOF, ErrorTypeIO, "get failed").Error())
}
