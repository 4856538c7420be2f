package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New("test error")
	require.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrap(ErrJobNotFound, "loading job nightly-scan")
	assert.True(t, Is(err, ErrJobNotFound))
	assert.True(t, IsJobNotFound(err))
	assert.False(t, IsJobNotFound(nil))
}

func TestUnparsableScheduleSentinel(t *testing.T) {
	err := Wrapf(ErrUnparsableSchedule, "descriptor %q", "every banana")
	assert.True(t, IsUnparsableSchedule(err))
	assert.Contains(t, err.Error(), "every banana")
}

func TestJobClaimedSentinel(t *testing.T) {
	err := Wrap(ErrJobClaimed, "job abc123")
	assert.True(t, IsJobClaimed(err))
	assert.False(t, IsJobClaimed(New("some other error")))
}

func TestIsThroughStdlibWrap(t *testing.T) {
	// Sentinels must survive fmt.Errorf %w wrapping too
	err := fmt.Errorf("outer: %w", ErrStoreUnavailable)
	assert.True(t, Is(err, ErrStoreUnavailable))
}

func TestWrapJobNotFound(t *testing.T) {
	err := WrapJobNotFound("abc123")
	require.NotNil(t, err)
	assert.True(t, IsJobNotFound(err))
	assert.Contains(t, err.Error(), "abc123")
}
