package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/wirebus/errors"
)

func TestNewSerializedBadAllocation(t *testing.T) {
	_, err := NewSerialized(1, FailingAllocator{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBadAlloc)
}

func TestNewSerializedBadArguments(t *testing.T) {
	_, err := NewSerialized(1, nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = NewSerialized(-1, DefaultAllocator())
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestNewSerializedZeroCapacity(t *testing.T) {
	// Zero capacity defers allocation, so even a failing allocator works.
	s, err := NewSerialized(0, FailingAllocator{})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Capacity())
	assert.Equal(t, 0, s.Length())
}

func TestReleaseBadArguments(t *testing.T) {
	var uninitialized Serialized
	err := uninitialized.Release()
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestReleaseIsNotIdempotent(t *testing.T) {
	s, err := NewSerialized(8, DefaultAllocator())
	require.NoError(t, err)

	require.NoError(t, s.Release())

	err = s.Release()
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestResizeBadArguments(t *testing.T) {
	var uninitialized Serialized
	err := uninitialized.Resize(1)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))

	s, err := NewSerialized(1, DefaultAllocator())
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Release()) }()

	err = s.Resize(0)
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestResizeBadAllocation(t *testing.T) {
	s, err := NewSerialized(0, FailingAllocator{})
	require.NoError(t, err)

	err = s.Resize(1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrBadAlloc)
}

func TestInitResizeRelease(t *testing.T) {
	s, err := NewSerialized(1, DefaultAllocator())
	require.NoError(t, err)

	// Resizing to the current capacity changes nothing.
	require.NoError(t, s.Resize(1))
	assert.Equal(t, 1, s.Capacity())

	// Growing doubles the storage and preserves content.
	require.NoError(t, s.SetData([]byte{0x2a}))
	require.NoError(t, s.Resize(2))
	assert.Equal(t, 2, s.Capacity())
	assert.Equal(t, []byte{0x2a}, s.Bytes())

	// Shrinking truncates in place.
	require.NoError(t, s.Resize(1))
	assert.Equal(t, 1, s.Capacity())
	assert.Equal(t, 1, s.Length())

	require.NoError(t, s.Release())
	assert.Nil(t, s.Bytes())
}

func TestSetDataGrows(t *testing.T) {
	s, err := NewSerialized(2, DefaultAllocator())
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Release()) }()

	payload := []byte("hello wirebus")
	require.NoError(t, s.SetData(payload))

	assert.Equal(t, payload, s.Bytes())
	assert.Equal(t, len(payload), s.Length())
	assert.GreaterOrEqual(t, s.Capacity(), len(payload))
}

func TestTypeSupportValidate(t *testing.T) {
	var nilTS *TypeSupport
	assert.Error(t, nilTS.Validate())

	assert.Error(t, (&TypeSupport{}).Validate())
	assert.Error(t, (&TypeSupport{TypeName: "test_msgs/BasicTypes"}).Validate())

	require.NoError(t, RawTypeSupport("test_msgs/BasicTypes").Validate())
}

func TestRawTypeSupportRoundTrip(t *testing.T) {
	ts := RawTypeSupport("test_msgs/BasicTypes")

	data, err := ts.Encode([]byte{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)

	msg, err := ts.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, msg)

	_, err = ts.Encode("not bytes")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidArgument(err))
}
