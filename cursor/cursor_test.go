package cursor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCursor_ReadByte(t *testing.T) {
	t.Run("reads all bytes in order then reports EOF", func(t *testing.T) {
		c := New([]byte{0x01, 0x02, 0x03})

		b, ok := c.ReadByte()
		require.True(t, ok)
		require.Equal(t, byte(0x01), b)

		b, ok = c.ReadByte()
		require.True(t, ok)
		require.Equal(t, byte(0x02), b)

		b, ok = c.ReadByte()
		require.True(t, ok)
		require.Equal(t, byte(0x03), b)

		require.True(t, c.EOF())

		_, ok = c.ReadByte()
		require.False(t, ok)
	})

	t.Run("empty input is immediately EOF", func(t *testing.T) {
		c := New(nil)
		require.True(t, c.EOF())

		_, ok := c.ReadByte()
		require.False(t, ok)
	})
}

func TestCursor_UnreadByte(t *testing.T) {
	t.Run("undoes the most recent read", func(t *testing.T) {
		c := New([]byte{0xAA, 0xBB})

		b, ok := c.ReadByte()
		require.True(t, ok)
		require.Equal(t, byte(0xAA), b)

		c.UnreadByte()
		require.Equal(t, 0, c.Position())

		b, ok = c.ReadByte()
		require.True(t, ok)
		require.Equal(t, byte(0xAA), b)
	})

	t.Run("panics without a preceding read", func(t *testing.T) {
		c := New([]byte{0x01})
		require.Panics(t, func() { c.UnreadByte() })
	})

	t.Run("panics on a second consecutive call", func(t *testing.T) {
		c := New([]byte{0x01, 0x02})

		_, ok := c.ReadByte()
		require.True(t, ok)

		c.UnreadByte()
		require.Panics(t, func() { c.UnreadByte() })
	})

	t.Run("panics after a failed read at EOF", func(t *testing.T) {
		c := New([]byte{0x01})

		_, ok := c.ReadByte()
		require.True(t, ok)

		_, ok = c.ReadByte()
		require.False(t, ok)

		require.Panics(t, func() { c.UnreadByte() })
	})
}

func TestCursor_Position(t *testing.T) {
	c := New([]byte{1, 2, 3, 4})
	require.Equal(t, 0, c.Position())

	c.ReadByte()
	require.Equal(t, 1, c.Position())

	c.ReadBytes(2)
	require.Equal(t, 3, c.Position())
}

func TestCursor_Remaining(t *testing.T) {
	c := New([]byte{1, 2, 3})
	require.Equal(t, 3, c.Remaining())

	c.ReadByte()
	require.Equal(t, 2, c.Remaining())
}

func TestCursor_Seek(t *testing.T) {
	t.Run("repositions to an absolute offset", func(t *testing.T) {
		c := New([]byte{1, 2, 3, 4, 5})
		c.ReadBytes(4)

		c.Seek(1)
		require.Equal(t, 1, c.Position())

		b, ok := c.ReadByte()
		require.True(t, ok)
		require.Equal(t, byte(2), b)
	})

	t.Run("clears pending unread eligibility", func(t *testing.T) {
		c := New([]byte{1, 2, 3})
		c.ReadByte()
		c.Seek(0)
		require.Panics(t, func() { c.UnreadByte() })
	})

	t.Run("panics out of range", func(t *testing.T) {
		c := New([]byte{1, 2, 3})
		require.Panics(t, func() { c.Seek(-1) })
		require.Panics(t, func() { c.Seek(4) })
	})

	t.Run("allows seeking to exactly len(data)", func(t *testing.T) {
		c := New([]byte{1, 2, 3})
		require.NotPanics(t, func() { c.Seek(3) })
		require.True(t, c.EOF())
	})
}

func TestCursor_Peek(t *testing.T) {
	c := New([]byte{0x10, 0x20})

	b, ok := c.Peek()
	require.True(t, ok)
	require.Equal(t, byte(0x10), b)
	require.Equal(t, 0, c.Position())

	b, ok = c.ReadByte()
	require.True(t, ok)
	require.Equal(t, byte(0x10), b)

	c.ReadByte()
	_, ok = c.Peek()
	require.False(t, ok)
}

func TestCursor_ReadBytes(t *testing.T) {
	t.Run("reads a run of bytes", func(t *testing.T) {
		c := New([]byte{1, 2, 3, 4, 5})

		b, ok := c.ReadBytes(3)
		require.True(t, ok)
		require.Equal(t, []byte{1, 2, 3}, b)
		require.Equal(t, 3, c.Position())
	})

	t.Run("fails without advancing when insufficient bytes remain", func(t *testing.T) {
		c := New([]byte{1, 2})

		_, ok := c.ReadBytes(3)
		require.False(t, ok)
		require.Equal(t, 0, c.Position())
	})

	t.Run("zero length read succeeds trivially", func(t *testing.T) {
		c := New([]byte{1, 2})

		b, ok := c.ReadBytes(0)
		require.True(t, ok)
		require.Empty(t, b)
	})
}
