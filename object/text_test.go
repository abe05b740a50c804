package object

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFields(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
	}{
		{"Commas", "1, 2, 3", []string{"1", "2", "3"}},
		{"CommasNoSpace", "1,2,3", []string{"1", "2", "3"}},
		{"Whitespace", "1 2  3", []string{"1", "2", "3"}},
		{"Single", "42", []string{"42"}},
		{"Empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitFields(tt.line)
			if len(tt.expected) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestTextReaderMeta(t *testing.T) {
	input := "#objectKey http://example.com/img1.jpg\n#dimensions 640x480\n1, 2, 3\n"
	r := NewTextReader(strings.NewReader(input))

	line, err := r.ReadDataLine()
	require.NoError(t, err)
	assert.Equal(t, "1, 2, 3", line)

	key, err := KeyFromMeta(r.TakeMeta())
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/img1.jpg", key.Locator)
	assert.True(t, key.HasDims)
	assert.Equal(t, uint32(640), key.Width)
	assert.Equal(t, uint32(480), key.Height)

	// Metadata was consumed.
	assert.Nil(t, r.TakeMeta())

	_, err = r.ReadDataLine()
	assert.Equal(t, io.EOF, err)
}

func TestTextReaderUnreadLine(t *testing.T) {
	r := NewTextReader(strings.NewReader("first\nsecond\n"))

	line, err := r.ReadLine()
	require.NoError(t, err)
	require.Equal(t, "first", line)

	r.UnreadLine(line)
	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	line, err = r.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "second", line)
}

func TestTextReaderNoTrailingNewline(t *testing.T) {
	r := NewTextReader(strings.NewReader("1, 2"))
	line, err := r.ReadDataLine()
	require.NoError(t, err)
	assert.Equal(t, "1, 2", line)
	_, err = r.ReadLine()
	assert.Equal(t, io.EOF, err)
}

func TestKeyMetaRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		key  Key
	}{
		{"Empty", Key{}},
		{"LocatorOnly", Key{Locator: "file:///a.jpg"}},
		{"Full", Key{Locator: "file:///a.jpg", Width: 800, Height: 600, HasDims: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			require.NoError(t, WriteKeyMeta(&sb, tt.key))
			sb.WriteString("data\n")

			r := NewTextReader(strings.NewReader(sb.String()))
			_, err := r.ReadDataLine()
			require.NoError(t, err)
			got, err := KeyFromMeta(r.TakeMeta())
			require.NoError(t, err)
			assert.Equal(t, tt.key, got)
		})
	}
}

func TestParseError(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := NewParseError(7, "bad line", "file:///x", cause)
	assert.Contains(t, err.Error(), "line 7")
	assert.Contains(t, err.Error(), "bad line")
	assert.Contains(t, err.Error(), "file:///x")
	assert.ErrorIs(t, err, cause)
}
