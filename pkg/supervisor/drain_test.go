package supervisor

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestCappedBufferUnderCap(t *testing.T) {
	b := newCappedBuffer(100)
	b.Write([]byte("hello "))
	b.Write([]byte("world"))

	assert.False(t, b.Truncated())
	assert.Equal(t, "hello world", b.Finalize("stdout"))
}

func TestCappedBufferExactCap(t *testing.T) {
	b := newCappedBuffer(5)
	b.Write([]byte("12345"))

	assert.False(t, b.Truncated())
	assert.Equal(t, "12345", b.Finalize("stdout"))
}

func TestCappedBufferOverCap(t *testing.T) {
	b := newCappedBuffer(100)
	b.Write([]byte(strings.Repeat("a", 500)))

	assert.True(t, b.Truncated())
	got := b.Finalize("stdout")
	assert.LessOrEqual(t, len(got), 100)
	assert.True(t, strings.HasSuffix(got, "[TRUNCATED: stdout exceeded 100 bytes (0 KB)]\n"))
}

func TestCappedBufferDiscardsExcessWrites(t *testing.T) {
	b := newCappedBuffer(10)
	for i := 0; i < 1000; i++ {
		n, err := b.Write([]byte("0123456789"))
		assert.NoError(t, err)
		assert.Equal(t, 10, n, "writes past the cap still report success")
	}
	assert.Equal(t, 10000, b.total)
	assert.Equal(t, 10, b.buf.Len(), "stored bytes stay at the cap")
}

func TestCappedBufferTrailerReportsKB(t *testing.T) {
	b := newCappedBuffer(4096)
	b.Write([]byte(strings.Repeat("x", 200000)))

	got := b.Finalize("stdout")
	assert.True(t, strings.HasSuffix(got, "[TRUNCATED: stdout exceeded 4096 bytes (4 KB)]\n"))
	assert.LessOrEqual(t, len(got), 4096)
}

func TestCappedBufferValidUTF8AfterCut(t *testing.T) {
	// Multi-byte runes straddling the cut point are dropped, not split
	b := newCappedBuffer(100)
	b.Write([]byte(strings.Repeat("é", 200)))

	got := b.Finalize("stdout")
	assert.True(t, utf8.ValidString(got))
}

func TestFinalizeWithReducedCap(t *testing.T) {
	b := newCappedBuffer(1000)
	b.Write([]byte(strings.Repeat("a", 900)))

	// Under the full cap nothing is trimmed, but a reduced budget (as used
	// when the timeout prefix claims part of stderr) forces the trailer
	assert.False(t, b.Truncated())
	got := b.FinalizeWithCap("stderr", 100)
	assert.LessOrEqual(t, len(got), 100)
	assert.Contains(t, got, "[TRUNCATED: stderr exceeded 100 bytes")
}
