package tagvalue

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filtered(t *testing.T, in string) string {
	t.Helper()
	out, err := io.ReadAll(NewFilter(strings.NewReader(in)))
	require.NoError(t, err)
	return string(out)
}

func TestFilterPassThrough(t *testing.T) {
	in := "Now is the time\nfor all good\nmen\nto\tcome to the aid of their country"
	assert.Equal(t, in, filtered(t, in))
}

func TestFilterComments(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"mid-line hash is content", "Now is #the time\n#for all good\nmen\rto\tcome", "Now is #the time\nmen\nto\tcome"},
		{"one comment", "a: 1\n# c\nb: 2", "a: 1\nb: 2"},
		{"several comments collapse", "a: 1\n# c1\n#c2\n#c3\nb: 2", "a: 1\nb: 2"},
		{"crlf comments collapse", "a: 1\r\n# c1\r\n# c2\r\nb: 2\r\n", "a: 1\nb: 2\n"},
		{"leading comment", "# header\na: 1", "a: 1"},
		{"only comments", "# one\n# two\n", ""},
		{"trailing comments dropped", "a: 1\n# c1\n# c2", "a: 1"},
		{"trailing terminator kept", "a: 1\n", "a: 1\n"},
		{"trailing comment after blank line", "a: 1\n\n# c", "a: 1\n"},
		{"blank line kept", "a: 1\n\nb: 2", "a: 1\n\nb: 2"},
		{"comment after blank line", "a: 1\n\n# c\nb: 2", "a: 1\n\nb: 2"},
		{"blank line after comment kept", "a: 1\n# c\n\nb: 2", "a: 1\n\nb: 2"},
		{"trailing blank line after comment kept", "a\n#c\n\n", "a\n\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, filtered(t, tc.in))
		})
	}
}

func TestFilterTextBlocks(t *testing.T) {
	in := "Now is the time\n#for all good\nmen\rto\tcome <text>to \n#the aid of </text>\nthier country\n#also"
	want := "Now is the time\nmen\nto\tcome <text>to \n#the aid of </text>\nthier country"
	assert.Equal(t, want, filtered(t, in))

	raw := "C: <text>line one\r\n# not a comment\rstill\n\n#</text>\n# gone\nD: x"
	assert.Equal(t, "C: <text>line one\r\n# not a comment\rstill\n\n#</text>\nD: x", filtered(t, raw))
}

func TestFilterTextOpenerSplitAcrossReads(t *testing.T) {
	f := NewFilter(strings.NewReader("A: <te<text>x\n#y</text>"))
	var out []byte
	buf := make([]byte, 3)
	for {
		n, err := f.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, "A: <te<text>x\n#y</text>", string(out))
}

func TestFilterRoundTripWithoutComments(t *testing.T) {
	in := "SPDXVersion: SPDX-2.3\rDataLicense: CC0-1.0\r\nDocumentName: x\nPackageName: y"
	want := "SPDXVersion: SPDX-2.3\nDataLicense: CC0-1.0\nDocumentName: x\nPackageName: y"
	assert.Equal(t, want, filtered(t, in))
}

func TestFilterSkip(t *testing.T) {
	in := "Now is the time\nfor all good\nmen"
	f := NewFilter(strings.NewReader(in))
	n, err := f.Skip(5)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)
	rest, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, in[5:], string(rest))

	n, err = f.Skip(10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestFilterLineNumbers(t *testing.T) {
	f := NewFilter(strings.NewReader("a\n# c\r\n#d\nb\r\nc"))
	var lines []int
	for {
		b, err := f.ReadByte()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if b != '\n' {
			lines = append(lines, f.Line())
		}
	}
	assert.Equal(t, []int{1, 4, 5}, lines)
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return nil
}

func TestFilterCloseClosesSource(t *testing.T) {
	src := &closeRecorder{Reader: strings.NewReader("a")}
	f := NewFilter(src)
	require.NoError(t, f.Close())
	assert.True(t, src.closed)
}
