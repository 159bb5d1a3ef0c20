package ini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_KeyValue(t *testing.T) {
	input := `[testini]
timeout = 300
timeout_method = thread
`

	doc, err := Parse(input, "testini.ini")
	require.NoError(t, err)
	require.Len(t, doc.Sections, 1)

	sec := doc.Sections[0]
	assert.Equal(t, "testini", sec.Name)
	require.Len(t, sec.Entries, 2)
	assert.Equal(t, "timeout", sec.Entries[0].Key)
	assert.Equal(t, "300", sec.Entries[0].Value())
	assert.Equal(t, 2, sec.Entries[0].Line)
	assert.False(t, sec.Entries[0].IsList())
}

func TestParse_ContinuationList(t *testing.T) {
	input := `[testini]
markers =
    smoke: quick sanity checks
    slow: long-running cases
testpaths = tests
`

	doc, err := Parse(input, "testini.ini")
	require.NoError(t, err)

	sec := doc.Section("testini")
	require.NotNil(t, sec)

	markers := sec.Entry("markers")
	require.NotNil(t, markers)
	assert.True(t, markers.IsList())
	assert.Equal(t, []string{
		"smoke: quick sanity checks",
		"slow: long-running cases",
	}, markers.Values)

	paths := sec.Entry("testpaths")
	require.NotNil(t, paths)
	assert.Equal(t, []string{"tests"}, paths.Values)
}

func TestParse_InlineValueWithContinuations(t *testing.T) {
	input := `[testini]
filterwarnings = error
    ignore::DeprecationWarning
`

	doc, err := Parse(input, "")
	require.NoError(t, err)

	e := doc.Sections[0].Entries[0]
	assert.Equal(t, []string{"error", "ignore::DeprecationWarning"}, e.Values)
}

func TestParse_CommentsAndBlankLines(t *testing.T) {
	input := `# session configuration
[testini]

; also a comment
timeout = 10
`

	doc, err := Parse(input, "")
	require.NoError(t, err)
	require.Len(t, doc.Sections, 1)
	require.Len(t, doc.Sections[0].Entries, 1)
}

func TestParse_CommentBreaksContinuation(t *testing.T) {
	input := `[testini]
markers =
    smoke: quick
# interlude
    orphan line
`

	_, err := Parse(input, "testini.ini")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 5, perr.Line)
	assert.Contains(t, perr.Message, "continuation line")
}

func TestParse_KeyOutsideSection(t *testing.T) {
	_, err := Parse("timeout = 5\n", "testini.ini")
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)
	assert.Contains(t, perr.Message, "outside of a section")
	assert.Contains(t, perr.Error(), "testini.ini:1:")
}

func TestParse_MalformedLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unterminated section", "[testini\n", "unterminated section"},
		{"empty section name", "[ ]\n", "empty section name"},
		{"no equals", "[testini]\njust some words\n", "expected 'key = value'"},
		{"missing key", "[testini]\n= value\n", "missing key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, "x.ini")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_CRLF(t *testing.T) {
	doc, err := Parse("[testini]\r\ntimeout = 1\r\n", "")
	require.NoError(t, err)
	assert.Equal(t, "1", doc.Sections[0].Entry("timeout").Value())
}
