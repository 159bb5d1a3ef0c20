package warnings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRules(t *testing.T, specs ...string) []*Rule {
	t.Helper()
	rules := make([]*Rule, 0, len(specs))
	for _, s := range specs {
		r, err := ParseRule(s)
		require.NoError(t, err, s)
		rules = append(rules, r)
	}
	return rules
}

func TestParseRule(t *testing.T) {
	r, err := ParseRule("ignore::DeprecationWarning:legacy.*")
	require.NoError(t, err)
	assert.Equal(t, ActionIgnore, r.Action)
	assert.Nil(t, r.Message)
	assert.Equal(t, "DeprecationWarning", r.Category)
	require.NotNil(t, r.Module)
	assert.True(t, r.Module.MatchString("legacy_db"))
	assert.Equal(t, "ignore::DeprecationWarning:legacy.*", r.String())
}

func TestParseRule_ActionOnly(t *testing.T) {
	r, err := ParseRule("error")
	require.NoError(t, err)
	assert.Equal(t, ActionError, r.Action)
	assert.True(t, r.Matches(&Warning{Category: "UserWarning", Message: "anything"}))
}

func TestParseRule_Invalid(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "empty filter rule"},
		{"explode", "invalid filter action"},
		{"ignore:[:DeprecationWarning", "invalid message pattern"},
		{"ignore::Not A Category", "invalid warning category"},
		{"ignore:::([", "invalid module pattern"},
	}
	for _, tt := range tests {
		_, err := ParseRule(tt.in)
		require.Error(t, err, tt.in)
		assert.Contains(t, err.Error(), tt.want)
	}
}

func TestParseLine(t *testing.T) {
	w, ok := ParseLine("src/auth.py:42: DeprecationWarning: md5 digests are deprecated")
	require.True(t, ok)
	assert.Equal(t, "DeprecationWarning", w.Category)
	assert.Equal(t, "md5 digests are deprecated", w.Message)
	assert.Equal(t, "src/auth.py", w.Location)
	assert.Equal(t, 42, w.Line)
	assert.Equal(t, "auth", w.Module())
}

func TestParseLine_NoLineNumber(t *testing.T) {
	w, ok := ParseLine("backup.sh: UserWarning: archive is large")
	require.True(t, ok)
	assert.Equal(t, "UserWarning", w.Category)
	assert.Equal(t, 0, w.Line)
	assert.Equal(t, "backup", w.Module())
}

func TestParseLine_Ordinary(t *testing.T) {
	for _, line := range []string{
		"all good",
		"error: something broke",
		"src/auth.py:42: not a warning",
	} {
		_, ok := ParseLine(line)
		assert.False(t, ok, line)
	}
}

func TestFilter_LaterRulesWin(t *testing.T) {
	f := NewFilter(mustRules(t, "error", "ignore::DeprecationWarning"))

	dep := &Warning{Category: "DeprecationWarning", Message: "old API"}
	usr := &Warning{Category: "UserWarning", Message: "heads up"}

	assert.Equal(t, Suppress, f.Apply(dep))
	assert.Equal(t, Escalate, f.Apply(usr))
}

func TestFilter_MessagePattern(t *testing.T) {
	f := NewFilter(mustRules(t, "error:unclosed file"))

	assert.Equal(t, Escalate, f.Apply(&Warning{Category: "ResourceWarning", Message: "unclosed file <fd 3>"}))
	assert.Equal(t, Report, f.Apply(&Warning{Category: "ResourceWarning", Message: "unclosed socket"}))
}

func TestFilter_OnceAction(t *testing.T) {
	f := NewFilter(mustRules(t, "once"))

	w := &Warning{Category: "UserWarning", Message: "same text", Location: "a.py", Line: 1}
	assert.Equal(t, Report, f.Apply(w))

	elsewhere := &Warning{Category: "UserWarning", Message: "same text", Location: "b.py", Line: 9}
	assert.Equal(t, Suppress, f.Apply(elsewhere))
}

func TestFilter_ModuleAction(t *testing.T) {
	f := NewFilter(mustRules(t, "module"))

	assert.Equal(t, Report, f.Apply(&Warning{Category: "UserWarning", Message: "one", Location: "pkg/auth.py"}))
	assert.Equal(t, Suppress, f.Apply(&Warning{Category: "UserWarning", Message: "two", Location: "other/auth.py"}))
	assert.Equal(t, Report, f.Apply(&Warning{Category: "UserWarning", Message: "three", Location: "backup.py"}))
}

func TestFilter_DefaultDedupesByLocation(t *testing.T) {
	f := NewFilter(nil)

	w := &Warning{Category: "UserWarning", Message: "text", Location: "a.py", Line: 3}
	assert.Equal(t, Report, f.Apply(w))
	assert.Equal(t, Suppress, f.Apply(w))

	moved := &Warning{Category: "UserWarning", Message: "text", Location: "a.py", Line: 8}
	assert.Equal(t, Report, f.Apply(moved))
}
