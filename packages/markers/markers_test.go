package markers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeclaration(t *testing.T) {
	m, err := ParseDeclaration("smoke: quick sanity checks")
	require.NoError(t, err)
	assert.Equal(t, "smoke", m.Name)
	assert.Equal(t, "quick sanity checks", m.Description)
}

func TestParseDeclaration_NameOnly(t *testing.T) {
	m, err := ParseDeclaration("slow")
	require.NoError(t, err)
	assert.Equal(t, "slow", m.Name)
	assert.Empty(t, m.Description)
}

func TestParseDeclaration_Invalid(t *testing.T) {
	for _, in := range []string{"", "2fast", "has space: desc", "dash-ed: desc"} {
		_, err := ParseDeclaration(in)
		assert.Error(t, err, in)
	}
}

func TestRegistry_Duplicate(t *testing.T) {
	_, err := NewRegistry([]Marker{{Name: "backup"}, {Name: "backup"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate marker "backup"`)
}

func TestRegistry_CheckStrict(t *testing.T) {
	reg, err := NewRegistry([]Marker{{Name: "smoke"}, {Name: "backup"}, {Name: "rbac"}})
	require.NoError(t, err)

	require.NoError(t, reg.CheckStrict("test_login", []string{"smoke", "rbac"}))

	err = reg.CheckStrict("test_login", []string{"smoke", "integrationn"})
	require.Error(t, err)

	var undeclared *UndeclaredError
	require.ErrorAs(t, err, &undeclared)
	assert.Equal(t, "test_login", undeclared.Case)
	assert.Equal(t, "integrationn", undeclared.Marker)
	assert.Equal(t, []string{"backup", "rbac", "smoke"}, undeclared.Known)
}

func TestParseExpr(t *testing.T) {
	has := func(set ...string) func(string) bool {
		m := make(map[string]bool)
		for _, s := range set {
			m[s] = true
		}
		return func(name string) bool { return m[name] }
	}

	tests := []struct {
		expr  string
		marks []string
		want  bool
	}{
		{"smoke", []string{"smoke"}, true},
		{"smoke", []string{"slow"}, false},
		{"not slow", []string{"smoke"}, true},
		{"not slow", []string{"slow"}, false},
		{"smoke and rbac", []string{"smoke", "rbac"}, true},
		{"smoke and rbac", []string{"smoke"}, false},
		{"smoke or rbac", []string{"rbac"}, true},
		{"smoke or rbac and slow", []string{"smoke"}, true},     // and binds tighter
		{"(smoke or rbac) and slow", []string{"smoke"}, false},
		{"not (smoke or rbac)", []string{"backup"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			expr, err := ParseExpr(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.Eval(has(tt.marks...)))
		})
	}
}

func TestParseExpr_Invalid(t *testing.T) {
	for _, in := range []string{"", "and", "smoke and", "smoke or or rbac", "(smoke", "smoke)", "not"} {
		_, err := ParseExpr(in)
		assert.Error(t, err, in)
	}
}
