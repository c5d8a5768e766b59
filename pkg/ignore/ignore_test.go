package ignore_test

import (
	"testing"

	"github.com/arthur-debert/wd40/pkg/ignore"
	"github.com/stretchr/testify/assert"
)

func TestRulesetMatch(t *testing.T) {
	rs := ignore.Parse("/w", "/w/.wd40ignore", []byte(`
# keep vendored deps
vendor/
/build
*.cache   # inline comment
docs/**/generated
	tmp-*	# tabs too
`))

	tests := []struct {
		name  string
		path  string
		isDir bool
		want  bool
	}{
		{"dir-only pattern matches directory", "/w/vendor", true, true},
		{"dir-only pattern matches at depth", "/w/a/b/vendor", true, true},
		{"dir-only pattern skips files", "/w/vendor", false, false},
		{"anchored pattern at root", "/w/build", true, true},
		{"anchored pattern not at depth", "/w/app/build", true, false},
		{"star within segment", "/w/x/.yarn.cache", true, true},
		{"star does not cross segments", "/w/x.cache/y", true, false},
		{"double star crosses segments", "/w/docs/api/v1/generated", true, true},
		{"double star matches zero segments", "/w/docs/generated", true, true},
		{"indented pattern with tab comment", "/w/tmp-123", true, true},
		{"unrelated", "/w/src", true, false},
		{"ruleset dir itself", "/w", true, false},
		{"outside ruleset dir", "/other/vendor", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matched, excluded := rs.Match(tt.path, tt.isDir)
			assert.Equal(t, tt.want, matched && excluded)
		})
	}
}

func TestParseSkipsCommentsAndBlanks(t *testing.T) {
	rs := ignore.Parse("/w", "", []byte("# only\n\n   \n#another\n\\#literal\n"))
	assert.Equal(t, 1, rs.Len())

	matched, excluded := rs.Match("/w/#literal", true)
	assert.True(t, matched)
	assert.True(t, excluded)
}

func TestLastMatchWins(t *testing.T) {
	rs := ignore.New("/w", "", []string{"node_modules/", "!keep/node_modules/"})

	_, excluded := rs.Match("/w/app/node_modules", true)
	assert.True(t, excluded)

	matched, excluded := rs.Match("/w/keep/node_modules", true)
	assert.True(t, matched)
	assert.False(t, excluded, "later negation re-includes")

	rs = ignore.New("/w", "", []string{"!keep/node_modules/", "node_modules/"})
	_, excluded = rs.Match("/w/keep/node_modules", true)
	assert.True(t, excluded, "order matters")
}

func TestMalformedPatternNeverMatches(t *testing.T) {
	rs := ignore.New("/w", "", []string{"[unclosed", "target/"})

	assert.Equal(t, []string{"[unclosed"}, rs.Invalid())
	assert.Equal(t, 1, rs.Len())

	matched, _ := rs.Match("/w/[unclosed", true)
	assert.False(t, matched)

	_, excluded := rs.Match("/w/p/target", true)
	assert.True(t, excluded, "valid patterns keep working")
}

func TestStackClosestWins(t *testing.T) {
	rootRules := ignore.New("/w", "/w/.wd40ignore", []string{"target/", "*.bak"})
	childRules := ignore.New("/w/keep", "/w/keep/.wd40ignore", []string{"!target/"})

	var stack *ignore.Stack
	assert.False(t, stack.Excluded("/w/p/target", true), "empty stack keeps everything")

	rootStack := stack.Push(rootRules)
	childStack := rootStack.Push(childRules)

	assert.True(t, rootStack.Excluded("/w/keep/target", true))
	assert.False(t, childStack.Excluded("/w/keep/target", true), "closer ruleset overrides")
	assert.True(t, childStack.Excluded("/w/other/target", true), "child scope does not leak")
	assert.True(t, childStack.Excluded("/w/keep/x.bak", true), "falls through to ancestor when child has no match")

	assert.Equal(t, 2, childStack.Depth())
	assert.Equal(t, 1, rootStack.Depth(), "push does not mutate the parent")
}

func TestStackPushEmpty(t *testing.T) {
	base := (*ignore.Stack)(nil).Push(ignore.New("/w", "", []string{"x"}))
	assert.Same(t, base, base.Push(nil))
	assert.Same(t, base, base.Push(ignore.Parse("/w/a", "", []byte("# nothing\n"))))
}
