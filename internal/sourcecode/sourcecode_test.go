package sourcecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddChildAggregatesOnlyStructuralMetrics(t *testing.T) {
	t.Parallel()
	file := New(File, "a.m", 1)
	file.Set(Lines, 20)

	fn := New(Function, Key("f", 3), 3)
	fn.Add(Complexity, 4)
	fn.Add(Statements, 6)
	fn.Add(Functions, 1)
	fn.Set(Lines, 8)

	file.AddChild(fn)
	assert.Equal(t, 4, file.Get(Complexity))
	assert.Equal(t, 6, file.Get(Statements))
	assert.Equal(t, 1, file.Get(Functions))
	assert.Equal(t, 20, file.Get(Lines))
	assert.Equal(t, []*Node{fn}, file.Children)
}

func TestMergeCountsFiles(t *testing.T) {
	t.Parallel()
	project := New(Project, "project", 0)
	for _, lines := range []int{10, 5} {
		f := New(File, "f", 1)
		f.Set(Lines, lines)
		f.Set(CommentLines, 1)
		project.Merge(f)
	}
	assert.Equal(t, 2, project.Get(Files))
	assert.Equal(t, 15, project.Get(Lines))
	assert.Equal(t, 2, project.Get(CommentLines))
}

func TestFunctionsOrderedByLine(t *testing.T) {
	t.Parallel()
	file := New(File, "a.m", 1)
	cls := New(Class, Key("C", 1), 1)
	cls.AddChild(New(Function, Key("m", 2), 2))
	file.AddChild(New(Function, Key("late", 9), 9))
	file.AddChild(cls)

	var keys []string
	for _, f := range file.Functions() {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"m:2", "late:9"}, keys)
}

func TestMetricNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "ncloc", LinesOfCode.String())
	assert.Len(t, Metrics(), 8)
	assert.Equal(t, "function", Function.String())
}
