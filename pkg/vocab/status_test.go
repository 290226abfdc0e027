package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"known", StatusKnown},
		{"learning", StatusLearning},
		{"new", StatusNew},
	}
	for _, tt := range tests {
		got, err := ParseStatus(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.in, got.String())
	}

	for _, bad := range []string{"", "Known", "forgotten", " new"} {
		_, err := ParseStatus(bad)
		assert.ErrorIs(t, err, ErrInvalidStatus, "%q", bad)
	}
}

func TestMoveToTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
	}{
		{"new to learning", StatusNew, StatusLearning},
		{"new to known", StatusNew, StatusKnown},
		{"learning to known", StatusLearning, StatusKnown},
		{"known to learning", StatusKnown, StatusLearning},
		{"learning to new", StatusLearning, StatusNew},
		{"known to new", StatusKnown, StatusNew},
		{"new to new", StatusNew, StatusNew},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lw := NewLanguageWords()
			lw.MoveTo("apple", tt.from)
			lw.MoveTo("apple", tt.to)
			assert.Equal(t, tt.to, lw.StatusOf("apple"))

			_, inLearning := lw.Learning["apple"]
			_, inKnown := lw.Known["apple"]
			assert.False(t, inLearning && inKnown, "word in both sets")
			assert.Equal(t, tt.to == StatusLearning, inLearning)
			assert.Equal(t, tt.to == StatusKnown, inKnown)
		})
	}
}

func TestMoveToIsIdempotent(t *testing.T) {
	once := NewLanguageWords()
	once.MoveTo("apple", StatusKnown)

	twice := NewLanguageWords()
	twice.MoveTo("apple", StatusKnown)
	twice.MoveTo("apple", StatusKnown)

	assert.Equal(t, once, twice)
	assert.Equal(t, WordSet{"apple": 1}, twice.Known)
}

func TestMoveToIgnoresUnknownStatus(t *testing.T) {
	lw := NewLanguageWords()
	lw.MoveTo("apple", StatusKnown)
	lw.MoveTo("pear", StatusLearning)

	lw.MoveTo("apple", Status(7))
	lw.MoveTo("pear", Status(-1))
	assert.Equal(t, StatusKnown, lw.StatusOf("apple"))
	assert.Equal(t, StatusLearning, lw.StatusOf("pear"))
	assert.Empty(t, Diff(lw.Clone(), lw))
}

func TestMoveToOnZeroValue(t *testing.T) {
	var lw LanguageWords
	lw.MoveTo("apple", StatusLearning)
	assert.Equal(t, StatusLearning, lw.StatusOf("apple"))
}

func TestFullCycleLeavesNothing(t *testing.T) {
	lw := NewLanguageWords()
	lw.MoveTo("apple", StatusLearning)
	lw.MoveTo("apple", StatusKnown)
	lw.MoveTo("apple", StatusNew)
	assert.Empty(t, lw.Learning)
	assert.Empty(t, lw.Known)
}

func TestMoveAllToKeepsExistingWords(t *testing.T) {
	lw := NewLanguageWords()
	lw.MoveTo("pear", StatusKnown)
	lw.MoveTo("plum", StatusLearning)

	lw.MoveAllTo([]string{"apple", "plum"}, StatusKnown)
	assert.Equal(t, WordSet{"pear": 1, "apple": 1, "plum": 1}, lw.Known)
	assert.Empty(t, lw.Learning)

	lw.MoveAllTo([]string{"apple", "pear", "missing"}, StatusNew)
	assert.Equal(t, WordSet{"plum": 1}, lw.Known)
}

func TestCloneIsIndependent(t *testing.T) {
	lw := NewLanguageWords()
	lw.MoveTo("apple", StatusKnown)
	c := lw.Clone()
	c.MoveTo("apple", StatusNew)
	assert.Equal(t, StatusKnown, lw.StatusOf("apple"))
}

func TestDiff(t *testing.T) {
	before := NewLanguageWords()
	before.MoveAllTo([]string{"a", "b"}, StatusKnown)
	before.MoveTo("c", StatusLearning)

	after := before.Clone()
	after.MoveTo("a", StatusLearning)
	after.MoveTo("c", StatusNew)
	after.MoveTo("d", StatusKnown)

	assert.Equal(t, []Change{
		{Word: "a", From: StatusKnown, To: StatusLearning},
		{Word: "c", From: StatusLearning, To: StatusNew},
		{Word: "d", From: StatusNew, To: StatusKnown},
	}, Diff(before, after))
	assert.Empty(t, Diff(after, after.Clone()))
}

func TestUserWordDataDefinitions(t *testing.T) {
	d := NewUserWordData()
	_, ok := d.Definition("en", "apple")
	assert.False(t, ok)

	d.SetDefinition("en", "apple", "a fruit")
	def, ok := d.Definition("en", "apple")
	assert.True(t, ok)
	assert.Equal(t, "a fruit", def)
	assert.Equal(t, StatusNew, d.Language("en").StatusOf("apple"))
}

func TestWordSetSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, WordSet{"c": 1, "a": 1, "b": 1}.Sorted())
}
