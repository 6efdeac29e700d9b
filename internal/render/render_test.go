package render

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/practice/internal/model"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestShufflePreservesMultiset(t *testing.T) {
	in := []string{"a", "b", "b", "c", "d", "e"}
	rng := testRand()
	for range 200 {
		out := Shuffle(rng, in)
		require.Len(t, out, len(in))
		a := slices.Clone(in)
		b := slices.Clone(out)
		slices.Sort(a)
		slices.Sort(b)
		assert.Equal(t, a, b)
	}
	assert.Equal(t, []string{"a", "b", "b", "c", "d", "e"}, in, "input must not be modified")
	assert.Empty(t, Shuffle[int](nil, nil))
}

func TestShuffleReachesEveryPermutation(t *testing.T) {
	in := []int{0, 1, 2}
	counts := map[[3]int]int{}
	rng := testRand()
	const n = 6000
	for range n {
		out := Shuffle(rng, in)
		counts[[3]int{out[0], out[1], out[2]}]++
	}
	require.Len(t, counts, 6)
	for perm, c := range counts {
		assert.InDelta(t, n/6, c, 200, "permutation %v drawn %d times", perm, c)
	}
}

func TestNewDispatch(t *testing.T) {
	tests := []struct {
		typ  model.Type
		want any
	}{
		{model.TypeMCQ, &MCQView{}},
		{model.TypeGap, &TextView{}},
		{model.TypeTransform, &TextView{}},
		{model.TypeError, &TextView{}},
		{model.TypeMatch, &MatchView{}},
		{model.TypeOrder, &OrderView{}},
		{model.TypeShort, &ShortView{}},
		{model.TypeWriting, &WritingView{}},
		{"crossword", &UnknownView{}},
	}
	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			v := New(&model.Task{Type: tt.typ}, testRand())
			assert.IsType(t, tt.want, v)
		})
	}

	v := New(&model.Task{Type: "crossword"}, nil)
	_, isChecker := v.(Checker)
	assert.False(t, isChecker)
	assert.Equal(t, "crossword", v.(*UnknownView).TypeName())
}

func TestMCQ(t *testing.T) {
	task := &model.Task{Type: model.TypeMCQ, Items: []model.Item{
		{Q: "He usually ___ the bus to work.", Choices: []string{"take", "takes", "is taking"}, Answer: model.Answers{"1"}},
		{Q: "Pick both.", Choices: []string{"a", "b", "c"}, Answer: model.Answers{"2", "0"}},
	}}
	v := New(task, nil).(*MCQView)
	require.Len(t, v.Items(), 2)
	assert.False(t, v.Items()[0].Multi)
	assert.True(t, v.Items()[1].Multi)

	res := v.Check()
	assert.Equal(t, 0, res.Correct)
	assert.Equal(t, 2, res.Total)

	require.NoError(t, v.Select(0, 1))
	require.NoError(t, v.Select(1, 0))
	require.NoError(t, v.Select(1, 2))
	res = v.Check()
	assert.Equal(t, 2, res.Correct)
	assert.Equal(t, StatusPass, res.Item(0).Status)

	// single choice replaces; multi toggles
	require.NoError(t, v.Select(0, 0))
	assert.Equal(t, []int{0}, v.Items()[0].Selected())
	require.NoError(t, v.Select(1, 2))
	assert.Equal(t, []int{0}, v.Items()[1].Selected())

	res = v.Check()
	assert.Equal(t, 0, res.Correct)
	assert.Equal(t, res, *v.Last())

	assert.ErrorIs(t, v.Select(0, 3), ErrOutOfRange)
	assert.ErrorIs(t, v.Select(5, 0), ErrOutOfRange)
}

func TestMCQSizeMismatch(t *testing.T) {
	task := &model.Task{Type: model.TypeMCQ, Items: []model.Item{
		{Q: "q", Choices: []string{"a", "b", "c"}, Answer: model.Answers{"1"}},
	}}
	v := New(task, nil).(*MCQView)

	require.NoError(t, v.SetSelection(0, []int{1}))
	assert.Equal(t, 1, v.Check().Correct)

	require.NoError(t, v.SetSelection(0, []int{0, 1}))
	assert.Equal(t, []int{0, 1}, v.Items()[0].Selected())
	res := v.Check()
	assert.Equal(t, 0, res.Correct)
	assert.Equal(t, StatusFail, res.Item(0).Status)
}

func TestGapModes(t *testing.T) {
	task := &model.Task{Type: model.TypeGap, Items: []model.Item{
		{Q: "They ___ (work) on Sundays.", Answer: model.Answers{"work", "do work"}},
		{Q: "No marker here", Answer: model.Answers{"x"}},
		{Q: "A ___ b ___ c", Answer: model.Answers{"y"}},
	}}
	v := New(task, nil).(*TextView)
	items := v.Items()
	assert.Equal(t, ModeInline, items[0].Mode)
	assert.Equal(t, "They ", items[0].Before)
	assert.Equal(t, " (work) on Sundays.", items[0].After)
	assert.Equal(t, ModeFull, items[1].Mode)
	assert.Equal(t, "A ", items[2].Before)
	assert.Equal(t, " b ___ c", items[2].After)

	require.NoError(t, v.SetInput(0, "  Do   WORK "))
	require.NoError(t, v.SetInput(1, "y"))
	res := v.Check()
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, StatusPass, res.Item(0).Status)
	assert.Equal(t, StatusFail, res.Item(1).Status)
}

func TestTransformHintAndPeriod(t *testing.T) {
	task := &model.Task{
		Type:   model.TypeTransform,
		Prompt: "Перетвори на заперечення (Present Simple, без крапки)",
		Items: []model.Item{
			{Q: "She likes coffee.", Hint: "використай doesn't", Answer: model.Answers{"she doesn't like coffee"}},
		},
	}
	v := New(task, nil).(*TextView)
	assert.Equal(t, ModeFull, v.Items()[0].Mode, "transform always shows the full question")
	assert.False(t, v.Items()[0].HintVisible)

	require.NoError(t, v.ToggleHint(0))
	assert.True(t, v.Items()[0].HintVisible)
	assert.Nil(t, v.Last(), "revealing a hint is not a submission")

	require.NoError(t, v.SetInput(0, "She doesn't like coffee."))
	assert.Equal(t, 1, v.Check().Correct)
}

func TestMatch(t *testing.T) {
	task := &model.Task{Type: model.TypeMatch, Pairs: []model.Pair{
		{Left: "go", Right: "goes"},
		{Left: "do", Right: "does"},
		{Left: "watch", Right: "watches"},
	}}
	v := New(task, testRand()).(*MatchView)
	assert.ElementsMatch(t, []string{"goes", "does", "watches"}, v.Options())

	require.NoError(t, v.Select(0, "goes"))
	require.NoError(t, v.Select(1, "watches"))
	assert.ErrorIs(t, v.Select(2, "went"), ErrUnknownOption)

	res := v.Check()
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, StatusFail, res.Item(2).Status)

	require.NoError(t, v.Select(1, "does"))
	require.NoError(t, v.Select(2, "watches"))
	assert.Equal(t, 3, v.Check().Correct)
}

func chipIndex(t *testing.T, it *OrderItem, word string) int {
	t.Helper()
	for i, c := range it.Chips {
		if c.Word == word && !c.Used {
			return i
		}
	}
	t.Fatalf("no free chip %q", word)
	return -1
}

func TestOrder(t *testing.T) {
	task := &model.Task{Type: model.TypeOrder, Items: []model.Item{
		{Q: "Впорядкуй речення", Tokens: []string{"she", "often", "reads", "books"}, Answer: model.Answers{"she often reads books"}},
	}}
	v := New(task, testRand()).(*OrderView)
	it := v.Items()[0]
	require.Len(t, it.Chips, 4)

	for _, w := range []string{"she", "often", "reads", "books"} {
		require.NoError(t, v.Pick(0, chipIndex(t, it, w)))
	}
	assert.Equal(t, "she often reads books", it.Built())
	assert.Equal(t, 1, v.Check().Correct)

	assert.ErrorIs(t, v.Pick(0, 0), ErrChipUsed)

	require.NoError(t, v.Reset(0))
	assert.Empty(t, it.Target())
	for _, ch := range it.Chips {
		assert.False(t, ch.Used)
	}
	assert.Equal(t, StatusUnchecked, v.Last().Item(0).Status)

	for _, w := range []string{"often", "she", "reads", "books"} {
		require.NoError(t, v.Pick(0, chipIndex(t, it, w)))
	}
	res := v.Check()
	assert.Equal(t, 0, res.Correct)
	assert.Equal(t, StatusFail, res.Item(0).Status)
}

func TestOrderArrayAnswer(t *testing.T) {
	task := &model.Task{Type: model.TypeOrder, Items: []model.Item{
		{Tokens: []string{"I", "am"}, Answer: model.Answers{"I", "am"}},
	}}
	v := New(task, testRand()).(*OrderView)
	it := v.Items()[0]
	require.NoError(t, v.Pick(0, chipIndex(t, it, "I")))
	require.NoError(t, v.Pick(0, chipIndex(t, it, "am")))
	assert.Equal(t, 1, v.Check().Correct)
}

func TestShort(t *testing.T) {
	task := &model.Task{Type: model.TypeShort, Items: []model.Item{
		{Q: "Напиши про свою щоденну рутину.", Keywords: []string{"i", "usually", "every"}},
		{Q: "What do you do at weekends?", Keywords: []string{"i", "usually", "every"}},
		{Q: "Anything else?"},
	}}
	v := New(task, nil).(*ShortView)
	require.NoError(t, v.SetInput(0, "I usually go for a run every morning"))
	require.NoError(t, v.SetInput(1, "I go for a run"))

	res := v.Check()
	assert.Equal(t, ItemResult{Status: StatusPass, Matched: 3, Total: 3}, res.Item(0))
	assert.Equal(t, ItemResult{Status: StatusPartial, Matched: 1, Total: 3}, res.Item(1))
	assert.Equal(t, StatusPass, res.Item(2).Status, "no keywords means nothing is missing")
	assert.Equal(t, 4, res.Correct)
	assert.Equal(t, 6, res.Total)

	// Keywords match as substrings: "nothing" contains "i".
	require.NoError(t, v.SetInput(1, "nothing"))
	res = v.Check()
	assert.Equal(t, StatusPartial, res.Item(1).Status)

	require.NoError(t, v.SetInput(1, "yes"))
	res = v.Check()
	assert.Equal(t, ItemResult{Status: StatusFail, Matched: 0, Total: 3}, res.Item(1))
}

func TestWriting(t *testing.T) {
	task := &model.Task{Type: model.TypeWriting, Description: "Write 5 sentences.", Checklist: []string{"a", "b", "c", "d"}}
	v := New(task, nil).(*WritingView)
	require.Len(t, v.Checklist(), 4)

	require.NoError(t, v.Toggle(1))
	assert.True(t, v.Checklist()[1].Done)
	require.NoError(t, v.SetDone(1, false))
	assert.False(t, v.Checklist()[1].Done)
	assert.ErrorIs(t, v.Toggle(4), ErrOutOfRange)

	assert.False(t, v.Reviewed())
	v.MarkReviewed()
	assert.True(t, v.Reviewed())
}

func TestPage(t *testing.T) {
	set := &model.TaskSet{Title: "Present Simple", Tasks: []model.Task{
		{Type: model.TypeGap, Items: []model.Item{{Q: "I ___ tea.", Answer: model.Answers{"drink"}}}},
		{Type: "crossword"},
	}}
	p := NewPage(set, nil)
	assert.Equal(t, model.DefaultLevel, p.Level)
	require.Len(t, p.Views(), 2)
	assert.IsType(t, &UnknownView{}, p.Views()[1])

	idx := p.Append(model.Task{Type: model.TypeShort, Items: []model.Item{{Q: "q"}}})
	assert.Equal(t, 2, idx)
	v, err := p.View(idx)
	require.NoError(t, err)
	assert.IsType(t, &ShortView{}, v)

	_, err = p.View(3)
	assert.ErrorIs(t, err, ErrOutOfRange)

	empty := NewPage(nil, nil)
	assert.Empty(t, empty.Views())
}
