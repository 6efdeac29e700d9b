package views

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavelanni/practice/internal/i18n"
	"github.com/pavelanni/practice/internal/model"
	"github.com/pavelanni/practice/internal/render"
)

func TestMain(m *testing.M) {
	if err := i18n.Init("en"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func testPage() *render.Page {
	return render.NewPage(&model.TaskSet{
		Level: "A2",
		Title: "Unit <1>",
		Tasks: []model.Task{
			{Type: model.TypeMCQ, Items: []model.Item{
				{Q: "He ___ to work.", Choices: []string{"go", "goes", "going"}, Answer: model.Answers{"1"}, Explanation: "Third person."},
			}},
			{Type: model.TypeWriting, Description: "Describe your morning.", Checklist: []string{"Use the present simple", "Write five sentences"}},
			{Type: "quiz"},
		},
	}, nil)
}

func TestTaskBlockMCQ(t *testing.T) {
	p := testPage()
	d := PageData{BasePath: "/app", ID: "pg", Page: p}
	v, err := p.View(0)
	require.NoError(t, err)
	mcq := v.(*render.MCQView)

	body := renderString(t, TaskBlock(d, 0, v))
	assert.True(t, strings.HasPrefix(body, `<section class="task task-mcq" id="task-0">`), body)
	assert.Contains(t, body, `action="/app/page/pg/task/0/check"`)
	assert.Contains(t, body, `hx-target="#task-0"`)
	assert.Contains(t, body, `<input type="radio" name="item-0" value="1"> goes</label>`)
	assert.NotContains(t, body, "Score:")

	require.NoError(t, mcq.SetSelection(0, []int{0}))
	mcq.Check()
	body = renderString(t, TaskBlock(d, 0, v))
	assert.Contains(t, body, `<fieldset class="item status-fail">`)
	assert.Contains(t, body, `value="0" checked`)
	assert.Contains(t, body, "Explanation: Third person.")
	assert.Contains(t, body, "Score: 0/1")
}

func TestTaskBlockWriting(t *testing.T) {
	p := testPage()
	d := PageData{BasePath: "/app", ID: "pg", Page: p}
	v, err := p.View(1)
	require.NoError(t, err)
	wv := v.(*render.WritingView)
	wv.SetText("I <wake> up.")
	require.NoError(t, wv.SetDone(1, true))

	body := renderString(t, TaskBlock(d, 1, v))
	assert.Contains(t, body, `action="/app/page/pg/task/1/reviewed"`)
	assert.Contains(t, body, "I &lt;wake&gt; up.")
	assert.Contains(t, body, `value="1" checked`)
	assert.NotContains(t, body, `value="0" checked`)
	assert.NotContains(t, body, "Check</button>")
}

func TestTaskBlockUnknown(t *testing.T) {
	p := testPage()
	v, err := p.View(2)
	require.NoError(t, err)

	body := renderString(t, TaskBlock(PageData{Page: p}, 2, v))
	assert.Equal(t, `<section class="task task-quiz" id="task-2"><p class="unknown">Unknown task type: quiz</p></section>`, body)
}

func TestPracticePage(t *testing.T) {
	d := PageData{
		BasePath: "/app",
		ID:       "pg",
		Page:     testPage(),
		Gen:      GenerateForm{Topic: "Sports", Type: model.TypeGap, Items: 4, Status: "Added", StatusKind: StatusOK},
	}

	body := renderString(t, PracticePage(d))
	assert.True(t, strings.HasPrefix(body, "<!doctype html>"))
	assert.Contains(t, body, "<title>Unit &lt;1&gt;</title>")
	assert.Contains(t, body, "Level: A2 · Unit &lt;1&gt; · 3 tasks")
	assert.Contains(t, body, `hx-post="/app/page/pg/generate"`)
	assert.Contains(t, body, `<option value="gap" selected>gap</option>`)
	assert.Contains(t, body, `name="items" min="1" max="20" value="4"`)
	assert.Contains(t, body, `<p class="status status-ok" role="status">Added</p>`)

	d.Page = render.NewPage(nil, nil)
	d.Missing = true
	d.Gen = GenerateForm{}
	body = renderString(t, PracticeBody(d))
	assert.True(t, strings.HasPrefix(body, `<div id="practice">`))
	assert.Contains(t, body, "No practice available yet.")
	assert.NotContains(t, body, `role="status"`)
	assert.Contains(t, body, `value=""`)
}

func TestIndexPage(t *testing.T) {
	body := renderString(t, IndexPage(IndexData{BasePath: "/app", TokenSet: true, Status: "Saved"}))
	assert.Contains(t, body, `<p class="status status-ok">Saved</p>`)
	assert.Contains(t, body, `<form method="get" action="/app/open">`)
	assert.Contains(t, body, `<form method="post" action="/app/pages" enctype="multipart/form-data">`)
	assert.Contains(t, body, `placeholder="••••••••"`)

	body = renderString(t, IndexPage(IndexData{}))
	assert.NotContains(t, body, "Saved")
	assert.Contains(t, body, `placeholder=""`)
}
