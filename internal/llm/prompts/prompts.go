package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"text/template"

	"github.com/pavelanni/practice/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	// DefaultModel is the model identifier sent with every request.
	DefaultModel = "gpt-4o-mini"
	// DefaultTemperature keeps generation close to deterministic.
	DefaultTemperature float32 = 0.3
	// DefaultMaxTokens is the output-length ceiling.
	DefaultMaxTokens = 4000
	// DefaultLanguage is the locale of instructions, hints and criteria.
	DefaultLanguage = "uk"
	// DefaultSeed replaces a topic that slugs to nothing.
	DefaultSeed = "task"

	seedLen = 6
)

var defaultItems = map[model.Type]int{
	model.TypeMCQ:       10,
	model.TypeGap:       10,
	model.TypeTransform: 10,
	model.TypeError:     10,
	model.TypeOrder:     10,
	model.TypeMatch:     8,
	model.TypeShort:     3,
	model.TypeWriting:   1,
}

var languageNames = map[string]string{
	"uk": "українська",
	"en": "англійська",
}

var slugRegex = regexp.MustCompile(`[^a-z0-9]+`)

var (
	loadOnce  sync.Once
	loadErr   error
	templates map[model.Type]*template.Template
)

// Config is the request-level configuration. Token is read once by the
// application from the settings store and passed in here.
type Config struct {
	Token       string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Options tune a single request. Zero values pick the defaults.
type Options struct {
	Language string
	Items    int
	SeedID   string
}

// Request is the generation payload as it goes over the wire.
type Request struct {
	Token       string                         `json:"token"`
	Model       string                         `json:"model"`
	Messages    []openai.ChatCompletionMessage `json:"messages"`
	Temperature float32                        `json:"temperature"`
	MaxTokens   int                            `json:"max_tokens"`

	// Type is the exercise type the request asks for.
	Type model.Type `json:"-"`
}

// System returns the content of the system message.
func (r Request) System() string { return r.content(openai.ChatMessageRoleSystem) }

// User returns the content of the user message.
func (r Request) User() string { return r.content(openai.ChatMessageRoleUser) }

func (r Request) content(role string) string {
	for _, m := range r.Messages {
		if m.Role == role {
			return m.Content
		}
	}
	return ""
}

// templateData holds what the per-type templates can reference.
type templateData struct {
	Type         model.Type
	Topic        string
	LanguageName string
	SeedID       string
	Count        int
	AltExample   bool
}

// Builder turns (topic, type, options) into a Request.
type Builder struct {
	cfg Config
}

// New creates a Builder. Empty model and zero decoding parameters are
// replaced with the defaults.
func New(cfg Config) *Builder {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return &Builder{cfg: cfg}
}

// Build constructs the request. An unrecognized type is built as mcq.
func (b *Builder) Build(topic, typ string, opts Options) (Request, error) {
	if err := load(); err != nil {
		return Request{}, err
	}

	t, ok := model.ParseType(typ)
	if !ok {
		slog.Debug("unknown exercise type, using mcq", "type", typ)
		t = model.TypeMCQ
	}
	topic = strings.TrimSpace(topic)
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.SeedID == "" {
		opts.SeedID = Slug(topic)
	}

	data := templateData{
		Type:         t,
		Topic:        topic,
		LanguageName: LanguageName(opts.Language),
		SeedID:       opts.SeedID,
		Count:        ItemCount(t, opts.Items),
		AltExample:   strings.Contains(strings.ToLower(topic), "present simple"),
	}

	tmpl := templates[t]
	system, err := execute(tmpl, "system", data)
	if err != nil {
		return Request{}, fmt.Errorf("build %s system prompt: %w", t, err)
	}
	user, err := execute(tmpl, "user", data)
	if err != nil {
		return Request{}, fmt.Errorf("build %s user prompt: %w", t, err)
	}

	if b.cfg.Token == "" {
		slog.Warn("no generation token configured", "key", "gptToken")
	}

	return Request{
		Token: b.cfg.Token,
		Model: b.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: b.cfg.Temperature,
		MaxTokens:   b.cfg.MaxTokens,
		Type:        t,
	}, nil
}

// ItemCount is the number of items or pairs asked for. items <= 0 picks the
// per-type default; match and short are clamped.
func ItemCount(t model.Type, items int) int {
	if items <= 0 {
		items = DefaultItems(t)
	}
	switch t {
	case model.TypeMatch:
		return PairCount(items)
	case model.TypeShort:
		return ShortCount(items)
	}
	return items
}

// DefaultItems returns the default item count for t.
func DefaultItems(t model.Type) int {
	if n, ok := defaultItems[t]; ok {
		return n
	}
	return defaultItems[model.TypeMCQ]
}

// PairCount clamps a match pair count to [6, 12].
func PairCount(items int) int { return max(6, min(12, items)) }

// ShortCount is half of items, clamped to [3, 6].
func ShortCount(items int) int { return max(3, min(6, items/2)) }

// Slug derives a short seed id from a topic.
func Slug(topic string) string {
	s := slugRegex.ReplaceAllString(strings.ToLower(topic), "-")
	s = strings.Trim(s, "-")
	if len(s) > seedLen {
		s = s[:seedLen]
	}
	if s == "" {
		return DefaultSeed
	}
	return s
}

// LanguageName returns the name used in prompts for a language code.
// Unknown codes are used as is.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}

func load() error {
	loadOnce.Do(func() {
		templates = make(map[model.Type]*template.Template, len(model.Types))
		for _, t := range model.Types {
			file := "templates/" + string(t) + ".tmpl"
			tmpl, err := template.New(string(t)).ParseFS(templateFS, "templates/common.tmpl", file)
			if err != nil {
				loadErr = fmt.Errorf("parse prompt template %s: %w", file, err)
				return
			}
			templates[t] = tmpl
		}
	})
	return loadErr
}

func execute(tmpl *template.Template, name string, data templateData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}
