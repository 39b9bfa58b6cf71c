package services

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yukikurage/toondo/internal/models"
)

const cardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: "Comic Sans MS", "Chalkboard SE", sans-serif; margin: 2rem; }
.card { border: 3px solid #222; border-radius: 12px; padding: 1.5rem; max-width: 640px; }
.card header img { max-width: 100%; border-radius: 8px; }
.meta { color: #555; font-size: 0.9rem; }
.items { list-style: none; padding: 0; }
.items li { margin: 0.4rem 0; }
.done { text-decoration: line-through; color: #777; }
.label { display: inline-block; border-radius: 4px; padding: 0 0.4rem; margin-left: 0.2rem; font-size: 0.75rem; color: #fff; }
{{range .Palette}}.label-{{.}} { background: {{.}}; }
{{end}}@media print { body { margin: 0; } }
</style>
</head>
<body>
<article class="card">
<header>
{{if .BackgroundImageURL}}<img src="{{.BackgroundImageURL}}" alt="">{{end}}
<h1>{{if .Completed}}&#10003; {{end}}{{.Title}}</h1>
<p class="meta">{{if .Owner}}Owner: {{.Owner}}{{end}}{{if .DueDate}} &middot; Due: {{.DueDate}}{{end}}</p>
</header>
{{if .Description}}<section class="description">{{.Description}}</section>{{end}}
{{if .Items}}<ul class="items">
{{range .Items}}<li{{if .Completed}} class="done"{{end}}>{{if .Completed}}&#9745;{{else}}&#9744;{{end}} {{.Title}}{{range .Labels}}<span class="label label-{{.}}">{{.}}</span>{{end}}{{if .Assignee}} <span class="meta">@{{.Assignee}}</span>{{end}}{{if .DueDate}} <span class="meta">due {{.DueDate}}</span>{{end}}</li>
{{end}}</ul>{{end}}
</article>
</body>
</html>
`

// CardPrinter renders a single task as a printable HTML page.
type CardPrinter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	tmpl   *template.Template
}

type cardView struct {
	Title              string
	Completed          bool
	Owner              string
	DueDate            string
	BackgroundImageURL string
	Description        template.HTML
	Items              []cardItemView
	Palette            []models.Label
}

type cardItemView struct {
	Title     string
	Completed bool
	Labels    []models.Label
	Assignee  string
	DueDate   string
}

func NewCardPrinter() *CardPrinter {
	return &CardPrinter{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				emoji.Emoji,
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
		policy: bluemonday.UGCPolicy(),
		tmpl:   template.Must(template.New("card").Parse(cardTemplate)),
	}
}

// Render produces the printable page for task.
func (p *CardPrinter) Render(task models.Task) ([]byte, error) {
	description, err := p.renderMarkdown(task.Description)
	if err != nil {
		return nil, err
	}

	view := cardView{
		Title:              task.Title,
		Completed:          task.Completed,
		Owner:              task.UserDisplayName,
		DueDate:            deref(task.DueDate),
		BackgroundImageURL: deref(task.BackgroundImageURL),
		Description:        description,
		Items:              make([]cardItemView, 0, len(task.ChecklistItems)),
		Palette:            models.LabelPalette,
	}
	for _, item := range task.ChecklistItems {
		view.Items = append(view.Items, cardItemView{
			Title:     item.Title,
			Completed: item.Completed,
			Labels:    item.Label,
			Assignee:  deref(item.AssignedUserName),
			DueDate:   deref(item.DueDate),
		})
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render card: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *CardPrinter) renderMarkdown(src string) (template.HTML, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	var b bytes.Buffer
	if err := p.md.Convert([]byte(src), &b); err != nil {
		return "", fmt.Errorf("render description: %w", err)
	}
	return template.HTML(p.policy.SanitizeBytes(b.Bytes())), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
