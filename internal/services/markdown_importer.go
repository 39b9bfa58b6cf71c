package services

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// ParsedSubTask is a checklist item recovered from text.
type ParsedSubTask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// ParsedTask is a task recovered from text, not yet stored.
type ParsedTask struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	SubTasks    []ParsedSubTask `json:"sub_tasks"`
}

// MarkdownImporter turns a markdown outline into tasks.
//
// A heading starts a task; paragraphs below it form its description and list
// items below it become its checklist. Outside a heading every top-level list
// item is a task of its own with nested items as its checklist, and every line
// of a loose paragraph is a task. GFM checkboxes mark checklist items completed.
type MarkdownImporter struct {
	md goldmark.Markdown
}

func NewMarkdownImporter() *MarkdownImporter {
	return &MarkdownImporter{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Parse extracts tasks from source.
func (m *MarkdownImporter) Parse(source string) []ParsedTask {
	src := []byte(source)
	doc := m.md.Parser().Parse(text.NewReader(src))

	tasks := []ParsedTask{}
	current := -1
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			current = -1
			if title := inlineText(node, src); title != "" {
				tasks = append(tasks, ParsedTask{Title: title, SubTasks: []ParsedSubTask{}})
				current = len(tasks) - 1
			}

		case *ast.Paragraph:
			body := rawText(node, src)
			if current >= 0 {
				if tasks[current].Description != "" {
					tasks[current].Description += "\n\n"
				}
				tasks[current].Description += body
				continue
			}
			for _, line := range strings.Split(body, "\n") {
				if line = strings.TrimSpace(line); line != "" {
					tasks = append(tasks, ParsedTask{Title: line, SubTasks: []ParsedSubTask{}})
				}
			}

		case *ast.List:
			if current >= 0 {
				tasks[current].SubTasks = collectSubTasks(node, src, tasks[current].SubTasks)
				continue
			}
			for li := node.FirstChild(); li != nil; li = li.NextSibling() {
				title, _ := listItemTitle(li, src)
				if title == "" {
					continue
				}
				tasks = append(tasks, ParsedTask{
					Title:    title,
					SubTasks: collectNested(li, src, []ParsedSubTask{}),
				})
			}

		case *ast.ThematicBreak:
			current = -1
		}
	}
	return tasks
}

func collectSubTasks(list *ast.List, src []byte, out []ParsedSubTask) []ParsedSubTask {
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		if title, checked := listItemTitle(li, src); title != "" {
			out = append(out, ParsedSubTask{Title: title, Completed: checked})
		}
		out = collectNested(li, src, out)
	}
	return out
}

func collectNested(li ast.Node, src []byte, out []ParsedSubTask) []ParsedSubTask {
	for c := li.FirstChild(); c != nil; c = c.NextSibling() {
		if list, ok := c.(*ast.List); ok {
			out = collectSubTasks(list, src, out)
		}
	}
	return out
}

func listItemTitle(li ast.Node, src []byte) (string, bool) {
	first := li.FirstChild()
	if first == nil {
		return "", false
	}
	if _, ok := first.(*ast.List); ok {
		return "", false
	}
	checked := false
	if box, ok := first.FirstChild().(*extast.TaskCheckBox); ok {
		checked = box.IsChecked
	}
	return inlineText(first, src), checked
}

// inlineText flattens the inline content of n to a single line.
func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.Label(src))
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(b.String()), " ")
}

// rawText returns the markdown source of a block.
func rawText(n ast.Node, src []byte) string {
	lines := n.Lines()
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		out = append(out, strings.TrimRight(string(seg.Value(src)), "\r\n"))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
