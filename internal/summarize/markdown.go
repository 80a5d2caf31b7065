package summarize

import (
	"strings"

	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// stripMarkdown flattens markdown the model produced despite instructions
// into plain text: emphasis markers, headers, code ticks, and link targets
// are dropped while the visible text survives. Plain strings pass through
// untouched.
func stripMarkdown(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || !strings.ContainsAny(trimmed, "*_#`[>") {
		return trimmed
	}

	mdParser := parser.NewWithExtensions(parser.CommonExtensions)
	doc := mdParser.Parse([]byte(trimmed))

	var sb strings.Builder
	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		switch n := node.(type) {
		case *ast.Paragraph, *ast.Heading, *ast.ListItem:
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case *ast.Text:
			sb.Write(n.Literal)
		case *ast.Code:
			sb.Write(n.Literal)
		case *ast.CodeBlock:
			sb.Write(n.Literal)
		}
		return ast.GoToNext
	})

	out := strings.Join(strings.Fields(sb.String()), " ")
	if out == "" {
		return trimmed
	}
	return out
}
