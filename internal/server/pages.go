package server

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/benpsk/go-items/internal/item"
)

func itemsPage(appName string, items []item.Read) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<!doctype html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
		fmt.Fprintf(&b, "<title>%s</title>\n", templ.EscapeString(appName))
		b.WriteString("</head>\n<body>\n")
		fmt.Fprintf(&b, "<h1>%s</h1>\n", templ.EscapeString(appName))
		if len(items) == 0 {
			b.WriteString("<p>No items yet.</p>\n")
		} else {
			b.WriteString("<ul>\n")
			for _, it := range items {
				fmt.Fprintf(&b, "<li data-id=\"%d\">%s</li>\n", it.ID, templ.EscapeString(it.Name))
			}
			b.WriteString("</ul>\n")
		}
		b.WriteString("</body>\n</html>\n")
		_, err := io.WriteString(w, b.String())
		return err
	})
}
