package mail

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// テンプレート名（拡張子なし） -> layoutと組み合わせたテンプレート
var templates = mustLoadTemplates()

func mustLoadTemplates() map[string]*template.Template {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}

	out := make(map[string]*template.Template, len(files))
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(f), ".html")
		out[name] = template.Must(template.ParseFS(templateFS, layoutFile, f))
	}
	return out
}

var ErrUnknownTemplate = errors.New("unknown mail template")

// Has はテンプレートの有無
func Has(name string) bool {
	_, ok := templates[name]
	return ok
}

// Render はHTML本文を作る（値はエスケープされる）
func Render(name string, data any) (string, error) {
	t, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
