package dashboard

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html templates/**/*.html
var embeddedTemplates embed.FS

// Renderer is the go-template contract the controller renders pages with.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// NewTemplateRenderer renders the page templates. An empty dir uses the embedded
// set; otherwise dir must hold the same layout (dashboard.html, partials/, widgets/).
func NewTemplateRenderer(dir string) (Renderer, error) {
	root, base, err := templateRoot(dir)
	if err != nil {
		return nil, err
	}
	sub, err := fs.Sub(root, base)
	if err != nil {
		return nil, fmt.Errorf("dashboard: templates: %w", err)
	}
	if missing := MissingWidgetTemplates(sub, DefaultWidgetDefinitions()); len(missing) > 0 {
		return nil, fmt.Errorf("dashboard: templates missing for %s", strings.Join(missing, ", "))
	}
	return template.NewRenderer(
		template.WithFS(root),
		template.WithBaseDir(base),
		template.WithExtension(".html"),
	)
}

// templateRoot returns the filesystem and base directory handed to go-template.
func templateRoot(dir string) (fs.FS, string, error) {
	if dir == "" {
		return embeddedTemplates, "templates", nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, "", fmt.Errorf("dashboard: templates dir: %w", err)
	}
	if !info.IsDir() {
		return nil, "", fmt.Errorf("dashboard: templates dir %s is not a directory", dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("dashboard: templates dir: %w", err)
	}
	return os.DirFS(filepath.Dir(abs)), filepath.Base(abs), nil
}

// MissingWidgetTemplates lists the widget codes in defs that have no widgets/<code>.html in fsys.
func MissingWidgetTemplates(fsys fs.FS, defs []WidgetDefinition) []string {
	var missing []string
	for _, def := range defs {
		if _, err := fs.Stat(fsys, widgetTemplate(def.Code)); err != nil {
			missing = append(missing, def.Code)
		}
	}
	sort.Strings(missing)
	return missing
}
