package report

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const contextTemplate = "templates/context.md.tmpl"

// Format is a report output format.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// Formats lists the supported formats.
var Formats = []Format{FormatJSON, FormatYAML, FormatMarkdown}

// ParseFormat resolves a format name; "md" and "yml" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unsupported format %q (expected json, yaml or markdown)", s)
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatMarkdown:
		return "md"
	default:
		return "json"
	}
}

// Renderer serializes reports. Parsed templates are cached.
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex
}

// NewRenderer creates a renderer with the built-in template helpers.
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: defaultFuncMap(),
		cache:   make(map[string]*template.Template),
	}
}

// Render serializes r in the given format.
func (rd *Renderer) Render(r *Report, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode report as JSON: %w", err)
		}
		return append(data, '\n'), nil

	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("failed to encode report as YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode report as YAML: %w", err)
		}
		return buf.Bytes(), nil

	case FormatMarkdown:
		return rd.renderFS(contextTemplate, r)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// RenderFile renders r through a user-supplied template file.
func (rd *Renderer) RenderFile(path string, r *Report) ([]byte, error) {
	key := "file:" + path

	if tmpl, ok := rd.cached(key); ok {
		return rd.execute(tmpl, r)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file '%s': %w", path, err)
	}
	tmpl, err := rd.parse(key, path, string(src))
	if err != nil {
		return nil, err
	}
	return rd.execute(tmpl, r)
}

func (rd *Renderer) renderFS(path string, r *Report) ([]byte, error) {
	key := "fs:" + path

	if tmpl, ok := rd.cached(key); ok {
		return rd.execute(tmpl, r)
	}

	src, err := templateFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template from fs '%s': %w", path, err)
	}
	tmpl, err := rd.parse(key, path, string(src))
	if err != nil {
		return nil, err
	}
	return rd.execute(tmpl, r)
}

func (rd *Renderer) cached(key string) (*template.Template, bool) {
	rd.mu.RLock()
	defer rd.mu.RUnlock()
	tmpl, ok := rd.cache[key]
	return tmpl, ok
}

func (rd *Renderer) parse(key, name, src string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(rd.funcMap).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template '%s': %w", name, err)
	}

	rd.mu.Lock()
	rd.cache[key] = tmpl
	rd.mu.Unlock()

	return tmpl, nil
}

func (rd *Renderer) execute(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template '%s': %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"join":    strings.Join,
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"trim":    strings.TrimSpace,
		"replace": strings.ReplaceAll,
		"default": defaultString,
		"pct":     percent,   // 0.85 → 85%
		"fixed":   fixed,     // 71.234 → 71.2
		"kb":      kilobytes, // 2048 → 2.0 KB
		"add":     func(a, b int) int { return a + b },
	}
}

func defaultString(def, s string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f*100)
}

func fixed(f float64) string {
	return fmt.Sprintf("%.1f", f)
}

func kilobytes(n int64) string {
	return fmt.Sprintf("%.1f KB", float64(n)/1024)
}
