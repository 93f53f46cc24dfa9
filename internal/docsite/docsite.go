// Package docsite renders rig's Markdown documentation into a static HTML site.
package docsite

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed page.html.tmpl
var defaultTemplate string

// Generator renders a tree of Markdown files into a static site with
// pretty URLs and a shared navigation column.
type Generator struct {
	SourceDir    string
	OutputDir    string
	BasePath     string
	TemplateFile string

	md   goldmark.Markdown
	tmpl *template.Template
}

// PageData holds data passed to the page template.
type PageData struct {
	Title   string
	Base    string
	Content template.HTML
	Nav     []NavEntry
}

// NavEntry is one page in the site-wide navigation.
type NavEntry struct {
	Title  string
	Href   string
	Active bool
}

// page is one discovered Markdown source file.
type page struct {
	srcPath string
	relPath string // slash-separated, .md stripped
	title   string
	content []byte
}

// NewGenerator creates a documentation generator. basePath is the URL
// prefix the site will be served under. An empty templateFile selects
// the built-in page template.
func NewGenerator(sourceDir, outputDir, basePath, templateFile string) (*Generator, error) {
	g := &Generator{
		SourceDir:    sourceDir,
		OutputDir:    outputDir,
		BasePath:     normalizeBase(basePath),
		TemplateFile: templateFile,
	}

	g.md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	tmplContent := defaultTemplate
	if templateFile != "" {
		raw, err := os.ReadFile(templateFile)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		tmplContent = string(raw)
	}

	tmpl, err := template.New("page").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	g.tmpl = tmpl

	return g, nil
}

// Generate renders every Markdown file under SourceDir into OutputDir.
// All pages are collected first so each one can render the full
// navigation.
func (g *Generator) Generate() error {
	pages, err := g.collect()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(g.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for i := range pages {
		if err := g.render(&pages[i], pages); err != nil {
			return err
		}
	}
	return nil
}

// collect walks the source tree and reads every Markdown file. Pages
// come back sorted for navigation: the top-level index first, the rest
// by title.
func (g *Generator) collect() ([]page, error) {
	var pages []page

	err := filepath.WalkDir(g.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		rel, err := filepath.Rel(g.SourceDir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		rel = filepath.ToSlash(strings.TrimSuffix(rel, ".md"))

		pages = append(pages, page{
			srcPath: path,
			relPath: rel,
			title:   ExtractTitle(content, path),
			content: content,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(pages, func(i, j int) bool {
		if (pages[i].relPath == "index") != (pages[j].relPath == "index") {
			return pages[i].relPath == "index"
		}
		return pages[i].title < pages[j].title
	})
	return pages, nil
}

// render converts one page to HTML and writes it to its pretty-URL
// location.
func (g *Generator) render(p *page, all []page) error {
	var htmlBuf bytes.Buffer
	if err := g.md.Convert(p.content, &htmlBuf); err != nil {
		return fmt.Errorf("converting %s: %w", p.srcPath, err)
	}
	content := RewriteLinks(htmlBuf.String())
	if p.relPath != "index" && !strings.HasSuffix(p.relPath, "/index") {
		content = ShiftLinks(content)
	}

	nav := make([]NavEntry, 0, len(all))
	for i := range all {
		nav = append(nav, NavEntry{
			Title:  all[i].title,
			Href:   g.BasePath + hrefFor(all[i].relPath),
			Active: all[i].relPath == p.relPath,
		})
	}

	outputPath := MapPath(g.SourceDir, g.OutputDir, p.srcPath)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", outputPath, err)
	}

	var outBuf bytes.Buffer
	data := PageData{
		Title:   p.title,
		Base:    g.BasePath,
		Content: template.HTML(content),
		Nav:     nav,
	}
	if err := g.tmpl.Execute(&outBuf, data); err != nil {
		return fmt.Errorf("executing template for %s: %w", p.srcPath, err)
	}

	if err := os.WriteFile(outputPath, outBuf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}
	return nil
}

// normalizeBase forces leading and trailing slashes on the URL prefix.
func normalizeBase(base string) string {
	if base == "" {
		return "/"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// hrefFor maps a stripped source path to its pretty-URL path relative
// to the site base. index pages collapse onto their directory.
func hrefFor(relPath string) string {
	if relPath == "index" {
		return ""
	}
	if strings.HasSuffix(relPath, "/index") {
		return strings.TrimSuffix(relPath, "index")
	}
	return relPath + "/"
}

var h1Regex = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// mdLinkRegex matches href attributes that point to .md files.
// Captures: (1) path before .md (2) .md extension (3) optional anchor
var mdLinkRegex = regexp.MustCompile(`href="([^"]*?)(\.md)(#[^"]*)?"`)

// RewriteLinks transforms internal .md links in HTML content to pretty URLs.
// For example: href="./configuration.md#timeouts" becomes
// href="./configuration/#timeouts". Links to index.md collapse onto the
// directory: ./guides/index.md becomes ./guides/.
func RewriteLinks(htmlContent string) string {
	return mdLinkRegex.ReplaceAllStringFunc(htmlContent, func(match string) string {
		sub := mdLinkRegex.FindStringSubmatch(match)
		if len(sub) < 3 {
			return match
		}

		path := sub[1]
		anchor := ""
		if len(sub) > 3 {
			anchor = sub[3]
		}

		switch {
		case path == "index":
			path = "./"
		case strings.HasSuffix(path, "/index"):
			path = strings.TrimSuffix(path, "index")
		default:
			path += "/"
		}

		return fmt.Sprintf(`href="%s%s"`, path, anchor)
	})
}

// hrefRegex matches any href attribute.
var hrefRegex = regexp.MustCompile(`href="([^"]*)"`)

// ShiftLinks prepends ../ to relative links. A non-index page renders one
// directory deeper than its source file sat, which moves what its relative
// links resolve against.
func ShiftLinks(htmlContent string) string {
	return hrefRegex.ReplaceAllStringFunc(htmlContent, func(match string) string {
		target := hrefRegex.FindStringSubmatch(match)[1]
		if target == "" || strings.HasPrefix(target, "/") ||
			strings.HasPrefix(target, "#") || strings.Contains(target, ":") {
			return match
		}
		return fmt.Sprintf(`href="../%s"`, strings.TrimPrefix(target, "./"))
	})
}

// ExtractTitle extracts the title from Markdown content. It looks for
// the first H1 heading and falls back to the filename.
func ExtractTitle(content []byte, filePath string) string {
	matches := h1Regex.FindSubmatch(content)
	if len(matches) > 1 {
		return strings.TrimSpace(string(matches[1]))
	}

	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// MapPath converts a source Markdown path to an output HTML path using
// pretty URLs. Files named "index.md" stay as index.html, other files
// become directories with index.html inside.
// Example: docs/commands.md -> site/public/docs/commands/index.html
func MapPath(sourceDir, outputDir, inputPath string) string {
	relPath, err := filepath.Rel(sourceDir, inputPath)
	if err != nil {
		relPath = filepath.Base(inputPath)
	}
	relPath = strings.TrimSuffix(relPath, ".md")

	if filepath.Base(relPath) == "index" {
		return filepath.Join(outputDir, relPath+".html")
	}
	return filepath.Join(outputDir, relPath, "index.html")
}
