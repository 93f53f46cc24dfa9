package docsite

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMapPath(t *testing.T) {
	tests := []struct {
		name      string
		sourceDir string
		outputDir string
		inputPath string
		want      string
	}{
		{
			name:      "simple file becomes directory",
			sourceDir: "docs",
			outputDir: "site/public/docs",
			inputPath: "docs/commands.md",
			want:      "site/public/docs/commands/index.html",
		},
		{
			name:      "nested file becomes directory",
			sourceDir: "docs",
			outputDir: "site/public/docs",
			inputPath: "docs/guides/metrics.md",
			want:      "site/public/docs/guides/metrics/index.html",
		},
		{
			name:      "index file stays as index.html",
			sourceDir: "docs",
			outputDir: "site/public/docs",
			inputPath: "docs/index.md",
			want:      "site/public/docs/index.html",
		},
		{
			name:      "deeply nested becomes directory",
			sourceDir: "docs",
			outputDir: "out",
			inputPath: "docs/a/b/c.md",
			want:      "out/a/b/c/index.html",
		},
		{
			name:      "nested index stays as index.html",
			sourceDir: "docs",
			outputDir: "site/public/docs",
			inputPath: "docs/guides/index.md",
			want:      "site/public/docs/guides/index.html",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapPath(tt.sourceDir, tt.outputDir, tt.inputPath)
			// Normalize paths for cross-platform comparison
			got = filepath.ToSlash(got)
			want := filepath.ToSlash(tt.want)
			if got != want {
				t.Errorf("MapPath() = %q, want %q", got, want)
			}
		})
	}
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		filePath string
		want     string
	}{
		{
			name:     "h1 at start",
			content:  "# Instance Lifecycle\n\nHow launches work.",
			filePath: "docs/lifecycle.md",
			want:     "Instance Lifecycle",
		},
		{
			name:     "h1 with leading content",
			content:  "Some intro text\n\n# The Real Title\n\nMore content.",
			filePath: "docs/test.md",
			want:     "The Real Title",
		},
		{
			name:     "no h1 falls back to filename",
			content:  "## Only H2\n\nNo main title here.",
			filePath: "docs/my-document.md",
			want:     "my-document",
		},
		{
			name:     "h1 with extra spaces",
			content:  "#   Spaced Title   \n\nContent.",
			filePath: "docs/test.md",
			want:     "Spaced Title",
		},
		{
			name:     "nested path filename fallback",
			content:  "No title",
			filePath: "docs/guides/metrics.md",
			want:     "metrics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractTitle([]byte(tt.content), tt.filePath)
			if got != tt.want {
				t.Errorf("ExtractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriteLinks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple md link",
			input: `<a href="./commands.md">Commands</a>`,
			want:  `<a href="./commands/">Commands</a>`,
		},
		{
			name:  "md link with anchor",
			input: `<a href="./configuration.md#timeouts">Timeouts</a>`,
			want:  `<a href="./configuration/#timeouts">Timeouts</a>`,
		},
		{
			name:  "index.md link",
			input: `<a href="index.md">Home</a>`,
			want:  `<a href="./">Home</a>`,
		},
		{
			name:  "nested index.md link",
			input: `<a href="./guides/index.md">Guides</a>`,
			want:  `<a href="./guides/">Guides</a>`,
		},
		{
			name:  "index.md with anchor",
			input: `<a href="index.md#intro">Intro</a>`,
			want:  `<a href="./#intro">Intro</a>`,
		},
		{
			name:  "non-md link unchanged",
			input: `<a href="https://example.com">External</a>`,
			want:  `<a href="https://example.com">External</a>`,
		},
		{
			name:  "html link unchanged",
			input: `<a href="./commands.html">Commands</a>`,
			want:  `<a href="./commands.html">Commands</a>`,
		},
		{
			name:  "multiple links",
			input: `<a href="./a.md">A</a> and <a href="./b.md#x">B</a>`,
			want:  `<a href="./a/">A</a> and <a href="./b/#x">B</a>`,
		},
		{
			name:  "relative link without dot",
			input: `<a href="guides/metrics.md">Metrics</a>`,
			want:  `<a href="guides/metrics/">Metrics</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RewriteLinks(tt.input)
			if got != tt.want {
				t.Errorf("RewriteLinks() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShiftLinks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "sibling page link",
			input: `<a href="./metrics/">Metrics</a>`,
			want:  `<a href="../metrics/">Metrics</a>`,
		},
		{
			name:  "bare relative link",
			input: `<a href="guides/metrics/">Metrics</a>`,
			want:  `<a href="../guides/metrics/">Metrics</a>`,
		},
		{
			name:  "link to site root",
			input: `<a href="./">Home</a>`,
			want:  `<a href="../">Home</a>`,
		},
		{
			name:  "absolute path unchanged",
			input: `<a href="/docs/commands/">Commands</a>`,
			want:  `<a href="/docs/commands/">Commands</a>`,
		},
		{
			name:  "anchor unchanged",
			input: `<a href="#timeouts">Timeouts</a>`,
			want:  `<a href="#timeouts">Timeouts</a>`,
		},
		{
			name:  "external link unchanged",
			input: `<a href="https://example.com">External</a>`,
			want:  `<a href="https://example.com">External</a>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShiftLinks(tt.input)
			if got != tt.want {
				t.Errorf("ShiftLinks() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHrefFor(t *testing.T) {
	tests := []struct {
		relPath string
		want    string
	}{
		{"index", ""},
		{"commands", "commands/"},
		{"guides/metrics", "guides/metrics/"},
		{"guides/index", "guides/"},
	}

	for _, tt := range tests {
		if got := hrefFor(tt.relPath); got != tt.want {
			t.Errorf("hrefFor(%q) = %q, want %q", tt.relPath, got, tt.want)
		}
	}
}

func TestGenerateSite(t *testing.T) {
	tmpDir := t.TempDir()

	sourceDir := filepath.Join(tmpDir, "docs")
	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		t.Fatalf("creating source dir: %v", err)
	}

	files := map[string]string{
		"index.md": "# rig\n\nSee [Commands](./commands.md).\n",
		"commands.md": `# Commands

Running things; see [Configuration](./configuration.md).

| Command | Purpose |
|---------|---------|
| up      | launch  |
| down    | stop    |
`,
		"configuration.md": "# Configuration\n\nAll the knobs.\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(sourceDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}

	outputDir := filepath.Join(tmpDir, "site", "public", "docs")

	// Empty template file selects the built-in template.
	gen, err := NewGenerator(sourceDir, outputDir, "/docs/", "")
	if err != nil {
		t.Fatalf("creating generator: %v", err)
	}
	if err := gen.Generate(); err != nil {
		t.Fatalf("generating docs: %v", err)
	}

	indexHTML := readOutput(t, filepath.Join(outputDir, "index.html"))
	commandsHTML := readOutput(t, filepath.Join(outputDir, "commands", "index.html"))
	readOutput(t, filepath.Join(outputDir, "configuration", "index.html"))

	// Every page carries the full navigation.
	for _, want := range []string{`href="/docs/"`, `href="/docs/commands/"`, `href="/docs/configuration/"`} {
		if !strings.Contains(commandsHTML, want) {
			t.Errorf("commands page missing nav link %s", want)
		}
	}

	// The active page is marked in its own navigation.
	if !strings.Contains(commandsHTML, `class="active">Commands`) {
		t.Error("commands page does not mark itself active in nav")
	}
	if strings.Contains(indexHTML, `class="active">Commands`) {
		t.Error("index page marks Commands active")
	}

	// GFM tables render and internal links are rewritten.
	if !strings.Contains(commandsHTML, "<table>") {
		t.Error("commands page missing rendered table")
	}
	if !strings.Contains(indexHTML, `href="./commands/"`) {
		t.Error("index page link to commands.md not rewritten")
	}
	if strings.Contains(indexHTML, `href="./commands.md"`) {
		t.Error("index page contains unrewritten .md link")
	}

	// Links between sibling pages climb out of the page's directory.
	if !strings.Contains(commandsHTML, `href="../configuration/"`) {
		t.Error("commands page sibling link not shifted for pretty URLs")
	}
}

func TestGenerateCustomTemplate(t *testing.T) {
	tmpDir := t.TempDir()

	sourceDir := filepath.Join(tmpDir, "docs")
	if err := os.MkdirAll(sourceDir, 0o755); err != nil {
		t.Fatalf("creating source dir: %v", err)
	}
	mdContent := "# Test Page\n\nSome content.\n"
	if err := os.WriteFile(filepath.Join(sourceDir, "test.md"), []byte(mdContent), 0o644); err != nil {
		t.Fatalf("writing test markdown: %v", err)
	}

	templateFile := filepath.Join(tmpDir, "docs.html")
	templateContent := `<html><head><title>{{.Title}} | custom</title></head>` +
		`<body><main>{{.Content}}</main></body></html>`
	if err := os.WriteFile(templateFile, []byte(templateContent), 0o644); err != nil {
		t.Fatalf("writing template: %v", err)
	}

	outputDir := filepath.Join(tmpDir, "out")
	gen, err := NewGenerator(sourceDir, outputDir, "/docs/", templateFile)
	if err != nil {
		t.Fatalf("creating generator: %v", err)
	}
	if err := gen.Generate(); err != nil {
		t.Fatalf("generating docs: %v", err)
	}

	output := readOutput(t, filepath.Join(outputDir, "test", "index.html"))
	if !strings.Contains(output, "<title>Test Page | custom</title>") {
		t.Errorf("custom template not applied:\n%s", output)
	}
	if !strings.Contains(output, "<h1") {
		t.Errorf("content not rendered:\n%s", output)
	}
}

func readOutput(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output %s: %v", path, err)
	}
	return string(data)
}
