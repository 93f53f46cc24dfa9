// Command docsite renders rig's Markdown documentation into a static HTML site.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tessro/rig/internal/docsite"
)

func main() {
	sourceDir := flag.String("source", "docs", "Source directory containing Markdown files")
	outputDir := flag.String("out", "site/public/docs", "Output directory for generated HTML files")
	basePath := flag.String("base", "/docs/", "URL prefix the site is served under")
	templateFile := flag.String("template", "", "HTML template file (empty selects the built-in template)")
	flag.Parse()

	gen, err := docsite.NewGenerator(*sourceDir, *outputDir, *basePath, *templateFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "🔩 Error initializing generator: %v\n", err)
		os.Exit(1)
	}

	if err := gen.Generate(); err != nil {
		fmt.Fprintf(os.Stderr, "🔩 Error generating docs: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🔩 Documentation generated")
}
