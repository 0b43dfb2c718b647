// Package report writes a human-readable summary of a run: a markdown
// report assembled from the manifest, plus an HTML rendering of it.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"vizplan/internal/manifest"
)

var md = goldmark.New()

// Write emits report.md and report.html into outDir and returns their paths.
func Write(m *manifest.Manifest, outDir string) (mdPath, htmlPath string, err error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", "", fmt.Errorf("creating output dir: %w", err)
	}

	markdown := Render(m)
	mdPath = filepath.Join(outDir, "report.md")
	if err := os.WriteFile(mdPath, []byte(markdown), 0o644); err != nil {
		return "", "", fmt.Errorf("writing markdown report: %w", err)
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", "", fmt.Errorf("converting report to HTML: %w", err)
	}
	htmlPath = filepath.Join(outDir, "report.html")
	html := fmt.Sprintf(htmlShell, filepath.Base(m.SourceFile), buf.String())
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return "", "", fmt.Errorf("writing HTML report: %w", err)
	}

	return mdPath, htmlPath, nil
}

const htmlShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Chart plan: %s</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
code { background: #f4f4f4; padding: 0.1rem 0.3rem; }
</style>
</head>
<body>
%s
</body>
</html>
`

// Render assembles the markdown report from the manifest.
func Render(m *manifest.Manifest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Chart plan: %s\n\n", filepath.Base(m.SourceFile))
	fmt.Fprintf(&b, "%d rows, %d columns.\n\n", m.RowCount, m.ColumnCount)

	fmt.Fprintf(&b, "## Data quality\n\n")
	fmt.Fprintf(&b, "**Score: %.1f (grade %s)**\n\n", m.DataQuality.Score, m.DataQuality.Grade)
	c := m.DataQuality.Components
	fmt.Fprintf(&b, "| Component | Score |\n|---|---|\n")
	fmt.Fprintf(&b, "| Completeness | %.1f |\n", c.Completeness)
	fmt.Fprintf(&b, "| Variance | %.1f |\n", c.Variance)
	fmt.Fprintf(&b, "| Cardinality | %.1f |\n", c.Cardinality)
	fmt.Fprintf(&b, "| Valid dates | %.1f |\n", c.ValidDates)
	fmt.Fprintf(&b, "| Outliers | %.1f |\n\n", c.Outliers)
	for _, note := range m.DataQuality.Notes {
		fmt.Fprintf(&b, "- %s\n", note)
	}
	if len(m.DataQuality.Notes) > 0 {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Roles (plan source: %s)\n\n", m.Selection.PlanSource)
	if m.Selection.FallbackReason != "" {
		fmt.Fprintf(&b, "Heuristic planner used: %s\n\n", m.Selection.FallbackReason)
	}
	if m.Roles.PrimaryMeasure != "" {
		fmt.Fprintf(&b, "- Primary measure: `%s`\n", m.Roles.PrimaryMeasure)
	}
	if m.Roles.PrimaryDate != "" {
		fmt.Fprintf(&b, "- Primary date: `%s`\n", m.Roles.PrimaryDate)
	}
	if len(m.Roles.Dimensions) > 0 {
		fmt.Fprintf(&b, "- Dimensions: %s\n", codeList(m.Roles.Dimensions))
	}
	if len(m.Roles.SecondaryMeasures) > 0 {
		fmt.Fprintf(&b, "- Secondary measures: %s\n", codeList(m.Roles.SecondaryMeasures))
	}
	if len(m.Roles.Ignore) > 0 {
		fmt.Fprintf(&b, "- Ignored: %s\n", codeList(m.Roles.Ignore))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Generated charts (%d)\n\n", len(m.Generated))
	for _, g := range m.Generated {
		fmt.Fprintf(&b, "### %s\n\n", g.Title)
		fmt.Fprintf(&b, "Type `%s`, score %.1f. Artifact: `%s`\n\n", g.Type, g.Score, filepath.Base(g.Artifact))
		if g.Rationale != "" {
			fmt.Fprintf(&b, "%s\n\n", g.Rationale)
		}
	}

	if len(m.Skipped) > 0 {
		fmt.Fprintf(&b, "## Skipped (%d)\n\n", len(m.Skipped))
		fmt.Fprintf(&b, "| Chart | Type | Score | Reason |\n|---|---|---|---|\n")
		for _, s := range m.Skipped {
			fmt.Fprintf(&b, "| %s | %s | %.1f | %s |\n", s.ID, s.Type, s.Score, s.Reason)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Selection: threshold %.0f, cap %d.\n", m.Selection.Threshold, m.Selection.Cap)

	return b.String()
}

func codeList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}
