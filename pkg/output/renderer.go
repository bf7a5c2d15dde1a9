// Package output renders command results for the terminal. Templates emit
// text with style tags which are expanded with lipgloss, or stripped when
// colors are off.
package output

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/arthur-debert/jiek/pkg/build"
	"github.com/arthur-debert/jiek/pkg/logging"
	"github.com/arthur-debert/jiek/pkg/output/styles"
	"github.com/arthur-debert/jiek/pkg/types"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Renderer writes styled output to a writer
type Renderer struct {
	templates *template.Template
	writer    io.Writer
	styles    styles.Registry
	noColor   bool
}

// NewRenderer creates a Renderer. With noColor set all style tags are
// stripped.
func NewRenderer(w io.Writer, noColor bool) (*Renderer, error) {
	log := logging.GetLogger("output")
	if !noColor {
		r := lipgloss.NewRenderer(w)
		lipgloss.SetDefaultRenderer(r)
		log.Debug().Str("colorProfile", fmt.Sprintf("%v", r.ColorProfile())).Msg("Color output enabled")
	}

	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{
		templates: tmpl,
		writer:    w,
		styles:    styles.Default(),
		noColor:   noColor,
	}, nil
}

// WithStyles replaces the style registry
func (r *Renderer) WithStyles(reg styles.Registry) *Renderer {
	r.styles = reg
	return r
}

type packageView struct {
	Name     string
	Failed   bool
	Error    string
	Summary  string
	Duration string
	Files    []string
	Manifest bool
	Warnings []string
}

type buildView struct {
	Packages []packageView
	Total    int
	Failed   int
}

func newBuildView(result *build.Result) buildView {
	view := buildView{Total: len(result.Packages)}
	for _, p := range result.Packages {
		pv := packageView{
			Name:     p.Name,
			Duration: p.Duration.Round(time.Millisecond).String(),
			Files:    p.Files,
			Manifest: p.ManifestWritten,
			Warnings: p.Warnings,
		}
		if p.Err != nil {
			pv.Failed = true
			pv.Error = p.Err.Error()
			view.Failed++
		}
		switch {
		case len(p.Files) == 1:
			pv.Summary = "1 file"
		case len(p.Files) > 1:
			pv.Summary = fmt.Sprintf("%d files", len(p.Files))
		case p.Plan != nil:
			pv.Summary = fmt.Sprintf("%d exports", p.Plan.Exports.Len())
		default:
			pv.Summary = "nothing to build"
		}
		view.Packages = append(view.Packages, pv)
	}
	return view
}

// RenderBuild writes a per package summary of a build
func (r *Renderer) RenderBuild(result *build.Result) error {
	var buf bytes.Buffer
	if err := r.templates.ExecuteTemplate(&buf, "build.tmpl", newBuildView(result)); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}
	return r.write(strings.TrimRight(buf.String(), "\n"))
}

// RenderJSON writes v as indented JSON, keeping key order and "<", ">"
func (r *Renderer) RenderJSON(v any) error {
	data, err := types.MarshalIndent(v, "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.writer, string(data))
	return err
}

// RenderError writes err in the error style
func (r *Renderer) RenderError(err error) error {
	return r.write(fmt.Sprintf("<Error>Error:</Error> %s", err))
}

// RenderMessage writes message in the named style
func (r *Renderer) RenderMessage(style, message string) error {
	return r.write(fmt.Sprintf("<%s>%s</%s>", style, message, style))
}

func (r *Renderer) write(s string) error {
	if r.noColor {
		s = StripTags(s)
	} else {
		s = ExpandTags(s, r.styles)
	}
	_, err := fmt.Fprintln(r.writer, s)
	return err
}
