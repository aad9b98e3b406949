package ai

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"github.com/amishk599/resumegen/internal/model"
)

//go:embed prompts/resume_html.md
var resumePromptRaw string

// ResumeTemplate is the parsed instruction template for HTML rendering.
// Parsed once at package init; reused for every run.
var ResumeTemplate = template.Must(template.New("resume_html").Parse(resumePromptRaw))

// BuildRenderRequest renders tmpl around document and returns the immutable
// request shared by every attempt of a run.
func BuildRenderRequest(tmpl *template.Template, document string, maxTokens int) (model.RenderRequest, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Resume string }{Resume: document}); err != nil {
		return model.RenderRequest{}, fmt.Errorf("render prompt: %w", err)
	}
	return model.RenderRequest{
		Document:    document,
		Instruction: buf.String(),
		MaxTokens:   maxTokens,
	}, nil
}
