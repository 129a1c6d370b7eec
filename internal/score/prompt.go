// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/paper-tracker/pkg/types"
)

// userMessageTmpl embeds one paper's metadata in the evaluation request.
// The rubric travels separately as the system instruction.
var userMessageTmpl = template.Must(template.New("score").Parse(`Please evaluate this paper:

**Title**: {{.Title}}
**Journal**: {{.Journal}}
**Abstract**: {{.Abstract}}

Respond with JSON only, no other text, no markdown code blocks.`))

// renderUserMessage builds the per-paper message. A missing abstract is
// stated explicitly rather than left blank so the model does not invent one.
func renderUserMessage(p types.Paper) (string, error) {
	abstract := p.Abstract
	if abstract == "" {
		abstract = "No abstract available."
	}

	var buf bytes.Buffer
	err := userMessageTmpl.Execute(&buf, struct {
		Title, Journal, Abstract string
	}{p.Title, p.Journal, abstract})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
