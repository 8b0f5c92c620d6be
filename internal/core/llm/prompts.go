package llm

import (
	"fmt"

	"github.com/cbroglie/mustache"

	"github.com/docpilot/docchat/internal/core/pdf"
)

// DefaultSystemInstruction is the instruction sent with every question. It
// pins the model to the supplied page images so answers stay grounded in
// the document instead of general knowledge.
const DefaultSystemInstruction = `You are an expert document analyst answering questions about "{{file_name}}".
You are given {{image_count}} rendered page image(s) from that PDF (pages {{page_list}}).

Rules:
- Answer only from what is visible in the supplied pages. If the pages do not contain the answer, say so.
- When you cite a fact, mention the page number it appears on.
- Preserve numbers, units, and table values exactly as printed.
- Respond in Markdown: use headings, lists, and tables where they aid readability.`

// BuildSystemInstruction renders the system instruction for one request.
// Falls back to a plain instruction if the template fails to render.
func BuildSystemInstruction(template, fileName string, pages []int) string {
	if template == "" {
		template = DefaultSystemInstruction
	}

	data := map[string]interface{}{
		"file_name":   fileName,
		"image_count": len(pages),
		"page_list":   pdf.FormatSelection(pages),
	}

	rendered, err := mustache.Render(template, data)
	if err != nil {
		return fmt.Sprintf("You are an expert document analyst. Answer questions about %q using only the supplied page images, citing page numbers. Respond in Markdown.", fileName)
	}
	return rendered
}
