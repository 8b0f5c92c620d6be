package llm

import (
	"strings"
	"testing"
)

func TestBuildSystemInstruction(t *testing.T) {
	got := BuildSystemInstruction("", "report.pdf", []int{1, 2, 3, 7})

	if !strings.Contains(got, `"report.pdf"`) {
		t.Errorf("Instruction should name the file, got:\n%s", got)
	}
	if !strings.Contains(got, "4 rendered page image(s)") {
		t.Errorf("Instruction should carry the image count, got:\n%s", got)
	}
	if !strings.Contains(got, "1-3,7") {
		t.Errorf("Instruction should carry the compact page list, got:\n%s", got)
	}
}

func TestBuildSystemInstruction_CustomTemplate(t *testing.T) {
	got := BuildSystemInstruction("Answer about {{file_name}}.", "a.pdf", []int{1})
	if got != "Answer about a.pdf." {
		t.Errorf("Custom template not rendered, got %q", got)
	}
}

func TestBuildSystemInstruction_BadTemplateFallsBack(t *testing.T) {
	got := BuildSystemInstruction("{{#unclosed}}", "a.pdf", []int{1})
	if !strings.Contains(got, `"a.pdf"`) {
		t.Errorf("Fallback instruction should still name the file, got %q", got)
	}
}
