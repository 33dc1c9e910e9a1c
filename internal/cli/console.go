package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	headerWidth   = 80
	sectionWidth  = 78
	resultBegin   = "=== RESULT ==="
	resultEnd     = "=== END RESULT ==="
	sectionIndent = "│ "
)

// Console renders boxed headers and sections to a writer. It also emits the
// machine-readable result block framed by marker lines so wrapping scripts can
// extract the JSON payload without parsing the decorated output.
type Console struct {
	w io.Writer
}

// NewConsole wraps w in a Console.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Header prints a centered banner inside a double-line box.
func (c *Console) Header(text string) {
	inner := headerWidth - 2
	fmt.Fprintln(c.w)
	fmt.Fprintln(c.w, "╔"+strings.Repeat("═", inner)+"╗")

	n := len([]rune(text))
	if n > inner {
		text = string([]rune(text)[:inner])
		n = inner
	}
	left := (inner - n) / 2
	right := inner - left - n
	fmt.Fprintln(c.w, "║"+strings.Repeat(" ", left)+text+strings.Repeat(" ", right)+"║")
	fmt.Fprintln(c.w, "╚"+strings.Repeat("═", inner)+"╝")
	fmt.Fprintln(c.w)
}

// Section prints a titled block with each content line prefixed by a bar.
func (c *Console) Section(title, content string) {
	dashes := sectionWidth - 3 - len([]rune(title))
	if dashes < 0 {
		dashes = 0
	}
	fmt.Fprintln(c.w, "╭─── "+title+" "+strings.Repeat("─", dashes))
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintln(c.w, sectionIndent+line)
	}
	fmt.Fprintln(c.w, "╰"+strings.Repeat("─", sectionWidth))
}

// VerificationPayload carries the cross-check stage's contribution to the
// result block.
type VerificationPayload struct {
	Model  string `json:"model"`
	Answer string `json:"answer"`
}

// ResultPayload is the JSON document emitted between the result markers.
type ResultPayload struct {
	Question     string               `json:"question"`
	Model        string               `json:"model"`
	Reasoning    string               `json:"reasoning"`
	Answer       string               `json:"answer"`
	Verification *VerificationPayload `json:"verification,omitempty"`
}

// WriteResult emits the payload as indented JSON framed by marker lines.
func (c *Console) WriteResult(payload ResultPayload) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result payload: %w", err)
	}
	fmt.Fprintln(c.w, resultBegin)
	fmt.Fprintln(c.w, string(data))
	fmt.Fprintln(c.w, resultEnd)
	return nil
}

// ExtractResult pulls the JSON payload back out of console output. It is the
// inverse of WriteResult and is what wrapping scripts should use.
func ExtractResult(output string) (*ResultPayload, error) {
	start := strings.Index(output, resultBegin)
	end := strings.Index(output, resultEnd)
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("result markers not found in output")
	}
	body := strings.TrimSpace(output[start+len(resultBegin) : end])

	var payload ResultPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal result payload: %w", err)
	}
	return &payload, nil
}

// Checkmark renders a presence flag the way the status section expects.
func Checkmark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
