package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// strategy attempts one extraction heuristic against the full raw text.
// The chain accepts the first strategy that reports a match; later entries
// never see earlier failures.
type strategy struct {
	name    string
	extract func(text string) (Result, bool)
}

var strategies = []strategy{
	{name: "numbered-list", extract: extractNumberedList},
	{name: "bold-headers", extract: extractBoldHeaders},
	{name: "normalized-labels", extract: extractNormalizedLabels},
}

var (
	numberedListRe = regexp.MustCompile(`(?is)\d+\.\s*reasoning:\s*(.*?)\s*\d+\.\s*answer:\s*(.*)`)

	reasoningLabelRe = regexp.MustCompile(`(?i)\b(?:reasoning|analysis|thought process)\b\s*:?`)
	answerLabelRe    = regexp.MustCompile(`(?i)\b(?:final answer|answer|conclusion)\b\s*:?`)

	answerHeadingRe = regexp.MustCompile(`(?im)^#{2,3}\s*answer\b[^\n]*$`)

	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")
)

var errNoFencedBlock = errors.New("parse: no fenced block")

const (
	reasoningToken = "REASONING:"
	answerToken    = "ANSWER:"
)

// extractNumberedList handles replies shaped like
// "1. Reasoning: ...\n2. Answer: ...".
func extractNumberedList(text string) (Result, bool) {
	m := numberedListRe.FindStringSubmatch(text)
	if m == nil {
		return Result{}, false
	}
	return Result{
		Reasoning: strings.TrimSpace(m[1]),
		Answer:    strings.TrimSpace(m[2]),
	}, true
}

// extractBoldHeaders handles replies using literal **Reasoning** and
// **Answer** markers. The answer is empty when the second marker is absent.
func extractBoldHeaders(text string) (Result, bool) {
	const (
		reasoningMarker = "**Reasoning**"
		answerMarker    = "**Answer**"
	)
	if !strings.Contains(text, reasoningMarker) {
		return Result{}, false
	}
	rest := strings.Replace(text, reasoningMarker, "", 1)
	before, after, _ := strings.Cut(rest, answerMarker)
	return Result{
		Reasoning: strings.TrimSpace(before),
		Answer:    strings.TrimSpace(after),
	}, true
}

// extractNormalizedLabels canonicalizes label variants and splits on them.
// It always matches; its internal fallbacks end with a line split, so it is
// the terminal strategy of the chain.
func extractNormalizedLabels(text string) (Result, bool) {
	// An embedded fenced JSON block wins outright. The block body is read
	// from the original text so quoted JSON keys survive intact; a malformed
	// block falls through without surfacing the error.
	if res, err := extractFencedJSON(text); err == nil {
		return res, true
	}

	norm := reasoningLabelRe.ReplaceAllString(text, reasoningToken)
	norm = answerLabelRe.ReplaceAllString(norm, answerToken)

	var res Result
	if before, after, found := strings.Cut(norm, answerToken); found {
		res.Reasoning = stripReasoningToken(before)
		res.Answer = strings.TrimSpace(after)
	} else {
		res.Reasoning = stripReasoningToken(norm)
	}

	if res.Answer == "" {
		if loc := answerHeadingRe.FindStringIndex(norm); loc != nil {
			res.Reasoning = stripReasoningToken(norm[:loc[0]])
			res.Answer = strings.TrimSpace(norm[loc[1]:])
		}
	}

	if res.Answer == "" {
		if lines := nonBlankLines(text); len(lines) > 0 {
			res.Answer = lines[len(lines)-1]
			res.Reasoning = strings.TrimSpace(strings.Join(lines[:len(lines)-1], "\n"))
		}
	}

	return res, true
}

// extractFencedJSON decodes a triple-backtick block as a {reasoning, answer}
// JSON object. Modeled as an error-returning step so the caller can discard
// the failure explicitly instead of swallowing a panic or recover.
func extractFencedJSON(text string) (Result, error) {
	m := fencedBlockRe.FindStringSubmatch(text)
	if m == nil {
		return Result{}, errNoFencedBlock
	}
	var payload struct {
		Reasoning string `json:"reasoning"`
		Answer    string `json:"answer"`
	}
	body := strings.TrimSpace(m[1])
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return Result{}, fmt.Errorf("parse: decode fenced block: %w", err)
	}
	return Result{
		Reasoning: payload.Reasoning,
		Answer:    payload.Answer,
	}, nil
}

func stripReasoningToken(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, reasoningToken, ""))
}

func nonBlankLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
