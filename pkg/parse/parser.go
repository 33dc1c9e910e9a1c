// Package parse extracts a reasoning trace and a final answer from free-form
// model output. Extraction runs an ordered chain of heuristics and a
// validation step that downgrades low-confidence results to a raw-text
// passthrough instead of failing.
package parse

import (
	"strings"

	"github.com/zeromicro/go-zero/core/logx"
)

// DegradedReasoning replaces the reasoning field when validation rejects an
// extracted pair.
const DegradedReasoning = "could not parse reasoning from response"

const (
	defaultMinReasoningLen = 100
	defaultMinAnswerLen    = 2

	// Upstream failure replies currently start with "Error getting"; the
	// forbidden-text check follows that phrasing and should be reconfigured
	// if the upstream wording changes.
	defaultForbiddenAnswerText = "Error getting"
)

// Result holds the two parts extracted from a model reply.
type Result struct {
	Reasoning string `json:"reasoning"`
	Answer    string `json:"answer"`
	// Degraded marks a validation fallback where Answer carries the full
	// trimmed raw text. Not part of the serialized record.
	Degraded bool `json:"-"`
}

// Logger receives diagnostic events emitted by the parser.
type Logger interface {
	Warnf(format string, args ...interface{})
}

type logxLogger struct{}

func (logxLogger) Warnf(format string, args ...interface{}) {
	logx.Slowf(format, args...)
}

// Parser segments raw model output into a Result. Immutable after
// construction and safe for concurrent use.
type Parser struct {
	minReasoningLen     int
	minAnswerLen        int
	forbiddenAnswerText string
	logger              Logger
}

// Option configures optional parser behaviour.
type Option func(*Parser)

// WithMinReasoningLen overrides the minimum accepted reasoning length.
func WithMinReasoningLen(n int) Option {
	return func(p *Parser) {
		p.minReasoningLen = n
	}
}

// WithMinAnswerLen overrides the minimum accepted answer length.
func WithMinAnswerLen(n int) Option {
	return func(p *Parser) {
		p.minAnswerLen = n
	}
}

// WithForbiddenAnswerText overrides the substring that disqualifies an
// extracted answer. An empty string disables the check.
func WithForbiddenAnswerText(s string) Option {
	return func(p *Parser) {
		p.forbiddenAnswerText = s
	}
}

// WithLogger injects a custom diagnostic logger.
func WithLogger(logger Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// New constructs a Parser with default thresholds.
func New(opts ...Option) *Parser {
	p := &Parser{
		minReasoningLen:     defaultMinReasoningLen,
		minAnswerLen:        defaultMinAnswerLen,
		forbiddenAnswerText: defaultForbiddenAnswerText,
		logger:              logxLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse extracts a validated Result from raw model output. It is total:
// every input string yields a Result, degraded when no extraction passes
// validation.
func (p *Parser) Parse(raw string) Result {
	var res Result
	for _, s := range strategies {
		if r, ok := s.extract(raw); ok {
			res = r
			break
		}
	}
	res = fillMissingAnswer(res, raw)
	return p.Validate(res, raw)
}

// Validate applies the minimum-content rules to an extracted pair. On
// violation it returns a degraded Result carrying the full trimmed raw text
// as the answer. Already-degraded results pass through unchanged, so the
// check is idempotent.
func (p *Parser) Validate(res Result, raw string) Result {
	if res.Degraded {
		return res
	}
	if p.accepts(res) {
		return res
	}
	p.logger.Warnf("parse: degrading result: reasoning_len=%d answer_len=%d raw_len=%d",
		len(res.Reasoning), len(res.Answer), len(raw))
	return Result{
		Reasoning: DegradedReasoning,
		Answer:    strings.TrimSpace(raw),
		Degraded:  true,
	}
}

func (p *Parser) accepts(res Result) bool {
	if len(res.Reasoning) < p.minReasoningLen || len(res.Answer) < p.minAnswerLen {
		return false
	}
	if p.forbiddenAnswerText != "" && strings.Contains(res.Answer, p.forbiddenAnswerText) {
		return false
	}
	return true
}

// fillMissingAnswer backstops the strategy chain: a non-blank input must
// never produce an empty answer, so the last non-blank line stands in.
func fillMissingAnswer(res Result, raw string) Result {
	if res.Answer != "" {
		return res
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return res
	}
	if !strings.Contains(trimmed, "\n") {
		res.Answer = trimmed
		return res
	}
	res.Answer = lastNonBlankLine(trimmed)
	return res
}

func lastNonBlankLine(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
