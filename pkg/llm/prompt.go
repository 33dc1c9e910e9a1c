package llm

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
)

// PromptTemplate is a reloadable text/template loaded from disk. Renders are
// safe for concurrent use; Reload swaps the parsed template atomically under
// the lock.
type PromptTemplate struct {
	path  string
	funcs template.FuncMap

	mu     sync.RWMutex
	tmpl   *template.Template
	digest string
}

// NewPromptTemplate parses the template at path. funcs may be nil.
func NewPromptTemplate(path string, funcs template.FuncMap) (*PromptTemplate, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("prompt template path is empty")
	}
	pt := &PromptTemplate{path: path, funcs: funcs}
	if err := pt.reload(); err != nil {
		return nil, err
	}
	return pt, nil
}

// Render executes the template against data. Missing keys fail the render.
func (p *PromptTemplate) Render(data any) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.tmpl == nil {
		return "", fmt.Errorf("prompt template %q is not loaded", p.path)
	}
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute prompt template %q: %w", p.path, err)
	}
	return buf.String(), nil
}

// Reload re-reads the template file from disk.
func (p *PromptTemplate) Reload() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reload()
}

// Digest returns the hex sha256 of the last loaded template source.
func (p *PromptTemplate) Digest() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.digest
}

func (p *PromptTemplate) reload() error {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		return fmt.Errorf("read prompt template %q: %w", p.path, err)
	}

	tmpl := template.New(filepath.Base(p.path)).Option("missingkey=error")
	if len(p.funcs) > 0 {
		tmpl = tmpl.Funcs(p.funcs)
	}
	tmpl, err = tmpl.Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parse prompt template %q: %w", p.path, err)
	}

	sum := sha256.Sum256(raw)
	p.tmpl = tmpl
	p.digest = hex.EncodeToString(sum[:])
	return nil
}
