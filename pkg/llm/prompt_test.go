package llm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"text/template"

	"github.com/stretchr/testify/assert"
)

func TestPromptTemplateRender(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "reasoner.tmpl")
	err := os.WriteFile(templatePath, []byte("Question: {{ .Question }} ({{ toUpper .Style }})"), 0o600)
	assert.NoError(t, err, "write template should succeed")

	funcs := template.FuncMap{
		"toUpper": strings.ToUpper,
	}
	tpl, err := NewPromptTemplate(templatePath, funcs)
	assert.NoError(t, err, "NewPromptTemplate should not error")

	out, err := tpl.Render(map[string]any{"Question": "why?", "Style": "terse"})
	assert.NoError(t, err, "Render should not error")
	assert.Equal(t, "Question: why? (TERSE)", out, "rendered output should match expected")
}

func TestPromptTemplateMissingKey(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "strict.tmpl")
	err := os.WriteFile(templatePath, []byte("{{ .Missing }}"), 0o600)
	assert.NoError(t, err, "write template should succeed")

	tpl, err := NewPromptTemplate(templatePath, nil)
	assert.NoError(t, err, "NewPromptTemplate should not error")

	_, err = tpl.Render(map[string]any{})
	assert.Error(t, err, "missing keys should fail the render")
}

func TestPromptTemplateReload(t *testing.T) {
	dir := t.TempDir()
	templatePath := filepath.Join(dir, "reload.tmpl")
	err := os.WriteFile(templatePath, []byte("v1"), 0o600)
	assert.NoError(t, err, "write template should succeed")

	tpl, err := NewPromptTemplate(templatePath, nil)
	assert.NoError(t, err, "NewPromptTemplate should not error")

	out, err := tpl.Render(nil)
	assert.NoError(t, err, "Render should not error")
	assert.Equal(t, "v1", out, "initial render should be v1")

	digestV1 := tpl.Digest()
	assert.NotEmpty(t, digestV1, "digest should not be empty")

	err = os.WriteFile(templatePath, []byte("v2"), 0o600)
	assert.NoError(t, err, "rewrite template should succeed")

	err = tpl.Reload()
	assert.NoError(t, err, "Reload should not error")

	out, err = tpl.Render(nil)
	assert.NoError(t, err, "Render should not error after reload")
	assert.Equal(t, "v2", out, "render should pick up new content")
	assert.NotEqual(t, digestV1, tpl.Digest(), "digest should change after reload")
}

func TestPromptTemplateEmptyPath(t *testing.T) {
	_, err := NewPromptTemplate("  ", nil)
	assert.Error(t, err, "blank path should be rejected")
}
