// Package responder renders the canned answer for a classified query.
package responder

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"mosdacbot/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var defaultTemplatesYAML []byte

// Metadata keys attached to every response
const (
	MetaIntent       = "intent"
	MetaConfidence   = "confidence"
	MetaEntities     = "entities"
	MetaTemplate     = "template_id"
	MetaSpatialQuery = "spatial_query"
)

// TemplateSpec is a response body and its flags as authored in YAML
type TemplateSpec struct {
	Body    string `yaml:"body"`
	Spatial bool   `yaml:"spatial,omitempty"`
}

type templateFile struct {
	Templates map[string]TemplateSpec `yaml:"templates"`
}

// templateData is what a response body can refer to
type templateData struct {
	Intent     string
	Confidence float64
	Entities   []string
}

// samples exercise every branch a body may take on entities
var samples = []templateData{
	{Intent: "sample", Confidence: 0.9, Entities: []string{"INSAT-3D", "Imager Data"}},
	{Intent: "sample", Confidence: 0.5, Entities: []string{}},
}

type compiled struct {
	tmpl    *template.Template
	spatial bool
}

// Composer maps template ids to rendered response bodies
type Composer struct {
	templates map[string]compiled
}

var funcs = template.FuncMap{
	"join":    strings.Join,
	"percent": func(f float64) string { return fmt.Sprintf("%.0f%%", f*100) },
}

// NewComposer compiles the given templates and renders each against sample
// data, so a body that refers to an unknown field fails here rather than
// when a query is answered. A "generic" template is required because it
// answers unknown template ids.
func NewComposer(specs map[string]TemplateSpec) (*Composer, error) {
	if _, ok := specs[domain.TemplateGeneric]; !ok {
		return nil, fmt.Errorf("template %q required", domain.TemplateGeneric)
	}

	c := &Composer{templates: make(map[string]compiled, len(specs))}
	for id, spec := range specs {
		t, err := template.New(id).Funcs(funcs).Option("missingkey=error").Parse(spec.Body)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", id, err)
		}
		for _, data := range samples {
			if err := t.Execute(io.Discard, data); err != nil {
				return nil, fmt.Errorf("template %q: %w", id, err)
			}
		}
		c.templates[id] = compiled{tmpl: t, spatial: spec.Spatial}
	}
	return c, nil
}

// DefaultComposer returns a composer over the built-in templates
func DefaultComposer() *Composer {
	specs, err := ParseTemplates(defaultTemplatesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded templates: %v", err))
	}
	c, err := NewComposer(specs)
	if err != nil {
		panic(fmt.Sprintf("embedded templates: %v", err))
	}
	return c
}

// LoadTemplates reads template specs from a YAML file
func LoadTemplates(path string) (map[string]TemplateSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return ParseTemplates(data)
}

// ParseTemplates decodes template specs from YAML
func ParseTemplates(data []byte) (map[string]TemplateSpec, error) {
	var tf templateFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if len(tf.Templates) == 0 {
		return nil, fmt.Errorf("parse templates: no templates defined")
	}
	return tf.Templates, nil
}

// Compose renders the body for result.TemplateID and attaches metadata that
// mirrors the classifier and extractor output.
func (c *Composer) Compose(result domain.ClassificationResult) (domain.Response, error) {
	tc, ok := c.templates[result.TemplateID]
	if !ok {
		tc = c.templates[domain.TemplateGeneric]
	}

	entities := result.Entities
	if entities == nil {
		entities = []string{}
	}

	var buf bytes.Buffer
	err := tc.tmpl.Execute(&buf, templateData{
		Intent:     result.Intent,
		Confidence: result.Confidence,
		Entities:   entities,
	})
	if err != nil {
		return domain.Response{}, fmt.Errorf("render %q: %w", result.TemplateID, err)
	}

	meta := map[string]any{
		MetaIntent:     result.Intent,
		MetaConfidence: result.Confidence,
		MetaEntities:   entities,
		MetaTemplate:   result.TemplateID,
	}
	if tc.spatial {
		meta[MetaSpatialQuery] = true
	}

	return domain.Response{
		Content:  strings.TrimSpace(buf.String()),
		Metadata: meta,
	}, nil
}

// Has reports whether a template id is defined
func (c *Composer) Has(id string) bool {
	_, ok := c.templates[id]
	return ok
}
