package commands

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// TemplateVersion is the version written by EncodeTemplate.
const TemplateVersion = 1

var (
	// ErrInvalidTemplate indicates a template that is not valid YAML or has unknown fields.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrUnsupportedTemplate indicates a template of an unknown version.
	ErrUnsupportedTemplate = errors.New("unsupported template version")
)

// Template is the YAML file form of an interview.
type Template struct {
	Version   int   `yaml:"version"`
	Interview Draft `yaml:"interview"`
}

// DecodeTemplate parses a YAML template. Unknown fields are rejected.
func DecodeTemplate(data []byte) (Draft, error) {
	var tpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tpl); err != nil {
		return Draft{}, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	if tpl.Version != TemplateVersion {
		return Draft{}, fmt.Errorf("%w: %d", ErrUnsupportedTemplate, tpl.Version)
	}
	return tpl.Interview, nil
}

// EncodeTemplate renders a draft as a YAML template.
func EncodeTemplate(draft Draft) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(Template{Version: TemplateVersion, Interview: draft}); err != nil {
		return nil, fmt.Errorf("failed to encode template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
