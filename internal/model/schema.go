package model

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	schemaOnce sync.Once
	schemaErr  error
	schemas    map[Type]*gojsonschema.Schema
)

func loadSchemas() error {
	schemaOnce.Do(func() {
		schemas = make(map[Type]*gojsonschema.Schema, len(Types))
		for _, t := range Types {
			file := "schemas/" + string(t) + ".json"
			data, err := schemaFS.ReadFile(file)
			if err != nil {
				schemaErr = fmt.Errorf("read schema %s: %w", file, err)
				return
			}
			s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
			if err != nil {
				schemaErr = fmt.Errorf("compile schema %s: %w", file, err)
				return
			}
			schemas[t] = s
		}
	})
	return schemaErr
}

// SchemaJSON returns the raw JSON schema for t.
func SchemaJSON(t Type) ([]byte, error) {
	return schemaFS.ReadFile("schemas/" + string(t) + ".json")
}

// ValidateJSON checks a raw task document against the JSON schema of its type.
func ValidateJSON(t Type, raw []byte) error {
	if err := loadSchemas(); err != nil {
		return err
	}
	s, ok := schemas[t]
	if !ok {
		return &SchemaMismatchError{Type: string(t)}
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationError{Reason: "schema check failed", Wrapped: err}
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return &ValidationError{Reason: fmt.Sprintf("%s task does not match schema", t), Wrapped: errors.New(strings.Join(msgs, "; "))}
	}
	return nil
}
