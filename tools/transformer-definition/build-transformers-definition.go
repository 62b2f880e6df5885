// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/xataio/anonymiser/internal/json"
	"github.com/xataio/anonymiser/pkg/transformers"
	"github.com/xataio/anonymiser/pkg/transformers/builder"
)

type Result struct {
	Name         string        `json:"name"`
	Transformers []Transformer `json:"transformers"`
}

type Transformer struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  []Parameter `json:"parameters"`
}

type Parameter struct {
	Name          string `json:"name"`
	SupportedType string `json:"supported_type"`
	Default       any    `json:"default"`
	Required      bool   `json:"required"`
	Description   string `json:"description,omitempty"`
}

func main() {
	log.Println("Generating transformers definition...")

	transformersList, err := extractTransformers()
	if err != nil {
		log.Fatalf("failed to extract transformers: %v", err)
	}

	result := Result{
		Name:         "transformers",
		Transformers: transformersList,
	}

	if err := writeJSONToFile("transformers-definition.json", result); err != nil {
		log.Fatalf("failed to write JSON to file: %v", err)
	}

	log.Println("Transformers definition generated successfully")
}

func extractTransformers() ([]Transformer, error) {
	names := builder.Names()
	transformersList := make([]Transformer, 0, len(names))
	for _, name := range names {
		def, err := builder.Definition(name)
		if err != nil {
			return nil, err
		}
		transformersList = append(transformersList, Transformer{
			Name:        string(name),
			Description: def.Description,
			Parameters:  extractParameters(def.Parameters),
		})
	}
	return transformersList, nil
}

func extractParameters(params []transformers.Parameter) []Parameter {
	parameters := make([]Parameter, 0, len(params))
	for _, param := range params {
		parameters = append(parameters, Parameter{
			Name:          param.Name,
			SupportedType: param.SupportedType,
			Default:       param.Default,
			Required:      param.Required,
			Description:   param.Description,
		})
	}
	return parameters
}

func writeJSONToFile(filename string, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	if err := os.WriteFile(filename, append(jsonData, '\n'), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
