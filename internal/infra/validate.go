package infra

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

// Validate checks a descriptor against the embedded JSON schema.
func Validate(desc *Descriptor) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	documentLoader := gojsonschema.NewGoLoader(descriptorDocument(desc))

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validate descriptor schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, schemaErr := range result.Errors() {
		errs = append(errs, schemaErr.String())
	}
	sort.Strings(errs)

	return fmt.Errorf("descriptor schema validation failed: %s", strings.Join(errs, "; "))
}

// descriptorDocument renders the struct into the plain map shape the
// schema loader expects.
func descriptorDocument(desc *Descriptor) map[string]any {
	doc := map[string]any{
		"name": desc.Name,
		"registered_model": map[string]any{
			"name":        desc.RegisteredModel.Name,
			"target_type": desc.RegisteredModel.TargetType,
			"target_name": desc.RegisteredModel.TargetName,
		},
		"deployment": map[string]any{
			"deploy":       desc.Deployment.Deploy,
			"min_computes": desc.Deployment.MinComputes,
			"max_computes": desc.Deployment.MaxComputes,
		},
	}
	env := map[string]any{}
	if desc.ExecutionEnvironment.ID != "" {
		env["id"] = desc.ExecutionEnvironment.ID
	}
	if desc.ExecutionEnvironment.DockerContext != "" {
		env["docker_context"] = desc.ExecutionEnvironment.DockerContext
	}
	if desc.ExecutionEnvironment.DockerImage != "" {
		env["docker_image"] = desc.ExecutionEnvironment.DockerImage
	}
	if len(env) > 0 {
		doc["execution_environment"] = env
	}
	return doc
}
