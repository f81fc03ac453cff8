package schema

// JSONSchema projects s into a JSON Schema document in the strict form
// accepted by OpenAI-compatible structured output: every object lists all
// of its properties as required, forbids additional properties, and
// expresses optional fields as nullable.
func (s *Schema) JSONSchema() map[string]any {
	return project(s, false)
}

func project(s *Schema, nullable bool) map[string]any {
	node := map[string]any{}

	if nullable {
		node["type"] = []any{string(s.Kind), "null"}
	} else {
		node["type"] = string(s.Kind)
	}
	if s.Description != "" {
		node["description"] = s.Description
	}

	switch s.Kind {
	case KindArray:
		if s.Items != nil {
			node["items"] = project(s.Items, false)
		}
	case KindObject:
		properties := make(map[string]any, len(s.Fields))
		required := make([]any, 0, len(s.Fields))
		for _, f := range s.Fields {
			properties[f.Name] = project(f.Schema, f.Optional)
			required = append(required, f.Name)
		}
		node["properties"] = properties
		node["required"] = required
		node["additionalProperties"] = false
	}

	return node
}
