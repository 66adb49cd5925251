package graph

import "github.com/graphql-go/graphql"

func pageArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"skip": &graphql.ArgumentConfig{Type: graphql.Int},
		"take": &graphql.ArgumentConfig{Type: graphql.Int},
	}
}

func intArg(args map[string]any, name string) int {
	if v, ok := args[name].(int); ok {
		return v
	}
	return 0
}

func idArg(args map[string]any, name string) int64 {
	return int64(intArg(args, name))
}

func stringArg(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

// input returns the input object argument, which graphql-go decodes to a map.
func input(args map[string]any, name string) map[string]any {
	m, _ := args[name].(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}

// optString returns nil when the field was omitted or null.
func optString(m map[string]any, name string) *string {
	s, ok := m[name].(string)
	if !ok {
		return nil
	}
	return &s
}

func optBool(m map[string]any, name string) *bool {
	b, ok := m[name].(bool)
	if !ok {
		return nil
	}
	return &b
}

// stringList returns nil when the field was omitted so callers can tell
// "not supplied" from "empty".
func stringList(m map[string]any, name string) []string {
	raw, ok := m[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
