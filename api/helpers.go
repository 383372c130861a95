package api

import (
	"strings"

	mcp "github.com/mark3labs/mcp-go/mcp"
)

// readIntArgWithDefault reads an optional numeric argument. JSON numbers
// arrive as float64; integers passed by stricter clients come through as-is.
func readIntArgWithDefault(req mcp.CallToolRequest, key string, fallback int) int {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return fallback
	}
	switch value := args[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case int64:
		return int(value)
	default:
		return fallback
	}
}

func readBoolArg(req mcp.CallToolRequest, key string) bool {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return false
	}
	value, _ := args[key].(bool)
	return value
}

func readStringArg(req mcp.CallToolRequest, key string) string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return ""
	}
	value, _ := args[key].(string)
	return strings.TrimSpace(value)
}
