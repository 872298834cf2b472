package server

import (
	"testing"
)

func toolByName(t *testing.T, name string) Tool {
	t.Helper()
	for _, tool := range GetToolDefinitions() {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("tool %s not found", name)
	return Tool{}
}

func TestGetToolDefinitions(t *testing.T) {
	expectedTools := []string{
		"pdf_page_info",
		"pdf_trace",
		"pdf_render_stage",
		"ocr_info",
	}

	for _, name := range expectedTools {
		toolByName(t, name)
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			if _, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok {
				t.Error("InputSchema properties should be a map")
			}
		})
	}
}

func TestToolDefinitions_RequiredPath(t *testing.T) {
	for _, name := range []string{"pdf_page_info", "pdf_trace", "pdf_render_stage"} {
		t.Run(name, func(t *testing.T) {
			required, ok := toolByName(t, name).InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			if len(required) != 1 || required[0] != "path" {
				t.Errorf("required: got %v, want [path]", required)
			}
		})
	}
}

func TestToolDefinitions_PipelineOverrides(t *testing.T) {
	for _, name := range []string{"pdf_trace", "pdf_render_stage"} {
		props := toolByName(t, name).InputSchema["properties"].(map[string]interface{})
		for key := range pipelineProperties() {
			if _, ok := props[key]; !ok {
				t.Errorf("%s: missing override %q", name, key)
			}
		}
		if _, ok := props["path"]; !ok {
			t.Errorf("%s: missing path", name)
		}
	}
}

func TestToolDefinitions_StageEnum(t *testing.T) {
	props := toolByName(t, "pdf_render_stage").InputSchema["properties"].(map[string]interface{})
	stage := props["stage"].(map[string]interface{})
	enum, ok := stage["enum"].([]string)
	if !ok {
		t.Fatal("stage enum should be a string slice")
	}

	want := map[string]bool{"render": true, "masked": true, "denoised": true, "binary": true, "skeleton": true, "preview": true}
	if len(enum) != len(want) {
		t.Fatalf("stage enum: got %v", enum)
	}
	for _, s := range enum {
		if !want[s] {
			t.Errorf("unexpected stage %q", s)
		}
	}
}
