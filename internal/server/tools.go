package server

import "github.com/ironsheep/pdf2cad/internal/pipeline"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is shared by every tool that reads a drawing.
var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to a PDF, a raster image, or a directory of raster images",
}

// pipelineProperties are the per-call overrides accepted by the tracing tools.
// Omitted fields keep the server's configured defaults.
func pipelineProperties() map[string]interface{} {
	return map[string]interface{}{
		"output_scale": map[string]interface{}{
			"type":        "number",
			"description": "Multiplier applied to every output coordinate (e.g. 0.3528 converts points to mm)",
		},
		"oversample": map[string]interface{}{
			"type":        "integer",
			"description": "Raster pixels per source unit (PDF point or image pixel) when rendering pages",
			"minimum":     1,
		},
		"simplify": map[string]interface{}{
			"type":        "number",
			"description": "Polyline tolerance as a fraction of each contour's perimeter, (0, 0.1]",
		},
		"denoise": map[string]interface{}{
			"type":        "integer",
			"description": "Median filter kernel size, 0 disables",
			"minimum":     0,
		},
		"threshold_method": map[string]interface{}{
			"type": "string",
			"enum": []string{"gaussian", "mean"},
		},
		"thinning": map[string]interface{}{
			"type": "string",
			"enum": []string{"zhang-suen", "none"},
		},
		"text": map[string]interface{}{
			"type":        "boolean",
			"description": "Detect text, emit it as annotations and mask it before tracing",
		},
		"text_confidence": map[string]interface{}{
			"type":        "integer",
			"description": "Minimum text confidence, 0-100",
			"minimum":     0,
			"maximum":     100,
		},
		"text_source": map[string]interface{}{
			"type": "string",
			"enum": []string{"auto", "ocr", "pdf"},
		},
	}
}

func stageNames() []string {
	names := make([]string, len(pipeline.Stages))
	for i, s := range pipeline.Stages {
		names[i] = string(s)
	}
	return names
}

func withProperties(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	for k, v := range extra {
		base[k] = v
	}
	return base
}

// GetToolDefinitions returns all available tool definitions
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "pdf_page_info",
			Description: "List the pages of a drawing with their size in source units (points for PDF, pixels for images) and the raster size they render to.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"oversample": map[string]interface{}{
						"type":        "integer",
						"description": "Raster pixels per source unit used to report render sizes (default: the configured oversample for PDF points or image pixels)",
						"minimum":     1,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "pdf_trace",
			Description: "Trace every page of a scanned drawing into polylines and write a DXF or SVG file. Returns counts and page warnings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(pipelineProperties(), map[string]interface{}{
					"path": pathProperty,
					"output": map[string]interface{}{
						"type":        "string",
						"description": "Output file path (default: input path with the format's extension)",
					},
					"format": map[string]interface{}{
						"type": "string",
						"enum": []string{"dxf", "svg"},
					},
					"inline": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the drawing in the response instead of writing a file",
						"default":     false,
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "pdf_render_stage",
			Description: "Run one page through the pipeline and return an intermediate raster as a base64 PNG, for tuning thresholds and masking.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withProperties(pipelineProperties(), map[string]interface{}{
					"path": pathProperty,
					"page": map[string]interface{}{
						"type":        "integer",
						"description": "One-based page number (default 1)",
						"minimum":     1,
					},
					"stage": map[string]interface{}{
						"type":        "string",
						"enum":        stageNames(),
						"description": "Which raster to return (default preview)",
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Optional crop of the returned raster, in raster pixels",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "ocr_info",
			Description: "Report whether OCR text detection is available in this build and which Tesseract version it uses.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code (default: the configured language)",
					},
				},
			},
		},
	}
}
