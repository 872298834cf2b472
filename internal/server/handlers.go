package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/ironsheep/pdf2cad/internal/cad"
	"github.com/ironsheep/pdf2cad/internal/config"
	"github.com/ironsheep/pdf2cad/internal/detection"
	"github.com/ironsheep/pdf2cad/internal/imaging"
	"github.com/ironsheep/pdf2cad/internal/ocr"
	"github.com/ironsheep/pdf2cad/internal/pipeline"
	"github.com/ironsheep/pdf2cad/internal/source"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "pdf_trace", "pdf_page_info").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token. When set, pdf_trace sends
	// notifications/progress after every page.
	Meta struct {
		ProgressToken interface{} `json:"progressToken,omitempty"`
	} `json:"_meta"`
}

// MCPNotification is a JSON-RPC message without an id.
type MCPNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}
	if len(params.Arguments) == 0 {
		params.Arguments = json.RawMessage("{}")
	}

	var progress pipeline.ProgressFunc
	if token := params.Meta.ProgressToken; token != nil && s.notify != nil {
		progress = func(completed, total int) {
			s.notify(MCPNotification{
				JSONRPC: "2.0",
				Method:  "notifications/progress",
				Params: map[string]interface{}{
					"progressToken": token,
					"progress":      completed,
					"total":         total,
				},
			})
		}
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments, progress)
	if err != nil {
		s.logger.Warn("tool failed", "tool", params.Name, "error", err)
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage, progress pipeline.ProgressFunc) (interface{}, error) {
	switch name {
	case "pdf_page_info":
		return s.handlePageInfo(args)
	case "pdf_trace":
		return s.handleTrace(ctx, args, progress)
	case "pdf_render_stage":
		return s.handleRenderStage(ctx, args)
	case "ocr_info":
		return s.handleOCRInfo(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// pipelineArgs are optional overrides of the server's configured options.
type pipelineArgs struct {
	OutputScale     *float64 `json:"output_scale"`
	Oversample      *int     `json:"oversample"`
	Simplify        *float64 `json:"simplify"`
	Denoise         *int     `json:"denoise"`
	ThresholdMethod *string  `json:"threshold_method"`
	Thinning        *string  `json:"thinning"`
	Text            *bool    `json:"text"`
	TextConfidence  *int     `json:"text_confidence"`
	TextSource      *string  `json:"text_source"`
	Format          *string  `json:"format"`
}

func (a pipelineArgs) apply(opts config.Options) config.Options {
	if a.OutputScale != nil {
		opts.OutputScale = *a.OutputScale
	}
	if a.Oversample != nil {
		opts.RenderOversample = *a.Oversample
		opts.ImageOversample = *a.Oversample
	}
	if a.Simplify != nil {
		opts.SimplifyFactor = *a.Simplify
	}
	if a.Denoise != nil {
		opts.DenoiseStrength = *a.Denoise
	}
	if a.ThresholdMethod != nil {
		opts.ThresholdMethod = *a.ThresholdMethod
	}
	if a.Thinning != nil {
		opts.Thinning = *a.Thinning
	}
	if a.Text != nil {
		opts.TextRecognitionEnabled = *a.Text
	}
	if a.TextConfidence != nil {
		opts.TextConfidenceThreshold = *a.TextConfidence
	}
	if a.TextSource != nil {
		opts.TextSource = *a.TextSource
	}
	if a.Format != nil {
		opts.Format = *a.Format
	}
	// Previews are a CLI concern; tool calls return rasters directly.
	opts.PreviewDir = ""
	return opts
}

// warningInfo is a PageError as reported to clients.
type warningInfo struct {
	Page  int    `json:"page"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func warningInfos(errs []*pipeline.PageError) []warningInfo {
	out := make([]warningInfo, 0, len(errs))
	for _, e := range errs {
		out = append(out, warningInfo{Page: e.Page, Kind: e.Kind.String(), Error: e.Err.Error()})
	}
	return out
}

func (s *Server) openDocument(path string) (source.Document, error) {
	if path == "" {
		return nil, errors.New("path is required")
	}
	return source.Open(path, s.cache)
}

// === Page information ===

type pageInfoArgs struct {
	Path       string `json:"path"`
	Oversample int    `json:"oversample"`
}

type pageInfo struct {
	Page         int     `json:"page"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	RenderWidth  int     `json:"render_width"`
	RenderHeight int     `json:"render_height"`

	// Image is set for raster sources.
	Image *imaging.ImageInfo `json:"image,omitempty"`
	Error string             `json:"error,omitempty"`
}

type pageInfoResult struct {
	Path       string     `json:"path"`
	Unit       string     `json:"unit"`
	PageCount  int        `json:"page_count"`
	Oversample int        `json:"oversample"`
	TextLayer  bool       `json:"text_layer"`
	Pages      []pageInfo `json:"pages"`
}

func (s *Server) handlePageInfo(args json.RawMessage) (interface{}, error) {
	var a pageInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Oversample < 0 {
		return nil, fmt.Errorf("oversample must be >= 1, got %d", a.Oversample)
	}

	doc, err := s.openDocument(a.Path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if a.Oversample == 0 {
		a.Oversample = s.opts.Oversample(doc.Unit() == source.UnitPixel)
	}

	result := &pageInfoResult{
		Path:       a.Path,
		Unit:       doc.Unit(),
		PageCount:  doc.PageCount(),
		Oversample: a.Oversample,
		Pages:      make([]pageInfo, 0, doc.PageCount()),
	}
	if p, ok := doc.(*source.PDFDocument); ok {
		result.TextLayer = p.HasTextLayer()
	}
	var paths []string
	if d, ok := doc.(*source.ImageDocument); ok {
		paths = d.Paths()
	}

	for i := 0; i < doc.PageCount(); i++ {
		info := pageInfo{Page: i + 1}
		page, err := doc.Page(i)
		if err == nil {
			info.Width, info.Height, err = page.Size()
		}
		if err != nil {
			info.Error = err.Error()
			result.Pages = append(result.Pages, info)
			continue
		}
		info.RenderWidth, info.RenderHeight = imaging.RenderSize(info.Width, info.Height, float64(a.Oversample))
		if i < len(paths) {
			if meta, err := imaging.LoadImageInfo(s.cache, paths[i]); err == nil {
				info.Image = meta
			}
		}
		result.Pages = append(result.Pages, info)
	}

	return result, nil
}

// === Tracing ===

type traceArgs struct {
	pipelineArgs
	Path   string `json:"path"`
	Output string `json:"output"`
	Inline bool   `json:"inline"`
}

type traceResult struct {
	Path      string        `json:"path"`
	Output    string        `json:"output,omitempty"`
	Format    string        `json:"format"`
	Pages     int           `json:"pages"`
	Completed int           `json:"completed"`
	Failed    int           `json:"failed"`
	Polylines int           `json:"polylines"`
	Texts     int           `json:"texts"`
	Bytes     int           `json:"bytes"`
	Empty     bool          `json:"empty"`
	Bounds    []cad.Point   `json:"bounds,omitempty"`
	Warnings  []warningInfo `json:"warnings"`

	// Drawing and MimeType are set for inline requests.
	Drawing  string `json:"drawing,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

func (s *Server) handleTrace(ctx context.Context, args json.RawMessage, progress pipeline.ProgressFunc) (interface{}, error) {
	var a traceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	conv, err := pipeline.New(a.apply(s.opts), pipeline.WithLogger(s.logger), pipeline.WithProgress(progress))
	if err != nil {
		return nil, err
	}
	drawing, err := cad.NewDrawingForFormat(conv.Options().Format)
	if err != nil {
		return nil, err
	}

	doc, err := s.openDocument(a.Path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	res, err := conv.Convert(ctx, doc, drawing)
	result := &traceResult{
		Path:      a.Path,
		Format:    conv.Options().Format,
		Pages:     res.Pages,
		Completed: res.Completed,
		Failed:    res.Failed,
		Polylines: res.Polylines,
		Texts:     res.Texts,
		Warnings:  warningInfos(res.Warnings),
	}
	if errors.Is(err, pipeline.ErrEmptyResult) {
		result.Empty = true
		return result, nil
	}
	if err != nil {
		return nil, err
	}

	result.Bytes = len(res.Output)
	if lo, hi, ok := drawing.Bounds(); ok {
		result.Bounds = []cad.Point{lo, hi}
	}

	if a.Inline {
		result.Drawing = string(res.Output)
		result.MimeType = drawing.Encoder().MimeType()
		return result, nil
	}

	out := a.Output
	if out == "" {
		out = source.OutputPath(a.Path, "", drawing.Encoder().Extension())
	}
	if err := os.WriteFile(out, res.Output, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write drawing: %w", err)
	}
	result.Output = out
	return result, nil
}

// === Stage rasters ===

type renderStageArgs struct {
	pipelineArgs
	Path   string            `json:"path"`
	Page   int               `json:"page"`
	Stage  string            `json:"stage"`
	Region *detection.Bounds `json:"region"`
}

type renderStageResult struct {
	Page      int                   `json:"page"`
	Stage     string                `json:"stage"`
	Width     int                   `json:"width"`
	Height    int                   `json:"height"`
	Polylines int                   `json:"polylines"`
	Texts     int                   `json:"texts"`
	Masked    int                   `json:"masked_regions"`
	Rejected  int                   `json:"rejected_text"`
	Strokes   int                   `json:"skeleton_components"`
	Ink       imaging.MaskStats     `json:"ink"`
	Warnings  []warningInfo         `json:"warnings"`
	ElapsedMS int64                 `json:"elapsed_ms"`
	Image     *imaging.EncodedImage `json:"image"`
}

func (s *Server) handleRenderStage(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a renderStageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Page == 0 {
		a.Page = 1
	}
	if a.Stage == "" {
		a.Stage = string(pipeline.StagePreview)
	}
	if !validStage(a.Stage) {
		return nil, fmt.Errorf("unknown stage %q (must be one of: %s)", a.Stage, strings.Join(stageNames(), ", "))
	}

	conv, err := pipeline.New(a.apply(s.opts), pipeline.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	doc, err := s.openDocument(a.Path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	page, err := doc.Page(a.Page - 1)
	if err != nil {
		return nil, err
	}
	out := conv.ProcessPage(ctx, page, a.Page-1, conv.Oversample(doc.Unit()), true)
	if out.Err != nil {
		return nil, out.Err
	}

	img, ok := out.Images[pipeline.Stage(a.Stage)]
	if !ok {
		return nil, fmt.Errorf("stage %q was not produced", a.Stage)
	}
	if a.Region != nil {
		if img, err = cropStage(img, a.Region.Rect()); err != nil {
			return nil, err
		}
	}
	encoded, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	return &renderStageResult{
		Page:      a.Page,
		Stage:     a.Stage,
		Width:     out.Width,
		Height:    out.Height,
		Polylines: len(out.Polylines),
		Texts:     len(out.Annotations),
		Masked:    len(out.MaskRects),
		Rejected:  out.Rejected,
		Strokes:   out.Components,
		Ink:       out.Ink,
		Warnings:  warningInfos(out.Warnings),
		ElapsedMS: out.Elapsed.Milliseconds(),
		Image:     encoded,
	}, nil
}

func validStage(name string) bool {
	for _, s := range pipeline.Stages {
		if string(s) == name {
			return true
		}
	}
	return false
}

// cropStage cuts r out of a stage raster. Color previews keep their colors.
func cropStage(img image.Image, r image.Rectangle) (image.Image, error) {
	if r.Empty() {
		return nil, fmt.Errorf("crop region %v is empty", r)
	}
	if rgba, ok := img.(*image.RGBA); ok {
		if !r.In(rgba.Rect) {
			return nil, fmt.Errorf("crop region %v outside page bounds %v", r, rgba.Rect)
		}
		return rgba.SubImage(r), nil
	}
	p, err := imaging.Crop(imaging.PageFromImage(img, 1), r)
	if err != nil {
		return nil, err
	}
	return p.Gray, nil
}

// === OCR ===

type ocrInfoArgs struct {
	Language string `json:"language"`
}

func (s *Server) handleOCRInfo(args json.RawMessage) (interface{}, error) {
	var a ocrInfoArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Language == "" {
		a.Language = s.opts.OCRLanguage
	}
	return ocr.GetInfo(a.Language), nil
}
