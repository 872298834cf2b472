// Package server implements the MCP (Model Context Protocol) server for the
// drawing tracer.
//
// This package provides a JSON-RPC 2.0 server that exposes the tracing
// pipeline to MCP-compatible clients, so an assistant can inspect a scanned
// drawing, tune the cleanup stages on one page and then convert the whole
// document.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - pdf_page_info: Page count, unit and per-page sizes of a PDF or images
//   - pdf_trace: Convert a document to DXF or SVG
//   - pdf_render_stage: One page's intermediate raster as a base64 PNG
//   - ocr_info: Whether OCR is compiled in and which engine it uses
//
// pdf_trace and pdf_render_stage accept the pipeline options (output_scale,
// oversample, simplify, denoise, threshold_method, thinning, text,
// text_confidence, text_source) as per-call overrides of the options the
// server was started with.
//
// When a tools/call request carries params._meta.progressToken, pdf_trace
// emits a notifications/progress message after every finished page.
//
// # Image Caching
//
// Raster inputs are decoded through an in-memory cache shared by all tool
// calls. A document evicts its files from the cache when it is closed at the
// end of each call.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Page-scoped problems do not fail a call; they are listed under "warnings"
// in the tool result. A document that traces to nothing is reported with
// "empty": true and no output file.
//
// # Usage
//
//	srv := server.New(config.Default(), logger)
//	if err := srv.Run(ctx); err != nil {
//	    logger.Error("server error", "error", err)
//	}
package server
