package pdf

import (
	"github.com/a3tai/mcp-pdf-form/internal/download"
	"github.com/a3tai/mcp-pdf-form/internal/form"
	"github.com/a3tai/mcp-pdf-form/internal/pdf/document"
)

// Request Types

// WriteFormRequest represents a request to fill form controls
type WriteFormRequest struct {
	Values []form.FormValue `json:"values"`
}

// SaveFormRequest represents a request to export the filled form
type SaveFormRequest struct {
	FileName string `json:"file_name"`
}

// Response Types

// ReadFormResult represents the current values of the form controls
type ReadFormResult struct {
	Source string           `json:"source"`
	Values []form.FormValue `json:"values"`
	Count  int              `json:"count"`
}

// WriteFormResult represents the outcome of a write
type WriteFormResult struct {
	Requested int `json:"requested"`
	// Applied counts the requested ids that have a rendered control
	Applied int              `json:"applied"`
	Ignored []string         `json:"ignored,omitempty"`
	Values  []form.FormValue `json:"values"`
}

// SaveFormResult represents an exported document
type SaveFormResult struct {
	Download *download.Download `json:"download"`
}

// PageInfo describes one rendered page
type PageInfo struct {
	Number      int               `json:"number"`
	Viewport    document.Viewport `json:"viewport"`
	Annotations int               `json:"annotations"`
	Widgets     int               `json:"widgets"`
	Controls    int               `json:"controls"`
}

// FormInfoResult represents the loaded form and usage guidance
type FormInfoResult struct {
	ServerName     string     `json:"server_name"`
	Version        string     `json:"version"`
	Source         string     `json:"source"`
	Size           int        `json:"size"`
	MaxFileSize    int64      `json:"max_file_size"`
	PageCount      int        `json:"page_count"`
	Pages          []PageInfo `json:"pages"`
	AvailableTools []ToolInfo `json:"available_tools"`
	UsageGuidance  string     `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
