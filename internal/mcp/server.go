package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-pdf-form/internal/config"
	"github.com/a3tai/mcp-pdf-form/internal/descriptions"
	"github.com/a3tai/mcp-pdf-form/internal/form"
	"github.com/a3tai/mcp-pdf-form/internal/pdf"
)

// shutdownTimeout bounds the graceful stop of the HTTP transport
const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers the form buttons as MCP tools
func (s *Server) registerTools() {
	readTool := mcp.NewTool(
		"read",
		mcp.WithDescription(descriptions.GetToolDescription("read")),
	)
	s.mcpServer.AddTool(readTool, s.handleRead)

	writeTool := mcp.NewTool(
		"write",
		mcp.WithDescription(descriptions.GetToolDescription("write")),
		mcp.WithArray("values",
			mcp.Description("Records to write: objects with an 'id' (e.g. \"285R\") and a 'value'"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":    map[string]any{"type": "string"},
					"value": map[string]any{"type": []string{"string", "boolean", "number"}},
				},
				"required": []string{"id"},
			}),
		),
	)
	s.mcpServer.AddTool(writeTool, s.handleWrite)

	saveTool := mcp.NewTool(
		"save",
		mcp.WithDescription(descriptions.GetToolDescription("save")),
		mcp.WithString("file_name",
			mcp.Description("Name of the produced PDF (default: "+s.config.DownloadName+")"),
		),
	)
	s.mcpServer.AddTool(saveTool, s.handleSave)

	formInfoTool := mcp.NewTool(
		"form_info",
		mcp.WithDescription(descriptions.GetToolDescription("form_info")),
	)
	s.mcpServer.AddTool(formInfoTool, s.handleFormInfo)
}

// Handler functions
func (s *Server) handleRead(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ReadForm(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	encoded, err := json.MarshalIndent(result.Values, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode form data: %v", err)), nil
	}

	return mcp.NewToolResultText(string(encoded)), nil
}

func (s *Server) handleWrite(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	values := form.DemoValues()
	if raw, ok := args["values"]; ok && raw != nil {
		parsed, err := parseFormValues(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		values = parsed
	}

	result, err := s.pdfService.WriteForm(ctx, pdf.WriteFormRequest{Values: values})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatWriteResult(result)), nil
}

func (s *Server) handleSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	fileName := ""
	if name, ok := args["file_name"].(string); ok {
		fileName = name
	}

	result, err := s.pdfService.SaveForm(ctx, pdf.SaveFormRequest{FileName: fileName})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dl := result.Download
	text := fmt.Sprintf("Saved form as %s (%d bytes, %s)\n", dl.Name, dl.Size, dl.MIMEType)
	if dl.Location != "" {
		text += fmt.Sprintf("Location: %s\n", dl.Location)
	}
	text += fmt.Sprintf("URL: %s\n", dl.URL)

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
			mcp.NewEmbeddedResource(mcp.BlobResourceContents{
				URI:      dl.URL,
				MIMEType: dl.MIMEType,
				Blob:     base64.StdEncoding.EncodeToString(dl.Data),
			}),
		},
	}, nil
}

func (s *Server) handleFormInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.FormInfo(ctx, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatFormInfoResult(result)), nil
}

// parseFormValues converts the 'values' argument into form records
func parseFormValues(raw any) ([]form.FormValue, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("values must be an array of {id, value} objects")
	}

	values := make([]form.FormValue, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("values[%d] must be an object", i)
		}
		id, ok := obj["id"].(string)
		if !ok || id == "" {
			return nil, fmt.Errorf("values[%d].id must be a non-empty string", i)
		}
		values = append(values, form.NewFormValue(id, obj["value"], "", ""))
	}
	return values, nil
}

// Formatting methods
func (s *Server) formatWriteResult(result *pdf.WriteFormResult) string {
	text := fmt.Sprintf("Applied %d of %d record(s)\n", result.Applied, result.Requested)
	if len(result.Ignored) > 0 {
		text += fmt.Sprintf("Ignored ids (no matching field): %v\n", result.Ignored)
	}

	text += "\nForm data:\n"
	for _, v := range result.Values {
		text += fmt.Sprintf("  %s (%s, %s): %v\n", v.ID, v.Name, v.Type, v.Value)
	}
	return text
}

func (s *Server) formatFormInfoResult(result *pdf.FormInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Form Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📄 Form: %s (%d bytes)\n", result.Source, result.Size)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n\n", result.MaxFileSize/(1024*1024))

	text += fmt.Sprintf("📑 Pages (%d):\n", result.PageCount)
	for _, page := range result.Pages {
		text += fmt.Sprintf("   %d. %.0fx%.0f at scale %g: %d annotation(s), %d widget(s), %d field control(s)\n",
			page.Number, page.Viewport.Width, page.Viewport.Height, page.Viewport.Scale,
			page.Annotations, page.Widgets, page.Controls)
	}

	text += "\n🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over stdin/stdout until ctx is done or stdin closes
func (s *Server) runStdioMode(ctx context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF form MCP server in stdio mode")
		log.Printf("Output directory: %s", s.config.OutputDirectory)
	}

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(os.Stderr, "", log.LstdFlags))

	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over HTTP with server-sent events until ctx is done
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting PDF form MCP server on %s (SSE endpoint: /sse)", addr)
		errCh <- sseServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sseServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down HTTP server: %w", err)
		}
		return nil
	}
}
