// Package fileserver implements the file system MCP server: sandboxed
// file operations over a shared dispatch core. Every path argument is
// resolved against the configured root before any I/O happens.
package fileserver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/karthik-ravi-1537/mcp-demo/internal/metrics"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/mcpserver"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/protocol"
	"github.com/karthik-ravi-1537/mcp-demo/pkg/sandbox"
)

// Options configures the file system server.
type Options struct {
	// Root is the directory all file operations are confined to.
	Root    string
	Timeout time.Duration
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// New creates the file system server with its tool set registered.
func New(opts Options) (*mcpserver.Server, error) {
	root, err := sandbox.New(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to create sandbox: %w", err)
	}

	srv, err := mcpserver.NewServer(mcpserver.Options{
		Name:        "file_system",
		Description: "File system operations",
		Timeout:     opts.Timeout,
		Logger:      opts.Logger,
		Metrics:     opts.Metrics,
	})
	if err != nil {
		return nil, err
	}

	opts.Logger.Info().Str("root", root.Path()).Msg("File server sandbox configured")

	tools := []struct {
		def     protocol.ToolDefinition
		handler mcpserver.ToolHandler
	}{
		{readFileDef(), readFileHandler(root)},
		{writeFileDef(), writeFileHandler(root)},
		{deleteFileDef(), deleteFileHandler(root)},
		{copyFileDef(), copyFileHandler(root)},
		{moveFileDef(), moveFileHandler(root)},
		{listDirectoryDef(), listDirectoryHandler(root)},
		{findFilesDef(), findFilesHandler(root)},
		{pathExistsDef(), pathExistsHandler(root)},
		{fileInfoDef(), fileInfoHandler(root)},
	}

	for _, tool := range tools {
		if err := srv.RegisterTool(tool.def, tool.handler); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", tool.def.Name, err)
		}
	}

	return srv, nil
}

func pathParam(description string) protocol.ToolParameter {
	return protocol.ToolParameter{
		Name:        "path",
		Type:        protocol.TypeString,
		Description: description,
		Required:    true,
	}
}

func readFileDef() protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        "read_file",
		Description: "Read a file from the file system",
		Category:    "filesystem",
		Tags:        []string{"file", "read"},
		Parameters:  []protocol.ToolParameter{pathParam("Path to the file, relative to the base directory")},
	}
}

func readFileHandler(root *sandbox.Root) mcpserver.ToolHandler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		path, _ := args["path"].(string)
		data, err := root.Read(path)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"path":    path,
			"content": string(data),
			"bytes":   len(data),
		}, nil
	}
}

func writeFileDef() protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        "write_file",
		Description: "Write to a file in the file system",
		Category:    "filesystem",
		Tags:        []string{"file", "write"},
		Parameters: []protocol.ToolParameter{
			pathParam("Path to the file, relative to the base directory"),
			{Name: "content", Type: protocol.TypeString, Description: "Content to write", Required: true},
		},
	}
}

func writeFileHandler(root *sandbox.Root) mcpserver.ToolHandler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		path, _ := args["path"].(string)
		content, _ := args["content"].(string)
		if err := root.Write(path, []byte(content)); err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"path":  path,
			"bytes": len(content),
		}, nil
	}
}

func deleteFileDef() protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        "delete_file",
		Description: "Delete a file or empty directory from the file system",
		Category:    "filesystem",
		Tags:        []string{"file", "delete"},
		Parameters:  []protocol.ToolParameter{pathParam("Path to delete, relative to the base directory")},
	}
}

func deleteFileHandler(root *sandbox.Root) mcpserver.ToolHandler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		path, _ := args["path"].(string)
		if err := root.Delete(path); err != nil {
			return nil, err
		}
		return map[string]interface{}{"path": path, "deleted": true}, nil
	}
}

func srcDstParams() []protocol.ToolParameter {
	return []protocol.ToolParameter{
		{Name: "src", Type: protocol.TypeString, Description: "Source path, relative to the base directory", Required: true},
		{Name: "dst", Type: protocol.TypeString, Description: "Destination path, relative to the base directory", Required: true},
	}
}

func copyFileDef() protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        "copy_file",
		Description: "Copy a file within the file system",
		Category:    "filesystem",
		Tags:        []string{"file", "copy"},
		Parameters:  srcDstParams(),
	}
}

func copyFileHandler(root *sandbox.Root) mcpserver.ToolHandler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		src, _ := args["src"].(string)
		dst, _ := args["dst"].(string)
		if err := root.Copy(src, dst); err != nil {
			return nil, err
		}
		return map[string]interface{}{"src": src, "dst": dst, "copied": true}, nil
	}
}

func moveFileDef() protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        "move_file",
		Description: "Move or rename a file within the file system",
		Category:    "filesystem",
		Tags:        []string{"file", "move"},
		Parameters:  srcDstParams(),
	}
}

func moveFileHandler(root *sandbox.Root) mcpserver.ToolHandler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		src, _ := args["src"].(string)
		dst, _ := args["dst"].(string)
		if err := root.Move(src, dst); err != nil {
			return nil, err
		}
		return map[string]interface{}{"src": src, "dst": dst, "moved": true}, nil
	}
}

func listDirectoryDef() protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        "list_directory",
		Description: "List files in a directory",
		Category:    "filesystem",
		Tags:        []string{"file", "directory", "list"},
		Parameters: []protocol.ToolParameter{
			{Name: "path", Type: protocol.TypeString, Description: "Path to the directory, relative to the base directory", Required: false, Default: "."},
			{Name: "recursive", Type: protocol.TypeBoolean, Description: "List files recursively", Required: false, Default: false},
		},
	}
}

func listDirectoryHandler(root *sandbox.Root) mcpserver.ToolHandler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		path, _ := args["path"].(string)
		recursive, _ := args["recursive"].(bool)
		entries, err := root.ListDir(path, recursive)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"path":    path,
			"entries": entries,
		}, nil
	}
}

func findFilesDef() protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        "find_files",
		Description: "Find files whose name matches a glob pattern",
		Category:    "filesystem",
		Tags:        []string{"file", "find"},
		Parameters: []protocol.ToolParameter{
			{Name: "pattern", Type: protocol.TypeString, Description: "Glob pattern matched against file names", Required: true},
		},
	}
}

func findFilesHandler(root *sandbox.Root) mcpserver.ToolHandler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		pattern, _ := args["pattern"].(string)
		matches, err := root.Find(pattern)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"pattern": pattern,
			"matches": matches,
		}, nil
	}
}

func pathExistsDef() protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        "path_exists",
		Description: "Check if a file or directory exists",
		Category:    "filesystem",
		Tags:        []string{"file", "directory", "exists"},
		Parameters:  []protocol.ToolParameter{pathParam("Path to check, relative to the base directory")},
	}
}

func pathExistsHandler(root *sandbox.Root) mcpserver.ToolHandler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		path, _ := args["path"].(string)
		exists, err := root.Exists(path)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"path": path, "exists": exists}, nil
	}
}

func fileInfoDef() protocol.ToolDefinition {
	return protocol.ToolDefinition{
		Name:        "file_info",
		Description: "Get file information",
		Category:    "filesystem",
		Tags:        []string{"file", "info"},
		Parameters:  []protocol.ToolParameter{pathParam("Path to the file, relative to the base directory")},
	}
}

func fileInfoHandler(root *sandbox.Root) mcpserver.ToolHandler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		path, _ := args["path"].(string)
		info, err := root.Stat(path)
		if err != nil {
			return nil, err
		}
		return info, nil
	}
}
