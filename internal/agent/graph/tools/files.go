package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	logx "github.com/swayam-agent/server/pkg/logger"
)

// File tools keep application drafts and notes the assistant prepares for
// the user. Paths are confined to the configured root.

type FileInput struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
}

type FileOutput struct {
	Status  string `json:"status"`
	Content string `json:"content,omitempty"`
}

// resolvePath joins name onto root and rejects escapes like "../x".
func resolvePath(root, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("path is required")
	}
	p := filepath.Join(root, filepath.Clean("/"+name))
	rel, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path escapes the workspace")
	}
	return p, nil
}

func createCreateFileTool(root string) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCreateFile,
			Desc: "Create or overwrite a text file in the assistant workspace, e.g. a draft application or a saved checklist.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"path":    {Type: "string", Desc: "File name relative to the workspace.", Required: true},
				"content": {Type: "string", Desc: "Full file content.", Required: true},
			}),
		},
		func(ctx context.Context, in *FileInput) (*FileOutput, error) {
			p, err := resolvePath(root, in.Path)
			if err != nil {
				return &FileOutput{Status: fmt.Sprintf("Error creating file: %v", err)}, nil
			}
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				return &FileOutput{Status: fmt.Sprintf("Error creating file: %v", err)}, nil
			}
			if err := os.WriteFile(p, []byte(in.Content), 0o644); err != nil {
				logx.Error().Err(err).Str("path", p).Msg("create_file failed")
				return &FileOutput{Status: fmt.Sprintf("Error creating file: %v", err)}, nil
			}
			return &FileOutput{Status: "File created successfully"}, nil
		},
	)
}

func createReadFileTool(root string) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolReadFile,
			Desc: "Read a previously saved text file from the assistant workspace.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"path": {Type: "string", Desc: "File name relative to the workspace.", Required: true},
			}),
		},
		func(ctx context.Context, in *FileInput) (*FileOutput, error) {
			p, err := resolvePath(root, in.Path)
			if err != nil {
				return &FileOutput{Status: fmt.Sprintf("Error reading file: %v", err)}, nil
			}
			b, err := os.ReadFile(p)
			if err != nil {
				return &FileOutput{Status: fmt.Sprintf("Error reading file: %v", err)}, nil
			}
			return &FileOutput{Status: "ok", Content: string(b)}, nil
		},
	)
}

func createUpdateFileTool(root string) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolUpdateFile,
			Desc: "Append content to an existing text file in the assistant workspace.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"path":    {Type: "string", Desc: "File name relative to the workspace.", Required: true},
				"content": {Type: "string", Desc: "Content to append.", Required: true},
			}),
		},
		func(ctx context.Context, in *FileInput) (*FileOutput, error) {
			p, err := resolvePath(root, in.Path)
			if err != nil {
				return &FileOutput{Status: fmt.Sprintf("Error updating file: %v", err)}, nil
			}
			f, err := os.OpenFile(p, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return &FileOutput{Status: fmt.Sprintf("Error updating file: %v", err)}, nil
			}
			defer f.Close()
			if _, err := f.WriteString(in.Content); err != nil {
				logx.Error().Err(err).Str("path", p).Msg("update_file failed")
				return &FileOutput{Status: fmt.Sprintf("Error updating file: %v", err)}, nil
			}
			return &FileOutput{Status: "File updated successfully"}, nil
		},
	)
}

func createDeleteFileTool(root string) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolDeleteFile,
			Desc: "Delete a text file from the assistant workspace.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"path": {Type: "string", Desc: "File name relative to the workspace.", Required: true},
			}),
		},
		func(ctx context.Context, in *FileInput) (*FileOutput, error) {
			p, err := resolvePath(root, in.Path)
			if err != nil {
				return &FileOutput{Status: fmt.Sprintf("Error deleting file: %v", err)}, nil
			}
			if err := os.Remove(p); err != nil {
				return &FileOutput{Status: fmt.Sprintf("Error deleting file: %v", err)}, nil
			}
			return &FileOutput{Status: "File deleted successfully"}, nil
		},
	)
}
