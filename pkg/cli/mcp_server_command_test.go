//go:build !integration

package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/getumbrel/umbrel-linter/pkg/constants"
	"github.com/getumbrel/umbrel-linter/pkg/finding"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// connectTestClient connects an in-memory client to a fresh lint server.
func connectTestClient(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := newMCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func decodeToolReport(t *testing.T, res *mcp.CallToolResult) finding.ReportJSON {
	t.Helper()
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var report finding.ReportJSON
	require.NoError(t, json.Unmarshal(data, &report))
	return report
}

func TestMCPServerListsLintTool(t *testing.T) {
	session := connectTestClient(t)

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, "lint", tools.Tools[0].Name)
	assert.NotEmpty(t, tools.Tools[0].Description)
	assert.NotNil(t, tools.Tools[0].InputSchema)
}

func TestMCPServerLintTool(t *testing.T) {
	root := writeStore(t, true, "alpha", "beta")
	require.NoError(t, os.Remove(filepath.Join(root, "beta", "data", constants.GitkeepFile)))
	session := connectTestClient(t)

	tests := []struct {
		name        string
		args        map[string]any
		wantSuccess bool
		wantIDs     []string
	}{
		{
			name:    "whole store",
			args:    map[string]any{"path": root, "offline": true},
			wantIDs: []string{constants.EmptyAppDataDirectory},
		},
		{
			name:        "single app",
			args:        map[string]any{"path": root, "app": "alpha", "offline": true},
			wantSuccess: true,
			wantIDs:     []string{},
		},
		{
			name:        "ignored app",
			args:        map[string]any{"path": root, "offline": true, "ignore": []string{"beta"}},
			wantSuccess: true,
			wantIDs:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "lint", Arguments: tt.args})
			require.NoError(t, err)
			require.False(t, res.IsError, "lint tool should not fail: %v", res.Content)

			report := decodeToolReport(t, res)
			assert.Equal(t, tt.wantSuccess, report.Success)
			got := []string{}
			for _, f := range report.Errors {
				got = append(got, f.ID)
			}
			assert.Equal(t, tt.wantIDs, got)
		})
	}
}

func TestMCPServerLintToolBadPath(t *testing.T) {
	session := connectTestClient(t)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "lint",
		Arguments: map[string]any{"path": filepath.Join(t.TempDir(), "missing"), "offline": true},
	})
	require.NoError(t, err, "tool failures are reported in the result")
	assert.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "does not exist")
}
