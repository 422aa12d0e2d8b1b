package main

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestMCPServerCmd_InvalidRoot(t *testing.T) {
	tmpDir := t.TempDir()
	isolateHome(t, tmpDir)

	_, err := runCmd(t, newMCPServerCmd(), "--root", filepath.Join(tmpDir, "missing"))
	if err == nil || !strings.Contains(err.Error(), "create MCP server") {
		t.Errorf("error = %v, want create MCP server failure", err)
	}
}
