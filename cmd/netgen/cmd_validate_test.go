package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidateCmd(t *testing.T) {
	root := setupProject(t)

	out, err := runCmd(t, newValidateCmd(), "models/bg.yaml", "--root", root)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "no issues found") {
		t.Errorf("output = %q", out)
	}
}

func TestValidateCmd_UnknownName(t *testing.T) {
	root := setupProject(t)

	out, err := runCmd(t, newValidateCmd(), "models/unknown.yaml", "--root", root)
	if err != nil {
		t.Fatalf("permissive validate failed: %v", err)
	}
	if !strings.Contains(out, "Missing") {
		t.Errorf("output = %q", out)
	}

	out, err = runCmd(t, newValidateCmd(), "models/unknown.yaml", "--root", root, "--strict", "--json")
	if err == nil || !strings.Contains(err.Error(), "would abort generation") {
		t.Fatalf("strict error = %v", err)
	}
	var report struct {
		Valid  bool `json:"valid"`
		Errors int  `json:"errors"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Valid || report.Errors != 1 {
		t.Errorf("report = %+v", report)
	}
}
