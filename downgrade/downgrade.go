// Package downgrade shells out to an external converter to produce an
// AC1018-compatible copy of an AC1027 file, for callers who prefer a
// battle-tested converter's output over this module's native AC1027
// decode. The converter's binary is never bundled; it is located via
// DWG_CONVERTER_PATH or a caller-supplied path.
package downgrade

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// EnvVar is the environment variable naming the converter executable, read
// when no explicit path is passed to Shim.
const EnvVar = "DWG_CONVERTER_PATH"

// TargetAC1018 is the version code passed to the converter to request an
// AC1018-compatible output file.
const TargetAC1018 = "ACAD2004"

// Shim runs the external converter against src, writing its output into
// outDir, and returns the path to the resulting AC1018 file. converterPath
// overrides DWG_CONVERTER_PATH when non-empty.
func Shim(ctx context.Context, converterPath, src, outDir string) (string, error) {
	if converterPath == "" {
		converterPath = os.Getenv(EnvVar)
	}
	if converterPath == "" {
		return "", fmt.Errorf("downgrade: no converter configured (set %s or pass --shim)", EnvVar)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, converterPath, src, outDir, TargetAC1018)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("downgrade: converter failed: %w: %s", err, out)
	}

	result, err := findConverted(outDir, src)
	if err != nil {
		return "", err
	}
	return result, nil
}

// findConverted locates the converter's output file: same base name as
// src, any .dwg extension, inside outDir. The converter's exact naming
// convention isn't standardized across implementations, so this accepts
// the first match rather than requiring an exact name.
func findConverted(outDir, src string) (string, error) {
	base := filepath.Base(src)
	stem := base[:len(base)-len(filepath.Ext(base))]
	matches, err := filepath.Glob(filepath.Join(outDir, stem+"*.dwg"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("downgrade: converter produced no output matching %q in %s", stem, outDir)
	}
	return matches[0], nil
}
