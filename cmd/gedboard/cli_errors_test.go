// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jllopis/gedboard/pkg/errors"
)

func TestCLIError_Error(t *testing.T) {
	err := NewNotFoundError("project", "P99")
	assert.Equal(t, "[NOT_FOUND] project 'P99' not found\n  Hint: "+hintFor(errors.CodeNotFound), err.Error())
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))

	var empty CLIError
	assert.Equal(t, "unknown error", empty.Error())
}

func TestCLIError_PrintError(t *testing.T) {
	err := NewConfigError(fmt.Errorf("bad yaml"), "gedboard.yaml")

	var buf bytes.Buffer
	err.PrintError(&buf, false)
	assert.Equal(t, "Error [Invalid Input]: configuration error\n"+
		"  Cause: bad yaml\n"+
		"  Hint: check gedboard.yaml for syntax errors\n", buf.String())

	buf.Reset()
	err.PrintError(&buf, true)
	var payload map[string]map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "INVALID_INPUT", payload["error"]["code"])
	assert.Equal(t, "configuration error", payload["error"]["message"])
	assert.Equal(t, "check gedboard.yaml for syntax errors", payload["error"]["hint"])
}

func TestNewConfigError_NoPath(t *testing.T) {
	err := NewConfigError(fmt.Errorf("x"), "")
	assert.Contains(t, err.Hint, "--set")
}

func TestWrapError(t *testing.T) {
	ce := NewInvalidArgumentError("out", "read-only")
	assert.Same(t, ce, WrapError(fmt.Errorf("wrapped: %w", ce)))

	wrapped := WrapError(errors.New(errors.CodeEmptyDataset, "no rows", nil))
	assert.Equal(t, errors.CodeEmptyDataset, wrapped.Code)
	assert.Equal(t, "widen the filters or the period", wrapped.Hint)

	plain := WrapError(stderrors.New("boom"))
	assert.Equal(t, errors.CodeInternal, plain.Code)
	assert.Empty(t, plain.Hint)
}

func TestWrapCatalogError(t *testing.T) {
	err := WrapCatalogError(errors.New(errors.CodeNotFound, "data directory not found", nil), "/data")
	assert.Equal(t, "check that /data exists or pass --data-dir", err.Hint)
	assert.Equal(t, "/data", err.Context["data_dir"])

	err = WrapCatalogError(errors.New(errors.CodeInvalidInput, "invalid glob", nil), "/data")
	assert.Equal(t, hintFor(errors.CodeInvalidInput), err.Hint)
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		asJSON bool
		want   string
	}{
		{"plain", stderrors.New("unknown flag: --nope"), false, "Error: unknown flag: --nope\n"},
		{"plain json", stderrors.New("boom"), true, `{"error":{"code":"UNKNOWN","message":"boom"}}` + "\n"},
		{"coded", errors.New(errors.CodeParse, "malformed row", nil), false, "Error [Parse Error]: malformed row\n  Hint: " + hintFor(errors.CodeParse) + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printError(&buf, tt.err, tt.asJSON)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestFormatErrorCode(t *testing.T) {
	assert.Equal(t, "Not Found", FormatErrorCode(errors.CodeNotFound))
	assert.Equal(t, "Empty Dataset", FormatErrorCode(errors.CodeEmptyDataset))
	assert.Equal(t, "CUSTOM", FormatErrorCode(errors.ErrorCode("CUSTOM")))
}

func TestNormalizeCell(t *testing.T) {
	assert.Equal(t, "-", normalizeCell("  "))
	assert.Equal(t, "a b", normalizeCell(" a \n b "))
	assert.False(t, strings.Contains(normalizeCell("x\ty"), "\t"))
}
