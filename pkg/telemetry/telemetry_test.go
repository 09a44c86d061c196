// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInit(t *testing.T) {
	shutdown, err := Init("test-service", "v0.0.1")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if shutdown == nil {
		t.Fatal("Shutdown function should not be nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}

func TestInitWithConfig_None(t *testing.T) {
	for _, exporter := range []string{"", "none", " NONE "} {
		shutdown, err := InitWithConfig("test-service", "v0.0.1", Config{Exporter: exporter})
		if err != nil {
			t.Fatalf("exporter %q: unexpected error: %v", exporter, err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Errorf("exporter %q: shutdown failed: %v", exporter, err)
		}
	}
}

func TestInitWithConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown exporter", Config{Exporter: "zipkin"}},
		{"otlp without endpoint", Config{Exporter: "otlp"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := InitWithConfig("test-service", "v0.0.1", tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestInitWithConfig_StdoutOutput(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := InitWithConfig("test-service", "v0.0.1", Config{Exporter: " Stdout ", Output: &buf})
	if err != nil {
		t.Fatalf("InitWithConfig failed: %v", err)
	}
	_, span := otel.Tracer("gedboard/test").Start(context.Background(), "report.Build")
	span.End()
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"Name": "report.Build"`) {
		t.Errorf("span not exported to the configured output:\n%s", buf.String())
	}
}
