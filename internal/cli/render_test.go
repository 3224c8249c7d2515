package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,png", []string{"svg", "png"}},
		{" json , pdf ,", []string{"json", "pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"graph input", "", "dir/cluster.json", "dir/cluster"},
		{"layout input", "", "dir/cluster.layout.json", "dir/cluster"},
		{"output with format ext", "out/map.svg", "cluster.json", "out/map"},
		{"output without ext", "out/map", "cluster.json", "out/map"},
		{"output with foreign ext", "out/map.v2", "cluster.json", "out/map.v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		formats []string
		output  string
		want    string
	}{
		{"single explicit", "png", []string{"png"}, "map.image", "map.image"},
		{"single derived", "svg", []string{"svg"}, "", "cluster.svg"},
		{"json derived", "json", []string{"json", "svg"}, "", "cluster.layout.json"},
		{"multiple with base", "pdf", []string{"svg", "pdf"}, "out/map", "out/map.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.format, tt.formats, "cluster.json", tt.output); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "cluster.json")
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")}

	paths, err := writeArtifacts(artifacts, []string{"svg", "json"}, input, "")
	if err != nil {
		t.Fatalf("writeArtifacts() error: %v", err)
	}
	want := []string{filepath.Join(dir, "cluster.layout.json"), filepath.Join(dir, "cluster.svg")}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	if data, _ := os.ReadFile(want[1]); string(data) != "<svg/>" {
		t.Errorf("svg content = %q", data)
	}
}

func TestWriteArtifactsErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing artifact", func(t *testing.T) {
		_, err := writeArtifacts(map[string][]byte{}, []string{"pdf"}, filepath.Join(dir, "g.json"), "")
		if err == nil {
			t.Error("writeArtifacts() should fail when a format was not rendered")
		}
	})

	t.Run("overwrite input", func(t *testing.T) {
		input := filepath.Join(dir, "g.layout.json")
		_, err := writeArtifacts(map[string][]byte{"json": []byte("{}")}, []string{"json"}, input, "")
		if err == nil {
			t.Error("writeArtifacts() should refuse to overwrite its input")
		}
	})
}
