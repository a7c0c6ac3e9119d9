package ffmpeg

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		onPath   map[string]string
		expected BinaryPaths
	}{
		{
			name:     "env wins",
			env:      map[string]string{EnvFFmpegPath: "/opt/ffmpeg", EnvFFprobePath: "/opt/ffprobe"},
			onPath:   map[string]string{"ffmpeg": "/usr/bin/ffmpeg", "ffprobe": "/usr/bin/ffprobe"},
			expected: BinaryPaths{FFmpeg: "/opt/ffmpeg", FFprobe: "/opt/ffprobe"},
		},
		{
			name:     "mixed",
			env:      map[string]string{EnvFFmpegPath: "/opt/ffmpeg"},
			onPath:   map[string]string{"ffprobe": "/usr/bin/ffprobe"},
			expected: BinaryPaths{FFmpeg: "/opt/ffmpeg", FFprobe: "/usr/bin/ffprobe"},
		},
		{
			name:     "nothing",
			expected: BinaryPaths{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			lookPath := func(name string) (string, error) {
				if p, ok := tt.onPath[name]; ok {
					return p, nil
				}
				return "", errors.New("not found")
			}
			got := lookup(getenv, lookPath)
			if got != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
			if got.complete() != (tt.expected.FFmpeg != "" && tt.expected.FFprobe != "") {
				t.Errorf("unexpected complete() for %+v", got)
			}
		})
	}
}

func TestAssetForPlatform(t *testing.T) {
	tests := []struct {
		goos, goarch string
		expected     string
		wantErr      bool
	}{
		{"linux", "amd64", "ffmpeg-6.1-linux-64.zip", false},
		{"linux", "arm64", "ffmpeg-6.1-linux-arm-64.zip", false},
		{"darwin", "amd64", "ffmpeg-6.1-macos-64.zip", false},
		{"windows", "amd64", "ffmpeg-6.1-win-64.zip", false},
		{"plan9", "386", "", true},
	}
	for _, tt := range tests {
		got, err := assetForPlatform(tt.goos, tt.goarch)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s/%s: unexpected error %v", tt.goos, tt.goarch, err)
		}
		if got != tt.expected {
			t.Errorf("%s/%s: expected %q, got %q", tt.goos, tt.goarch, tt.expected, got)
		}
	}
}

func TestBinaryName(t *testing.T) {
	tests := map[string]string{
		"ffmpeg":      "ffmpeg",
		"FFPROBE.exe": "ffprobe",
		"ffplay":      "",
		"readme.txt":  "",
	}
	for in, expected := range tests {
		if got := binaryName(in); got != expected {
			t.Errorf("binaryName(%q): expected %q, got %q", in, expected, got)
		}
	}
}

func writeZip(t *testing.T, path string, names ...string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip entry: %v", err)
		}
		_, _ = w.Write([]byte("#!/bin/sh\n"))
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	_ = f.Close()
}

func TestExtractArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bundle.zip")
	writeZip(t, archive, "bin/ffmpeg", "bin/ffprobe", "README")

	out := filepath.Join(dir, "out")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := extractArchive(archive, out); err != nil {
		t.Fatalf("extractArchive returned error: %v", err)
	}

	suffix := executableSuffix(runtime.GOOS)
	paths := BinaryPaths{
		FFmpeg:  filepath.Join(out, "ffmpeg"+suffix),
		FFprobe: filepath.Join(out, "ffprobe"+suffix),
	}
	if !binariesExist(paths) {
		t.Error("expected both binaries extracted")
	}
}

func TestExtractArchiveMissingBinary(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bundle.zip")
	writeZip(t, archive, "ffmpeg")

	if err := extractArchive(archive, dir); err == nil {
		t.Error("expected error when ffprobe is missing")
	}
}
