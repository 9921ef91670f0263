package edgetts

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeStub(t *testing.T, script string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "edge-tts")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestSynthesizeWritesAudio(t *testing.T) {
	// Stub copies its --write-media argument handling: last arg is the path.
	stub := writeStub(t, "#!/bin/sh\nout=\"\"\nwhile [ $# -gt 0 ]; do\n  if [ \"$1\" = \"--write-media\" ]; then out=\"$2\"; fi\n  shift\ndone\nprintf 'audio' > \"$out\"\n")

	cli := NewCLI(WithBinary(stub), WithVoice("en-US-GuyNeural"))
	out := filepath.Join(t.TempDir(), "narration", "scene_01.mp3")

	err := cli.Synthesize(context.Background(), Request{Text: "Hello there.", OutputPath: out})
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "audio" {
		t.Errorf("unexpected output content %q", data)
	}
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	cli := NewCLI()
	err := cli.Synthesize(context.Background(), Request{Text: "   ", OutputPath: "/tmp/x.mp3"})
	if err == nil || !strings.Contains(err.Error(), "text required") {
		t.Errorf("got %v, want text required error", err)
	}
}

func TestSynthesizeRejectsMissingOutput(t *testing.T) {
	cli := NewCLI()
	err := cli.Synthesize(context.Background(), Request{Text: "Hi."})
	if err == nil || !strings.Contains(err.Error(), "output path required") {
		t.Errorf("got %v, want output path error", err)
	}
}

func TestSynthesizeReportsEmptyOutput(t *testing.T) {
	stub := writeStub(t, "#!/bin/sh\nout=\"\"\nwhile [ $# -gt 0 ]; do\n  if [ \"$1\" = \"--write-media\" ]; then out=\"$2\"; fi\n  shift\ndone\n: > \"$out\"\n")

	cli := NewCLI(WithBinary(stub))
	out := filepath.Join(t.TempDir(), "scene_01.mp3")

	err := cli.Synthesize(context.Background(), Request{Text: "Hi.", OutputPath: out})
	if err == nil || !strings.Contains(err.Error(), "empty file") {
		t.Errorf("got %v, want empty file error", err)
	}
}

func TestSynthesizeSurfacesToolFailure(t *testing.T) {
	stub := writeStub(t, "#!/bin/sh\necho 'no such voice' >&2\nexit 1\n")

	cli := NewCLI(WithBinary(stub))
	out := filepath.Join(t.TempDir(), "scene_01.mp3")

	err := cli.Synthesize(context.Background(), Request{Text: "Hi.", OutputPath: out})
	if err == nil || !strings.Contains(err.Error(), "no such voice") {
		t.Errorf("got %v, want tool stderr in error", err)
	}
}

const voiceCatalog = `Name                               Gender    ContentCategories      VoicePersonalities
---------------------------------  --------  ---------------------  --------------------------------------
en-US-AriaNeural                   Female    News, Novel            Confident
ko-KR-SunHiNeural                  Female    General                Friendly, Positive
ko-KR-InJoonNeural                 Male      General                Friendly, Positive
`

func TestListVoicesParsesCatalog(t *testing.T) {
	stub := writeStub(t, "#!/bin/sh\ncat <<'TABLE'\n"+voiceCatalog+"TABLE\n")

	cli := NewCLI(WithBinary(stub))
	voices, err := cli.ListVoices(context.Background())
	if err != nil {
		t.Fatalf("ListVoices: %v", err)
	}
	if len(voices) != 3 {
		t.Fatalf("expected 3 voices, got %d", len(voices))
	}
	first := voices[0]
	if first.Name != "en-US-AriaNeural" || first.Gender != "Female" {
		t.Errorf("first voice = %+v", first)
	}
	if first.Categories != "News, Novel" {
		t.Errorf("categories = %q", first.Categories)
	}
	if got := voices[1].Locale(); got != "ko-KR" {
		t.Errorf("locale = %q, want ko-KR", got)
	}
	if got := voices[2].Personalities; got != "Friendly, Positive" {
		t.Errorf("personalities = %q", got)
	}
}

func TestListVoicesSurfacesToolFailure(t *testing.T) {
	stub := writeStub(t, "#!/bin/sh\necho 'no network' >&2\nexit 1\n")

	cli := NewCLI(WithBinary(stub))
	if _, err := cli.ListVoices(context.Background()); err == nil || !strings.Contains(err.Error(), "no network") {
		t.Errorf("got %v, want surfaced stderr", err)
	}
}

func TestListVoicesRejectsEmptyCatalog(t *testing.T) {
	stub := writeStub(t, "#!/bin/sh\nexit 0\n")

	cli := NewCLI(WithBinary(stub))
	if _, err := cli.ListVoices(context.Background()); err == nil || !strings.Contains(err.Error(), "no voices") {
		t.Errorf("got %v, want no voices error", err)
	}
}
