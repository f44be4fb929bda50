package video

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const probeWithAudio = `{
	"streams": [
		{"codec_type": "video", "width": 1280, "height": 720},
		{"codec_type": "audio"}
	],
	"format": {"duration": "2.500000"}
}`

const probeSilent = `{
	"streams": [
		{"codec_type": "video", "width": 320, "height": 240}
	],
	"format": {"duration": "1.000000"}
}`

// fakeRunner stands in for ffmpeg/ffprobe. It records every invocation,
// serves canned ffprobe JSON, and touches the output file the way a
// successful ffmpeg run would.
type fakeRunner struct {
	probeJSON   string
	ffmpegErr   error
	invocations [][]string
}

func (f *fakeRunner) run(name string, args ...string) ([]byte, error) {
	f.invocations = append(f.invocations, append([]string{name}, args...))

	switch name {
	case "ffprobe":
		return []byte(f.probeJSON), nil
	case "ffmpeg":
		if f.ffmpegErr != nil {
			return []byte("encode error detail"), f.ffmpegErr
		}
		// Last argument is the output path in every command we build
		out := args[len(args)-1]
		if err := os.WriteFile(out, []byte("video-bytes"), 0644); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return nil, fmt.Errorf("unexpected command %s", name)
}

func (f *fakeRunner) lastArgs() string {
	if len(f.invocations) == 0 {
		return ""
	}
	return strings.Join(f.invocations[len(f.invocations)-1], " ")
}

func newTestProcessor(t *testing.T, runner *fakeRunner) *Processor {
	t.Helper()
	p := NewProcessor(t.TempDir(), 640, 480, 30)
	p.run = runner.run
	return p
}

func TestProbe_ParsesStreamsAndDuration(t *testing.T) {
	runner := &fakeRunner{probeJSON: probeWithAudio}
	p := newTestProcessor(t, runner)

	result, err := p.Probe("input.mp4")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	if !result.HasAudio {
		t.Error("HasAudio = false, want true")
	}
	if result.Width != 1280 || result.Height != 720 {
		t.Errorf("dimensions = %dx%d, want 1280x720", result.Width, result.Height)
	}
	if result.Duration != 2.5 {
		t.Errorf("Duration = %v, want 2.5", result.Duration)
	}
}

func TestProbe_RejectsFileWithoutVideoStream(t *testing.T) {
	runner := &fakeRunner{probeJSON: `{"streams": [{"codec_type": "audio"}], "format": {}}`}
	p := newTestProcessor(t, runner)

	if _, err := p.Probe("audio-only.mp4"); err == nil {
		t.Fatal("Probe succeeded on a file with no video stream")
	}
}

func TestNormalize_KeepsSourceAudio(t *testing.T) {
	runner := &fakeRunner{probeJSON: probeWithAudio}
	p := newTestProcessor(t, runner)

	clip, err := p.Normalize("raw.mp4", "hungry")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	args := runner.lastArgs()
	if strings.Contains(args, "anullsrc") {
		t.Error("silent track injected for a source that has audio")
	}
	if !strings.Contains(args, "scale=640:480") {
		t.Errorf("missing scale filter in: %s", args)
	}
	if clip.Word != "hungry" || clip.Duration != 2.5 {
		t.Errorf("clip = %+v, want word=hungry duration=2.5", clip)
	}
	if _, err := os.Stat(clip.Path); err != nil {
		t.Errorf("normalized clip missing: %v", err)
	}
}

func TestNormalize_InjectsSilentAudioTrack(t *testing.T) {
	runner := &fakeRunner{probeJSON: probeSilent}
	p := newTestProcessor(t, runner)

	if _, err := p.Normalize("raw.mp4", "hungry"); err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	args := runner.lastArgs()
	if !strings.Contains(args, "anullsrc") {
		t.Errorf("expected anullsrc for a silent source, got: %s", args)
	}
	if !strings.Contains(args, "-shortest") {
		t.Errorf("expected -shortest with injected audio, got: %s", args)
	}
}

func TestNormalize_EncodeFailure(t *testing.T) {
	runner := &fakeRunner{probeJSON: probeWithAudio, ffmpegErr: fmt.Errorf("exit status 1")}
	p := newTestProcessor(t, runner)

	if _, err := p.Normalize("raw.mp4", "hungry"); err == nil {
		t.Fatal("Normalize succeeded despite ffmpeg failure")
	}
}

func TestAssemble_RequiresAtLeastOneClip(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestProcessor(t, runner)

	if _, err := p.Assemble(nil); err == nil {
		t.Fatal("Assemble(nil) succeeded, want error")
	}
	if len(runner.invocations) != 0 {
		t.Errorf("ffmpeg invoked %d times for zero clips, want 0", len(runner.invocations))
	}
}

func TestAssemble_ConcatenatesInOrder(t *testing.T) {
	runner := &fakeRunner{}
	p := newTestProcessor(t, runner)

	clips := []*Clip{
		{Word: "i", Path: filepath.Join(p.tempDir, "clip_i.mp4")},
		{Word: "hungry", Path: filepath.Join(p.tempDir, "clip_hungry.mp4")},
	}

	outputPath, err := p.Assemble(clips)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		t.Errorf("output file missing: %v", err)
	}

	args := runner.lastArgs()
	for _, want := range []string{"-f concat", "-c:v libx264", "-c:a aac"} {
		if !strings.Contains(args, want) {
			t.Errorf("missing %q in: %s", want, args)
		}
	}

	// The concat list file is removed once the encode finishes
	entries, err := os.ReadDir(p.tempDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "concat_") {
			t.Errorf("concat list %s left behind", e.Name())
		}
	}
}

func TestAssemble_EncodeFailurePropagates(t *testing.T) {
	runner := &fakeRunner{ffmpegErr: fmt.Errorf("exit status 1")}
	p := newTestProcessor(t, runner)

	clips := []*Clip{{Word: "hungry", Path: "clip.mp4"}}
	if _, err := p.Assemble(clips); err == nil {
		t.Fatal("Assemble succeeded despite encode failure")
	} else if !strings.Contains(err.Error(), "encode error detail") {
		t.Errorf("error %q does not carry ffmpeg output", err)
	}
}
