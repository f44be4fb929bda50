package video

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Clip is a normalized video segment for one resolved word. Path points at
// a uniformly encoded temp file (fixed resolution, frame rate and audio
// layout) that the concat step can consume directly. The raw download it
// was produced from is already gone by the time a Clip exists.
type Clip struct {
	Word     string
	Path     string
	Duration float64
}

// runFunc executes an external command and returns its combined output.
// Swappable in tests so the pipeline can run without ffmpeg installed.
type runFunc func(name string, args ...string) ([]byte, error)

func runCommand(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// Processor performs all video work by shelling out to ffmpeg/ffprobe
type Processor struct {
	tempDir string
	width   int
	height  int
	fps     int
	run     runFunc
}

// NewProcessor creates a processor writing intermediates to tempDir and
// normalizing clips to width x height at the given frame rate
func NewProcessor(tempDir string, width, height, fps int) *Processor {
	return &Processor{
		tempDir: tempDir,
		width:   width,
		height:  height,
		fps:     fps,
		run:     runCommand,
	}
}

// Normalize re-encodes a downloaded clip to the fixed target resolution,
// frame rate and audio layout. Sources without an audio stream get a silent
// AAC track so every clip carries the same stream layout into the concat
// step. The stretch to width x height matches the dictionary clips'
// uniform-resize behavior; aspect ratio is not preserved.
func (p *Processor) Normalize(inputPath, word string) (*Clip, error) {
	probe, err := p.Probe(inputPath)
	if err != nil {
		return nil, fmt.Errorf("probe failed for %s: %v", word, err)
	}

	outputPath := filepath.Join(p.tempDir, fmt.Sprintf("clip_%s_%s.mp4", word, uuid.New().String()))

	args := []string{"-i", inputPath}
	if probe.HasAudio {
		args = append(args, "-map", "0:v:0", "-map", "0:a:0")
	} else {
		args = append(args,
			"-f", "lavfi", "-i", "anullsrc=channel_layout=stereo:sample_rate=44100",
			"-shortest",
			"-map", "0:v:0", "-map", "1:a:0",
		)
	}
	args = append(args,
		"-vf", fmt.Sprintf("scale=%d:%d,setsar=1,fps=%d", p.width, p.height, p.fps),
		"-c:v", "libx264", "-preset", "veryfast", "-pix_fmt", "yuv420p",
		"-c:a", "aac", "-ar", "44100", "-ac", "2",
		"-y", outputPath,
	)

	output, err := p.run("ffmpeg", args...)
	if err != nil {
		os.Remove(outputPath)
		return nil, fmt.Errorf("ffmpeg failed: %v\nOutput: %s", err, string(output))
	}

	return &Clip{
		Word:     word,
		Path:     outputPath,
		Duration: probe.Duration,
	}, nil
}

// Assemble concatenates clips in order and encodes the result as
// H.264/AAC. At least one clip is required; zero clips is the caller's
// error, not a silent empty file.
func (p *Processor) Assemble(clips []*Clip) (string, error) {
	if len(clips) == 0 {
		return "", fmt.Errorf("no clips to assemble")
	}

	listPath := filepath.Join(p.tempDir, fmt.Sprintf("concat_%s.txt", uuid.New().String()))
	var list strings.Builder
	for _, clip := range clips {
		abs, err := filepath.Abs(clip.Path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve clip path %s: %v", clip.Path, err)
		}
		fmt.Fprintf(&list, "file '%s'\n", abs)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write concat list: %v", err)
	}
	defer os.Remove(listPath)

	outputPath := filepath.Join(p.tempDir, fmt.Sprintf("merged_%s.mp4", uuid.New().String()))

	output, err := p.run("ffmpeg",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-y", outputPath,
	)
	if err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("ffmpeg concat failed: %v\nOutput: %s", err, string(output))
	}

	return outputPath, nil
}
