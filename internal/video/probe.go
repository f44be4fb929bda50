package video

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ProbeResult holds the stream facts Normalize needs
type ProbeResult struct {
	Duration float64
	Width    int
	Height   int
	HasAudio bool
}

// ffprobeOutput matches the parts of `ffprobe -print_format json` we read
type ffprobeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Probe extracts duration, dimensions and audio presence from a video file
func (p *Processor) Probe(path string) (*ProbeResult, error) {
	output, err := p.run("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %v\nOutput: %s", err, string(output))
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %v", err)
	}

	result := &ProbeResult{}
	hasVideo := false
	for _, stream := range parsed.Streams {
		switch stream.CodecType {
		case "video":
			hasVideo = true
			result.Width = stream.Width
			result.Height = stream.Height
		case "audio":
			result.HasAudio = true
		}
	}
	if !hasVideo {
		return nil, fmt.Errorf("no video stream in %s", path)
	}

	if parsed.Format.Duration != "" {
		if d, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
			result.Duration = d
		}
	}

	return result, nil
}
