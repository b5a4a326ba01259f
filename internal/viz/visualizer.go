package viz

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"

	logx "github.com/graphchat/server/pkg/logger"
)

// mermaid.ink renders Mermaid text server-side; export is a pass-through to it.
const defaultRenderBase = "https://mermaid.ink"

const (
	FormatPNG     = "png"
	FormatSVG     = "svg"
	FormatMermaid = "mermaid"
)

var artifactNames = map[string]string{
	FormatPNG:     "chat_graph.png",
	FormatSVG:     "chat_graph.svg",
	FormatMermaid: "chat_graph.mmd",
}

// Visualizer writes graph diagrams to an output directory. Every failure is a
// warning: diagrams are cosmetic and never block startup.
type Visualizer struct {
	outputDir  string
	formats    []string
	renderBase string
	httpClient *resty.Client
}

func New(outputDir string, formats []string) *Visualizer {
	return NewWithRenderBase(outputDir, formats, defaultRenderBase)
}

// NewWithRenderBase points the renderer at a custom base URL. Used by tests.
func NewWithRenderBase(outputDir string, formats []string, renderBase string) *Visualizer {
	if outputDir == "" {
		outputDir = "."
	}
	if len(formats) == 0 {
		formats = []string{FormatPNG, FormatMermaid}
	}
	return &Visualizer{
		outputDir:  outputDir,
		formats:    formats,
		renderBase: renderBase,
		httpClient: resty.New().SetTimeout(20 * time.Second),
	}
}

// Generate produces the configured formats from the given Mermaid text and
// returns the path per successful format. Failed formats map to "".
func (v *Visualizer) Generate(ctx context.Context, mermaid string) map[string]string {
	results := make(map[string]string, len(v.formats))

	for _, format := range v.formats {
		path, err := v.generateOne(ctx, format, mermaid)
		if err != nil {
			logx.Warn().Err(err).Str("format", format).Msg("failed to generate visualization")
			results[format] = ""
			continue
		}
		results[format] = path
	}

	return results
}

func (v *Visualizer) generateOne(ctx context.Context, format, mermaid string) (string, error) {
	name, ok := artifactNames[format]
	if !ok {
		return "", fmt.Errorf("unknown visualization format %q", format)
	}
	path := filepath.Join(v.outputDir, name)

	switch format {
	case FormatMermaid:
		if err := os.WriteFile(path, []byte(mermaid), 0o644); err != nil {
			return "", fmt.Errorf("write mermaid file: %w", err)
		}
	case FormatPNG, FormatSVG:
		data, err := v.render(ctx, format, mermaid)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("write %s file: %w", format, err)
		}
	}

	logx.Info().Str("path", path).Str("format", format).Msg("graph visualization saved")
	return path, nil
}

func (v *Visualizer) render(ctx context.Context, format, mermaid string) ([]byte, error) {
	encoded := base64.URLEncoding.EncodeToString([]byte(mermaid))

	route := "/img/"
	if format == FormatSVG {
		route = "/svg/"
	}

	resp, err := v.httpClient.R().
		SetContext(ctx).
		Get(v.renderBase + route + encoded)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("render %s: status %d", format, resp.StatusCode())
	}
	return resp.Body(), nil
}

// Cleanup removes stale artifacts for the configured formats.
func (v *Visualizer) Cleanup() {
	for _, format := range v.formats {
		name, ok := artifactNames[format]
		if !ok {
			continue
		}
		path := filepath.Join(v.outputDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logx.Warn().Err(err).Str("path", path).Msg("could not remove old visualization")
		}
	}
}
