package cmd

import (
	"fmt"
	"io"

	"github.com/dccn-tg/viewer-toolset/pkg/viewer"
	"gopkg.in/yaml.v3"
)

// output formats of the viewer configuration
const (
	formatJS   = "js"
	formatJSON = "json"
	formatYAML = "yaml"
)

func writeViewerConfig(w io.Writer, cfg viewer.Config, format string) error {
	switch format {
	case formatJS:
		return viewer.RenderJS(cfg, w)
	case formatJSON:
		return viewer.RenderJSON(cfg, w)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg.Normalize()); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q, expect one of js, json, yaml", format)
	}
}
