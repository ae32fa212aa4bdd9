package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/calvinalkan/vfat/internal/config"
)

func printConfig(o *IO, cfg config.Config) {
	o.Println("image=" + cfg.ImageAbs)

	if cfg.HistoryFileAbs != "" {
		o.Println("history_file=" + cfg.HistoryFileAbs)
	}

	o.Println("max_entries=" + strconv.Itoa(cfg.MaxEntries))
	o.Println("max_depth=" + strconv.Itoa(cfg.MaxDepth))
	o.Println("max_segments=" + strconv.Itoa(cfg.MaxSegments))
	o.Println("log_level=" + cfg.LogLevel)

	if cfg.OTLPEndpoint != "" {
		o.Println("otlp_endpoint=" + cfg.OTLPEndpoint)
	}

	o.Println("")
	o.Println("# sources")

	if cfg.Sources.Global == "" && cfg.Sources.Project == "" {
		o.Println("(defaults only)")

		return
	}

	if cfg.Sources.Global != "" {
		o.Println("global_config=" + cfg.Sources.Global)
	}

	if cfg.Sources.Project != "" {
		o.Println("project_config=" + cfg.Sources.Project)
	}
}

func printConfigSchema(o *IO) error {
	data, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}

	o.Println(string(data))

	return nil
}
