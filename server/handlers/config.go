package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nomis52/activities/config"
)

// ConfigHandler serves the loaded configuration as YAML with tokens masked.
// The section query parameter (api, server, backend, monitoring or logging)
// narrows the document to one top-level section.
type ConfigHandler struct {
	configs ConfigProvider
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(configs ConfigProvider) *ConfigHandler {
	return &ConfigHandler{configs: configs}
}

func configSections(cfg config.Config) map[string]any {
	return map[string]any{
		"api":        cfg.API,
		"server":     cfg.Server,
		"backend":    cfg.Backend,
		"monitoring": cfg.Monitoring,
		"logging":    cfg.Logging,
	}
}

// ServeHTTP implements http.Handler.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cfg := h.configs.Config().Redacted()

	var doc any = cfg
	if name := r.URL.Query().Get("section"); name != "" {
		sections := configSections(cfg)
		section, ok := sections[name]
		if !ok {
			names := make([]string, 0, len(sections))
			for n := range sections {
				names = append(names, n)
			}
			sort.Strings(names)
			writeError(w, http.StatusNotFound,
				fmt.Sprintf("unknown config section %q, expected one of %s", name, strings.Join(names, ", ")))
			return
		}
		doc = section
	}

	w.Header().Set("Content-Type", "text/yaml")
	w.WriteHeader(http.StatusOK)
	if err := yaml.NewEncoder(w).Encode(doc); err != nil {
		slog.Error("failed to encode config", "error", err)
	}
}
