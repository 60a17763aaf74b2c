package generator

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KalimsCodingWonderland/IMDBSpeedrunGame/backend/internal/dataset"
)

// WriteCatalogue serializes the catalogue into dir as catalogue.json or catalogue.yaml and
// returns the written path.
func WriteCatalogue(cat dataset.Catalogue, dir, format string) (string, error) {
	var name string
	switch strings.ToLower(format) {
	case "", "json":
		name = "catalogue.json"
	case "yaml", "yml":
		name = "catalogue.yaml"
	default:
		return "", fmt.Errorf("unsupported format %q", format)
	}

	path := filepath.Join(dir, name)
	if err := dataset.Write(cat, path); err != nil {
		return "", err
	}
	return path, nil
}
