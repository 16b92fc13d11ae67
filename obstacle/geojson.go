package obstacle

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ParseGeoJSON converts a FeatureCollection into obstacles. Polygon and
// MultiPolygon features are kept, other geometries are skipped. Recognized
// properties: id, minZ, maxZ, kind ("static" or "dynamic"). Features without
// an id are named after prefix and their position in the collection.
func ParseGeoJSON(prefix string, data []byte) ([]Obstacle, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", prefix, err)
	}

	var obstacles []Obstacle
	for i, f := range fc.Features {
		id := f.Properties.MustString("id", "")
		if id == "" {
			if s, ok := f.ID.(string); ok && s != "" {
				id = s
			} else {
				id = fmt.Sprintf("%s#%d", prefix, i)
			}
		}
		kind, err := ParseKind(f.Properties.MustString("kind", ""))
		if err != nil {
			return nil, fmt.Errorf("parse %s: feature %s: %w", prefix, id, err)
		}
		base := Obstacle{
			Kind: kind,
			MinZ: f.Properties.MustFloat64("minZ", -Unbounded),
			MaxZ: f.Properties.MustFloat64("maxZ", Unbounded),
		}

		var polygons []orb.Polygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			polygons = append(polygons, g)
		case orb.MultiPolygon:
			polygons = append(polygons, g...)
		default:
			continue
		}

		for j, poly := range polygons {
			o := base
			o.ID = id
			if len(polygons) > 1 {
				o.ID = fmt.Sprintf("%s/%d", id, j)
			}
			// Only the outer ring blocks; holes are not carved out of the grid.
			o.Footprint = orb.Polygon{poly[0]}
			if err := o.Validate(); err != nil {
				return nil, fmt.Errorf("parse %s: %w", prefix, err)
			}
			obstacles = append(obstacles, o)
		}
	}
	return obstacles, nil
}

// LoadDir reads every *.geojson file in dir. Unreadable or malformed files
// are logged and skipped. Footprints fully covered by another obstacle are
// dropped.
func LoadDir(dir string, logger *slog.Logger) ([]Obstacle, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, err
	}

	logger.Info("loading obstacles", "dir", dir, "files", len(files))

	var all []Obstacle
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Warn("failed to read obstacle file", "file", file, "error", err)
			continue
		}
		name := filepath.Base(file)
		obstacles, err := ParseGeoJSON(name, data)
		if err != nil {
			logger.Warn("failed to parse obstacle file", "file", file, "error", err)
			continue
		}
		logger.Debug("loaded obstacle file", "file", name, "obstacles", len(obstacles))
		all = append(all, obstacles...)
	}

	kept := RemoveContained(all)
	logger.Info("obstacles loaded", "total", len(all), "kept", len(kept), "contained", len(all)-len(kept))
	return kept, nil
}
