package item

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/moorebrett0/roampet/internal/geom"
)

// Kind is the category of a spawnable item.
type Kind int

const (
	Food Kind = iota
	Drink
	Bed
)

// Kinds lists all categories in uniform-choice order.
var Kinds = []Kind{Bed, Food, Drink}

func (k Kind) String() string {
	switch k {
	case Food:
		return "food"
	case Drink:
		return "drink"
	case Bed:
		return "bed"
	default:
		return "unknown"
	}
}

// Instance is one item on screen.
type Instance struct {
	ID        int
	Kind      Kind
	Asset     string
	Bounds    geom.Rect
	SpawnedAt time.Time
}

// Expired reports whether the item outlived lifetime at now.
func (i *Instance) Expired(now time.Time, lifetime time.Duration) bool {
	return now.Sub(i.SpawnedAt) >= lifetime
}

// Pools maps each category to the asset files it can spawn.
type Pools map[Kind][]string

// BedAsset is the canonical bed image, relative to the assets root.
var BedAsset = filepath.Join("props", "bed.png")

var imageExts = map[string]bool{".png": true, ".gif": true, ".jpg": true, ".jpeg": true}

// LoadPools scans root/food and root/drink for images and checks for the bed asset.
// Missing directories leave the category empty.
func LoadPools(root string) Pools {
	p := Pools{
		Food:  scanDir(filepath.Join(root, "food")),
		Drink: scanDir(filepath.Join(root, "drink")),
	}
	bed := filepath.Join(root, BedAsset)
	if _, err := os.Stat(bed); err == nil {
		p[Bed] = []string{bed}
	} else {
		slog.Warn("item: bed asset missing, beds will not spawn", "path", bed)
	}
	return p
}

func scanDir(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("item: asset pool unreadable", "dir", dir, "err", err)
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out
}
