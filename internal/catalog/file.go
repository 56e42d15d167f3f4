package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
)

// LoadFile reads a TOML catalog. Decimal values may be written as strings
// ("57.50") to keep them exact.
func LoadFile(path string) (SnapshotData, error) {
	f, err := os.Open(path)
	if err != nil {
		return SnapshotData{}, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	d, err := Decode(f)
	if err != nil {
		return SnapshotData{}, fmt.Errorf("catalog %s: %w", path, err)
	}
	return d, nil
}

// Decode reads a TOML catalog from r. Unknown keys are an error so typos in a
// hand-edited catalog do not silently drop data. A BOM entry without a
// waste_factor key gets DefaultWasteFactor; an explicit value is kept as
// written, zero included, and left for Validate to judge.
func Decode(r io.Reader) (SnapshotData, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return SnapshotData{}, fmt.Errorf("read: %w", err)
	}

	var d SnapshotData
	md, err := toml.Decode(string(raw), &d)
	if err != nil {
		return SnapshotData{}, fmt.Errorf("decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return SnapshotData{}, fmt.Errorf("unknown keys %s", strings.Join(keys, ", "))
	}

	var declared wasteDeclarations
	if _, err := toml.Decode(string(raw), &declared); err != nil {
		return SnapshotData{}, fmt.Errorf("decode waste factors: %w", err)
	}
	d.applyDefaults(declared)
	return d, nil
}

// wasteDeclarations mirrors the product tables and records, per BOM entry,
// whether waste_factor was written at all.
type wasteDeclarations struct {
	Products []struct {
		BOM []struct {
			WasteFactor decimal.NullDecimal `toml:"waste_factor"`
		} `toml:"bom"`
	} `toml:"products"`
}

func (w wasteDeclarations) declared(product, entry int) bool {
	if product >= len(w.Products) || entry >= len(w.Products[product].BOM) {
		return false
	}
	return w.Products[product].BOM[entry].WasteFactor.Valid
}

func (d *SnapshotData) applyDefaults(w wasteDeclarations) {
	for i := range d.Products {
		for j := range d.Products[i].BOM {
			if !w.declared(i, j) {
				d.Products[i].BOM[j].WasteFactor = DefaultWasteFactor
			}
		}
	}
}

// FileSource serves snapshots of a TOML catalog read once at construction.
type FileSource struct {
	path string
	snap *Snapshot
}

// NewFileSource loads the catalog at path.
func NewFileSource(path string) (*FileSource, error) {
	d, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return &FileSource{path: path, snap: NewSnapshot(d)}, nil
}

// Snapshot returns the whole file catalog; it is already small and immutable.
func (f *FileSource) Snapshot(ctx context.Context, _ []int64) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.snap, nil
}
