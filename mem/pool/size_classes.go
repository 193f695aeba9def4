package pool

import "math"

// SizeClassConfig defines the segregated free-list strategy. Different
// configurations trade lookup speed against internal fragmentation.
type SizeClassConfig struct {
	// Name identifies this configuration in benchmarks and stats output.
	Name string

	// Small block settings (linear increments).
	SmallMin       int // minimum block size (header included, typically 32)
	SmallMax       int // upper bound for linear increments
	SmallIncrement int // bucket width for small blocks

	// Medium block settings (geometric growth). Blocks at or above
	// MediumMax go to the large list instead of a size-class heap.
	MediumMax    int
	GrowthFactor float64
}

// Predefined configurations.
var (
	// ConfigFineGrained: many small buckets, good for varied workloads.
	ConfigFineGrained = SizeClassConfig{
		Name:           "FineGrained",
		SmallMin:       minBlockSize,
		SmallMax:       256,
		SmallIncrement: 8,
		MediumMax:      16384,
		GrowthFactor:   1.5,
	}

	// ConfigBalanced: balance between heap count and granularity.
	ConfigBalanced = SizeClassConfig{
		Name:           "Balanced",
		SmallMin:       minBlockSize,
		SmallMax:       512,
		SmallIncrement: 16,
		MediumMax:      16384,
		GrowthFactor:   1.5,
	}

	// ConfigCoarse: fewer buckets, faster operations, more internal
	// fragmentation.
	ConfigCoarse = SizeClassConfig{
		Name:           "Coarse",
		SmallMin:       minBlockSize,
		SmallMax:       512,
		SmallIncrement: 32,
		MediumMax:      16384,
		GrowthFactor:   2.0,
	}

	// DefaultConfig is used when no configuration is supplied.
	DefaultConfig = ConfigBalanced
)

// sizeClassTable holds the computed size class boundaries.
type sizeClassTable struct {
	config     SizeClassConfig
	boundaries []int // upper bound (inclusive) for each size class
	numClasses int
}

// newSizeClassTable computes size class boundaries from config.
func newSizeClassTable(config SizeClassConfig) *sizeClassTable {
	table := &sizeClassTable{
		config:     config,
		boundaries: make([]int, 0, 64),
	}

	// Phase 1: small blocks, linear increments.
	for size := config.SmallMin; size < config.SmallMax; size += config.SmallIncrement {
		table.boundaries = append(table.boundaries, size+config.SmallIncrement-1)
	}

	// Phase 2: medium blocks, geometric growth.
	if config.SmallMax < config.MediumMax {
		size := config.SmallMax
		for size < config.MediumMax {
			next := int(math.Ceil(float64(size) * config.GrowthFactor))
			if next <= size {
				next = size + 1 // ensure progress
			}
			if next > config.MediumMax {
				next = config.MediumMax
			}
			table.boundaries = append(table.boundaries, next-1)
			size = next
		}
	}

	table.numClasses = len(table.boundaries)
	return table
}

// classOf returns the size class index for a block size, or numClasses for
// sizes that belong on the large list.
func (t *sizeClassTable) classOf(size int) int {
	lo, hi := 0, t.numClasses-1

	for lo <= hi {
		mid := (lo + hi) / 2
		if size <= t.boundaries[mid] {
			if mid == 0 || size > t.boundaries[mid-1] {
				return mid
			}
			hi = mid - 1
		} else {
			lo = mid + 1
		}
	}

	return t.numClasses
}

func (t *sizeClassTable) String() string {
	return t.config.Name
}
