package cluster

import "fmt"

// Info describes one cluster's bookkeeping fields, mirroring the on-disk
// ClusterInfo record from spec.md §4.4.
type Info struct {
	ClusterID    uint32
	VectorCount  uint32
	Capacity     uint32
	StartOffset  uint64
	CentroidDim  uint32
	Centroid     []float32
}

// Strategy is the clustering contract every assignment algorithm must
// satisfy (spec.md §4.4).
type Strategy interface {
	// Initialize prepares the strategy for vectors of the given
	// dimensionality with up to maxClusters clusters.
	Initialize(dim, maxClusters int) error

	// Assign returns the cluster id vec is closest to, lazily initializing
	// centroids on first use.
	Assign(vec []float32) (uint32, error)

	// Add stores vec under id, assigns it to a cluster, and updates that
	// cluster's centroid.
	Add(vec []float32, id uint32) (uint32, error)

	// Remove erases id's membership and recomputes its former cluster's
	// centroid.
	Remove(id uint32)

	// ClosestClusters returns up to n cluster ids ordered by ascending L2
	// distance from query to centroid.
	ClosestClusters(query []float32, n int) ([]uint32, error)

	// Centroid returns a copy of a cluster's current centroid.
	Centroid(clusterID uint32) ([]float32, bool)

	// Size returns the number of vectors currently assigned to a cluster.
	Size(clusterID uint32) int

	// AllClusters returns every cluster id known to the strategy.
	AllClusters() []uint32

	// Rebalance performs one Lloyd step: reassign every stored vector to
	// its current closest centroid, then recompute all centroids. Returns
	// true iff any assignment changed.
	Rebalance() (bool, error)

	// Serialize returns the strategy's full on-disk model (spec.md §4.4).
	Serialize() ([]byte, error)

	// Deserialize replaces the strategy's in-memory state from a model
	// produced by Serialize.
	Deserialize(data []byte) error

	// Save writes Serialize()'s output to path.
	Save(path string) error

	// Load replaces in-memory state from the model stored at path.
	Load(path string) error

	// Name identifies the strategy, used by the factory and persisted
	// alongside the header's strategy_name field.
	Name() string
}

// ErrUnknownStrategy is returned by New for an unrecognized strategy name
// (spec.md §4.5: "clustering strategy name unknown" fails initialize).
var ErrUnknownStrategy = fmt.Errorf("cluster: unknown strategy name")

// New constructs a registered Strategy by name. Only "kmeans" is built in;
// unknown names are a hard InvalidArgument-class error rather than a
// silent fallback, per spec.md Open Question #1.
func New(name string) (Strategy, error) {
	switch name {
	case "kmeans", "":
		return NewKMeans(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
