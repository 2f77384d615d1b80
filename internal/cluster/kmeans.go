package cluster

import (
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vcstore/distance"
)

type vectorRow struct {
	id   uint32
	data []float32
}

// KMeans implements Strategy with Euclidean-distance cluster assignment,
// lazy centroid initialization, and incremental add/remove updates
// (spec.md §4.4).
type KMeans struct {
	mu sync.Mutex

	dim         int
	maxClusters int

	initialized bool // centroids have been seeded

	centroids []([]float32)       // index: cluster id
	members   []*roaring.Bitmap   // index: cluster id, set of vector ids
	vectors   map[uint32]vectorRow // all currently stored vectors, by id
}

// NewKMeans returns an uninitialized KMeans strategy.
func NewKMeans() *KMeans {
	return &KMeans{
		vectors: make(map[uint32]vectorRow),
	}
}

func (k *KMeans) Name() string { return "kmeans" }

func (k *KMeans) Initialize(dim, maxClusters int) error {
	if dim <= 0 {
		return fmt.Errorf("cluster: dimension must be positive, got %d", dim)
	}
	if maxClusters <= 0 {
		return fmt.Errorf("cluster: max clusters must be positive, got %d", maxClusters)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.dim = dim
	k.maxClusters = maxClusters
	k.centroids = nil
	k.members = nil
	k.initialized = false
	k.vectors = make(map[uint32]vectorRow)
	return nil
}

// ensureInitialized lazily seeds centroids per spec.md §4.4: if vectors
// have already been added, sample up to maxClusters of them (shuffled with
// a time-seeded PRNG); fill any remaining slots with uniform random
// vectors in [-1, 1]^D. Caller must hold k.mu.
func (k *KMeans) ensureInitialized() {
	if k.initialized {
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	ids := make([]uint32, 0, len(k.vectors))
	for id := range k.vectors {
		ids = append(ids, id)
	}
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

	k.centroids = make([][]float32, k.maxClusters)
	k.members = make([]*roaring.Bitmap, k.maxClusters)

	n := len(ids)
	if n > k.maxClusters {
		n = k.maxClusters
	}
	for c := 0; c < n; c++ {
		src := k.vectors[ids[c]].data
		cc := make([]float32, k.dim)
		copy(cc, src)
		k.centroids[c] = cc
	}
	for c := n; c < k.maxClusters; c++ {
		cc := make([]float32, k.dim)
		for i := range cc {
			cc[i] = rng.Float32()*2 - 1
		}
		k.centroids[c] = cc
	}
	for c := 0; c < k.maxClusters; c++ {
		k.members[c] = roaring.New()
	}

	k.initialized = true
}

// closestCentroid returns the cluster id whose centroid is nearest to vec
// under L2 distance, ties broken by lowest id. Caller must hold k.mu and
// have already called ensureInitialized.
func (k *KMeans) closestCentroid(vec []float32) uint32 {
	best := uint32(0)
	bestDist := float32(-1)
	for c, centroid := range k.centroids {
		d := distance.SquaredL2(vec, centroid)
		if bestDist < 0 || d < bestDist {
			bestDist = d
			best = uint32(c)
		}
	}
	return best
}

func (k *KMeans) Assign(vec []float32) (uint32, error) {
	if len(vec) != k.dim {
		return 0, fmt.Errorf("cluster: vector dimension %d != %d", len(vec), k.dim)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.ensureInitialized()
	return k.closestCentroid(vec), nil
}

func (k *KMeans) Add(vec []float32, id uint32) (uint32, error) {
	if len(vec) != k.dim {
		return 0, fmt.Errorf("cluster: vector dimension %d != %d", len(vec), k.dim)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.ensureInitialized()

	// overwrite: drop any prior membership before reassigning.
	if prev, ok := k.vectors[id]; ok {
		k.removeFromCluster(prev.id, k.findMembership(prev.id))
	}

	cc := make([]float32, k.dim)
	copy(cc, vec)
	k.vectors[id] = vectorRow{id: id, data: cc}

	cid := k.closestCentroid(vec)
	k.members[cid].Add(id)
	k.recomputeCentroid(cid)

	return cid, nil
}

func (k *KMeans) findMembership(id uint32) uint32 {
	for c, bm := range k.members {
		if bm != nil && bm.Contains(id) {
			return uint32(c)
		}
	}
	return 0
}

func (k *KMeans) removeFromCluster(id uint32, cid uint32) {
	if int(cid) < len(k.members) && k.members[cid] != nil {
		k.members[cid].Remove(id)
		k.recomputeCentroid(cid)
	}
}

// recomputeCentroid sets cluster cid's centroid to the arithmetic mean of
// its current members. An empty cluster keeps its previous centroid
// (spec.md §4.4 remove()). Caller must hold k.mu.
func (k *KMeans) recomputeCentroid(cid uint32) {
	bm := k.members[cid]
	if bm == nil || bm.IsEmpty() {
		return
	}

	sum := make([]float32, k.dim)
	count := 0
	it := bm.Iterator()
	for it.HasNext() {
		id := it.Next()
		row, ok := k.vectors[id]
		if !ok {
			continue
		}
		for i, v := range row.data {
			sum[i] += v
		}
		count++
	}
	if count == 0 {
		return
	}
	for i := range sum {
		sum[i] /= float32(count)
	}
	k.centroids[cid] = sum
}

func (k *KMeans) Remove(id uint32) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if _, ok := k.vectors[id]; !ok {
		return
	}
	cid := k.findMembership(id)
	delete(k.vectors, id)
	k.removeFromCluster(id, cid)
}

func (k *KMeans) ClosestClusters(query []float32, n int) ([]uint32, error) {
	if len(query) != k.dim {
		return nil, fmt.Errorf("cluster: query dimension %d != %d", len(query), k.dim)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	k.ensureInitialized()

	type scored struct {
		id   uint32
		dist float32
	}
	all := make([]scored, len(k.centroids))
	for c, centroid := range k.centroids {
		all[c] = scored{id: uint32(c), dist: distance.SquaredL2(query, centroid)}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].dist != all[j].dist {
			return all[i].dist < all[j].dist
		}
		return all[i].id < all[j].id
	})

	if n > len(all) {
		n = len(all)
	}
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = all[i].id
	}
	return out, nil
}

func (k *KMeans) Centroid(clusterID uint32) ([]float32, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if int(clusterID) >= len(k.centroids) {
		return nil, false
	}
	cc := make([]float32, len(k.centroids[clusterID]))
	copy(cc, k.centroids[clusterID])
	return cc, true
}

func (k *KMeans) Size(clusterID uint32) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	if int(clusterID) >= len(k.members) || k.members[clusterID] == nil {
		return 0
	}
	return int(k.members[clusterID].GetCardinality())
}

func (k *KMeans) AllClusters() []uint32 {
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make([]uint32, len(k.centroids))
	for c := range k.centroids {
		out[c] = uint32(c)
	}
	return out
}

// Rebalance performs one Lloyd step: reassign every stored vector to its
// current closest centroid, then recompute all centroids. Returns true iff
// any assignment changed (spec.md §4.4).
func (k *KMeans) Rebalance() (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.ensureInitialized()

	changed := false
	newMembers := make([]*roaring.Bitmap, len(k.members))
	for c := range newMembers {
		newMembers[c] = roaring.New()
	}

	for id, row := range k.vectors {
		oldCid := k.findMembership(id)
		newCid := k.closestCentroid(row.data)
		if newCid != oldCid {
			changed = true
		}
		newMembers[newCid].Add(id)
	}

	k.members = newMembers
	for c := range k.centroids {
		k.recomputeCentroid(uint32(c))
	}

	return changed, nil
}

func (k *KMeans) Save(path string) error {
	data, err := k.Serialize()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (k *KMeans) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cluster: load %s: %w", path, err)
	}
	return k.Deserialize(data)
}
