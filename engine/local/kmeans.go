package local

import (
	"fmt"
	"math"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-flint/flint"
	"github.com/go-flint/flint/errors"
	"github.com/go-flint/flint/wire"
)

// kmeansModel is engine-side trained k-means state. Centroids live in the
// scaled observation space.
type kmeansModel struct {
	columns       []string
	scalings      []float64 // nil when training was unscaled
	k             int64
	maxIterations int64
	epsilon       float64
	initMode      string
	seed          *int64 // nil when the seed was time-derived
	centroids     [][]float64
}

func (m *kmeansModel) modelType() flint.ModelType {
	return flint.KMeansModelType
}

// TrainKMeans trains a k-means clustering model on an engine-owned dataset
func (e *Engine) TrainKMeans(ds flint.DatasetHandle, params flint.KMeansParams) (flint.ModelHandle, error) {
	d, err := e.datasetFor(ds)
	if err != nil {
		return nil, err
	}
	columns, err := params.Columns.Strings()
	if err != nil {
		return nil, err
	}
	scalings, err := params.Scalings.Float64sOrNil()
	if err != nil {
		return nil, err
	}
	seed, err := params.Seed.Int64OrNil()
	if err != nil {
		return nil, err
	}

	var multierr *multierror.Error
	if len(columns) == 0 {
		multierr = multierror.Append(multierr, errors.InvalidParameterError{Name: "columns", Reason: "must not be empty"})
	}
	if params.K < 1 {
		multierr = multierror.Append(multierr, errors.InvalidParameterError{Name: "k", Reason: "must be at least 1"})
	}
	if params.MaxIterations < 1 {
		multierr = multierror.Append(multierr, errors.InvalidParameterError{Name: "maxIterations", Reason: "must be at least 1"})
	}
	if params.Epsilon < 0 {
		multierr = multierror.Append(multierr, errors.InvalidParameterError{Name: "epsilon", Reason: "must not be negative"})
	}
	if params.InitializationMode != flint.KMeansInitRandom && params.InitializationMode != flint.KMeansInitParallel {
		multierr = multierror.Append(multierr, errors.InvalidParameterError{Name: "initializationMode", Reason: "must be \"random\" or \"k-means||\""})
	}
	if scalings != nil && len(scalings) != len(columns) {
		multierr = multierror.Append(multierr, errors.InvalidParameterError{Name: "scalings", Reason: "length must match columns"})
	}
	if err := multierr.ErrorOrNil(); err != nil {
		return nil, err
	}

	points, err := d.gatherNumeric(columns)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, errors.EmptyDatasetError{}
	}
	if int64(len(points)) < params.K {
		return nil, errors.InvalidParameterError{Name: "k", Reason: "exceeds the number of rows"}
	}
	applyScalings(points, scalings)

	effectiveSeed := time.Now().UnixNano()
	if seed != nil {
		effectiveSeed = *seed
	}
	centroids := initCentroids(points, int(params.K), params.InitializationMode, effectiveSeed)
	iterations := lloyd(points, centroids, int(params.MaxIterations), params.Epsilon, e.log)

	m := &kmeansModel{
		columns:       columns,
		scalings:      scalings,
		k:             params.K,
		maxIterations: params.MaxIterations,
		epsilon:       params.Epsilon,
		initMode:      params.InitializationMode,
		seed:          seed,
		centroids:     centroids,
	}
	handle := e.newModelHandle(m)
	e.log.Info("trained kmeans model",
		zap.String("model_id", handle.ID()),
		zap.Int64("k", params.K),
		zap.Int("rows", len(points)),
		zap.Int("iterations", iterations))
	return handle, nil
}

// applyScalings multiplies each observation column by its scaling factor
func applyScalings(points [][]float64, scalings []float64) {
	if scalings == nil {
		return
	}
	for _, point := range points {
		for j := range point {
			point[j] *= scalings[j]
		}
	}
}

// initCentroids selects the initial cluster centers. Both modes are
// deterministic for a given seed so that training is reproducible.
func initCentroids(points [][]float64, k int, mode string, seed int64) [][]float64 {
	var idxs []int
	if mode == flint.KMeansInitRandom {
		idxs = sampleDistinct(seed, len(points), k)
	} else {
		idxs = farthestPoints(points, k, seed)
	}
	centroids := make([][]float64, k)
	for i, idx := range idxs {
		centroid := make([]float64, len(points[idx]))
		copy(centroid, points[idx])
		centroids[i] = centroid
	}
	return centroids
}

// sampleDistinct picks k distinct row indices with a multiplicative scan,
// so a seed always reproduces the same selection
func sampleDistinct(seed int64, n, k int) []int {
	s := uint64(seed)
	if s == 0 {
		s = 1
	}
	taken := make([]bool, n)
	idxs := make([]int, 0, k)
	for i := 0; len(idxs) < k; i++ {
		idx := int(s * uint64(i+1) % uint64(n))
		for taken[idx] {
			idx = (idx + 1) % n
		}
		taken[idx] = true
		idxs = append(idxs, idx)
	}
	return idxs
}

// farthestPoints seeds the first center from the seed, then repeatedly picks
// the point farthest from its nearest chosen center
func farthestPoints(points [][]float64, k int, seed int64) []int {
	n := len(points)
	idxs := make([]int, 0, k)
	idxs = append(idxs, int(uint64(seed)%uint64(n)))
	for len(idxs) < k {
		best, bestDist := 0, -1.0
		for i, point := range points {
			nearest := math.MaxFloat64
			for _, idx := range idxs {
				if d := squaredDistance(point, points[idx]); d < nearest {
					nearest = d
				}
			}
			if nearest > bestDist {
				best, bestDist = i, nearest
			}
		}
		idxs = append(idxs, best)
	}
	return idxs
}

// lloyd iterates assignment and centroid updates in place until the maximum
// centroid movement drops below epsilon or the iteration bound is reached.
// Assignment ties go to the lowest centroid index; empty clusters keep their
// previous centroid. Returns the number of iterations performed.
func lloyd(points [][]float64, centroids [][]float64, maxIterations int, epsilon float64, logger *zap.Logger) int {
	k := len(centroids)
	dim := len(centroids[0])
	iterations := 0
	for it := 0; it < maxIterations; it++ {
		iterations = it + 1
		sums := make([][]float64, k)
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		counts := make([]int, k)
		for _, point := range points {
			c := nearestCentroid(centroids, point)
			counts[c]++
			for j := range point {
				sums[c][j] += point[j]
			}
		}
		movement := 0.0
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			moved := 0.0
			for j := range centroids[c] {
				mean := sums[c][j] / float64(counts[c])
				delta := mean - centroids[c][j]
				moved += delta * delta
				centroids[c][j] = mean
			}
			if moved = math.Sqrt(moved); moved > movement {
				movement = moved
			}
		}
		logger.Debug("kmeans iteration",
			zap.Int("iteration", iterations),
			zap.Float64("movement", movement))
		if movement < epsilon {
			break
		}
	}
	return iterations
}

// nearestCentroid returns the index of the centroid closest to point,
// breaking ties toward the lowest index
func nearestCentroid(centroids [][]float64, point []float64) int {
	best, bestDist := 0, math.MaxFloat64
	for c, centroid := range centroids {
		if d := squaredDistance(point, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// squaredDistance computes the squared Euclidean distance between two points
func squaredDistance(a, b []float64) float64 {
	sum := 0.0
	for j := range a {
		delta := a[j] - b[j]
		sum += delta * delta
	}
	return sum
}

// resolveColumns applies the optional-column defaulting policy shared by
// predict, size and error computations: an empty Optional selects the
// training-time observation columns
func (m *kmeansModel) resolveColumns(columns wire.Optional) ([]string, error) {
	if columns.IsEmpty() {
		return m.columns, nil
	}
	names, err := columns.StringsOrNil()
	if err != nil {
		return nil, err
	}
	if len(names) != len(m.columns) {
		return nil, errors.InvalidParameterError{Name: "columns", Reason: "count must match the training columns"}
	}
	return names, nil
}

// forEachPartition gathers the observation points of every partition and
// applies fn in parallel, bounded by the engine's parallelism
func (m *kmeansModel) forEachPartition(e *Engine, d *dataset, names []string, fn func(pi int, points [][]float64) error) error {
	idxs, err := d.numericIndexes(names)
	if err != nil {
		return err
	}
	g := new(errgroup.Group)
	g.SetLimit(e.opts.Parallelism)
	for pi, part := range d.partitions {
		pi, part := pi, part
		g.Go(func() error {
			points := part.gatherNumeric(idxs)
			applyScalings(points, m.scalings)
			return fn(pi, points)
		})
	}
	return g.Wait()
}

// predict appends a cluster column holding the nearest-centroid index of
// every row
func (m *kmeansModel) predict(e *Engine, d *dataset, columns wire.Optional) error {
	names, err := m.resolveColumns(columns)
	if err != nil {
		return err
	}
	parts := make([][]int64, len(d.partitions))
	err = m.forEachPartition(e, d, names, func(pi int, points [][]float64) error {
		assignments := make([]int64, len(points))
		for r, point := range points {
			assignments[r] = int64(nearestCentroid(m.centroids, point))
		}
		parts[pi] = assignments
		return nil
	})
	if err != nil {
		return err
	}
	return d.appendInt64Column("cluster", parts)
}

// computeClusterSizes counts rows per cluster, ordered by centroid index
func (m *kmeansModel) computeClusterSizes(e *Engine, d *dataset, columns wire.Optional) ([]int64, error) {
	names, err := m.resolveColumns(columns)
	if err != nil {
		return nil, err
	}
	partials := make([][]int64, len(d.partitions))
	err = m.forEachPartition(e, d, names, func(pi int, points [][]float64) error {
		counts := make([]int64, len(m.centroids))
		for _, point := range points {
			counts[nearestCentroid(m.centroids, point)]++
		}
		partials[pi] = counts
		return nil
	})
	if err != nil {
		return nil, err
	}
	sizes := make([]int64, len(m.centroids))
	for _, counts := range partials {
		for c, count := range counts {
			sizes[c] += count
		}
	}
	return sizes, nil
}

// computeWsse sums the squared distance from every row to its nearest
// centroid. Partial sums are reduced in partition order so the result is
// deterministic.
func (m *kmeansModel) computeWsse(e *Engine, d *dataset, columns wire.Optional) (float64, error) {
	names, err := m.resolveColumns(columns)
	if err != nil {
		return 0, err
	}
	partials := make([]float64, len(d.partitions))
	err = m.forEachPartition(e, d, names, func(pi int, points [][]float64) error {
		sum := 0.0
		for _, point := range points {
			sum += squaredDistance(point, m.centroids[nearestCentroid(m.centroids, point)])
		}
		partials[pi] = sum
		return nil
	})
	if err != nil {
		return 0, err
	}
	wsse := 0.0
	for _, partial := range partials {
		wsse += partial
	}
	return wsse, nil
}

// addDistanceColumns appends one column per cluster holding the squared
// distance from every row to that cluster's centroid
func (m *kmeansModel) addDistanceColumns(e *Engine, d *dataset, columns wire.Optional) error {
	names, err := m.resolveColumns(columns)
	if err != nil {
		return err
	}
	parts := make([][][]float64, len(d.partitions)) // partition x cluster x row
	err = m.forEachPartition(e, d, names, func(pi int, points [][]float64) error {
		distances := make([][]float64, len(m.centroids))
		for c := range m.centroids {
			distances[c] = make([]float64, len(points))
		}
		for r, point := range points {
			for c, centroid := range m.centroids {
				distances[c][r] = squaredDistance(point, centroid)
			}
		}
		parts[pi] = distances
		return nil
	})
	if err != nil {
		return err
	}
	for c := range m.centroids {
		colParts := make([][]float64, len(d.partitions))
		for pi := range parts {
			colParts[pi] = parts[pi][c]
		}
		if err := d.appendFloat64Column(distanceColumnName(c), colParts); err != nil {
			return err
		}
	}
	return nil
}

// distanceColumnName names the appended distance column for cluster c
func distanceColumnName(c int) string {
	return fmt.Sprintf("distance%d", c)
}
