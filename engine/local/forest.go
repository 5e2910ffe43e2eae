package local

import (
	"math"
	"math/rand"
	"sort"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/go-flint/flint"
	"github.com/go-flint/flint/errors"
	"github.com/go-flint/flint/wire"
)

// forestModel is engine-side trained random forest regression state
type forestModel struct {
	labelColumn string
	columns     []string
	numTrees    int64
	maxDepth    int64
	seed        *int64 // nil when the seed was time-derived
	trees       []*treeNode
}

func (m *forestModel) modelType() flint.ModelType {
	return flint.RandomForestRegressorModelType
}

// treeNode is one node of a regression tree. Leaves predict their mean
// label; internal nodes route on feature < threshold. Fields are exported
// for the persistence snapshot.
type treeNode struct {
	Leaf      bool      `json:"leaf"`
	Value     float64   `json:"value,omitempty"`
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

// TrainRandomForestRegressor trains a random forest regression model on an
// engine-owned dataset
func (e *Engine) TrainRandomForestRegressor(ds flint.DatasetHandle, params flint.RandomForestParams) (flint.ModelHandle, error) {
	d, err := e.datasetFor(ds)
	if err != nil {
		return nil, err
	}
	columns, err := params.Columns.Strings()
	if err != nil {
		return nil, err
	}
	seed, err := params.Seed.Int64OrNil()
	if err != nil {
		return nil, err
	}

	var multierr *multierror.Error
	if params.LabelColumn == "" {
		multierr = multierror.Append(multierr, errors.InvalidParameterError{Name: "labelColumn", Reason: "must not be empty"})
	}
	if len(columns) == 0 {
		multierr = multierror.Append(multierr, errors.InvalidParameterError{Name: "columns", Reason: "must not be empty"})
	}
	if params.NumTrees < 1 {
		multierr = multierror.Append(multierr, errors.InvalidParameterError{Name: "numTrees", Reason: "must be at least 1"})
	}
	if params.MaxDepth < 1 {
		multierr = multierror.Append(multierr, errors.InvalidParameterError{Name: "maxDepth", Reason: "must be at least 1"})
	}
	if err := multierr.ErrorOrNil(); err != nil {
		return nil, err
	}

	points, err := d.gatherNumeric(columns)
	if err != nil {
		return nil, err
	}
	labels, err := d.gatherNumeric([]string{params.LabelColumn})
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, errors.EmptyDatasetError{}
	}
	targets := make([]float64, len(labels))
	for i, label := range labels {
		targets[i] = label[0]
	}

	effectiveSeed := time.Now().UnixNano()
	if seed != nil {
		effectiveSeed = *seed
	}
	trees := make([]*treeNode, params.NumTrees)
	g := new(errgroup.Group)
	g.SetLimit(e.opts.Parallelism)
	for t := range trees {
		t := t
		g.Go(func() error {
			idxs := bootstrapIndexes(len(points), params.NumTrees > 1, effectiveSeed+int64(t))
			trees[t] = growTree(points, targets, idxs, int(params.MaxDepth))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := &forestModel{
		labelColumn: params.LabelColumn,
		columns:     columns,
		numTrees:    params.NumTrees,
		maxDepth:    params.MaxDepth,
		seed:        seed,
		trees:       trees,
	}
	handle := e.newModelHandle(m)
	e.log.Info("trained random forest regressor",
		zap.String("model_id", handle.ID()),
		zap.Int64("num_trees", params.NumTrees),
		zap.Int("rows", len(points)))
	return handle, nil
}

// bootstrapIndexes samples row indices for one tree. A single-tree forest
// trains on the full dataset; larger forests resample with replacement,
// each tree with its own seed.
func bootstrapIndexes(n int, bootstrap bool, seed int64) []int {
	idxs := make([]int, n)
	if !bootstrap {
		for i := range idxs {
			idxs[i] = i
		}
		return idxs
	}
	rng := rand.New(rand.NewSource(seed))
	for i := range idxs {
		idxs[i] = rng.Intn(n)
	}
	return idxs
}

// growTree builds a regression tree by recursive variance-reducing splits
func growTree(points [][]float64, targets []float64, idxs []int, maxDepth int) *treeNode {
	mean, sse := meanAndSSE(targets, idxs)
	if maxDepth == 0 || len(idxs) < 2 || sse == 0 {
		return &treeNode{Leaf: true, Value: mean}
	}
	feature, threshold, ok := bestSplit(points, targets, idxs)
	if !ok {
		return &treeNode{Leaf: true, Value: mean}
	}
	var left, right []int
	for _, idx := range idxs {
		if points[idx][feature] < threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}
	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      growTree(points, targets, left, maxDepth-1),
		Right:     growTree(points, targets, right, maxDepth-1),
	}
}

// bestSplit scans every feature's candidate thresholds (midpoints between
// consecutive distinct sorted values) for the split minimizing the summed
// squared error of the two sides
func bestSplit(points [][]float64, targets []float64, idxs []int) (feature int, threshold float64, ok bool) {
	bestScore := math.MaxFloat64
	dim := len(points[idxs[0]])
	sorted := make([]int, len(idxs))
	for f := 0; f < dim; f++ {
		copy(sorted, idxs)
		sort.Slice(sorted, func(a, b int) bool {
			return points[sorted[a]][f] < points[sorted[b]][f]
		})
		// prefix sums over the sorted order make each candidate O(1)
		leftSum, leftSq := 0.0, 0.0
		totalSum, totalSq := 0.0, 0.0
		for _, idx := range sorted {
			totalSum += targets[idx]
			totalSq += targets[idx] * targets[idx]
		}
		for i := 0; i < len(sorted)-1; i++ {
			y := targets[sorted[i]]
			leftSum += y
			leftSq += y * y
			a, b := points[sorted[i]][f], points[sorted[i+1]][f]
			if a == b {
				continue
			}
			nLeft := float64(i + 1)
			nRight := float64(len(sorted) - i - 1)
			score := (leftSq - leftSum*leftSum/nLeft) +
				((totalSq - leftSq) - (totalSum-leftSum)*(totalSum-leftSum)/nRight)
			if score < bestScore {
				bestScore = score
				feature = f
				threshold = (a + b) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// meanAndSSE computes the mean label and its summed squared error over idxs
func meanAndSSE(targets []float64, idxs []int) (mean, sse float64) {
	for _, idx := range idxs {
		mean += targets[idx]
	}
	mean /= float64(len(idxs))
	for _, idx := range idxs {
		delta := targets[idx] - mean
		sse += delta * delta
	}
	return mean, sse
}

// predictPoint routes one observation through a tree to its leaf prediction
func (n *treeNode) predictPoint(point []float64) float64 {
	for !n.Leaf {
		if point[n.Feature] < n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// resolveColumns applies the same optional-column defaulting policy as the
// k-means operations
func (m *forestModel) resolveColumns(columns wire.Optional) ([]string, error) {
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

// predict appends a predicted_value column holding the forest mean for
// every row
func (m *forestModel) predict(e *Engine, d *dataset, columns wire.Optional) error {
	names, err := m.resolveColumns(columns)
	if err != nil {
		return err
	}
	idxs, err := d.numericIndexes(names)
	if err != nil {
		return err
	}
	parts := make([][]float64, len(d.partitions))
	g := new(errgroup.Group)
	g.SetLimit(e.opts.Parallelism)
	for pi, part := range d.partitions {
		pi, part := pi, part
		g.Go(func() error {
			points := part.gatherNumeric(idxs)
			predictions := make([]float64, len(points))
			for r, point := range points {
				sum := 0.0
				for _, tree := range m.trees {
					sum += tree.predictPoint(point)
				}
				predictions[r] = sum / float64(len(m.trees))
			}
			parts[pi] = predictions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return d.appendFloat64Column("predicted_value", parts)
}
