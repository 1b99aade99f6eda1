package causal

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ForestConfig controls the outcome nuisance model.
type ForestConfig struct {
	Trees          int
	MaxDepth       int
	MinSamplesLeaf int
	// Workers bounds tree-growing goroutines; <= 0 means GOMAXPROCS.
	Workers int
}

func DefaultForestConfig() ForestConfig {
	return ForestConfig{Trees: 200, MaxDepth: 6, MinSamplesLeaf: 10}
}

// Forest is a bagged ensemble of CART regression trees.
type Forest struct {
	trees []regressionTree
}

type treeNode struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
	leaf      bool
}

type regressionTree struct {
	nodes []treeNode
}

func (t regressionTree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.nodes[i]
		if n.leaf {
			return n.value
		}
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

func (f *Forest) Predict(x []float64) float64 {
	if f == nil || len(f.trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.trees))
}

// FitForest grows cfg.Trees trees on bootstrap resamples of (x, y). Tree
// seeds are drawn from rng before any goroutine starts, so the fitted forest
// is the same however the trees are scheduled.
func FitForest(ctx context.Context, x [][]float64, y []float64, cfg ForestConfig, rng *rand.Rand) (*Forest, error) {
	n := len(y)
	if n == 0 || len(x) != n {
		return nil, fmt.Errorf("%w: forest needs matching non-empty inputs", ErrDegenerate)
	}
	if cfg.Trees <= 0 {
		cfg.Trees = DefaultForestConfig().Trees
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultForestConfig().MaxDepth
	}
	if cfg.MinSamplesLeaf <= 0 {
		cfg.MinSamplesLeaf = 1
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	seeds := make([][2]uint64, cfg.Trees)
	for i := range seeds {
		seeds[i] = [2]uint64{rng.Uint64(), rng.Uint64()}
	}

	f := &Forest{trees: make([]regressionTree, cfg.Trees)}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range seeds {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			treeRng := rand.New(rand.NewPCG(seeds[i][0], seeds[i][1]))
			sample := make([]int, n)
			for k := range sample {
				sample[k] = treeRng.IntN(n)
			}
			b := treeBuilder{x: x, y: y, maxDepth: cfg.MaxDepth, minLeaf: cfg.MinSamplesLeaf}
			b.grow(sample, 0)
			f.trees[i] = regressionTree{nodes: b.nodes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}

type treeBuilder struct {
	x        [][]float64
	y        []float64
	maxDepth int
	minLeaf  int
	nodes    []treeNode
}

// grow appends the subtree for idx and returns its node index.
func (b *treeBuilder) grow(idx []int, depth int) int {
	var sum, sumSq float64
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	cnt := float64(len(idx))
	self := len(b.nodes)
	b.nodes = append(b.nodes, treeNode{leaf: true, value: sum / cnt})

	if depth >= b.maxDepth || len(idx) < 2*b.minLeaf {
		return self
	}
	parentSSE := sumSq - sum*sum/cnt
	if parentSSE <= 1e-12 {
		return self
	}

	feature, threshold, ok := b.bestSplit(idx, parentSSE)
	if !ok {
		return self
	}
	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[self] = treeNode{feature: feature, threshold: threshold, left: l, right: r}
	return self
}

// bestSplit scans every feature for the threshold minimizing the summed
// squared error of the two children, honoring the minimum leaf size.
func (b *treeBuilder) bestSplit(idx []int, parentSSE float64) (int, float64, bool) {
	n := len(idx)
	p := len(b.x[idx[0]])
	order := make([]int, n)
	bestSSE := parentSSE - 1e-12
	bestFeature, bestThreshold, found := 0, 0.0, false

	for j := 0; j < p; j++ {
		copy(order, idx)
		sort.SliceStable(order, func(a, c int) bool { return b.x[order[a]][j] < b.x[order[c]][j] })
		if b.x[order[0]][j] == b.x[order[n-1]][j] {
			continue
		}
		var totalSum, totalSq float64
		for _, i := range order {
			totalSum += b.y[i]
			totalSq += b.y[i] * b.y[i]
		}
		var leftSum, leftSq float64
		for k := 1; k < n; k++ {
			yi := b.y[order[k-1]]
			leftSum += yi
			leftSq += yi * yi
			if k < b.minLeaf || n-k < b.minLeaf {
				continue
			}
			lo, hi := b.x[order[k-1]][j], b.x[order[k]][j]
			if lo == hi {
				continue
			}
			nl, nr := float64(k), float64(n-k)
			rightSum, rightSq := totalSum-leftSum, totalSq-leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if sse < bestSSE {
				bestSSE = sse
				bestFeature = j
				bestThreshold = lo + (hi-lo)/2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}
