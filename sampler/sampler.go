// Package sampler - Aspect ratio grouping for detection batches.
//
// Samplers only need each sample's height and width, which a dataset can
// answer from its annotations without decoding a single image.
package sampler

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Geometry is the height/width query of a dataset.
type Geometry interface {
	Len() int
	HeightWidth(index int) (int, int, error)
}

// AspectRatios computes width/height for every index of g.
//
// Arguments:
//   - ctx: Cancels outstanding queries.
//   - g: The dataset to query.
//   - workers: The maximum number of concurrent queries; <= 0 uses GOMAXPROCS.
//
// Returns:
//   - []float32: The aspect ratio per index.
//   - error: The first query error, or the context error.
//
// @example
// ratios, err := sampler.AspectRatios(ctx, ds, 8)
func AspectRatios(ctx context.Context, g Geometry, workers int) ([]float32, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	n := g.Len()
	ratios := make([]float32, n)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	sem := make(chan struct{}, workers)
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
		case sem <- struct{}{}:
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				defer func() { <-sem }()

				if ctx.Err() != nil {
					return
				}
				h, w, err := g.HeightWidth(idx)
				if err != nil {
					fail(errors.Wrapf(err, "height and width of sample %d", idx))
					return
				}
				if h <= 0 {
					fail(errors.Errorf("sample %d has height %d", idx, h))
					return
				}
				ratios[idx] = float32(w) / float32(h)
			}(i)
			continue
		}
		break
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ratios, nil
}

// Bins returns the 2k+1 group edges 2^linspace(-1, 1, 2k+1), or [1] when
// k is zero.
func Bins(k int) []float32 {
	if k <= 0 {
		return []float32{1}
	}
	n := 2*k + 1
	bins := make([]float32, n)
	for i := range bins {
		exp := -1 + 2*float32(i)/float32(n-1)
		bins[i] = math32.Pow(2, exp)
	}
	return bins
}

// Quantize assigns each ratio a group id: the number of bin edges less
// than or equal to it. There are len(Bins(k))+1 groups.
func Quantize(ratios []float32, k int) []int {
	bins := Bins(k)
	groups := make([]int, len(ratios))
	for i, r := range ratios {
		groups[i] = sort.Search(len(bins), func(j int) bool { return bins[j] > r })
	}
	return groups
}

// GroupedBatches builds batches whose members share a group id, visiting
// indices in order. A batch is emitted as soon as its group fills up;
// partial batches are flushed at the end, in ascending group order.
//
// Arguments:
//   - groups: The group id per dataset index.
//   - order: The dataset indices to visit, typically a shuffled permutation.
//   - batchSize: The batch size, > 0.
//
// Returns:
//   - [][]int: The batches of dataset indices.
//   - error: An error if batchSize is not positive or an index in order is
//     outside groups.
func GroupedBatches(groups []int, order []int, batchSize int) ([][]int, error) {
	if batchSize <= 0 {
		return nil, errors.Errorf("batch size must be positive, got %d", batchSize)
	}

	var batches [][]int
	pending := make(map[int][]int)
	for _, idx := range order {
		if idx < 0 || idx >= len(groups) {
			return nil, errors.Errorf("index %d outside %d groups", idx, len(groups))
		}
		g := groups[idx]
		pending[g] = append(pending[g], idx)
		if len(pending[g]) == batchSize {
			batches = append(batches, pending[g])
			delete(pending, g)
		}
	}

	left := make([]int, 0, len(pending))
	for g := range pending {
		left = append(left, g)
	}
	sort.Ints(left)
	for _, g := range left {
		batches = append(batches, pending[g])
	}
	return batches, nil
}

// Histogram counts the members of each group id.
func Histogram(groups []int) map[int]int {
	counts := make(map[int]int)
	for _, g := range groups {
		counts[g]++
	}
	return counts
}
