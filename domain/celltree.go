package domain

import (
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/notargets/gofield/utils"
)

const treeLeafSize = 8

// cellTree is a bounding volume hierarchy over cell bounding boxes, split at
// the centroid median of the longest axis.
type cellTree struct {
	dim       int
	boxes     []BoundingBox
	centroids [][]float64
	order     []int
	nodes     []treeNode
}

type treeNode struct {
	box         BoundingBox
	left, right int // Children, -1 for a leaf
	start, end  int // Range of order held by a leaf
}

func buildCellTree(g Grid) (t *cellTree) {
	var (
		nc = g.NumCells()
		pm = utils.NewPartitionMap(utils.DefaultParallelDegree(0, nc), nc)
		wg = sync.WaitGroup{}
	)
	t = &cellTree{
		dim:       g.Dimension(),
		boxes:     make([]BoundingBox, nc),
		centroids: make([][]float64, nc),
		order:     make([]int, nc),
	}
	for n := 0; n < pm.ParallelDegree; n++ {
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(np)
			for c := kMin; c < kMax; c++ {
				t.boxes[c] = g.CellBounds(c)
				t.centroids[c] = t.boxes[c].Center()
				t.order[c] = c
			}
		}(n)
	}
	wg.Wait()
	if nc > 0 {
		t.build(0, nc)
	}
	log.WithFields(log.Fields{
		"cells":   nc,
		"nodes":   len(t.nodes),
		"threads": pm.ParallelDegree,
	}).Debug("built cell tree")
	return
}

func (t *cellTree) build(start, end int) (node int) {
	var (
		box       = NewBoundingBox(t.boxes[t.order[start]].Dimension())
		centroids = NewBoundingBox(box.Dimension())
	)
	for _, c := range t.order[start:end] {
		box.Extend(t.boxes[c].Min)
		box.Extend(t.boxes[c].Max)
		centroids.Extend(t.centroids[c])
	}
	node = len(t.nodes)
	t.nodes = append(t.nodes, treeNode{box: box, left: -1, right: -1, start: start, end: end})
	if end-start <= treeLeafSize {
		return
	}
	var (
		axis  = centroids.LongestAxis()
		slice = t.order[start:end]
		mid   = (start + end) / 2
	)
	sort.Slice(slice, func(i, j int) bool {
		return t.centroids[slice[i]][axis] < t.centroids[slice[j]][axis]
	})
	left := t.build(start, mid)
	right := t.build(mid, end)
	t.nodes[node].left, t.nodes[node].right = left, right
	return
}

// bounds holds every cell, an empty box for a grid without cells.
func (t *cellTree) bounds() BoundingBox {
	if len(t.nodes) == 0 {
		return NewBoundingBox(t.dim)
	}
	return t.nodes[0].box
}

// visit calls fn for the cells whose box, widened by tol, holds p until fn
// returns true.
func (t *cellTree) visit(p []float64, tol float64, fn func(c int) bool) bool {
	if len(t.nodes) == 0 {
		return false
	}
	stack := []int{0}
	for len(stack) > 0 {
		nd := t.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if !nd.box.Contains(p, tol) {
			continue
		}
		if nd.left < 0 {
			for _, c := range t.order[nd.start:nd.end] {
				if t.boxes[c].Contains(p, tol) && fn(c) {
					return true
				}
			}
			continue
		}
		stack = append(stack, nd.right, nd.left)
	}
	return false
}
