package registry

// Strategy is a swappable spatial index over the region set. Rebuild
// derives the index from scratch; Candidates returns the ids of regions
// that may contain the point, in visitation order. The index is a cache:
// it holds ids only and is rebuilt from the region map after any
// mutation.
type Strategy interface {
	Rebuild(bounds Bounds, regions []*Region)
	Candidates(x, y int) []string
}

// Quadtree subdivision limits.
const (
	DefaultMaxDepth       = 5
	DefaultSplitThreshold = 4
)

// QuadTree is the default index: recursive subdivision of the terminal
// grid into four quadrants. A node splits once its population exceeds
// the threshold, until the depth limit. A region id lives in every leaf
// its bounds intersect.
type QuadTree struct {
	maxDepth       int
	splitThreshold int

	root   *quadNode
	bounds map[string]Bounds
}

// NewQuadTree creates a quadtree index. Non-positive limits take the
// defaults.
func NewQuadTree(maxDepth, splitThreshold int) *QuadTree {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if splitThreshold <= 0 {
		splitThreshold = DefaultSplitThreshold
	}
	return &QuadTree{maxDepth: maxDepth, splitThreshold: splitThreshold}
}

type quadNode struct {
	bounds   Bounds
	depth    int
	ids      []string
	children *[4]*quadNode
}

// Rebuild constructs the tree from the region list. Regions are inserted
// in the order given, which the registry keeps as registration order, so
// leaf membership preserves the documented tie-break order.
func (q *QuadTree) Rebuild(bounds Bounds, regions []*Region) {
	q.root = &quadNode{bounds: bounds}
	q.bounds = make(map[string]Bounds, len(regions))

	for _, r := range regions {
		q.bounds[r.ID] = r.Bounds
		if r.Bounds.Intersects(bounds) {
			q.insert(q.root, r.ID, r.Bounds)
		}
	}
}

func (q *QuadTree) insert(n *quadNode, id string, b Bounds) {
	if n.children != nil {
		for _, child := range n.children {
			if b.Intersects(child.bounds) {
				q.insert(child, id, b)
			}
		}
		return
	}

	n.ids = append(n.ids, id)
	if len(n.ids) > q.splitThreshold && n.depth < q.maxDepth {
		q.split(n)
	}
}

// split subdivides a leaf into NW, NE, SW, SE quadrants and pushes its
// membership down. Cells too small to divide stay leaves.
func (q *QuadTree) split(n *quadNode) {
	if n.bounds.Width < 2 || n.bounds.Height < 2 {
		return
	}

	halfW := n.bounds.Width / 2
	halfH := n.bounds.Height / 2
	x, y := n.bounds.X, n.bounds.Y

	n.children = &[4]*quadNode{
		{bounds: Bounds{X: x, Y: y, Width: halfW, Height: halfH}, depth: n.depth + 1},
		{bounds: Bounds{X: x + halfW, Y: y, Width: n.bounds.Width - halfW, Height: halfH}, depth: n.depth + 1},
		{bounds: Bounds{X: x, Y: y + halfH, Width: halfW, Height: n.bounds.Height - halfH}, depth: n.depth + 1},
		{bounds: Bounds{X: x + halfW, Y: y + halfH, Width: n.bounds.Width - halfW, Height: n.bounds.Height - halfH}, depth: n.depth + 1},
	}

	ids := n.ids
	n.ids = nil
	for _, id := range ids {
		b := q.bounds[id]
		for _, child := range n.children {
			if b.Intersects(child.bounds) {
				q.insert(child, id, b)
			}
		}
	}
}

// Candidates walks the tree to the leaf containing the point. Quadrants
// partition their parent, so exactly one path is followed; ids come back
// in insertion order.
func (q *QuadTree) Candidates(x, y int) []string {
	if q.root == nil || !q.root.bounds.Contains(x, y) {
		return nil
	}

	n := q.root
	for n.children != nil {
		next := n
		for _, child := range n.children {
			if child.bounds.Contains(x, y) {
				next = child
				break
			}
		}
		if next == n {
			// Point inside the node but no child claims it: degenerate
			// zero-area quadrant. Treat as empty.
			return nil
		}
		n = next
	}
	return n.ids
}

// Linear is the fallback index: no spatial structure, every region is a
// candidate in registration order. It must produce identical FindAt
// results to QuadTree for any region set.
type Linear struct {
	ids []string
}

// NewLinear creates a linear index.
func NewLinear() *Linear {
	return &Linear{}
}

// Rebuild records ids in registration order.
func (l *Linear) Rebuild(_ Bounds, regions []*Region) {
	l.ids = l.ids[:0]
	for _, r := range regions {
		l.ids = append(l.ids, r.ID)
	}
}

// Candidates returns every region id.
func (l *Linear) Candidates(_, _ int) []string {
	return l.ids
}
