package btree

// Node is the in-memory image of one on-disk node record. Its key_pos and
// child_pos arrays are always allocated at full capacity for the tree's
// degree (2t-1 and 2t respectively), regardless of used_keys, so a node's
// serialized size is a constant function of t alone.
type Node struct {
	Pos       int64
	T         int
	IsLeaf    bool
	IsDeleted bool
	UsedKeys  uint16
	KeyPos    []int64
	ChildPos  []int64
}

func newNode(t int, isLeaf bool) *Node {
	return &Node{
		T:        t,
		IsLeaf:   isLeaf,
		KeyPos:   make([]int64, 2*t-1),
		ChildPos: make([]int64, 2*t),
	}
}

// MaxKeys is the maximum number of keys a node of this degree can hold
// before it must split: 2t-1.
func (n *Node) MaxKeys() int { return 2*n.T - 1 }

// MaxChildren is 2t.
func (n *Node) MaxChildren() int { return 2 * n.T }

// IsFull reports whether the node already holds its maximum key count and
// must be split before another key can be inserted into it.
func (n *Node) IsFull() bool { return int(n.UsedKeys) >= n.MaxKeys() }

// nodeSizeInBytes returns the fixed, degree-dependent serialized size of a
// node record: 1 flag byte + 2 used_keys bytes + (2t-1) key offsets + 2t
// child offsets, each offset 8 bytes.
func nodeSizeInBytes(t int) int64 {
	return 1 + 2 + int64(2*t-1)*8 + int64(2*t)*8
}

const (
	flagIsLeaf    uint8 = 1 << 0
	flagIsDeleted uint8 = 1 << 1
)
