package btree

// Get returns the value stored under key, if any.
func (bt *BTree[K, V]) Get(key K) (V, bool, error) {
	var zero V
	if bt.root == nil {
		return zero, false, nil
	}
	return bt.searchNode(bt.root, key)
}

// Exist reports whether key is present, without decoding its value.
func (bt *BTree[K, V]) Exist(key K) (bool, error) {
	node := bt.root
	for node != nil {
		idx, found, err := bt.io.findKeyPos(node, key, less[K])
		if err != nil || found {
			return found, err
		}
		if node.IsLeaf {
			return false, nil
		}
		node, err = bt.io.ReadNode(node.ChildPos[idx])
		if err != nil {
			return false, err
		}
	}
	return false, nil
}

func (bt *BTree[K, V]) searchNode(node *Node, key K) (V, bool, error) {
	var zero V

	idx, found, err := bt.io.findKeyPos(node, key, less[K])
	if err != nil {
		return zero, false, err
	}
	if found {
		_, v, err := bt.io.ReadEntry(node.KeyPos[idx])
		return v, true, err
	}
	if node.IsLeaf {
		return zero, false, nil
	}

	child, err := bt.io.ReadNode(node.ChildPos[idx])
	if err != nil {
		return zero, false, err
	}
	return bt.searchNode(child, key)
}
