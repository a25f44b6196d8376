package btree

import "github.com/oba-storage/mtree/codec"

// Set inserts key/value, or overwrites the value already stored under key.
// Fixed-width values are overwritten in place; blob values are always
// appended at end-of-file and the owning node's key_pos entry is repointed,
// since a rewritten blob may not fit in its old slot.
func (bt *BTree[K, V]) Set(key K, value V) error {
	if bt.root == nil {
		return bt.createRootWithFirstEntry(key, value)
	}

	updated, err := bt.updateIfExists(bt.root, key, value)
	if err != nil {
		return err
	}
	if updated {
		return nil
	}
	return bt.insert(key, value)
}

func (bt *BTree[K, V]) createRootWithFirstEntry(key K, value V) error {
	headerEnd, err := bt.io.WriteHeader()
	if err != nil {
		return err
	}

	node := newNode(bt.t, true)
	node.Pos = headerEnd
	entryPos := headerEnd + nodeSizeInBytes(bt.t)
	if _, err := bt.io.WriteEntry(entryPos, key, value); err != nil {
		return err
	}
	node.KeyPos[0] = entryPos
	node.UsedKeys = 1

	if err := bt.io.WriteNode(node, node.Pos); err != nil {
		return err
	}
	if err := bt.io.WriteRootPos(node.Pos); err != nil {
		return err
	}
	bt.root = node
	return nil
}

// updateIfExists walks down from node looking for an existing key. It
// returns true as soon as it overwrites one; false means the key is
// genuinely absent and the caller should fall back to a fresh insert.
func (bt *BTree[K, V]) updateIfExists(node *Node, key K, value V) (bool, error) {
	idx, found, err := bt.io.findKeyPos(node, key, less[K])
	if err != nil {
		return false, err
	}

	if found {
		return true, bt.overwriteEntry(node, idx, key, value)
	}
	if node.IsLeaf {
		return false, nil
	}

	child, err := bt.io.ReadNode(node.ChildPos[idx])
	if err != nil {
		return false, err
	}
	return bt.updateIfExists(child, key, value)
}

func (bt *BTree[K, V]) overwriteEntry(node *Node, idx int, key K, value V) error {
	if bt.io.valCodec.TypeCode() == codec.ValueTypeBlob {
		newPos, err := bt.io.AppendEntry(key, value)
		if err != nil {
			return err
		}
		node.KeyPos[idx] = newPos
		return bt.io.WriteNode(node, node.Pos)
	}
	_, err := bt.io.WriteEntry(node.KeyPos[idx], key, value)
	return err
}

// insert adds a genuinely new key starting from the root, splitting the
// root first if it is already full.
func (bt *BTree[K, V]) insert(key K, value V) error {
	if !bt.root.IsFull() {
		return bt.insertNonFull(bt.root, key, value)
	}

	newRoot := newNode(bt.t, false)
	newRoot.ChildPos[0] = bt.root.Pos
	newRoot.Pos = bt.io.FileEndPos()
	if err := bt.io.WriteNode(newRoot, newRoot.Pos); err != nil {
		return err
	}

	if err := bt.splitChild(newRoot, 0, bt.root); err != nil {
		return err
	}

	promoted, err := bt.io.ReadKey(newRoot.KeyPos[0])
	if err != nil {
		return err
	}
	childIdx := 0
	if promoted < key {
		childIdx = 1
	}
	child, err := bt.io.ReadNode(newRoot.ChildPos[childIdx])
	if err != nil {
		return err
	}
	if err := bt.insertNonFull(child, key, value); err != nil {
		return err
	}

	root, err := bt.io.ReadNode(newRoot.Pos)
	if err != nil {
		return err
	}
	if err := bt.io.WriteRootPos(root.Pos); err != nil {
		return err
	}
	bt.root = root
	return nil
}

func (bt *BTree[K, V]) insertNonFull(node *Node, key K, value V) error {
	idx, found, err := bt.io.findKeyPos(node, key, less[K])
	if err != nil {
		return err
	}
	if found {
		return bt.overwriteEntry(node, idx, key, value)
	}

	if node.IsLeaf {
		copy(node.KeyPos[idx+1:node.UsedKeys+1], node.KeyPos[idx:node.UsedKeys])
		entryPos, err := bt.io.AppendEntry(key, value)
		if err != nil {
			return err
		}
		node.KeyPos[idx] = entryPos
		node.UsedKeys++
		return bt.io.WriteNode(node, node.Pos)
	}

	child, err := bt.io.ReadNode(node.ChildPos[idx])
	if err != nil {
		return err
	}
	if child.IsFull() {
		if err := bt.splitChild(node, idx, child); err != nil {
			return err
		}
		promoted, err := bt.io.ReadKey(node.KeyPos[idx])
		if err != nil {
			return err
		}
		if promoted < key {
			idx++
		}
		child, err = bt.io.ReadNode(node.ChildPos[idx])
		if err != nil {
			return err
		}
	}
	return bt.insertNonFull(child, key, value)
}

// splitChild splits the full node at parent.ChildPos[idx] into two nodes
// of t-1 keys each, promoting the median key into parent at idx. The new
// sibling is always appended at end-of-file.
func (bt *BTree[K, V]) splitChild(parent *Node, idx int, full *Node) error {
	t := full.T
	sibling := newNode(t, full.IsLeaf)

	copy(sibling.KeyPos[0:t-1], full.KeyPos[t:2*t-1])
	sibling.UsedKeys = uint16(t - 1)
	if !full.IsLeaf {
		copy(sibling.ChildPos[0:t], full.ChildPos[t:2*t])
	}
	promotedKeyPos := full.KeyPos[t-1]

	sibling.Pos = bt.io.FileEndPos()
	if err := bt.io.WriteNode(sibling, sibling.Pos); err != nil {
		return err
	}

	copy(parent.KeyPos[idx+1:parent.UsedKeys+1], parent.KeyPos[idx:parent.UsedKeys])
	parent.KeyPos[idx] = promotedKeyPos
	copy(parent.ChildPos[idx+2:parent.UsedKeys+2], parent.ChildPos[idx+1:parent.UsedKeys+1])
	parent.ChildPos[idx+1] = sibling.Pos
	parent.UsedKeys++

	full.UsedKeys = uint16(t - 1)

	if err := bt.io.WriteNode(full, full.Pos); err != nil {
		return err
	}
	return bt.io.WriteNode(parent, parent.Pos)
}
