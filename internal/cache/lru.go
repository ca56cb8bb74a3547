package cache

// lruNode is an entry in the recency list. It carries the key for O(1)
// map deletion and the cached value.
type lruNode[K comparable, V any] struct {
	key   K
	value V
	prev  *lruNode[K, V]
	next  *lruNode[K, V]
}

// lruList orders nodes from most (head) to least (tail) recently used.
// The list is not thread-safe; callers must handle synchronization.
type lruList[K comparable, V any] struct {
	head *lruNode[K, V]
	tail *lruNode[K, V]
	len  int
}

// pushFront inserts a new node as most recently used.
func (l *lruList[K, V]) pushFront(key K, value V) *lruNode[K, V] {
	n := &lruNode[K, V]{key: key, value: value}
	l.linkFront(n)
	return n
}

// moveToFront marks n as most recently used.
func (l *lruList[K, V]) moveToFront(n *lruNode[K, V]) {
	if n == l.head {
		return
	}
	l.unlink(n)
	l.linkFront(n)
}

// remove unlinks n.
func (l *lruList[K, V]) remove(n *lruNode[K, V]) {
	l.unlink(n)
}

// back returns the least recently used node, or nil.
func (l *lruList[K, V]) back() *lruNode[K, V] {
	return l.tail
}

// each calls fn for every node from most to least recently used.
func (l *lruList[K, V]) each(fn func(*lruNode[K, V])) {
	for n := l.head; n != nil; {
		next := n.next
		fn(n)
		n = next
	}
}

func (l *lruList[K, V]) linkFront(n *lruNode[K, V]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.len++
}

func (l *lruList[K, V]) unlink(n *lruNode[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev = nil
	n.next = nil
	l.len--
}
