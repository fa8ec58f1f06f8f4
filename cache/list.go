package cache

import "github.com/IvanBrykalov/mediawindow/policy"

// -------------------- list internals (mu held) --------------------

// pushBack appends n as the newest entry in O(1).
func (c *cache[K, V]) pushBack(n *node[K, V]) {
	n.next = nil
	n.prev = c.tail
	if c.tail != nil {
		c.tail.next = n
	}
	c.tail = n
	if c.head == nil {
		c.head = n
	}
	c.len++
}

// moveToBack marks n as the newest entry in O(1).
func (c *cache[K, V]) moveToBack(n *node[K, V]) {
	if n == c.tail {
		return
	}
	c.detach(n)
	n.next = nil
	n.prev = c.tail
	if c.tail != nil {
		c.tail.next = n
	}
	c.tail = n
	if c.head == nil {
		c.head = n
	}
}

// unlink removes n from the list and updates the counter in O(1).
func (c *cache[K, V]) unlink(n *node[K, V]) {
	c.detach(n)
	n.prev, n.next = nil, nil
	c.len--
}

func (c *cache[K, V]) detach(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if c.head == n {
		c.head = n.next
	}
	if c.tail == n {
		c.tail = n.prev
	}
}

// -------------------- policy hooks --------------------

// listHooks adapts the cache's list operations to policy.Hooks.
type listHooks[K comparable, V any] struct{ c *cache[K, V] }

func (h listHooks[K, V]) PushBack(x policy.Node[K, V])   { h.c.pushBack(x.(*node[K, V])) }
func (h listHooks[K, V]) MoveToBack(x policy.Node[K, V]) { h.c.moveToBack(x.(*node[K, V])) }

// Remove detaches a node; map bookkeeping stays with the cache.
func (h listHooks[K, V]) Remove(x policy.Node[K, V]) { h.c.unlink(x.(*node[K, V])) }

func (h listHooks[K, V]) Front() policy.Node[K, V] {
	if h.c.head == nil {
		return nil
	}
	return h.c.head
}
func (h listHooks[K, V]) Len() int { return h.c.len }
