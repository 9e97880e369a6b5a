package engine

import "slices"

// Keyed is an insertion-ordered id -> record mapping. Mutating methods return a copy
// so a previous state value is never changed underneath its holder.
type Keyed[K comparable, V any] struct {
	order []K
	items map[K]V
}

func NewKeyed[K comparable, V any](key func(V) K, values ...V) Keyed[K, V] {
	var k Keyed[K, V]
	for _, v := range values {
		k = k.Upsert(key(v), v)
	}
	return k
}

func (k Keyed[K, V]) clone() Keyed[K, V] {
	out := Keyed[K, V]{
		order: slices.Clone(k.order),
		items: make(map[K]V, len(k.items)),
	}
	for id, v := range k.items {
		out.items[id] = v
	}
	return out
}

func (k Keyed[K, V]) Get(id K) (V, bool) {
	v, ok := k.items[id]
	return v, ok
}

func (k Keyed[K, V]) Has(id K) bool {
	_, ok := k.items[id]
	return ok
}

func (k Keyed[K, V]) Len() int { return len(k.order) }

// Upsert replaces the record in place when id is known, otherwise appends it.
func (k Keyed[K, V]) Upsert(id K, v V) Keyed[K, V] {
	out := k.clone()
	if _, ok := out.items[id]; !ok {
		out.order = append(out.order, id)
	}
	out.items[id] = v
	return out
}

// Replace only touches an existing record.
func (k Keyed[K, V]) Replace(id K, v V) (Keyed[K, V], bool) {
	if !k.Has(id) {
		return k, false
	}
	out := k.clone()
	out.items[id] = v
	return out, true
}

func (k Keyed[K, V]) Remove(id K) (Keyed[K, V], bool) {
	if !k.Has(id) {
		return k, false
	}
	out := k.clone()
	delete(out.items, id)
	out.order = slices.DeleteFunc(out.order, func(x K) bool { return x == id })
	return out, true
}

// Values returns the records in insertion order.
func (k Keyed[K, V]) Values() []V {
	out := make([]V, 0, len(k.order))
	for _, id := range k.order {
		out = append(out, k.items[id])
	}
	return out
}

func (k Keyed[K, V]) Count(pred func(V) bool) int {
	n := 0
	for _, id := range k.order {
		if pred(k.items[id]) {
			n++
		}
	}
	return n
}
