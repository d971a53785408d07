package termflux

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// treeTerm is a cons cell over two optional branches with memoized
// leaf count and depth. Trees are the representation of dependency
// sets and signal condition sets: the leaves are Condition terms and
// union is a single cell allocation, associative but not
// order-preserving.
type treeTerm struct {
	left   Handle
	right  Handle
	length uint32
	depth  uint32
}

func (t *treeTerm) Kind() Kind { return KindTree }

// writeHash deliberately hashes only length and depth. Dependency sets
// built in different union orders stay cheap to compare; exact
// identity goes through equal.
func (t *treeTerm) writeHash(a *Arena, d *xxhash.Digest) {
	hashTag(d, KindTree)
	hashU32(d, t.length)
	hashU32(d, t.depth)
}

func (t *treeTerm) equal(a *Arena, other Term) bool {
	o := other.(*treeTerm)
	if t.length != o.length || t.depth != o.depth {
		return false
	}
	return a.Equal(t.left, o.left) && a.Equal(t.right, o.right)
}

func (t *treeTerm) format(a *Arena, sb *strings.Builder, debug bool) {
	sb.WriteByte('(')
	a.formatInto(t.left, sb, debug)
	sb.WriteString(" . ")
	a.formatInto(t.right, sb, debug)
	sb.WriteByte(')')
}

func (t *treeTerm) substitute(a *Arena, sub substitution) Handle {
	left := a.substituteTerm(t.left, sub)
	right := a.substituteTerm(t.right, sub)
	if left == NIL && right == NIL {
		return NIL
	}
	if left == NIL {
		left = t.left
	}
	if right == NIL {
		right = t.right
	}
	return a.Tree(left, right)
}

func (t *treeTerm) iterate(a *Arena, self Handle) Handle {
	items := a.treeLeaves(self)
	return a.IndexedAccessorIterator(a.List(items...), NIL)
}

// branchLength counts the leaves under a branch: NIL is empty, a tree
// contributes its memoized length, anything else is a single leaf.
func (a *Arena) branchLength(h Handle) uint32 {
	if h == NIL {
		return 0
	}
	if t, ok := a.term(h).(*treeTerm); ok {
		return t.length
	}
	return 1
}

// branchDepth is the memoized depth of a branch; non-tree branches
// have depth 0.
func (a *Arena) branchDepth(h Handle) uint32 {
	if t, ok := a.term(h).(*treeTerm); ok {
		return t.depth
	}
	return 0
}

// Tree returns a cons cell over two branches with memoized length and
// depth.
func (a *Arena) Tree(left, right Handle) Handle {
	depth := a.branchDepth(left)
	if rd := a.branchDepth(right); rd > depth {
		depth = rd
	}
	return a.alloc(&treeTerm{
		left:   left,
		right:  right,
		length: a.branchLength(left) + a.branchLength(right),
		depth:  depth + 1,
	})
}

// TreeBranches returns the branches of a Tree term.
func (a *Arena) TreeBranches(h Handle) (left, right Handle, ok bool) {
	t, isTree := a.term(h).(*treeTerm)
	if !isTree {
		return NIL, NIL, false
	}
	return t.left, t.right, true
}

// TreeLength returns the memoized leaf count of a Tree term.
func (a *Arena) TreeLength(h Handle) (int, bool) {
	t, ok := a.term(h).(*treeTerm)
	if !ok {
		return 0, false
	}
	return int(t.length), true
}

// TreeDepth returns the memoized depth of a Tree term.
func (a *Arena) TreeDepth(h Handle) (int, bool) {
	t, ok := a.term(h).(*treeTerm)
	if !ok {
		return 0, false
	}
	return int(t.depth), true
}

// Union combines two dependency sets. The empty set is NIL; unioning
// with it returns the other operand unchanged, so no allocation
// happens on the common paths. Duplicate leaves are tolerated and
// deduplicated lazily at enumeration time.
func (a *Arena) Union(x, y Handle) Handle {
	if x == NIL {
		return y
	}
	if y == NIL {
		return x
	}
	if x == y {
		return x
	}
	return a.Tree(x, y)
}

// walkLeaves visits every leaf of a dependency set right-branch-first,
// which enumerates conditions in last-evaluated-first order (unions
// are built callee-first as evaluation proceeds). The traversal uses
// an explicit stack bounded by the memoized tree depth.
func (a *Arena) walkLeaves(set Handle, visit func(leaf Handle)) {
	if set == NIL {
		return
	}
	root, ok := a.term(set).(*treeTerm)
	if !ok {
		visit(set)
		return
	}
	stack := make([]Handle, 0, root.depth+1)
	stack = append(stack, set)
	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if h == NIL {
			continue
		}
		if t, isTree := a.term(h).(*treeTerm); isTree {
			// Push left below right so the right branch is visited first.
			stack = append(stack, t.left, t.right)
			continue
		}
		visit(h)
	}
}

// treeLeaves collects the leaves of a tree (or single leaf) in
// traversal order.
func (a *Arena) treeLeaves(set Handle) []Handle {
	var out []Handle
	a.walkLeaves(set, func(leaf Handle) { out = append(out, leaf) })
	return out
}

// StateDependencies enumerates the distinct conditions of a dependency
// set in traversal order (last evaluated first). Duplicates introduced
// by overlapping unions are dropped by structural hash.
func (a *Arena) StateDependencies(deps Handle) []Handle {
	var out []Handle
	seen := make(map[uint64]struct{})
	a.walkLeaves(deps, func(leaf Handle) {
		key := a.HashOf(leaf)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, leaf)
	})
	return out
}

// stateValueHash aggregates the hashes of the state values resolved
// for every condition in the dependency set, in traversal order. It is
// the "minimal state hash" the application cache validates against: it
// changes exactly when a consumed state value changes.
func (a *Arena) stateValueHash(deps, state Handle) uint64 {
	var agg uint64
	a.walkLeaves(deps, func(leaf Handle) {
		value, _ := a.stateLookup(leaf, state)
		agg = combineHashes(agg, a.HashOf(value))
	})
	return agg
}
