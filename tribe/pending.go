package tribe

import (
	"github.com/pthm-cable/tribes/engine"
	"github.com/pthm-cable/tribes/recipe"
)

// Node is one pending recipe of a tribe. Children are prerequisites and run
// before their parent, in the order they were attached.
type Node struct {
	*engine.TreeNode

	parent    *Node
	children  []*Node
	waitUntil float64 // simulated seconds; the node is not runnable before this
}

// Parent returns the node this one was injected for, or nil for top-level nodes.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the node's outstanding prerequisites.
func (n *Node) Children() []*Node {
	return n.children
}

// Waiting reports whether the node is still inside a wait() at time now.
func (n *Node) Waiting(now float64) bool {
	return now < n.waitUntil
}

// WaitUntil returns the simulation time the node is waiting for, or zero.
func (n *Node) WaitUntil() float64 {
	return n.waitUntil
}

// Pending is a tribe's tree of outstanding recipes.
type Pending struct {
	roots       []*Node
	outstanding map[string]int // recipe name -> attached nodes
}

// NewPending creates an empty tree.
func NewPending() *Pending {
	return &Pending{outstanding: make(map[string]int)}
}

// Attach adds a top-level recipe. It returns nil when r is unique and already outstanding.
func (p *Pending) Attach(r *recipe.Recipe, mode engine.ResolutionMode) *Node {
	if !p.admit(r) {
		return nil
	}
	n := &Node{TreeNode: engine.NewTreeNode(r, mode, 0)}
	p.roots = append(p.roots, n)
	return n
}

// AttachChild adds a prerequisite of parent, after its existing prerequisites.
// It returns nil when the injected recipe is unique and already outstanding.
func (p *Pending) AttachChild(parent *Node, inj engine.Injection) *Node {
	if !p.admit(inj.Recipe) {
		return nil
	}
	n := &Node{
		TreeNode: engine.NewTreeNode(inj.Recipe, inj.Mode, parent.Depth+1),
		parent:   parent,
	}
	parent.children = append(parent.children, n)
	return n
}

func (p *Pending) admit(r *recipe.Recipe) bool {
	if r.Unique && p.outstanding[r.Name] > 0 {
		return false
	}
	p.outstanding[r.Name]++
	return true
}

// Best returns the first runnable node in depth-first order: a node with no
// outstanding prerequisites that is not waiting. A node whose prerequisites
// are all waiting is not runnable either.
func (p *Pending) Best(now float64) *Node {
	for _, root := range p.roots {
		if n := best(root, now); n != nil {
			return n
		}
	}
	return nil
}

func best(n *Node, now float64) *Node {
	if len(n.children) > 0 {
		for _, c := range n.children {
			if found := best(c, now); found != nil {
				return found
			}
		}
		return nil
	}
	if n.Waiting(now) {
		return nil
	}
	return n
}

// Retire removes a completed node. Its prerequisites, if any, go with it.
func (p *Pending) Retire(n *Node) {
	p.remove(n)
}

// Discard removes n and everything it was waiting on.
func (p *Pending) Discard(n *Node) {
	p.remove(n)
}

// DiscardRoot removes the whole top-level tree containing n.
func (p *Pending) DiscardRoot(n *Node) {
	for n.parent != nil {
		n = n.parent
	}
	p.remove(n)
}

func (p *Pending) remove(n *Node) {
	if n.parent != nil {
		n.parent.children = without(n.parent.children, n)
	} else {
		p.roots = without(p.roots, n)
	}
	p.forget(n)
}

func (p *Pending) forget(n *Node) {
	for _, c := range n.children {
		p.forget(c)
	}
	if p.outstanding[n.Recipe.Name]--; p.outstanding[n.Recipe.Name] <= 0 {
		delete(p.outstanding, n.Recipe.Name)
	}
}

func without(nodes []*Node, n *Node) []*Node {
	for i, c := range nodes {
		if c == n {
			return append(nodes[:i], nodes[i+1:]...)
		}
	}
	return nodes
}

// Len returns the number of attached nodes.
func (p *Pending) Len() int {
	total := 0
	p.Walk(func(*Node) { total++ })
	return total
}

// Roots returns the top-level nodes.
func (p *Pending) Roots() []*Node {
	return p.roots
}

// Outstanding reports how many nodes of the named recipe are attached.
func (p *Pending) Outstanding(name string) int {
	return p.outstanding[name]
}

// Walk visits every node depth-first, parents before children.
func (p *Pending) Walk(fn func(*Node)) {
	var visit func(*Node)
	visit = func(n *Node) {
		fn(n)
		for _, c := range n.children {
			visit(c)
		}
	}
	for _, root := range p.roots {
		visit(root)
	}
}

// Depths returns the depth of every attached node.
func (p *Pending) Depths() []float64 {
	var depths []float64
	p.Walk(func(n *Node) { depths = append(depths, float64(n.Depth)) })
	return depths
}
