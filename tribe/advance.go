package tribe

import (
	"errors"

	"github.com/pthm-cable/tribes/engine"
)

// Report describes one Advance call.
type Report struct {
	Node      *Node
	Result    engine.Result
	Attached  int  // prerequisites attached from the result's injections
	Retired   bool // node completed and was removed
	Discarded bool // node failed and was removed with its prerequisites
}

// Advance attaches any cyclic recipes that are due, then applies the best
// pending node and folds the result back into the pending tree. It reports
// false when nothing was runnable.
func (t *Tribe) Advance(e *engine.Engine, now float64) (Report, bool) {
	for _, r := range t.cyclic.due(now) {
		if t.pending.Attach(r, engine.Concentrated) == nil {
			t.logger.Debug("cyclic recipe already pending", "recipe", r.Name)
		}
	}

	node := t.pending.Best(now)
	if node == nil {
		return Report{}, false
	}

	res := e.Apply(node.TreeNode, t)
	rep := Report{Node: node, Result: res}

	if res.Err != nil {
		if errors.Is(res.Err, engine.ErrInjectionDepth) {
			// The whole chain is a cycle; drop it from the top.
			t.pending.DiscardRoot(node)
		} else {
			t.pending.Discard(node)
		}
		rep.Discarded = true
		t.logger.Error("recipe discarded",
			"recipe", node.Recipe.Name,
			"node", node.ID,
			"outcome", res.Outcome,
			"error", res.Err,
		)
		return rep, true
	}

	for _, inj := range res.Injections {
		if t.pending.AttachChild(node, inj) == nil {
			t.logger.Debug("unique recipe already pending", "recipe", inj.Recipe.Name, "for", node.Recipe.Name)
			continue
		}
		rep.Attached++
	}
	for _, c := range res.Cyclic {
		t.cyclic.register(c.Recipe, c.PeriodSeconds, now)
	}

	switch res.Outcome {
	case engine.Completed:
		t.pending.Retire(node)
		rep.Retired = true
	case engine.Suspended:
		if res.WaitSeconds > 0 {
			node.waitUntil = now + float64(res.WaitSeconds)
		}
	}

	t.logger.Debug("recipe applied",
		"recipe", node.Recipe.Name,
		"node", node.ID,
		"depth", node.Depth,
		"outcome", res.Outcome,
		"next_step", res.NextStep,
		"attached", rep.Attached,
	)
	return rep, true
}

// CyclicCount returns how many recurring recipes the tribe has.
func (t *Tribe) CyclicCount() int {
	return t.cyclic.len()
}
