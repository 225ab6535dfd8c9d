package compiler

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	llvalue "github.com/llir/llvm/ir/value"

	"github.com/pulse-lang/core-compiler/ast"
)

func label(name string, id int) string {
	return fmt.Sprintf("%s.%d", name, id)
}

// VisitIf lowers an if / else-if / else chain. Every arm that falls off its
// block jumps to if.end; if.end is only placed when some edge reaches it.
func (v *IRVisitor) VisitIf(n *ast.If) any {
	id := v.ctx.NextLabel()
	end := v.ctx.NewBlock(label("if.end", id))
	reached := false

	leave := func() {
		if !v.ctx.Terminated() {
			v.ctx.CurrentBlock().NewBr(end)
			reached = true
		}
	}

	// First if condition
	cond := v.condition(n.Cond)
	then := v.ctx.NewBlock(label("if.then", id))
	next := v.nextArm(n.Elses, 0, id, end)
	v.ctx.CurrentBlock().NewCondBr(cond, then, next)
	reached = reached || next == end

	v.ctx.SetInsertBlock(then)
	n.Then.Accept(v)
	leave()

	// Handle else-if and else
	for i, e := range n.Elses {
		if next == end {
			break
		}
		v.ctx.SetInsertBlock(next)

		if e.Cond == nil {
			if i != len(n.Elses)-1 {
				v.errorf(e, "else", "else must be the last branch of an if")
			}
			e.Accept(v)
			leave()
			break
		}

		cond := v.condition(e.Cond)
		body := v.ctx.NewBlock(fmt.Sprintf("if.elif.then.%d.%d", id, i))
		next = v.nextArm(n.Elses, i+1, id, end)
		v.ctx.CurrentBlock().NewCondBr(cond, body, next)
		reached = reached || next == end

		v.ctx.SetInsertBlock(body)
		e.Accept(v)
		leave()
	}

	// Only continue in the merge block if any branch actually jumps to it
	if reached {
		v.ctx.SetInsertBlock(end)
	}
	return nil
}

// nextArm returns the block that tests or runs elses[i], or end when the
// chain is exhausted.
func (v *IRVisitor) nextArm(elses []*ast.Else, i, id int, end *ir.Block) *ir.Block {
	switch {
	case i >= len(elses):
		return end
	case elses[i].Cond == nil:
		return v.ctx.NewBlock(label("if.else", id))
	default:
		return v.ctx.NewBlock(fmt.Sprintf("if.elif.%d.%d", id, i))
	}
}

// VisitElse lowers the arm's block. Its condition belongs to the enclosing
// VisitIf, which has already branched on it.
func (v *IRVisitor) VisitElse(n *ast.Else) any {
	n.Block.Accept(v)
	return nil
}

func (v *IRVisitor) VisitWhile(n *ast.While) any {
	id := v.ctx.NextLabel()
	condBlock := v.ctx.NewBlock(label("while.cond", id))
	bodyBlock := v.ctx.NewBlock(label("while.body", id))
	endBlock := v.ctx.NewBlock(label("while.end", id))

	v.ctx.CurrentBlock().NewBr(condBlock)

	// Condition block
	v.ctx.SetInsertBlock(condBlock)
	cond := v.condition(n.Cond)
	v.ctx.CurrentBlock().NewCondBr(cond, bodyBlock, endBlock)

	// Body block
	v.ctx.SetInsertBlock(bodyBlock)
	v.ctx.PushLoop(condBlock, endBlock)
	n.Block.Accept(v)
	v.ctx.PopLoop()

	if !v.ctx.Terminated() {
		v.ctx.CurrentBlock().NewBr(condBlock)
	}

	v.ctx.SetInsertBlock(endBlock)
	return nil
}

// VisitFor lowers init in the current block, then cond, body and step
// blocks. continue jumps to the step block.
func (v *IRVisitor) VisitFor(n *ast.For) any {
	v.ctx.PushScope(v.ctx.recordedScope(n))
	defer v.ctx.PopScope()

	if n.Init != nil {
		n.Init.Accept(v)
	}

	id := v.ctx.NextLabel()
	condBlock := v.ctx.NewBlock(label("for.cond", id))
	bodyBlock := v.ctx.NewBlock(label("for.body", id))
	stepBlock := v.ctx.NewBlock(label("for.step", id))
	endBlock := v.ctx.NewBlock(label("for.end", id))

	v.ctx.CurrentBlock().NewBr(condBlock)

	// Condition block
	v.ctx.SetInsertBlock(condBlock)
	var cond llvalue.Value = constant.True
	if n.Cond != nil {
		cond = v.condition(n.Cond)
	}
	v.ctx.CurrentBlock().NewCondBr(cond, bodyBlock, endBlock)

	// Body block
	v.ctx.SetInsertBlock(bodyBlock)
	// continue runs the step before the condition is re-tested
	v.ctx.PushLoop(stepBlock, endBlock)
	n.Block.Accept(v)
	v.ctx.PopLoop()

	if !v.ctx.Terminated() {
		v.ctx.CurrentBlock().NewBr(stepBlock)
	}

	// Step block
	v.ctx.SetInsertBlock(stepBlock)
	if n.Step != nil {
		n.Step.Accept(v)
	}
	v.ctx.CurrentBlock().NewBr(condBlock)

	v.ctx.SetInsertBlock(endBlock)
	return nil
}

func (v *IRVisitor) VisitLoopControl(n *ast.LoopControl) any {
	loop := v.ctx.CurrentLoop(n.At)
	if n.Kind == ast.Break {
		v.ctx.CurrentBlock().NewBr(loop.End)
	} else {
		v.ctx.CurrentBlock().NewBr(loop.Cond)
	}
	return nil
}
