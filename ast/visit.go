package ast

// Walk visits each node of stmts in order with v.
func Walk(v Visitor, stmts []Node) {
	for _, s := range stmts {
		s.Accept(v)
	}
}

func (n *Literal) Accept(v Visitor) any { return v.VisitLiteral(n) }
func (n *Literal) Position() Pos        { return n.At }
func (n *Literal) node()                {}

func (n *BinaryExpr) Accept(v Visitor) any { return v.VisitBinaryExpr(n) }
func (n *BinaryExpr) Position() Pos        { return n.At }
func (n *BinaryExpr) node()                {}

func (n *VariableDec) Accept(v Visitor) any { return v.VisitVariableDec(n) }
func (n *VariableDec) Position() Pos        { return n.At }
func (n *VariableDec) node()                {}

func (n *VariableAssign) Accept(v Visitor) any { return v.VisitVariableAssign(n) }
func (n *VariableAssign) Position() Pos        { return n.At }
func (n *VariableAssign) node()                {}

func (n *VariableRef) Accept(v Visitor) any { return v.VisitVariableRef(n) }
func (n *VariableRef) Position() Pos        { return n.At }
func (n *VariableRef) node()                {}

func (n *CodeBlock) Accept(v Visitor) any { return v.VisitCodeBlock(n) }
func (n *CodeBlock) Position() Pos        { return n.At }
func (n *CodeBlock) node()                {}

func (n *FunctionDef) Accept(v Visitor) any { return v.VisitFunctionDef(n) }
func (n *FunctionDef) Position() Pos        { return n.At }
func (n *FunctionDef) node()                {}

func (n *FunctionDec) Accept(v Visitor) any { return v.VisitFunctionDec(n) }
func (n *FunctionDec) Position() Pos        { return n.At }
func (n *FunctionDec) node()                {}

func (n *FunctionCall) Accept(v Visitor) any { return v.VisitFunctionCall(n) }
func (n *FunctionCall) Position() Pos        { return n.At }
func (n *FunctionCall) node()                {}

func (n *Return) Accept(v Visitor) any { return v.VisitReturn(n) }
func (n *Return) Position() Pos        { return n.At }
func (n *Return) node()                {}

func (n *If) Accept(v Visitor) any { return v.VisitIf(n) }
func (n *If) Position() Pos        { return n.At }
func (n *If) node()                {}

func (n *Else) Accept(v Visitor) any { return v.VisitElse(n) }
func (n *Else) Position() Pos        { return n.At }
func (n *Else) node()                {}

func (n *While) Accept(v Visitor) any { return v.VisitWhile(n) }
func (n *While) Position() Pos        { return n.At }
func (n *While) node()                {}

func (n *For) Accept(v Visitor) any { return v.VisitFor(n) }
func (n *For) Position() Pos        { return n.At }
func (n *For) node()                {}

func (n *LoopControl) Accept(v Visitor) any { return v.VisitLoopControl(n) }
func (n *LoopControl) Position() Pos        { return n.At }
func (n *LoopControl) node()                {}

func (n *Event) Accept(v Visitor) any { return v.VisitEvent(n) }
func (n *Event) Position() Pos        { return n.At }
func (n *Event) node()                {}

func (n *Exit) Accept(v Visitor) any { return v.VisitExit(n) }
func (n *Exit) Position() Pos        { return n.At }
func (n *Exit) node()                {}

func (n *TimeLiteral) Accept(v Visitor) any { return v.VisitTimeLiteral(n) }
func (n *TimeLiteral) Position() Pos        { return n.At }
func (n *TimeLiteral) node()                {}
