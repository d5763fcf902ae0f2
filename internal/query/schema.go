package query

// schema is the fixed Datalog program behind the explain/why feature
// (spec.md's supplemented explain query, DOMAIN STACK). It stays free of
// negation and aggregation: every relation here is a monotone join over the
// grounded fact/operator atoms asserted by Load, so it composes safely with
// Mangle's naive bottom-up evaluator without needing stratification.
const schema = `
Decl fact(F).
Decl op(Op).
Decl init(F).
Decl goal(F).
Decl op_pre(Op, F).
Decl op_add(Op, F).
Decl op_del(Op, F).
Decl landmark(F).

Decl requires(Op, F).
requires(Op, F) :- op_pre(Op, F).

Decl produces(Op, F).
produces(Op, F) :- op_add(Op, F).

Decl destroys(Op, F).
destroys(Op, F) :- op_del(Op, F).

Decl enables(Op1, Op2).
enables(Op1, Op2) :- op_add(Op1, F), op_pre(Op2, F).

Decl conflicts(Op1, Op2).
conflicts(Op1, Op2) :- op_add(Op1, F), op_del(Op2, F).

Decl threatens(Op, F).
threatens(Op, F) :- op_del(Op, F), goal(F).

Decl necessary_for_goal(Op, F).
necessary_for_goal(Op, F) :- op_add(Op, F), goal(F), landmark(F).

Decl landmark_producer(Op, F).
landmark_producer(Op, F) :- op_add(Op, F), landmark(F).
`
