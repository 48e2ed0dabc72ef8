//go:build cgo

package facts

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/huangsam/ecoscore/schema"
)

// Call names that perform blocking I/O when invoked directly.
var ioFunctions = map[string]struct{}{
	"open":  {},
	"input": {},
	"print": {},
}

// Method names that perform blocking I/O on files, sockets and cursors.
var ioMethods = map[string]struct{}{
	"read":        {},
	"readline":    {},
	"readlines":   {},
	"write":       {},
	"writelines":  {},
	"flush":       {},
	"recv":        {},
	"send":        {},
	"sendall":     {},
	"urlopen":     {},
	"execute":     {},
	"executemany": {},
	"fetchone":    {},
	"fetchall":    {},
}

// Modules whose attribute calls always hit the network, disk or a child process.
var ioModules = map[string]struct{}{
	"requests":       {},
	"subprocess":     {},
	"shutil":         {},
	"socket":         {},
	"urllib.request": {},
}

// Methods that grow a list in place.
var growthMethods = map[string]struct{}{
	"append": {},
	"extend": {},
	"insert": {},
}

// Reducers that accept any iterable, so a list comprehension argument is wasted memory.
var iterableReducers = map[string]struct{}{
	"sum":       {},
	"any":       {},
	"all":       {},
	"min":       {},
	"max":       {},
	"sorted":    {},
	"set":       {},
	"tuple":     {},
	"frozenset": {},
}

// Lazy iterators that are needlessly forced into a list.
var lazyProducers = map[string]struct{}{
	"range":  {},
	"map":    {},
	"filter": {},
	"zip":    {},
}

// Decorator names that memoize the wrapped function.
var memoDecorators = map[string]struct{}{
	"lru_cache": {},
	"cache":     {},
	"cached":    {},
}

// Statements the grammar still accepts but Python 3 rejects.
var legacyStatements = map[string]string{
	"print_statement": "print statement is not valid Python 3",
	"exec_statement":  "exec statement is not valid Python 3",
}

// scope is the lexical context a node is visited in.
type scope struct {
	loopDepth  int
	inWithItem bool
	strs       stringNames
}

// stringNames holds the names bound to string values in one function body.
type stringNames map[string]struct{}

func newScope() scope {
	return scope{strs: stringNames{}}
}

type walker struct {
	src   []byte
	facts schema.StructuralFacts
}

// Extract parses src as Python and derives its structural facts.
// A syntactically invalid unit yields a *ParseError and no facts.
func Extract(ctx context.Context, src []byte) (schema.StructuralFacts, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return schema.StructuralFacts{}, fmt.Errorf("parse python source: %w", err)
	}

	root := tree.RootNode()
	if root.HasError() {
		return schema.StructuralFacts{}, newParseError(root)
	}
	if legacy := firstLegacyStatement(root); legacy != nil {
		pt := legacy.StartPoint()
		return schema.StructuralFacts{}, &ParseError{
			Line:    int(pt.Row) + 1,
			Column:  int(pt.Column) + 1,
			Message: legacyStatements[legacy.Type()],
		}
	}

	w := &walker{src: src}
	w.facts.Lines = CountLines(src)
	w.visit(root, newScope())
	return w.facts, nil
}

func newParseError(root *sitter.Node) *ParseError {
	node := firstError(root)
	if node == nil {
		node = root
	}
	msg := "unexpected syntax"
	if node.IsMissing() {
		msg = fmt.Sprintf("missing %q", node.Type())
	}
	pt := node.StartPoint()
	return &ParseError{
		Line:    int(pt.Row) + 1,
		Column:  int(pt.Column) + 1,
		Message: msg,
	}
}

// firstError returns the first ERROR or MISSING node in document order.
func firstError(n *sitter.Node) *sitter.Node {
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child == nil || (!child.HasError() && !child.IsMissing()) {
			continue
		}
		if found := firstError(child); found != nil {
			return found
		}
	}
	return nil
}

// firstLegacyStatement returns the first Python 2 only statement in document order.
func firstLegacyStatement(n *sitter.Node) *sitter.Node {
	if _, ok := legacyStatements[n.Type()]; ok {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if found := firstLegacyStatement(n.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

func (w *walker) visit(n *sitter.Node, s scope) {
	if n == nil {
		return
	}

	switch n.Type() {
	case "function_definition":
		w.facts.Functions++
		w.checkRecursion(n)
		s = newScope()
	case "for_statement":
		w.facts.Loops++
		inner := w.enterLoop(s)
		w.visitField(n, "left", s)
		w.visitField(n, "right", s)
		w.visitField(n, "body", inner)
		w.visitField(n, "alternative", s)
		return
	case "while_statement":
		w.facts.Loops++
		inner := w.enterLoop(s)
		w.visitField(n, "condition", inner)
		w.visitField(n, "body", inner)
		w.visitField(n, "alternative", s)
		return
	case "call":
		w.visitCall(n, s)
	case "augmented_assignment":
		w.visitAugmentedAssignment(n, s)
	case "assignment":
		w.visitAssignment(n, s)
	case "binary_operator":
		if operatorOf(n) == "+" && fieldType(n, "left") == "string" && fieldType(n, "right") == "string" {
			w.facts.StringLiteralConcat++
		}
	case "global_statement":
		w.facts.GlobalStatements++
	case "import_statement":
		w.facts.Imports++
	case "import_from_statement":
		w.facts.Imports++
		if hasChildOfType(n, "wildcard_import") {
			w.facts.WildcardImports++
		}
	case "with_statement":
		w.facts.WithStatements++
		if countWithItems(n) > 1 {
			w.facts.MultiItemWith++
		}
	case "with_item":
		s.inWithItem = true
	case "except_clause":
		if w.handlesKeyError(n) {
			w.facts.KeyErrorHandlers++
		}
	case "comparison_operator":
		w.facts.ListMembershipTests += listMembershipTests(n)
	case "list_comprehension":
		w.facts.ListComprehensions++
	case "generator_expression":
		w.facts.GeneratorExpressions++
	case "set_comprehension":
		w.facts.SetComprehensions++
	case "dictionary_comprehension":
		w.facts.DictComprehensions++
	case "set":
		w.facts.SetLiterals++
	case "boolean_operator":
		w.facts.ShortCircuitOps++
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.visit(n.NamedChild(i), s)
	}
}

func (w *walker) enterLoop(s scope) scope {
	s.loopDepth++
	if s.loopDepth > w.facts.MaxLoopDepth {
		w.facts.MaxLoopDepth = s.loopDepth
	}
	return s
}

func (w *walker) visitField(n *sitter.Node, field string, s scope) {
	if child := n.ChildByFieldName(field); child != nil {
		w.visit(child, s)
	}
}

func (w *walker) visitCall(n *sitter.Node, s scope) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name, object := w.callee(fn)

	switch fn.Type() {
	case "identifier":
		switch name {
		case "print":
			w.facts.PrintCalls++
		case "sleep":
			w.facts.SleepCalls++
		case "open":
			if !s.inWithItem {
				w.facts.OpenWithoutContext++
			}
		}
	case "attribute":
		switch {
		case name == "sleep" && object == "time":
			w.facts.SleepCalls++
		case name == "get" && fieldType(fn, "object") == "identifier":
			w.facts.DictGetCalls++
		}
	}

	if s.loopDepth > 0 {
		if _, ok := growthMethods[name]; ok && fn.Type() == "attribute" {
			w.facts.ContainerGrowthInLoop++
		}
		if isIOCall(fn.Type(), name, object) {
			w.facts.IOCallsInLoop++
		}
	}

	if w.isEagerMaterialization(n, fn, name) {
		w.facts.EagerMaterializations++
	}
}

// callee returns the called name and, for attribute calls, the receiver text.
func (w *walker) callee(fn *sitter.Node) (name, object string) {
	switch fn.Type() {
	case "identifier":
		return fn.Content(w.src), ""
	case "attribute":
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			name = attr.Content(w.src)
		}
		if obj := fn.ChildByFieldName("object"); obj != nil {
			object = obj.Content(w.src)
		}
	}
	return name, object
}

func isIOCall(fnType, name, object string) bool {
	if fnType == "identifier" {
		_, ok := ioFunctions[name]
		return ok
	}
	if fnType != "attribute" {
		return false
	}
	if _, ok := ioModules[object]; ok {
		return true
	}
	_, ok := ioMethods[name]
	return ok
}

func (w *walker) isEagerMaterialization(call, fn *sitter.Node, name string) bool {
	if fn.Type() != "identifier" {
		return false
	}
	arg := soleArgument(call)
	if arg == nil {
		return false
	}
	if _, ok := iterableReducers[name]; ok && arg.Type() == "list_comprehension" {
		return true
	}
	if name == "list" && arg.Type() == "call" {
		inner := arg.ChildByFieldName("function")
		if inner != nil && inner.Type() == "identifier" {
			_, ok := lazyProducers[inner.Content(w.src)]
			return ok
		}
	}
	return false
}

// soleArgument returns the only positional argument of a call, if any.
func soleArgument(call *sitter.Node) *sitter.Node {
	args := call.ChildByFieldName("arguments")
	if args == nil || args.Type() != "argument_list" {
		return nil
	}
	var only *sitter.Node
	for i := 0; i < int(args.NamedChildCount()); i++ {
		child := args.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if only != nil {
			return nil
		}
		only = child
	}
	return only
}

func (w *walker) visitAugmentedAssignment(n *sitter.Node, s scope) {
	if s.loopDepth == 0 || operatorOf(n) != "+=" {
		return
	}
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	switch {
	case right == nil:
	case right.Type() == "list":
		w.facts.ContainerGrowthInLoop++
	case w.isStringy(right, s.strs), w.isStringName(left, s.strs):
		w.facts.StringConcatInLoop++
	}
}

// visitAssignment records string-bound names and catches the
// x = x + "..." and x = x + [...] forms of rebuilding inside a loop.
func (w *walker) visitAssignment(n *sitter.Node, s scope) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil || right == nil {
		return
	}
	defer w.bindName(left, right, s.strs)

	if s.loopDepth == 0 || right.Type() != "binary_operator" || operatorOf(right) != "+" {
		return
	}
	operand := right.ChildByFieldName("left")
	other := right.ChildByFieldName("right")
	if operand == nil || other == nil || operand.Content(w.src) != left.Content(w.src) {
		return
	}
	switch {
	case other.Type() == "list", other.Type() == "list_comprehension":
		w.facts.ContainerGrowthInLoop++
	case w.isStringy(other, s.strs), w.isStringName(left, s.strs):
		w.facts.StringConcatInLoop++
	}
}

// bindName tracks whether a plain name now holds a string.
func (w *walker) bindName(left, right *sitter.Node, strs stringNames) {
	if strs == nil || left.Type() != "identifier" {
		return
	}
	name := left.Content(w.src)
	if w.isStringy(right, strs) {
		strs[name] = struct{}{}
		return
	}
	delete(strs, name)
}

func (w *walker) isStringName(n *sitter.Node, strs stringNames) bool {
	if n == nil || n.Type() != "identifier" {
		return false
	}
	_, ok := strs[n.Content(w.src)]
	return ok
}

func (w *walker) isStringy(n *sitter.Node, strs stringNames) bool {
	switch n.Type() {
	case "string", "concatenated_string":
		return true
	case "identifier":
		return w.isStringName(n, strs)
	case "call":
		fn := n.ChildByFieldName("function")
		return fn != nil && fn.Type() == "identifier" && fn.Content(w.src) == "str"
	case "binary_operator":
		if operatorOf(n) != "+" {
			return false
		}
		left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
		return (left != nil && w.isStringy(left, strs)) || (right != nil && w.isStringy(right, strs))
	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return w.isStringy(n.NamedChild(0), strs)
		}
	}
	return false
}

func (w *walker) checkRecursion(fn *sitter.Node) {
	nameNode := fn.ChildByFieldName("name")
	body := fn.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		return
	}
	name := nameNode.Content(w.src)
	if !w.callsName(body, name) {
		return
	}
	if w.isMemoized(fn) {
		w.facts.RecursiveWithMemo++
	} else {
		w.facts.RecursiveWithoutMemo++
	}
}

// callsName reports whether n calls name directly or through self/cls.
// Nested definitions that shadow name are skipped.
func (w *walker) callsName(n *sitter.Node, name string) bool {
	switch n.Type() {
	case "function_definition":
		if nn := n.ChildByFieldName("name"); nn != nil && nn.Content(w.src) == name {
			return false
		}
	case "call":
		if fn := n.ChildByFieldName("function"); fn != nil {
			callee, object := w.callee(fn)
			if callee == name && (fn.Type() == "identifier" || object == "self" || object == "cls") {
				return true
			}
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if w.callsName(n.NamedChild(i), name) {
			return true
		}
	}
	return false
}

// isMemoized reports whether a function carries a caching decorator
// such as functools.lru_cache or functools.cache.
func (w *walker) isMemoized(fn *sitter.Node) bool {
	parent := fn.Parent()
	if parent == nil || parent.Type() != "decorated_definition" {
		return false
	}
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		child := parent.NamedChild(i)
		if child.Type() != "decorator" || child.NamedChildCount() == 0 {
			continue
		}
		if _, ok := memoDecorators[w.decoratorName(child.NamedChild(0))]; ok {
			return true
		}
	}
	return false
}

// decoratorName returns the trailing identifier of a decorator expression,
// so @functools.lru_cache(maxsize=None) yields lru_cache.
func (w *walker) decoratorName(expr *sitter.Node) string {
	switch expr.Type() {
	case "call":
		if fn := expr.ChildByFieldName("function"); fn != nil {
			return w.decoratorName(fn)
		}
	case "attribute":
		if attr := expr.ChildByFieldName("attribute"); attr != nil {
			return attr.Content(w.src)
		}
	case "identifier":
		return expr.Content(w.src)
	}
	return ""
}

func (w *walker) handlesKeyError(n *sitter.Node) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "block" {
			continue
		}
		if w.containsIdentifier(child, "KeyError") {
			return true
		}
	}
	return false
}

func (w *walker) containsIdentifier(n *sitter.Node, ident string) bool {
	if n.Type() == "identifier" {
		return n.Content(w.src) == ident
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if w.containsIdentifier(n.NamedChild(i), ident) {
			return true
		}
	}
	return false
}

// listMembershipTests counts `x in [...]` operands inside one comparison chain.
func listMembershipTests(n *sitter.Node) int {
	count := 0
	for i := 0; i+1 < int(n.ChildCount()); i++ {
		op := n.Child(i)
		if op.Type() != "in" && op.Type() != "not in" {
			continue
		}
		switch n.Child(i + 1).Type() {
		case "list", "list_comprehension":
			count++
		}
	}
	return count
}

func countWithItems(n *sitter.Node) int {
	count := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause.Type() != "with_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			if clause.NamedChild(j).Type() == "with_item" {
				count++
			}
		}
	}
	return count
}

func hasChildOfType(n *sitter.Node, kind string) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == kind {
			return true
		}
	}
	return false
}

func operatorOf(n *sitter.Node) string {
	if op := n.ChildByFieldName("operator"); op != nil {
		return op.Type()
	}
	return ""
}

func fieldType(n *sitter.Node, field string) string {
	if child := n.ChildByFieldName(field); child != nil {
		return child.Type()
	}
	return ""
}
