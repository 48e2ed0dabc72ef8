package rules

import "github.com/huangsam/ecoscore/schema"

// Built-in rule IDs.
const (
	NestedLoops           = "nested_loops"
	IOInLoop              = "io_in_loop"
	UnboundedRecursion    = "unbounded_recursion"
	EagerMaterialization  = "eager_materialization"
	ContainerGrowthInLoop = "container_growth_in_loop"
	GlobalState           = "global_state"
	UnmanagedResource     = "unmanaged_resource"
	StringConcatInLoop    = "string_concat_in_loop"
	StringLiteralConcat   = "string_literal_concat"
	KeyErrorLookup        = "key_error_lookup"
	ListMembership        = "list_membership"
	WildcardImport        = "wildcard_import"
)

// MaxToleratedLoopNesting is the deepest loop nesting that passes nested_loops.
const MaxToleratedLoopNesting = 2

// Builtins returns fresh instances of every built-in rule in registration order.
func Builtins() []Rule {
	return []Rule{
		&countRule{
			info: Info{
				ID:          NestedLoops,
				Category:    schema.EnergyEfficiency,
				Weight:      1.0,
				Description: "Loops nested more than two levels deep",
			},
			count:     func(f schema.StructuralFacts, _ []byte) int { return f.MaxLoopDepth },
			tolerance: MaxToleratedLoopNesting,
			penalty:   0.5,
			advice: schema.SuggestionPayload{
				Text:   "Flatten deeply nested loops with itertools.product or a lookup table.",
				Impact: "Each extra nesting level multiplies the iterations the CPU has to run.",
				Example: `from itertools import product

for x, y, z in product(xs, ys, zs):
    handle(x, y, z)`,
			},
		},
		&countRule{
			info: Info{
				ID:          IOInLoop,
				Category:    schema.EnergyEfficiency,
				Weight:      0.8,
				Description: "Blocking I/O calls inside loop bodies",
			},
			count:   func(f schema.StructuralFacts, _ []byte) int { return f.IOCallsInLoop },
			penalty: 0.7,
			advice: schema.SuggestionPayload{
				Text:   "Move blocking I/O out of loops and batch reads and writes.",
				Impact: "Repeated syscalls and round trips keep the CPU and network busy waiting.",
				Example: `lines = [format(row) for row in rows]
with open("out.txt", "w") as fh:
    fh.write("\n".join(lines))`,
			},
		},
		&countRule{
			info: Info{
				ID:          UnboundedRecursion,
				Category:    schema.EnergyEfficiency,
				Weight:      0.6,
				Description: "Recursive functions without memoization",
			},
			count:   func(f schema.StructuralFacts, _ []byte) int { return f.RecursiveWithoutMemo },
			penalty: 0.6,
			advice: schema.SuggestionPayload{
				Text:   "Memoize recursive functions or rewrite them iteratively.",
				Impact: "Unmemoized recursion recomputes the same subproblems many times over.",
				Example: `from functools import lru_cache

@lru_cache(maxsize=None)
def fib(n):
    return n if n < 2 else fib(n - 1) + fib(n - 2)`,
			},
		},
		&countRule{
			info: Info{
				ID:          EagerMaterialization,
				Category:    schema.EnergyEfficiency,
				Weight:      0.5,
				Description: "Lists built only to be consumed once",
			},
			count:   func(f schema.StructuralFacts, _ []byte) int { return f.EagerMaterializations },
			penalty: 0.8,
			advice: schema.SuggestionPayload{
				Text:    "Pass generator expressions to reducers instead of building throwaway lists.",
				Impact:  "Lazy evaluation avoids allocating and filling memory that is read once.",
				Example: `total = sum(x * x for x in values)`,
			},
		},
		&countRule{
			info: Info{
				ID:          ContainerGrowthInLoop,
				Category:    schema.ResourceUsage,
				Weight:      1.0,
				Description: "Containers grown element by element inside loops",
			},
			count:   func(f schema.StructuralFacts, _ []byte) int { return f.ContainerGrowthInLoop },
			penalty: 0.5,
			advice: schema.SuggestionPayload{
				Text:    "Build the sequence in a single pass with a comprehension instead of appending inside loops.",
				Impact:  "Repeated append calls resize the list and run interpreter overhead for every element.",
				Example: `result = [grid[i][j] for i in range(n) for j in range(m)]`,
			},
		},
		&countRule{
			info: Info{
				ID:          GlobalState,
				Category:    schema.ResourceUsage,
				Weight:      0.5,
				Description: "Mutable module-level state via global statements",
			},
			count:   func(f schema.StructuralFacts, _ []byte) int { return f.GlobalStatements },
			penalty: 0.7,
			advice: schema.SuggestionPayload{
				Text:   "Pass state explicitly or keep it on an object instead of using global.",
				Impact: "Globals keep objects alive for the whole process lifetime.",
				Example: `class Counter:
    def __init__(self):
        self.value = 0

    def bump(self):
        self.value += 1`,
			},
		},
		&countRule{
			info: Info{
				ID:          UnmanagedResource,
				Category:    schema.ResourceUsage,
				Weight:      0.7,
				Description: "Files opened outside a with statement",
			},
			count:   func(f schema.StructuralFacts, _ []byte) int { return f.OpenWithoutContext },
			penalty: 0.6,
			advice: schema.SuggestionPayload{
				Text:   "Open files in a with statement, grouping related context managers together.",
				Impact: "Handles that are never closed hold descriptors and buffers until garbage collection.",
				Example: `with open("in.txt") as src, open("out.txt", "w") as dst:
    dst.write(src.read())`,
			},
		},
		&countRule{
			info: Info{
				ID:          StringConcatInLoop,
				Category:    schema.CodeOptimizations,
				Weight:      1.0,
				Description: "Strings built with + inside loops",
			},
			count:   func(f schema.StructuralFacts, _ []byte) int { return f.StringConcatInLoop },
			penalty: 0.5,
			advice: schema.SuggestionPayload{
				Text:    "Collect the parts and join them once with str.join.",
				Impact:  "Each concatenation copies the whole string built so far.",
				Example: `out = " ".join(words)`,
			},
		},
		&countRule{
			info: Info{
				ID:          StringLiteralConcat,
				Category:    schema.CodeOptimizations,
				Weight:      0.3,
				Description: "Adjacent string literals joined with +",
			},
			count:   func(f schema.StructuralFacts, _ []byte) int { return f.StringLiteralConcat },
			penalty: 0.5,
			advice: schema.SuggestionPayload{
				Text:    "Write a single literal or use implicit literal concatenation.",
				Impact:  "Runtime concatenation of constants allocates a new string each time.",
				Example: `label = "hello world"`,
			},
		},
		&countRule{
			info: Info{
				ID:          KeyErrorLookup,
				Category:    schema.CodeOptimizations,
				Weight:      0.5,
				Description: "Dictionary lookups guarded by except KeyError",
			},
			count:   func(f schema.StructuralFacts, _ []byte) int { return f.KeyErrorHandlers },
			penalty: 0.8,
			advice: schema.SuggestionPayload{
				Text:    "Use dict.get with a default instead of catching KeyError.",
				Impact:  "Raising and unwinding exceptions costs far more than a plain lookup.",
				Example: `value = table.get(key, default)`,
			},
		},
		&countRule{
			info: Info{
				ID:          ListMembership,
				Category:    schema.CodeOptimizations,
				Weight:      0.6,
				Description: "Membership tests against list literals",
			},
			count:   func(f schema.StructuralFacts, _ []byte) int { return f.ListMembershipTests },
			penalty: 0.8,
			advice: schema.SuggestionPayload{
				Text:   "Test membership against a set for constant-time lookups.",
				Impact: "List membership scans every element on each test.",
				Example: `ALLOWED = {"a", "b", "c"}
if key in ALLOWED:
    handle(key)`,
			},
		},
		&countRule{
			info: Info{
				ID:          WildcardImport,
				Category:    schema.CodeOptimizations,
				Weight:      0.4,
				Description: "Wildcard imports",
			},
			count:   func(f schema.StructuralFacts, _ []byte) int { return f.WildcardImports },
			penalty: 0.8,
			advice: schema.SuggestionPayload{
				Text:    "Import only the names you use.",
				Impact:  "Wildcard imports load and bind every public name of the module.",
				Example: `from os.path import join, exists`,
			},
		},
	}
}
