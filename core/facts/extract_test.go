//go:build cgo

package facts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/ecoscore/schema"
)

const nestedGrowth = `def flatten(grid, n, m):
    result = []
    for i in range(n):
        for j in range(m):
            result.append(grid[i][j])
    return result
`

const nestedRebind = `def flatten(grid, n, m):
    result = []
    for i in range(n):
        for j in range(m):
            result = result + [grid[i][j]]
    return result
`

// TestExtract checks the facts derived from small Python programs.
func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(t *testing.T, f schema.StructuralFacts)
	}{
		{
			name: "empty source",
			src:  "",
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, schema.StructuralFacts{}, f)
			},
		},
		{
			name: "comment only",
			src:  "# nothing to see\n# here\n",
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, schema.StructuralFacts{Lines: 2}, f)
			},
		},
		{
			name: "nested loop growth",
			src:  nestedGrowth,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 1, f.Functions)
				assert.Equal(t, 2, f.Loops)
				assert.Equal(t, 2, f.MaxLoopDepth)
				assert.Equal(t, 1, f.ContainerGrowthInLoop)
				assert.Equal(t, 0, f.IOCallsInLoop)
				assert.Equal(t, 6, f.Lines)
			},
		},
		{
			name: "nested loop rebinding growth",
			src:  nestedRebind,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 2, f.MaxLoopDepth)
				assert.Equal(t, 1, f.ContainerGrowthInLoop)
				assert.Equal(t, 0, f.StringConcatInLoop)
			},
		},
		{
			name: "rebinding with a comprehension",
			src: `acc = []
while more():
    acc = acc + [x for x in batch()]
    other = acc + [1]
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 1, f.ContainerGrowthInLoop)
			},
		},
		{
			name: "triple nesting",
			src: `for a in x:
    for b in y:
        while b:
            b -= 1
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 3, f.Loops)
				assert.Equal(t, 3, f.MaxLoopDepth)
			},
		},
		{
			name: "loop depth resets in nested function",
			src: `for a in x:
    def helper():
        for b in y:
            pass
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 2, f.Loops)
				assert.Equal(t, 1, f.MaxLoopDepth)
			},
		},
		{
			name: "string building in loop",
			src: `out = ""
for word in words:
    out += word + " "
    out = out + "!"
label = "a" + "b"
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 2, f.StringConcatInLoop)
				assert.Equal(t, 1, f.StringLiteralConcat)
			},
		},
		{
			name: "string variable appended in loop",
			src: `def join(words):
    s = ""
    sep = ", "
    for w in words:
        s += w
        s += sep
    total = 0
    for n in words:
        total += n
    return s
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 2, f.StringConcatInLoop)
			},
		},
		{
			name: "rebound name is no longer a string",
			src: `s = ""
s = []
for w in words:
    s += w
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 0, f.StringConcatInLoop)
			},
		},
		{
			name: "string names do not leak across functions",
			src: `def a():
    s = ""

def b(s, words):
    for w in words:
        s += w
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 0, f.StringConcatInLoop)
			},
		},
		{
			name: "io in loop",
			src: `import requests
for url in urls:
    requests.get(url)
    print(url)
    fh.write(url)
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 3, f.IOCallsInLoop)
				assert.Equal(t, 1, f.PrintCalls)
				assert.Equal(t, 1, f.Imports)
			},
		},
		{
			name: "loop header is not inside the loop",
			src: `for line in open("data.txt"):
    pass
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 0, f.IOCallsInLoop)
				assert.Equal(t, 1, f.OpenWithoutContext)
			},
		},
		{
			name: "recursion with and without memo",
			src: `import functools

def fib(n):
    return n if n < 2 else fib(n - 1) + fib(n - 2)

@functools.lru_cache(maxsize=None)
def fast_fib(n):
    return n if n < 2 else fast_fib(n - 1) + fast_fib(n - 2)
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 2, f.Functions)
				assert.Equal(t, 1, f.RecursiveWithoutMemo)
				assert.Equal(t, 1, f.RecursiveWithMemo)
			},
		},
		{
			name: "memo decorators match whole names",
			src: `from functools import cache, lru_cache

@cache
def a(n):
    return a(n - 1)

@lru_cache
def b(n):
    return b(n - 1)

@cachetools.cached(store)
def c(n):
    return c(n - 1)

@no_cache
def d(n):
    return d(n - 1)

@cache_control(max_age=1)
def e(n):
    return e(n - 1)
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 3, f.RecursiveWithMemo)
				assert.Equal(t, 2, f.RecursiveWithoutMemo)
			},
		},
		{
			name: "resource management",
			src: `with open("a") as a, open("b") as b:
    pass
fh = open("c")
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 1, f.WithStatements)
				assert.Equal(t, 1, f.MultiItemWith)
				assert.Equal(t, 1, f.OpenWithoutContext)
			},
		},
		{
			name: "imports and globals",
			src: `from os.path import *
import sys
counter = 0
def bump():
    global counter
    counter += 1
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 2, f.Imports)
				assert.Equal(t, 1, f.WildcardImports)
				assert.Equal(t, 1, f.GlobalStatements)
			},
		},
		{
			name: "lookups and membership",
			src: `try:
    value = table[key]
except KeyError:
    value = None
other = table.get(key)
if key in [1, 2, 3] or key not in [4]:
    pass
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 1, f.KeyErrorHandlers)
				assert.Equal(t, 1, f.DictGetCalls)
				assert.Equal(t, 2, f.ListMembershipTests)
				assert.Equal(t, 1, f.ShortCircuitOps)
			},
		},
		{
			name: "comprehensions and materialization",
			src: `squares = [x * x for x in xs]
total = sum([x for x in xs])
lazy = sum(x for x in xs)
uniq = {x for x in xs}
index = {x: i for i, x in enumerate(xs)}
seen = {1, 2}
nums = list(range(10))
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 2, f.ListComprehensions)
				assert.Equal(t, 1, f.GeneratorExpressions)
				assert.Equal(t, 1, f.SetComprehensions)
				assert.Equal(t, 1, f.DictComprehensions)
				assert.Equal(t, 1, f.SetLiterals)
				assert.Equal(t, 2, f.EagerMaterializations)
			},
		},
		{
			name: "sleep calls",
			src: `import time
from time import sleep
time.sleep(1)
sleep(2)
`,
			check: func(t *testing.T, f schema.StructuralFacts) {
				assert.Equal(t, 2, f.SleepCalls)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Extract(context.Background(), []byte(tt.src))
			require.NoError(t, err)
			tt.check(t, f)
		})
	}
}

// TestExtractParseError ensures invalid source never yields partial facts.
func TestExtractParseError(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "unclosed call", src: "x = 1\nprint(\n"},
		{name: "broken def", src: "def broken(:\n    pass\n"},
		{name: "stray operator", src: "a = 1\nb = 2\n)\n"},
		{name: "python 2 print", src: "print \"hello\"\n"},
		{name: "python 2 exec", src: "x = 1\nexec \"y = 2\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Extract(context.Background(), []byte(tt.src))
			require.Error(t, err)
			assert.Equal(t, schema.StructuralFacts{}, f)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.GreaterOrEqual(t, pe.Line, 1)
			assert.LessOrEqual(t, pe.Line, CountLines([]byte(tt.src))+1)
			assert.GreaterOrEqual(t, pe.Column, 1)
		})
	}
}

// TestExtractLegacyStatementLocation points the error at the statement itself.
func TestExtractLegacyStatementLocation(t *testing.T) {
	_, err := Extract(context.Background(), []byte("def greet():
    print \"hi\"
"))
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Equal(t, 5, pe.Column)
	assert.Contains(t, pe.Message, "print")
}

// TestExtractDeterministic runs the same source twice.
func TestExtractDeterministic(t *testing.T) {
	first, err := Extract(context.Background(), []byte(nestedGrowth))
	require.NoError(t, err)
	second, err := Extract(context.Background(), []byte(nestedGrowth))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// TestCountLines covers trailing newline handling.
func TestCountLines(t *testing.T) {
	assert.Equal(t, 0, CountLines(nil))
	assert.Equal(t, 1, CountLines([]byte("x = 1")))
	assert.Equal(t, 1, CountLines([]byte("x = 1\n")))
	assert.Equal(t, 3, CountLines([]byte("a\n\nb")))
}

// BenchmarkExtract measures extraction of a small function.
func BenchmarkExtract(b *testing.B) {
	src := []byte(nestedGrowth)
	ctx := context.Background()
	for b.Loop() {
		_, _ = Extract(ctx, src)
	}
}
