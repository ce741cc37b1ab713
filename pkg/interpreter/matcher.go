package interpreter

import (
	"strings"

	"lazr/interpreter-go/pkg/runtime"
)

// dotsTarget marks a supplied argument collected into `...`.
const dotsTarget = -1

// matchPlan records where each supplied argument of a call site went. It is
// valid for the formals and argument tags it was computed from.
type matchPlan struct {
	formals *runtime.FormalList
	tags    []*runtime.Symbol
	targets []int
}

func (p *matchPlan) fits(formals *runtime.FormalList, tags []*runtime.Symbol) bool {
	if p == nil || p.formals != formals || len(p.tags) != len(tags) {
		return false
	}
	for idx, tag := range tags {
		if p.tags[idx] != tag {
			return false
		}
	}
	return true
}

// matchArguments binds the promise-wrapped args to the formals of closure in
// execEnv. When useCache is set and the configuration enables it, the plan is
// memoized on the call site.
func (i *Interpreter) matchArguments(call *runtime.Call, closure *runtime.Closure, execEnv *runtime.Environment, args *runtime.ArgList, useCache bool) error {
	formals := closure.Formals
	if formals == nil {
		formals = runtime.NewFormalList()
	}
	tags := args.Tags()

	var plan *matchPlan
	useCache = useCache && i.config.MatchCache && call != nil
	if useCache {
		if cached, ok := call.MatchCache().(*matchPlan); ok && cached.fits(formals, tags) {
			plan = cached
			i.stats.MatchCacheHits++
		}
	}
	if plan == nil {
		targets, err := planMatch(call, formals, tags, args)
		if err != nil {
			return err
		}
		plan = &matchPlan{formals: formals, tags: tags, targets: targets}
		if useCache {
			call.SetMatchCache(plan)
			i.stats.MatchCacheMisses++
		}
	}
	bindMatched(formals, plan.targets, execEnv, args)
	return nil
}

// planMatch assigns each supplied argument to a formal index or to `...`.
// Exact tags are matched first, then unique prefixes of formals before
// `...`, then untagged arguments by position.
func planMatch(call *runtime.Call, formals *runtime.FormalList, tags []*runtime.Symbol, args *runtime.ArgList) ([]int, error) {
	n := len(tags)
	targets := make([]int, n)
	used := make([]bool, n)
	filled := make([]bool, len(formals.Formals))
	dots := formals.DotsIndex()
	callValue := runtime.Null
	if call != nil {
		callValue = runtime.ObjectValue(call)
	}

	for fi, formal := range formals.Formals {
		if fi == dots {
			continue
		}
		for ai, tag := range tags {
			if tag == nil || tag != formal.Name {
				continue
			}
			if filled[fi] {
				return nil, runtime.CallErrorf(runtime.ErrUsage, callValue,
					"formal argument \"%s\" matched by multiple actual arguments", formal.Name.Name())
			}
			targets[ai] = fi
			used[ai] = true
			filled[fi] = true
		}
	}

	for ai, tag := range tags {
		if tag == nil || used[ai] || tag.Name() == "" {
			continue
		}
		match := -1
		for fi, formal := range formals.Formals {
			if dots >= 0 && fi >= dots {
				break
			}
			if filled[fi] || !strings.HasPrefix(formal.Name.Name(), tag.Name()) {
				continue
			}
			if match >= 0 {
				return nil, runtime.CallErrorf(runtime.ErrUsage, callValue,
					"argument %d matches multiple formal arguments", ai+1)
			}
			match = fi
		}
		if match >= 0 {
			targets[ai] = match
			used[ai] = true
			filled[match] = true
		}
	}

	next := 0
	for ai, tag := range tags {
		if used[ai] || tag != nil {
			continue
		}
		for next < len(formals.Formals) && (filled[next] || next == dots) {
			if next == dots {
				next = len(formals.Formals)
				break
			}
			next++
		}
		if next >= len(formals.Formals) {
			break
		}
		targets[ai] = next
		used[ai] = true
		filled[next] = true
		next++
	}

	var unused []int
	for ai := range tags {
		if used[ai] {
			continue
		}
		if dots >= 0 {
			targets[ai] = dotsTarget
			continue
		}
		unused = append(unused, ai)
	}
	if len(unused) > 0 {
		parts := make([]string, len(unused))
		for k, ai := range unused {
			parts[k] = deparseArgument(tags[ai], args.At(ai).Value())
		}
		noun := "argument"
		if len(unused) > 1 {
			noun = "arguments"
		}
		return nil, runtime.CallErrorf(runtime.ErrUsage, callValue, "unused %s (%s)", noun, strings.Join(parts, ", "))
	}
	return targets, nil
}

// bindMatched defines every formal in execEnv. Supplied arguments are bound
// as they are; unsupplied formals get a default promise evaluated in execEnv
// or the missing argument marker.
func bindMatched(formals *runtime.FormalList, targets []int, execEnv *runtime.Environment, args *runtime.ArgList) {
	supplied := make([]runtime.Value, len(formals.Formals))
	for fi := range supplied {
		supplied[fi] = runtime.MissingArgValue
	}
	var dotArgs []runtime.DotArg
	for ai, target := range targets {
		arg := args.At(ai)
		if target == dotsTarget {
			dotArgs = append(dotArgs, runtime.DotArg{Tag: arg.Tag(), Value: arg.Value()})
			continue
		}
		supplied[target] = arg.Value()
	}

	for fi, formal := range formals.Formals {
		if formal.Name == runtime.DotsSymbol {
			if len(dotArgs) == 0 {
				execEnv.Define(formal.Name, runtime.MissingArgValue)
				continue
			}
			execEnv.Define(formal.Name, runtime.ObjectValue(&runtime.DotArgs{Args: dotArgs}))
			continue
		}
		val := supplied[fi]
		if val.IsMissingArg() && formal.HasDefault() {
			val = runtime.ObjectValue(runtime.NewDefaultPromise(formal.Default, execEnv))
		}
		execEnv.Define(formal.Name, val)
	}
}

// deparseArgument renders one supplied argument for error messages. Forced
// promises show their expression.
func deparseArgument(tag *runtime.Symbol, val runtime.Value) string {
	if p, ok := promiseOf(val); ok {
		val = p.Expression()
	}
	text := Deparse(val)
	if tag != nil {
		return tag.Name() + " = " + text
	}
	return text
}
