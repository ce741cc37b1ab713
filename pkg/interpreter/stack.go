package interpreter

import "lazr/interpreter-go/pkg/runtime"

// callFrame records one active closure call.
type callFrame struct {
	call     *runtime.Call
	closure  *runtime.Closure
	callEnv  *runtime.Environment
	execEnv  *runtime.Environment
	args     *runtime.ArgList
	dispatch *dispatchContext
}

// returnSignal unwinds to the closure call whose execution environment is
// target.
type returnSignal struct {
	value  runtime.Value
	target *runtime.Environment
}

func (r returnSignal) Error() string {
	return "return outside function"
}

const depthMessage = "evaluation nested too deeply: infinite recursion / options(expressions=)?"

// enter bumps the nesting depth, failing once the configured limit is
// exceeded. Every successful enter must be paired with leave.
func (i *Interpreter) enter(call runtime.Value) error {
	if i.depth >= i.config.MaxDepth {
		return runtime.CallErrorf(runtime.ErrResource, call, depthMessage)
	}
	i.depth++
	return nil
}

func (i *Interpreter) leave() {
	i.depth--
}

// Depth reports the current nesting depth.
func (i *Interpreter) Depth() int {
	return i.depth
}

func (i *Interpreter) pushFrame(frame *callFrame) {
	i.frames = append(i.frames, frame)
}

func (i *Interpreter) popFrame() {
	i.frames[len(i.frames)-1] = nil
	i.frames = i.frames[:len(i.frames)-1]
}

// currentFrame returns the innermost closure call, or nil at top level.
func (i *Interpreter) currentFrame() *callFrame {
	if len(i.frames) == 0 {
		return nil
	}
	return i.frames[len(i.frames)-1]
}

// frameFor returns the innermost closure call whose execution environment is
// env, or nil.
func (i *Interpreter) frameFor(env *runtime.Environment) *callFrame {
	for idx := len(i.frames) - 1; idx >= 0; idx-- {
		if i.frames[idx].execEnv == env {
			return i.frames[idx]
		}
	}
	return nil
}

// snapshotCallStack returns the calls on the stack, innermost last.
func (i *Interpreter) snapshotCallStack() []*runtime.Call {
	out := make([]*runtime.Call, len(i.frames))
	for idx, frame := range i.frames {
		out[idx] = frame.call
	}
	return out
}
