package parser

import "slices"

// StructReturnArg names the argument that carries the result of a
// function returning a struct.
const StructReturnArg = "return_struct"

// Align rounds offset up to the next multiple of alignment, which must be a
// power of 2. An alignment of 0 leaves offset unchanged.
func Align(offset, alignment int) int {
	if alignment <= 0 {
		return offset
	}
	return (offset + alignment - 1) &^ (alignment - 1)
}

// FrameSize returns the number of bytes needed to lay out the arguments of
// fn in order.
func FrameSize(fn Func) int {
	size := 0
	for _, arg := range fn.Args {
		size = Align(size, arg.Type.Align)
		size += arg.Type.Size
	}
	return size
}

// Offsets returns the frame offset of each argument of fn.
func Offsets(fn Func) []int {
	offsets := make([]int, len(fn.Args))
	size := 0
	for i, arg := range fn.Args {
		size = Align(size, arg.Type.Align)
		offsets[i] = size
		size += arg.Type.Size
	}
	return offsets
}

// RewriteStructReturn returns fn with a struct result passed by reference
// as the first argument. Functions without a struct result, or that were
// already rewritten, are returned unchanged.
func RewriteStructReturn(reg *Registry, fn Func) Func {
	if fn.StructReturn || fn.Result == nil || !fn.Result.IsStruct() {
		return fn
	}

	out := fn
	out.Args = slices.Insert(slices.Clone(fn.Args), 0, Arg{Name: StructReturnArg, Type: reg.PointerTo(fn.Result)})
	out.RenderedResult = reg.Void()
	out.StructReturn = true
	return out
}
