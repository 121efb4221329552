package codec

// Mark is an opaque snapshot of a reader or writer's byte position,
// taken so a later error can report exactly where decoding went wrong
// even after the cursor has advanced past that point.
type Mark int64
