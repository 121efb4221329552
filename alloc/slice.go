// Package alloc implements a fixed-buffer, bump-style scratch allocator.
//
// Slice divides a caller-provided byte buffer into a data arena, growing
// from the low address upward, and a set of small-integer-identified
// region headers tracking every live allocation. It supports many
// concurrently live, independently growable regions, reuses a single
// "occupied" (freed-but-not-yet-reclaimable) slot opportunistically, and
// merges adjacent regions on free. It never grows its backing buffer and
// never panics on exhaustion: every method that can fail returns a bool
// or a nil *Region instead.
//
// Slice is not safe for concurrent use. All of its methods, and every
// method on a *Region obtained from it, must complete before another is
// invoked on the same Slice — directly or through another Region.
package alloc

import "github.com/cznic/mathutil"

// maxBytes bounds the buffer Slice can manage: the largest value a
// signed 32-bit integer can hold.
const maxBytes = 1<<31 - 1

// maxID bounds the number of region slots ever live or recycled at once.
// Id 0 is reserved to mean "no region".
const maxID = 65534

// id identifies a region header. The zero value means "none".
type id uint32

type state uint8

const (
	stateFree state = iota
	stateUsed
	stateOccupied
)

// header is the bookkeeping record for one region. In the original
// design these are packed as raw bytes at the high end of the caller's
// buffer; here they live in an ordinary Go slice indexed by id, since a
// hosted Go program already has a garbage-collected heap for its own
// bookkeeping and packing them into caller bytes would buy nothing. See
// DESIGN.md.
type header struct {
	start, end int
	prev, next id
	st         state
}

// Slice is a bump-style allocator over a single fixed byte buffer.
type Slice struct {
	buf     []byte
	headers []header // 1-indexed; headers[0] is an unused sentinel

	freeHead id // singly linked free list of recycled header slots
	tail     id // id of the region with the highest start address
	occupied id // the single region currently in the Occupied state, if any

	freeStart int // low end of unused data, grows upward
}

// New constructs a Slice over buf. The entire buffer is initially free.
//
// New panics if buf is longer than 2^31-1 bytes, mirroring the upstream
// allocator's own limit (every offset fits in a signed 32-bit integer).
func New(buf []byte) *Slice {
	if len(buf) > maxBytes {
		panic("alloc: buffer too large")
	}

	return &Slice{
		buf:     buf,
		headers: make([]header, 1, 16),
	}
}

// Stats reports coarse occupancy information, mirroring
// lldb.Allocator.Verify's AllocStats. Intended for tests and diagnostics.
type Stats struct {
	LiveBytes   int
	LiveRegions int
	FreeHeaders int
}

// Stats walks the live list and free list and reports their sizes. The
// Occupied region, if any, is freed and is not counted as live.
func (s *Slice) Stats() Stats {
	var st Stats
	for i := s.tail; i != 0; i = s.headers[i].prev {
		if i == s.occupied {
			continue
		}
		h := &s.headers[i]
		st.LiveBytes += h.end - h.start
		st.LiveRegions++
	}
	for i := s.freeHead; i != 0; i = s.headers[i].next {
		st.FreeHeaders++
	}
	return st
}

// Region is a handle to one live allocation inside a Slice.
type Region struct {
	s  *Slice
	id id
}

// ID returns an opaque, comparable identity for the region, stable for
// the region's lifetime. Two Regions with equal ID refer to the same
// allocation.
func (r *Region) ID() uint32 { return uint32(r.id) }

// Bytes returns the live byte range of the region as a sub-slice of the
// buffer passed to New. The slice is only valid until the next mutating
// call on the owning Slice (including through another Region).
func (r *Region) Bytes() []byte {
	h := &r.s.headers[r.id]
	return r.s.buf[h.start:h.end:h.end]
}

// Cap returns the region's current capacity in bytes.
func (r *Region) Cap() int {
	h := &r.s.headers[r.id]
	return h.end - h.start
}

func (h *header) capacity() int { return h.end - h.start }

func alignUp(v, align int) int {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

func isAligned(v, align int) bool {
	if align <= 1 {
		return true
	}
	return v&(align-1) == 0
}

// Alloc reserves a region of at least req bytes aligned to align, which
// must be a power of two. It returns (nil, false) if there is no header
// slot left or insufficient contiguous free space.
//
// A live Occupied region of sufficient capacity and alignment is reused
// before carving fresh space, per spec.
func (s *Slice) Alloc(req, align int) (*Region, bool) {
	if s.occupied != 0 {
		h := &s.headers[s.occupied]
		if h.capacity() >= req && isAligned(h.start, align) {
			r := &Region{s: s, id: s.occupied}
			s.occupied = 0
			h.st = stateUsed
			return r, true
		}
	}

	if !s.align(align) {
		return nil, false
	}

	if len(s.buf)-s.freeStart < req {
		return nil, false
	}

	end := s.freeStart + req
	hid, ok := s.allocHeader(s.freeStart, end)
	if !ok {
		return nil, false
	}

	s.freeStart = end
	s.pushBack(hid)
	return &Region{s: s, id: hid}, true
}

// align advances freeStart to the given alignment, extending the tail
// region to cover the gap (or carving a synthetic Occupied region at the
// head, if there is no tail yet) so the skipped bytes are never lost.
func (s *Slice) align(align int) bool {
	aligned := alignUp(s.freeStart, align)
	if aligned == s.freeStart {
		return true
	}

	if aligned > len(s.buf) {
		return false
	}

	if s.tail != 0 {
		s.headers[s.tail].end = aligned
	} else {
		hid, ok := s.allocHeader(s.freeStart, aligned)
		if !ok {
			return false
		}
		s.headers[hid].st = stateOccupied
		s.pushBack(hid)
		s.occupied = hid
	}

	s.freeStart = aligned
	return true
}

// allocHeader hands out a header slot for a new region spanning
// [start,end), either recycled from the free list or freshly appended,
// subject to the maxID budget.
func (s *Slice) allocHeader(start, end int) (id, bool) {
	if s.freeHead != 0 {
		hid := s.freeHead
		h := &s.headers[hid]
		s.freeHead = h.next
		h.start, h.end = start, end
		h.prev, h.next = 0, 0
		h.st = stateUsed
		return hid, true
	}

	if len(s.headers)-1 >= maxID {
		return 0, false
	}

	s.headers = append(s.headers, header{start: start, end: end, st: stateUsed})
	return id(len(s.headers) - 1), true
}

// pushBack links region hid as the new tail of the live region list.
func (s *Slice) pushBack(hid id) {
	h := &s.headers[hid]
	if s.tail != 0 {
		h.prev = s.tail
		s.headers[s.tail].next = hid
	}
	s.tail = hid
}

// unlink removes hid from the live region list without altering its
// state, fixing up its neighbours' prev/next.
func (s *Slice) unlink(hid id) {
	h := &s.headers[hid]
	if h.next != 0 {
		s.headers[h.next].prev = h.prev
	} else {
		s.tail = h.prev
	}
	if h.prev != 0 {
		s.headers[h.prev].next = h.next
	}
}

// replaceBack unlinks hid from wherever it sits in the live list and
// re-links it as the tail. Used to bias a region that has just grown
// towards the tail, where it has unbounded room to grow again without
// being copied — the key trick that keeps repeated growth of a single
// region O(total bytes) instead of O(n^2).
func (s *Slice) replaceBack(hid id) {
	s.unlink(hid)
	s.headers[hid].next = 0
	s.pushBack(hid)
}

// freeRegion removes hid from the live list, recycles its header slot
// onto the free list, and returns a copy of the header as it was just
// before recycling.
func (s *Slice) freeRegion(hid id) header {
	s.unlink(hid)
	old := s.headers[hid]
	s.headers[hid] = header{next: s.freeHead, st: stateFree}
	s.freeHead = hid
	return old
}

// Resize ensures the region has at least len+additional bytes of
// capacity, growing it if necessary. It returns false iff no strategy —
// in-place tail growth, expansion into a preceding Occupied slot,
// relinking an empty region to the tail, or allocating fresh and
// copying — can satisfy the request.
func (r *Region) Resize(len, additional int) bool {
	if additional == 0 {
		return true
	}

	requested := len + additional
	if requested > maxBytes {
		return false
	}

	h := &r.s.headers[r.id]
	if h.capacity() >= requested {
		return true
	}

	nid, ok := r.s.realloc(r.id, len, requested, 1)
	if !ok {
		return false
	}
	r.id = nid
	return true
}

// ResizeAligned behaves like Resize but additionally requires the
// resulting region to satisfy the given alignment, matching the
// original allocator's per-type alignment parameter.
func (r *Region) ResizeAligned(len, additional, align int) bool {
	if additional == 0 {
		return true
	}

	requested := len + additional
	if requested > maxBytes {
		return false
	}

	h := &r.s.headers[r.id]
	if h.capacity() >= requested {
		return true
	}

	nid, ok := r.s.realloc(r.id, len, requested, align)
	if !ok {
		return false
	}
	r.id = nid
	return true
}

func (s *Slice) reserve(additional, align int) (int, bool) {
	if !s.align(align) {
		return 0, false
	}

	freeStart := s.freeStart + additional
	avail := mathutil.MinInt64(int64(len(s.buf)), int64(freeStart))
	if int64(freeStart) != avail || freeStart < s.freeStart {
		return 0, false
	}

	return freeStart, true
}

func (s *Slice) realloc(from id, length, requested, align int) (id, bool) {
	h := &s.headers[from]

	// Tail region: grow in place, it has unbounded forward room.
	if h.next == 0 {
		additional := requested - h.capacity()
		freeStart, ok := s.reserve(additional, align)
		if !ok {
			return 0, false
		}
		h.end += additional
		s.freeStart = freeStart
		return from, true
	}

	// Empty region: cheaper to relink to the tail than to copy zero bytes.
	if h.start == h.end {
		freeStart, ok := s.reserve(requested, align)
		if !ok {
			return 0, false
		}
		h.start = s.freeStart
		h.end = freeStart
		s.freeStart = freeStart
		s.replaceBack(from)
		return from, true
	}

	// Try to expand into an immediately preceding Occupied region.
	if nid, ok := s.tryExpandIntoOccupied(from, length, requested, align); ok {
		return nid, true
	}

	to, ok := s.Alloc(requested, align)
	if !ok {
		return 0, false
	}
	toStart := s.headers[to.id].start
	copy(s.buf[toStart:toStart+length], s.buf[h.start:h.start+length])
	s.free(from)
	return to.id, true
}

func (s *Slice) tryExpandIntoOccupied(from id, length, requested, align int) (id, bool) {
	h := &s.headers[from]
	prevID := h.prev
	if prevID == 0 || s.occupied != prevID {
		return 0, false
	}

	prev := &s.headers[prevID]
	if prev.capacity()+h.capacity() < requested {
		return 0, false
	}
	if !isAligned(prev.start, align) {
		return 0, false
	}

	freed := s.freeRegion(from)
	copy(s.buf[prev.start:prev.start+length], s.buf[freed.start:freed.start+length])
	prev.end = freed.end
	s.occupied = 0
	return prevID, true
}

// TryMerge absorbs other's capacity into r when other is r's immediate
// successor in the region list and the two byte ranges are contiguous —
// i.e. both regions came from this same Slice and nothing sits between
// them. On success, other is consumed (its region id is freed) and must
// not be used again. this_len and other_len are the logically-written
// prefixes of each region; other's written bytes are shifted to
// immediately follow this's, if a gap exists between them.
func (r *Region) TryMerge(thisLen int, other *Region, otherLen int) bool {
	if r.s != other.s {
		return false
	}

	h := &r.s.headers[r.id]
	if h.capacity() < thisLen {
		panic("alloc: this_len exceeds region capacity")
	}

	oh := &r.s.headers[other.id]
	if h.end != oh.start {
		return false
	}

	next := h.next
	if next != other.id {
		return false
	}

	to := h.start + thisLen
	if h.end != to {
		copy(r.s.buf[to:to+otherLen], r.s.buf[h.end:h.end+otherLen])
	}

	old := r.s.freeRegion(other.id)
	h.end = old.end
	return true
}

// Free destroys the region. Freeing the tail may cascade-reclaim a
// preceding Occupied slot. Freeing a non-tail region merges its capacity
// into the preceding live region if one exists, else marks it Occupied.
func (r *Region) Free() {
	r.s.free(r.id)
	r.id = 0
}

func (s *Slice) free(hid id) {
	h := &s.headers[hid]

	if h.next == 0 {
		s.freeTail(hid)
		return
	}

	prevID := h.prev
	if prevID == 0 {
		h.st = stateOccupied
		s.occupied = hid
		return
	}

	prev := &s.headers[prevID]
	old := s.freeRegion(hid)
	prev.end = old.end
}

func (s *Slice) freeTail(hid id) {
	old := s.freeRegion(hid)

	prevID := old.prev
	if prevID != 0 && s.occupied == prevID {
		s.occupied = 0
		prevOld := s.freeRegion(prevID)
		s.freeStart = prevOld.start
		return
	}

	s.freeStart = old.start
}
