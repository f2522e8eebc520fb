package colorbook

// resizeRequest is the latest size reported by the host layout.
type resizeRequest struct {
	size Size
	dpr  float64
}

// resizer coalesces layout notifications. Only the latest request survives, and it is
// applied at most once per frame, never while a stroke is active.
type resizer struct {
	pending *resizeRequest
}

// request records a resize. A zero sized host rectangle is rejected and leaves
// any earlier pending request in place.
func (r *resizer) request(size Size, dpr float64) error {
	if size.Empty() {
		return ErrDegenerateLayout
	}
	if dpr <= 0 {
		dpr = 1
	}
	r.pending = &resizeRequest{size: size, dpr: dpr}
	return nil
}

// flush applies the pending request to the surface unless a stroke holds it.
// It reports whether the backing buffer was reallocated.
func (r *resizer) flush(s *Surface, strokeActive bool) bool {
	if r.pending == nil || strokeActive {
		return false
	}
	req := r.pending
	r.pending = nil

	w, h := backingSize(req.size, req.dpr)
	b := s.Bounds()
	if req.size == s.Size() && req.dpr == s.DPR() && b.Dx() == w && b.Dy() == h {
		return false
	}
	s.Resize(req.size, req.dpr)
	return true
}

func (r *resizer) deferred() bool { return r.pending != nil }
