package item

// Socket is one slot on equipment that may hold a single socketable.
type Socket struct {
	Prismatic  bool  `json:"prismatic"`
	Socketable *Data `json:"-"`
}

// Sockets is the bounded socket array of an equipment item.
// Invariant after clamping: 0 <= Min <= Amount <= Max <= MaxSockets and
// len(List) == Amount.
type Sockets struct {
	Amount int
	Min    int
	Max    int
	List   []Socket
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s Sockets) clamped() Sockets {
	out := Sockets{
		Max: clampInt(s.Max, 0, MaxSockets),
	}
	out.Min = clampInt(s.Min, 0, out.Max)
	out.Amount = clampInt(s.Amount, out.Min, out.Max)
	out.List = make([]Socket, out.Amount)
	copy(out.List, s.List)
	return out
}

func (s *Sockets) insert(socketable *Data) bool {
	for i := range s.List {
		if s.List[i].Socketable == nil {
			s.List[i].Socketable = socketable
			return true
		}
	}
	return false
}

func (s *Sockets) clear() {
	for i := range s.List {
		s.List[i].Socketable = nil
	}
}

func (s Sockets) clone() Sockets {
	out := s
	out.List = make([]Socket, len(s.List))
	for i, sock := range s.List {
		out.List[i] = Socket{Prismatic: sock.Prismatic, Socketable: sock.Socketable.Clone()}
	}
	return out
}

// Filled returns the number of occupied sockets.
func (s *Sockets) Filled() int {
	n := 0
	for _, sock := range s.List {
		if sock.Socketable != nil {
			n++
		}
	}
	return n
}

// HasFree reports whether at least one socket is empty.
func (s *Sockets) HasFree() bool {
	return s != nil && s.Filled() < len(s.List)
}

// SetAmount resizes the socket list to n, widening Max and Min as needed.
// Existing sockets are kept in order; n is clamped to MaxSockets.
func (s *Sockets) SetAmount(n int) {
	n = clampInt(n, 0, MaxSockets)
	s.Amount = n
	if s.Max < n {
		s.Max = n
	}
	if s.Min > n {
		s.Min = n
	}
	list := make([]Socket, n)
	copy(list, s.List)
	s.List = list
}
