package flowjit

// SocketSet is an ordered collection of sockets without duplicates. It
// declares the inputs or outputs of a compiled function; its order is the
// argument or result order.
type SocketSet struct {
	elems []AnySocket
	index map[AnySocket]int
}

// NewSocketSet builds a set from sockets in order. Repeated sockets keep
// their first position.
func NewSocketSet(sockets ...AnySocket) *SocketSet {
	s := &SocketSet{index: make(map[AnySocket]int, len(sockets))}
	for _, sock := range sockets {
		if _, dup := s.index[sock]; dup {
			continue
		}
		s.index[sock] = len(s.elems)
		s.elems = append(s.elems, sock)
	}
	return s
}

// Contains reports whether sock is in the set.
func (s *SocketSet) Contains(sock AnySocket) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[sock]
	return ok
}

// IndexOf returns the position of sock, or -1.
func (s *SocketSet) IndexOf(sock AnySocket) int {
	if s == nil {
		return -1
	}
	if i, ok := s.index[sock]; ok {
		return i
	}
	return -1
}

// Len returns the number of sockets.
func (s *SocketSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.elems)
}

// At returns the i-th socket.
func (s *SocketSet) At(i int) AnySocket { return s.elems[i] }

// Elements returns the sockets in order.
func (s *SocketSet) Elements() []AnySocket {
	if s == nil {
		return nil
	}
	return append([]AnySocket(nil), s.elems...)
}
