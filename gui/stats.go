package gui

// FrameStats keeps a rolling window of frame times.
type FrameStats struct {
	samples [60]float32
	n, next int
	frames  uint64
}

// Add records one frame of dt seconds.
func (s *FrameStats) Add(dt float32) {
	s.samples[s.next] = dt
	s.next = (s.next + 1) % len(s.samples)
	if s.n < len(s.samples) {
		s.n++
	}
	s.frames++
}

// FrameTime is the mean frame time in milliseconds over the window.
func (s *FrameStats) FrameTime() float32 {
	if s.n == 0 {
		return 0
	}
	var sum float32
	for i := 0; i < s.n; i++ {
		sum += s.samples[i]
	}
	return sum / float32(s.n) * 1000
}

func (s *FrameStats) FPS() float32 {
	ms := s.FrameTime()
	if ms == 0 {
		return 0
	}
	return 1000 / ms
}

// Frames is the total number of frames recorded.
func (s *FrameStats) Frames() uint64 { return s.frames }
