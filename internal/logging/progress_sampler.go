package logging

import "strings"

// ProgressSampler suppresses repetitive progress logs on non-interactive
// output. It emits when the completed percentage crosses a bucket boundary
// or when work moves on to a different group.
type ProgressSampler struct {
	bucketSize float64
	lastGroup  string
	lastBucket int
}

// NewProgressSampler constructs a sampler with the given bucket width in
// percent (default 10).
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 10
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event should be logged. A negative
// percent means the total is unknown and only group changes are reported.
func (s *ProgressSampler) ShouldLog(percent float64, group string) bool {
	if s == nil {
		return true
	}
	emit := false
	if group = strings.TrimSpace(group); group != "" && group != s.lastGroup {
		s.lastGroup = group
		emit = true
	}
	if percent >= 0 {
		if percent > 100 {
			percent = 100
		}
		if bucket := int(percent / s.bucketSize); bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state before a new run.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastGroup = ""
	s.lastBucket = -1
}
