package scanner

import (
	"image"
	"sync"

	"github.com/corona10/goimagehash"
)

// ChangeDetector decides whether a freshly captured frame differs enough from
// the previous one to justify re-analysis. It compares perceptual hashes: a
// Hamming distance at or below maxDistance counts as unchanged, so clock
// ticks and cursor blinks don't trigger a full luminance pass.
type ChangeDetector struct {
	maxDistance int

	mu   sync.Mutex
	last map[int]*goimagehash.ImageHash
}

// NewChangeDetector creates a detector. maxDistance 0 only skips frames with
// identical hashes.
func NewChangeDetector(maxDistance int) *ChangeDetector {
	return &ChangeDetector{
		maxDistance: maxDistance,
		last:        make(map[int]*goimagehash.ImageHash),
	}
}

// Changed reports whether the display's frame differs from the previous scan.
// The first frame for a display always counts as changed, and any hashing
// failure falls through to "changed" so analysis is never wrongly skipped.
func (d *ChangeDetector) Changed(display int, img image.Image) bool {
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return true
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	prev, ok := d.last[display]
	if !ok {
		d.last[display] = hash
		return true
	}

	dist, err := prev.Distance(hash)
	if err != nil {
		d.last[display] = hash
		return true
	}
	if dist <= d.maxDistance {
		return false
	}

	d.last[display] = hash
	return true
}

// Reset forgets all remembered frames, forcing the next scan of every display
// to analyze.
func (d *ChangeDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = make(map[int]*goimagehash.ImageHash)
}
