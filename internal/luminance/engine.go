package luminance

import (
	"runtime"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// sequentialPixelLimit is the region size below which strip parallelism costs
// more than it saves.
const sequentialPixelLimit = 100000

// Engine converts raw RGBA pixel data into perceptual-brightness summaries.
// It holds no per-call state beyond a scratch-slice pool, so a single engine
// may be shared across goroutines analyzing independent captures.
type Engine struct {
	opts      Options
	slicePool sync.Pool
}

// NewEngine creates an engine with the default Rec. 709 configuration.
func NewEngine() *Engine {
	return NewEngineWithOptions(DefaultOptions())
}

// NewEngineWithOptions creates an engine with explicit coefficients and
// thresholds. Options are fixed for the engine's lifetime.
func NewEngineWithOptions(opts Options) *Engine {
	return &Engine{
		opts: opts,
		slicePool: sync.Pool{
			New: func() interface{} {
				return make([]float64, 0, 1024)
			},
		},
	}
}

// Options returns the engine's fixed configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Analyze computes brightness statistics over the whole buffer.
func (e *Engine) Analyze(buf *PixelBuffer) Result {
	buf.mustBeValid()
	return e.analyze(buf, buf.Bounds())
}

// AnalyzeRegion computes brightness statistics over a sub-rectangle of the
// buffer. The region is clipped to the buffer bounds first; an empty
// intersection yields the zero-pixel result, not an error.
func (e *Engine) AnalyzeRegion(buf *PixelBuffer, region Region) Result {
	buf.mustBeValid()
	return e.analyze(buf, region.Intersect(buf.Bounds()))
}

func (e *Engine) analyze(buf *PixelBuffer, clipped Region) Result {
	start := time.Now()

	if clipped.Empty() {
		return Result{AnalysisTimeMillis: millisSince(start)}
	}

	lum := e.luminances(buf, clipped)
	defer e.release(lum)

	mean := stat.Mean(lum, nil)
	result := Result{
		Average:           &mean,
		Minimum:           floats.Min(lum),
		Maximum:           floats.Max(lum),
		StandardDeviation: stat.PopStdDev(lum, nil),
		PixelCount:        len(lum),
	}

	var bright, veryBright int
	for _, l := range lum {
		if l > e.opts.BrightThreshold {
			bright++
			if l > e.opts.VeryBrightThreshold {
				veryBright++
			}
		}
	}
	total := float64(len(lum))
	result.PercentBright = float64(bright) / total * 100
	result.PercentVeryBright = float64(veryBright) / total * 100

	result.AnalysisTimeMillis = millisSince(start)
	return result
}

// Histogram buckets every pixel's luminance into bins equal-width buckets
// over [0,1]. The top bucket absorbs luminance 1.0 exactly along with any
// rounding at the boundary, so the counts always sum to the pixel count.
func (e *Engine) Histogram(buf *PixelBuffer, bins int) []int {
	buf.mustBeValid()
	if bins < 1 {
		panic("luminance: histogram bin count must be >= 1")
	}
	counts := make([]int, bins)
	clipped := buf.Bounds()
	if clipped.Empty() {
		return counts
	}

	lum := e.luminances(buf, clipped)
	defer e.release(lum)

	for _, l := range lum {
		idx := int(l * float64(bins))
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	return counts
}

// Grid partitions the buffer into size x size cells and computes the average
// luminance of each independently. Cell edges come from integer division of
// the buffer dimensions, so the last row and column absorb the remainder.
// Cells that intersect to zero pixels report 0.
func (e *Engine) Grid(buf *PixelBuffer, size int) [][]float64 {
	buf.mustBeValid()
	if size < 1 {
		panic("luminance: grid size must be >= 1")
	}

	cellW := buf.Width / size
	cellH := buf.Height / size

	cells := make([][]float64, size)
	for row := 0; row < size; row++ {
		cells[row] = make([]float64, size)
		for col := 0; col < size; col++ {
			cell := Region{X: col * cellW, Y: row * cellH, Width: cellW, Height: cellH}
			if col == size-1 {
				cell.Width = buf.Width - cell.X
			}
			if row == size-1 {
				cell.Height = buf.Height - cell.Y
			}
			res := e.analyze(buf, cell.Intersect(buf.Bounds()))
			cells[row][col] = res.AverageOrZero()
		}
	}
	return cells
}

// luminances extracts the clipped region into a pooled contiguous slice of
// per-pixel luminance values. Callers must hand the slice back via release
// and must not retain it.
func (e *Engine) luminances(buf *PixelBuffer, r Region) []float64 {
	n := r.Width * r.Height
	out := e.slicePool.Get().([]float64)
	if cap(out) < n {
		out = make([]float64, n)
	}
	out = out[:n]

	if n < sequentialPixelLimit {
		e.fillRows(buf, r, out, 0, r.Height)
		return out
	}

	// Horizontal strips keep row reads cache-local, and each worker writes a
	// disjoint range of out, so results stay deterministic.
	numWorkers := runtime.NumCPU()
	if r.Height < numWorkers {
		numWorkers = r.Height
	}
	rowsPerWorker := (r.Height + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		startRow := i * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > r.Height {
			endRow = r.Height
		}
		if startRow >= endRow {
			break
		}
		wg.Add(1)
		go func(startRow, endRow int) {
			defer wg.Done()
			e.fillRows(buf, r, out, startRow, endRow)
		}(startRow, endRow)
	}
	wg.Wait()
	return out
}

// fillRows computes luminance for rows [startRow, endRow) of the region,
// writing into the matching range of out.
func (e *Engine) fillRows(buf *PixelBuffer, r Region, out []float64, startRow, endRow int) {
	cr, cg, cb := e.opts.RedCoefficient, e.opts.GreenCoefficient, e.opts.BlueCoefficient
	for row := startRow; row < endRow; row++ {
		src := (r.Y+row)*buf.Stride + r.X*4
		dst := row * r.Width
		pix := buf.Pix[src : src+r.Width*4]
		for x := 0; x < r.Width; x++ {
			off := x * 4
			rf := float64(pix[off]) / 255
			gf := float64(pix[off+1]) / 255
			bf := float64(pix[off+2]) / 255
			out[dst+x] = rf*cr + gf*cg + bf*cb
		}
	}
}

func (e *Engine) release(lum []float64) {
	e.slicePool.Put(lum[:0])
}

func millisSince(start time.Time) float64 {
	return float64(time.Since(start).Nanoseconds()) / 1e6
}
