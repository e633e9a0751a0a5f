package pngio

// FilterType is the per-row predictive filter selector, the byte that
// prefixes every scanline inside the compressed image-data stream.
type FilterType byte

// The five filters of PNG filter method 0.
const (
	FilterNone    FilterType = 0
	FilterSub     FilterType = 1
	FilterUp      FilterType = 2
	FilterAverage FilterType = 3
	FilterPaeth   FilterType = 4
)

// String returns the filter name.
func (f FilterType) String() string {
	switch f {
	case FilterNone:
		return "none"
	case FilterSub:
		return "sub"
	case FilterUp:
		return "up"
	case FilterAverage:
		return "average"
	case FilterPaeth:
		return "paeth"
	}
	return "invalid"
}

func (f FilterType) valid() bool { return f <= FilterPaeth }

// paeth is the Paeth predictor: whichever of left, up, upLeft is closest
// to left+up-upLeft. Ties prefer left, then up.
func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := p-int(a), p-int(b), p-int(c)
	if pa < 0 {
		pa = -pa
	}
	if pb < 0 {
		pb = -pb
	}
	if pc < 0 {
		pc = -pc
	}
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

// filterRow applies a filter to cur, writing the filtered bytes to dst.
// prev is the raw (unfiltered) previous row; an all-zero slice stands in
// above row 0. bpp is the filter stride in bytes, at least 1 even for
// sub-byte depths. dst, cur, and prev must all be the same length.
func filterRow(ft FilterType, dst, cur, prev []byte, bpp int) {
	switch ft {
	case FilterNone:
		copy(dst, cur)
	case FilterSub:
		for i := range cur {
			left := byte(0)
			if i >= bpp {
				left = cur[i-bpp]
			}
			dst[i] = cur[i] - left
		}
	case FilterUp:
		for i := range cur {
			dst[i] = cur[i] - prev[i]
		}
	case FilterAverage:
		for i := range cur {
			left := 0
			if i >= bpp {
				left = int(cur[i-bpp])
			}
			dst[i] = cur[i] - byte((left+int(prev[i]))/2)
		}
	case FilterPaeth:
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			dst[i] = cur[i] - paeth(left, prev[i], upLeft)
		}
	}
}

// unfilterRow reverses a filter in place: cur holds filtered bytes on
// entry and raw bytes on return. prev is the already-unfiltered previous
// row, so rows must be processed strictly in order.
func unfilterRow(ft FilterType, cur, prev []byte, bpp int) {
	switch ft {
	case FilterNone:
	case FilterSub:
		for i := bpp; i < len(cur); i++ {
			cur[i] += cur[i-bpp]
		}
	case FilterUp:
		for i := range cur {
			cur[i] += prev[i]
		}
	case FilterAverage:
		for i := range cur {
			left := 0
			if i >= bpp {
				left = int(cur[i-bpp])
			}
			cur[i] += byte((left + int(prev[i])) / 2)
		}
	case FilterPaeth:
		for i := range cur {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			cur[i] += paeth(left, prev[i], upLeft)
		}
	}
}

// chooseFilter picks the filter minimizing the sum of absolute values of
// the filtered bytes (treating each byte as signed), the standard
// heuristic for deflate-friendliness. It returns the winning filter and
// dst filled with the filtered row. scratch must be the row length and
// is clobbered.
func chooseFilter(dst, scratch, cur, prev []byte, bpp int) FilterType {
	best := FilterNone
	filterRow(FilterNone, dst, cur, prev, bpp)
	bestCost := filterCost(dst)
	for ft := FilterSub; ft <= FilterPaeth; ft++ {
		filterRow(ft, scratch, cur, prev, bpp)
		if cost := filterCost(scratch); cost < bestCost {
			best, bestCost = ft, cost
			copy(dst, scratch)
		}
	}
	return best
}

// filterCost sums the absolute values of row bytes interpreted as
// signed deltas.
func filterCost(row []byte) int {
	cost := 0
	for _, b := range row {
		v := int(int8(b))
		if v < 0 {
			v = -v
		}
		cost += v
	}
	return cost
}
