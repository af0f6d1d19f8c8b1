package slicer

import "slasher/internal/pixbuf"

// ValidateAura confirms that split sits in a uniform band. When the
// AuraMargin rows below split are all within Threshold of split itself the
// line is kept. Otherwise the rows above split are walked, for at most
// 2*AuraMargin-1 rows and never past row 0, while they stay within Threshold
// of split; the line moves up by half the distance walked.
//
// Near the bottom of the image (split+AuraMargin >= height) the check is
// skipped and split is returned unchanged.
func ValidateAura(buf *pixbuf.Buffer, p Params, split int) int {
	if !auraApplies(buf, p, split) {
		return split
	}
	if bandUniform(buf, p.Threshold, split, p.AuraMargin) {
		return split
	}
	return split - backwardCorrection(buf, p.Threshold, split, p.AuraMargin)
}

func auraApplies(buf *pixbuf.Buffer, p Params, split int) bool {
	return p.AuraMargin > 0 && split >= 0 && split+p.AuraMargin < buf.Height
}

// bandUniform reports whether rows split+1 .. split+margin all match split.
// The last margin row is included and every column is compared, so a band
// that only looks flat in its first pixel or stops one row short fails.
func bandUniform(buf *pixbuf.Buffer, threshold uint8, split, margin int) bool {
	for offset := 1; offset <= margin; offset++ {
		if buf.MaxRowDiff(split, split+offset) > threshold {
			return false
		}
	}
	return true
}

func backwardCorrection(buf *pixbuf.Buffer, threshold uint8, split, margin int) int {
	limit := 2*margin - 1
	if limit > split {
		limit = split
	}
	correction := 0
	for offset := 1; offset <= limit; offset++ {
		correction = offset / 2
		if buf.MaxRowDiff(split, split-offset) > threshold {
			break
		}
	}
	return correction
}
