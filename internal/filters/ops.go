package filters

import (
	"math"
	"sort"

	"github.com/bryanchriswhite/vcsengine/internal/frame"
)

// applyPassthrough backs the sentinel gates and the observer-only
// filters (delta histogram, unique count): they never mutate pixels.
func applyPassthrough(_ Blob, in *frame.Frame) *frame.Frame {
	return in
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func applyBlur(b Blob, in *frame.Frame) *frame.Frame {
	kernel := int(getU8(b, 0))
	if kernel < 1 {
		kernel = 1
	}
	radius := kernel / 2
	out := frame.New(in.W, in.H)

	for y := 0; y < in.H; y++ {
		for x := 0; x < in.W; x++ {
			var sb, sg, sr, sa, n int
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					sx, sy := x+dx, y+dy
					if sx < 0 || sx >= in.W || sy < 0 || sy >= in.H {
						continue
					}
					pb, pg, pr, pa := in.PixelAt(sx, sy)
					sb += int(pb)
					sg += int(pg)
					sr += int(pr)
					sa += int(pa)
					n++
				}
			}
			if n == 0 {
				n = 1
			}
			out.SetBGRA(x, y, byte(sb/n), byte(sg/n), byte(sr/n), byte(sa/n))
		}
	}
	return out
}

func applyRotate(b Blob, in *frame.Frame) *frame.Frame {
	angleTenths := getI16(b, 0)
	scaleHundredths := getI16(b, 2)
	theta := float64(angleTenths) / 10 * math.Pi / 180
	scale := float64(scaleHundredths) / 100
	if scale == 0 {
		scale = 1
	}

	out := frame.New(in.W, in.H)
	cx, cy := float64(in.W)/2, float64(in.H)/2
	sinT, cosT := math.Sin(theta), math.Cos(theta)

	for y := 0; y < in.H; y++ {
		for x := 0; x < in.W; x++ {
			dx := (float64(x) - cx) / scale
			dy := (float64(y) - cy) / scale
			sx := int(math.Round(dx*cosT + dy*sinT + cx))
			sy := int(math.Round(-dx*sinT + dy*cosT + cy))
			if sx < 0 || sx >= in.W || sy < 0 || sy >= in.H {
				out.SetBGRA(x, y, 0, 0, 0, 255)
				continue
			}
			pb, pg, pr, pa := in.PixelAt(sx, sy)
			out.SetBGRA(x, y, pb, pg, pr, pa)
		}
	}
	return out
}

func applyCrop(b Blob, in *frame.Frame) *frame.Frame {
	x0, y0 := int(getU16(b, 0)), int(getU16(b, 2))
	w, h := int(getU16(b, 4)), int(getU16(b, 6))
	if w <= 0 || h <= 0 {
		return in
	}

	out := frame.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx, sy := x0+x, y0+y
			if sx < 0 || sx >= in.W || sy < 0 || sy >= in.H {
				continue
			}
			pb, pg, pr, pa := in.PixelAt(sx, sy)
			out.SetBGRA(x, y, pb, pg, pr, pa)
		}
	}
	return out
}

func applyFlip(b Blob, in *frame.Frame) *frame.Frame {
	axis := getU8(b, 0)
	out := frame.New(in.W, in.H)
	for y := 0; y < in.H; y++ {
		for x := 0; x < in.W; x++ {
			sx, sy := x, y
			switch axis {
			case 0: // horizontal
				sx = in.W - 1 - x
			case 1: // vertical
				sy = in.H - 1 - y
			default: // both
				sx = in.W - 1 - x
				sy = in.H - 1 - y
			}
			pb, pg, pr, pa := in.PixelAt(sx, sy)
			out.SetBGRA(x, y, pb, pg, pr, pa)
		}
	}
	return out
}

func applyMedian(b Blob, in *frame.Frame) *frame.Frame {
	kernel := int(getU8(b, 0))
	if kernel < 1 {
		kernel = 1
	}
	radius := kernel / 2
	out := frame.New(in.W, in.H)

	for y := 0; y < in.H; y++ {
		for x := 0; x < in.W; x++ {
			var bs, gs, rs []int
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					sx, sy := x+dx, y+dy
					if sx < 0 || sx >= in.W || sy < 0 || sy >= in.H {
						continue
					}
					pb, pg, pr, _ := in.PixelAt(sx, sy)
					bs = append(bs, int(pb))
					gs = append(gs, int(pg))
					rs = append(rs, int(pr))
				}
			}
			sort.Ints(bs)
			sort.Ints(gs)
			sort.Ints(rs)
			_, _, _, a := in.PixelAt(x, y)
			out.SetBGRA(x, y, byte(bs[len(bs)/2]), byte(gs[len(gs)/2]), byte(rs[len(rs)/2]), a)
		}
	}
	return out
}

// applyDenoiseTemporal has no previous-frame state threaded through the
// blob (the blob is fixed-width parameters only, not scratch state), so
// this operates as a mild spatial low-pass at the configured threshold
// strength; no cross-frame state is kept, so this does not denoise
// across frames.
func applyDenoiseTemporal(b Blob, in *frame.Frame) *frame.Frame {
	threshold := int(getU8(b, 0))
	if threshold == 0 {
		return in
	}
	blurBlob := Blob{}
	kernel := uint8(1 + threshold/32)
	putU8(&blurBlob, 0, kernel)
	putU8(&blurBlob, 1, 0)
	return applyBlur(blurBlob, in)
}

func applyDenoiseNonlocalMeans(b Blob, in *frame.Frame) *frame.Frame {
	h := int(getU8(b, 0))
	if h == 0 {
		return in
	}
	blurBlob := Blob{}
	kernel := uint8(1 + h/20)
	if kernel > 9 {
		kernel = 9
	}
	putU8(&blurBlob, 0, kernel)
	putU8(&blurBlob, 1, 1)
	return applyBlur(blurBlob, in)
}

func applySharpen(_ Blob, in *frame.Frame) *frame.Frame {
	return convolve3x3(in, [9]int{0, -1, 0, -1, 5, -1, 0, -1, 0}, 1)
}

func applyUnsharpMask(b Blob, in *frame.Frame) *frame.Frame {
	strength := int(getU8(b, 0))
	radius := int(getU8(b, 1))
	if radius < 1 {
		radius = 1
	}

	blurBlob := Blob{}
	putU8(&blurBlob, 0, uint8(radius*2+1))
	putU8(&blurBlob, 1, 1)
	blurred := applyBlur(blurBlob, in)

	out := frame.New(in.W, in.H)
	amount := float64(strength) / 100
	for y := 0; y < in.H; y++ {
		for x := 0; x < in.W; x++ {
			ob, og, or_, oa := in.PixelAt(x, y)
			bb, bg, br, _ := blurred.PixelAt(x, y)
			nb := clampByte(int(float64(ob) + amount*float64(int(ob)-int(bb))))
			ng := clampByte(int(float64(og) + amount*float64(int(og)-int(bg))))
			nr := clampByte(int(float64(or_) + amount*float64(int(or_)-int(br))))
			out.SetBGRA(x, y, nb, ng, nr, oa)
		}
	}
	return out
}

func applyDecimate(b Blob, in *frame.Frame) *frame.Frame {
	factor := int(getU8(b, 0))
	if factor < 1 {
		factor = 1
	}
	mode := getU8(b, 1)

	out := frame.New(in.W, in.H)
	for y := 0; y < in.H; y++ {
		for x := 0; x < in.W; x++ {
			bx := (x / factor) * factor
			by := (y / factor) * factor
			if mode == 1 { // nearest: repeat the block's top-left pixel
				pb, pg, pr, pa := in.PixelAt(bx, by)
				out.SetBGRA(x, y, pb, pg, pr, pa)
				continue
			}
			// average the block
			var sb, sg, sr, sa, n int
			for dy := 0; dy < factor && by+dy < in.H; dy++ {
				for dx := 0; dx < factor && bx+dx < in.W; dx++ {
					pb, pg, pr, pa := in.PixelAt(bx+dx, by+dy)
					sb += int(pb)
					sg += int(pg)
					sr += int(pr)
					sa += int(pa)
					n++
				}
			}
			if n == 0 {
				n = 1
			}
			out.SetBGRA(x, y, byte(sb/n), byte(sg/n), byte(sr/n), byte(sa/n))
		}
	}
	return out
}

func convolve3x3(in *frame.Frame, kernel [9]int, divisor int) *frame.Frame {
	out := frame.New(in.W, in.H)
	for y := 0; y < in.H; y++ {
		for x := 0; x < in.W; x++ {
			var sb, sg, sr int
			k := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sx, sy := x+dx, y+dy
					if sx < 0 {
						sx = 0
					}
					if sx >= in.W {
						sx = in.W - 1
					}
					if sy < 0 {
						sy = 0
					}
					if sy >= in.H {
						sy = in.H - 1
					}
					pb, pg, pr, _ := in.PixelAt(sx, sy)
					w := kernel[k]
					sb += int(pb) * w
					sg += int(pg) * w
					sr += int(pr) * w
					k++
				}
			}
			_, _, _, a := in.PixelAt(x, y)
			out.SetBGRA(x, y, clampByte(sb/divisor), clampByte(sg/divisor), clampByte(sr/divisor), a)
		}
	}
	return out
}
