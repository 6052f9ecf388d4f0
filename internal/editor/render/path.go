package render

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"fair-mapper/internal/editor/models"
)

// ============================================================
// Path Parser
// ============================================================

// Path: ломаные подпути; кривые и дуги аппроксимированы отрезками.
type Path [][]models.Point

var (
	commandRe = regexp.MustCompile(`([MmLlHhVvCcSsQqTtAaZz])([^MmLlHhVvCcSsQqTtAaZz]*)`)
	numberRe  = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)
)

var arity = map[byte]int{
	'M': 2, 'L': 2, 'T': 2, 'H': 1, 'V': 1,
	'C': 6, 'S': 4, 'Q': 4, 'A': 7, 'Z': 0,
}

const (
	curveSteps  = 8
	arcStepRads = math.Pi / 8
)

// ParsePath разбирает SVG path (M L H V C S Q T A Z, абсолютные и относительные).
func ParsePath(d string) (Path, error) {
	d = strings.TrimSpace(d)
	if d == "" {
		return nil, fmt.Errorf("empty path")
	}

	p := &pathBuilder{}
	for _, match := range commandRe.FindAllStringSubmatch(d, -1) {
		cmd := match[1][0]
		args := parseCoords(match[2])
		upper := cmd &^ 0x20
		n := arity[upper]

		if n == 0 {
			p.close()
			continue
		}
		if len(args) < n || len(args)%n != 0 {
			return nil, fmt.Errorf("command %c: expected multiple of %d args, got %d", cmd, n, len(args))
		}

		rel := cmd != upper
		for i := 0; i < len(args); i += n {
			c := upper
			// после M/m повторные пары означают L/l
			if upper == 'M' && i > 0 {
				c = 'L'
			}
			p.apply(c, rel, args[i:i+n])
		}
	}
	return p.subpaths, nil
}

func parseCoords(s string) []float64 {
	var coords []float64
	for _, tok := range numberRe.FindAllString(s, -1) {
		val, err := strconv.ParseFloat(tok, 64)
		if err == nil {
			coords = append(coords, val)
		}
	}
	return coords
}

type pathBuilder struct {
	subpaths Path
	cur      models.Point
	start    models.Point
	ctrl     models.Point // последняя контрольная точка для S/T
	lastCmd  byte
	open     bool
}

func (b *pathBuilder) abs(rel bool, x, y float64) models.Point {
	if rel {
		return models.Point{X: b.cur.X + x, Y: b.cur.Y + y}
	}
	return models.Point{X: x, Y: y}
}

func (b *pathBuilder) moveTo(p models.Point) {
	b.subpaths = append(b.subpaths, []models.Point{p})
	b.cur, b.start = p, p
	b.open = true
}

func (b *pathBuilder) lineTo(p models.Point) {
	if !b.open {
		b.moveTo(b.cur)
	}
	last := len(b.subpaths) - 1
	b.subpaths[last] = append(b.subpaths[last], p)
	b.cur = p
}

func (b *pathBuilder) close() {
	if b.open {
		b.lineTo(b.start)
	}
	b.cur = b.start
	b.open = false
	b.lastCmd = 'Z'
}

func (b *pathBuilder) apply(c byte, rel bool, a []float64) {
	prevCmd := b.lastCmd
	b.lastCmd = c

	switch c {
	case 'M':
		b.moveTo(b.abs(rel, a[0], a[1]))
	case 'L':
		b.lineTo(b.abs(rel, a[0], a[1]))
	case 'H':
		x := a[0]
		if rel {
			x += b.cur.X
		}
		b.lineTo(models.Point{X: x, Y: b.cur.Y})
	case 'V':
		y := a[0]
		if rel {
			y += b.cur.Y
		}
		b.lineTo(models.Point{X: b.cur.X, Y: y})
	case 'C':
		c1, c2, end := b.abs(rel, a[0], a[1]), b.abs(rel, a[2], a[3]), b.abs(rel, a[4], a[5])
		b.cubic(c1, c2, end)
	case 'S':
		c1 := b.cur
		if prevCmd == 'C' || prevCmd == 'S' {
			c1 = reflect(b.ctrl, b.cur)
		}
		c2, end := b.abs(rel, a[0], a[1]), b.abs(rel, a[2], a[3])
		b.cubic(c1, c2, end)
	case 'Q':
		c1, end := b.abs(rel, a[0], a[1]), b.abs(rel, a[2], a[3])
		b.quad(c1, end)
	case 'T':
		c1 := b.cur
		if prevCmd == 'Q' || prevCmd == 'T' {
			c1 = reflect(b.ctrl, b.cur)
		}
		b.quad(c1, b.abs(rel, a[0], a[1]))
	case 'A':
		end := b.abs(rel, a[5], a[6])
		for _, pt := range arcPoints(b.cur, a[0], a[1], a[2], a[3] != 0, a[4] != 0, end) {
			b.lineTo(pt)
		}
	}
}

func (b *pathBuilder) cubic(c1, c2, end models.Point) {
	p0 := b.cur
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		b.lineTo(models.Point{
			X: u*u*u*p0.X + 3*u*u*t*c1.X + 3*u*t*t*c2.X + t*t*t*end.X,
			Y: u*u*u*p0.Y + 3*u*u*t*c1.Y + 3*u*t*t*c2.Y + t*t*t*end.Y,
		})
	}
	b.ctrl = c2
}

func (b *pathBuilder) quad(c, end models.Point) {
	p0 := b.cur
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		u := 1 - t
		b.lineTo(models.Point{
			X: u*u*p0.X + 2*u*t*c.X + t*t*end.X,
			Y: u*u*p0.Y + 2*u*t*c.Y + t*t*end.Y,
		})
	}
	b.ctrl = c
}

func reflect(ctrl, about models.Point) models.Point {
	return models.Point{X: 2*about.X - ctrl.X, Y: 2*about.Y - ctrl.Y}
}

// arcPoints аппроксимирует эллиптическую дугу SVG (параметризация через центр).
func arcPoints(from models.Point, rx, ry, rotDeg float64, largeArc, sweep bool, to models.Point) []models.Point {
	if from == to {
		return nil
	}
	rx, ry = math.Abs(rx), math.Abs(ry)
	if rx == 0 || ry == 0 {
		return []models.Point{to}
	}

	phi := rotDeg * math.Pi / 180
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)

	dx2, dy2 := (from.X-to.X)/2, (from.Y-to.Y)/2
	x1p := cosPhi*dx2 + sinPhi*dy2
	y1p := -sinPhi*dx2 + cosPhi*dy2

	if lambda := x1p*x1p/(rx*rx) + y1p*y1p/(ry*ry); lambda > 1 {
		s := math.Sqrt(lambda)
		rx, ry = rx*s, ry*s
	}

	num := rx*rx*ry*ry - rx*rx*y1p*y1p - ry*ry*x1p*x1p
	den := rx*rx*y1p*y1p + ry*ry*x1p*x1p
	coef := math.Sqrt(math.Max(0, num/den))
	if largeArc == sweep {
		coef = -coef
	}
	cxp := coef * rx * y1p / ry
	cyp := -coef * ry * x1p / rx

	cx := cosPhi*cxp - sinPhi*cyp + (from.X+to.X)/2
	cy := sinPhi*cxp + cosPhi*cyp + (from.Y+to.Y)/2

	ux, uy := (x1p-cxp)/rx, (y1p-cyp)/ry
	vx, vy := (-x1p-cxp)/rx, (-y1p-cyp)/ry
	theta1 := math.Atan2(uy, ux)
	dtheta := math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}

	n := max(2, int(math.Ceil(math.Abs(dtheta)/arcStepRads)))
	out := make([]models.Point, 0, n)
	for i := 1; i <= n; i++ {
		th := theta1 + dtheta*float64(i)/float64(n)
		out = append(out, models.Point{
			X: cosPhi*rx*math.Cos(th) - sinPhi*ry*math.Sin(th) + cx,
			Y: sinPhi*rx*math.Cos(th) + cosPhi*ry*math.Sin(th) + cy,
		})
	}
	out[len(out)-1] = to
	return out
}
