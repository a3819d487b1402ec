package systems

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/ojrac/opensimplex-go"
)

// Noise2 is a pure, stateless coherent noise function returning values in
// roughly [-1, 1]. Implementations must be safe for concurrent reads.
type Noise2 interface {
	Noise2(x, y float32) float32
}

// NewNoise builds the named backend ("perlin" or "simplex").
func NewNoise(kind string, seed int64) (Noise2, error) {
	switch kind {
	case "perlin":
		return NewPerlinNoise(seed), nil
	case "simplex":
		return NewSimplexNoise(seed), nil
	default:
		return nil, fmt.Errorf("unknown noise kind %q", kind)
	}
}

// PerlinNoise generates gradient noise from a seeded permutation table.
type PerlinNoise struct {
	perm [512]int
}

// NewPerlinNoise creates a new Perlin noise generator.
func NewPerlinNoise(seed int64) *PerlinNoise {
	p := &PerlinNoise{}
	rng := rand.New(rand.NewSource(seed))

	var perm [256]int
	for i := range perm {
		perm[i] = i
	}
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	// Duplicate so corner hashes never index past the table
	for i := 0; i < 256; i++ {
		p.perm[i] = perm[i]
		p.perm[i+256] = perm[i]
	}

	return p
}

// Noise2 returns the noise value at (x, y).
func (p *PerlinNoise) Noise2(x, y float32) float32 {
	fx := math.Floor(float64(x))
	fy := math.Floor(float64(y))
	X := int(fx) & 255
	Y := int(fy) & 255

	rx := float64(x) - fx
	ry := float64(y) - fy

	u := fade(rx)
	v := fade(ry)

	A := p.perm[X] + Y
	B := p.perm[X+1] + Y

	n := lerp(v,
		lerp(u, grad2D(p.perm[A], rx, ry), grad2D(p.perm[B], rx-1, ry)),
		lerp(u, grad2D(p.perm[A+1], rx, ry-1), grad2D(p.perm[B+1], rx-1, ry-1)))
	return float32(n)
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

// grad2D picks one of eight gradient directions from the hash.
func grad2D(hash int, x, y float64) float64 {
	switch hash & 7 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x
	case 5:
		return -x
	case 6:
		return y
	default:
		return -y
	}
}

// SimplexNoise wraps OpenSimplex noise.
type SimplexNoise struct {
	n opensimplex.Noise32
}

// NewSimplexNoise creates an OpenSimplex backed generator.
func NewSimplexNoise(seed int64) *SimplexNoise {
	return &SimplexNoise{n: opensimplex.New32(seed)}
}

// Noise2 returns the noise value at (x, y).
func (s *SimplexNoise) Noise2(x, y float32) float32 {
	return s.n.Eval2(x, y)
}
