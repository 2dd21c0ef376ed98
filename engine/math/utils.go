package math

import (
	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/rand"
)

const (
	K_PI         float32 = math32.Pi
	K_PI_2       float32 = 2.0 * K_PI
	K_HALF_PI    float32 = 0.5 * K_PI
	K_QUARTER_PI float32 = 0.25 * K_PI
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

func DegToRad(degrees float32) float32 {
	return degrees * K_PI / 180.0
}

func Sin(x float32) float32 { return math32.Sin(x) }
func Cos(x float32) float32 { return math32.Cos(x) }

// Random is a seedable generator for simulation noise.
type Random struct {
	r *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{r: rand.New(rand.NewSource(seed))}
}

// Int returns a value in [min, max].
func (rnd *Random) Int(min, max int) int {
	if max <= min {
		return min
	}
	return min + rnd.r.Intn(max-min+1)
}

// Float returns a value in [min, max).
func (rnd *Random) Float(min, max float32) float32 {
	return min + rnd.r.Float32()*(max-min)
}
