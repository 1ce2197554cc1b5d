package kernel

import (
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/pthm-cable/fluid/field"
)

func vec(g *field.Grid) blas32.Vector {
	return blas32.Vector{N: len(g.Data), Inc: 1, Data: g.Data}
}

// channelVec views channel c of g as a strided vector.
func channelVec(g *field.Grid, c int) blas32.Vector {
	return blas32.Vector{N: g.W * g.H, Inc: g.C, Data: g.Data[c:]}
}

// Clear writes value*target into dst. A zero value produces exact zeros
// whatever target holds; a value of 1 copies target unchanged.
func Clear(dst, target *field.Grid, value float32) {
	if value == 0 {
		clear(dst.Data)
		return
	}
	if dst != target {
		blas32.Copy(vec(target), vec(dst))
	}
	if value != 1 {
		blas32.Scal(value, vec(dst))
	}
}

// Norm returns the L2 norm over all channels of g.
func Norm(g *field.Grid) float32 {
	return blas32.Nrm2(vec(g))
}

// ChannelSum returns the sum of |channel c| over the grid.
func ChannelSum(g *field.Grid, c int) float32 {
	return blas32.Asum(channelVec(g, c))
}

// MaxAbs returns the largest absolute sample in g.
func MaxAbs(g *field.Grid) float32 {
	if len(g.Data) == 0 {
		return 0
	}
	return abs(g.Data[blas32.Iamax(vec(g))])
}

// KineticEnergy returns 0.5*Σ|v|² for a velocity grid.
func KineticEnergy(velocity *field.Grid) float32 {
	v := vec(velocity)
	return 0.5 * blas32.Dot(v, v)
}
