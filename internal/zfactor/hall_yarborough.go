package zfactor

import "math"

// iteration holds what a kernel reports back to the dispatcher.
type iteration struct {
	// value is the kernel's Z estimate before the floor is applied.
	value float64
	// passes is the number of residual evaluations performed.
	passes int
	// residual is the last evaluated residual F(y).
	residual float64
}

// hallYarborough solves the Hall-Yarborough equation for the reduced density
// y and returns Z = a*Ppr/y.
//
// The loop evaluates F at y, then computes the Newton update into yn. The
// tolerance test at the top of the next pass looks at F(y), so the returned Z
// is built from y and not from the fresher yn.
func hallYarborough(tpr, ppr, tolerance float64) iteration {
	fy := 1.0
	yn := hyInitialGuess
	y := hyInitialY

	t := 1.0 / tpr
	tSquare := t * t
	tCube := t * tSquare
	u := 1.0 - t
	a := 0.06125 * t * math.Exp(-1.2*(u*u))

	bigA := 14.76*t - 9.76*tSquare + 4.58*tCube
	bigB := 90.7*t - 242.2*tSquare + 42.4*tCube
	bigC := 2.18 + 2.82*t

	passes := 0
	for i := 0; i < MaxIterations; i++ {
		if math.Abs(fy) < tolerance {
			break
		}

		y = yn
		ySquare := y * y
		yCube := y * ySquare
		yQuad := ySquare * ySquare
		yPowC := math.Pow(y, bigC)

		d := 1.0 - y
		dSquare := d * d
		dCube := d * dSquare
		dQuad := dSquare * dSquare

		fy = -a*ppr + (y+ySquare+yCube-yQuad)/dCube - bigA*ySquare + bigB*yPowC
		fdy := (1.0+4.0*y+4.0*ySquare-4.0*yCube+yQuad)/dQuad -
			2.0*bigA*y +
			bigB*bigC*yPowC
		yn = y - fy/fdy
		passes++
	}

	return iteration{value: a * ppr / y, passes: passes, residual: fy}
}
