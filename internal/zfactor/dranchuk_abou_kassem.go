package zfactor

import "math"

// dranchukAbouKassem iterates Z directly. Unlike hallYarborough it returns the
// latest Newton update yn rather than the point whose residual was tested.
func dranchukAbouKassem(tpr, ppr, tolerance float64) iteration {
	A := &dakCoefficients

	yn := dakInitialGuess
	fy := 1.0

	tprSquare := tpr * tpr
	tprCube := tpr * tprSquare
	tprQuad := tprSquare * tprSquare
	tprPent := tpr * tprQuad

	common := A[6]/tpr + A[7]/tprSquare
	c0 := A[0] + A[1]/tpr + A[2]/tprCube + A[3]/tprQuad + A[4]/tprPent
	c1 := A[5] + common
	c2 := A[8] * common

	passes := 0
	for i := 0; i < MaxIterations; i++ {
		if math.Abs(fy) < tolerance {
			break
		}

		y := yn
		rr := dakDensityFactor * ppr / (y * tpr)
		rrSquare := rr * rr
		rrQuad := rrSquare * rrSquare
		rrPent := rr * rrQuad
		k := A[10] * rrSquare
		expK := math.Exp(-k)

		// C3 depends on the current density and is rebuilt every pass.
		c3 := A[9] * (1.0 + k) * (rrSquare / tprCube) * expK

		fy = y - (1.0 + c0*rr + c1*rrSquare - c2*rrPent + c3)
		fdy := 1.0 + c0*rr/y + 2.0*c1*rrSquare/y - 5.0*c2*rrPent/y +
			2.0*A[9]*(rrSquare/tprCube/y)*(1.0+k+k*k)*expK
		yn = y - fy/fdy
		passes++
	}

	return iteration{value: yn, passes: passes, residual: fy}
}
