package zfactor

import (
	"fmt"
	"math"
	"testing"
)

// referenceCases are published check values at a tolerance of 1e-6.
var referenceCases = []struct {
	tpr, ppr float64
	hy, dak  float64
}{
	{2.0, 0.147, 0.9950397850047862, 0.994616021885175},
	{1.6, 8.82, 1.0548103327841676, 1.0521119421909435},
}

// closeTo reports whether got matches want to within a few ulps. Exact
// equality is not required because math.Pow and math.Exp may round the
// last bit differently from other libm implementations.
func closeTo(got, want float64) bool {
	return math.Abs(got-want) <= 1e-12*math.Abs(want)
}

func TestZFactor_ReferenceValues(t *testing.T) {
	t.Parallel()
	for _, tc := range referenceCases {
		tc := tc
		t.Run(fmt.Sprintf("tpr=%v,ppr=%v", tc.tpr, tc.ppr), func(t *testing.T) {
			t.Parallel()
			if got := ZFactor(tc.tpr, tc.ppr, HallYarborough, DefaultTolerance); !closeTo(got, tc.hy) {
				t.Errorf("HallYarborough(%v, %v) = %.17g, want %.17g", tc.tpr, tc.ppr, got, tc.hy)
			}
			if got := ZFactor(tc.tpr, tc.ppr, DranchukAboukassem, DefaultTolerance); !closeTo(got, tc.dak) {
				t.Errorf("DranchukAboukassem(%v, %v) = %.17g, want %.17g", tc.tpr, tc.ppr, got, tc.dak)
			}
		})
	}
}

func TestZFactor_Deterministic(t *testing.T) {
	t.Parallel()
	for _, c := range []Correlation{HallYarborough, DranchukAboukassem} {
		first := ZFactor(1.6, 8.82, c, DefaultTolerance)
		for i := 0; i < 10; i++ {
			if got := ZFactor(1.6, 8.82, c, DefaultTolerance); math.Float64bits(got) != math.Float64bits(first) {
				t.Fatalf("%s: call %d returned %.17g, first call returned %.17g", c, i, got, first)
			}
		}
	}
}

func TestZFactor_UnknownCorrelation(t *testing.T) {
	t.Parallel()
	for _, c := range []Correlation{Correlation(-1), Correlation(2), Correlation(99)} {
		if got := ZFactor(1.6, 8.82, c, DefaultTolerance); got != 1.0 {
			t.Errorf("ZFactor with %v = %v, want 1.0", c, got)
		}
		res := Solve(1.6, 8.82, c, DefaultTolerance)
		if res.Iterations != 0 || res.Converged {
			t.Errorf("Solve with %v = %+v, want no iterations and not converged", c, res)
		}
	}
}

func TestZFactor_NaNIsFloored(t *testing.T) {
	t.Parallel()
	for _, c := range []Correlation{HallYarborough, DranchukAboukassem} {
		res := Solve(math.NaN(), 1.0, c, DefaultTolerance)
		if res.Z != MinZ {
			t.Errorf("%s: Z = %v, want %v", c, res.Z, MinZ)
		}
		if !math.IsNaN(res.Raw) {
			t.Errorf("%s: Raw = %v, want NaN", c, res.Raw)
		}
		if res.Iterations != MaxIterations {
			t.Errorf("%s: Iterations = %d, want %d", c, res.Iterations, MaxIterations)
		}
		if res.Converged {
			t.Errorf("%s: NaN result should not be reported as converged", c)
		}
	}
}

func TestZFactor_ZeroPressure(t *testing.T) {
	t.Parallel()
	// Hall-Yarborough divides by y = 0 at ppr = 0, so the raw value is NaN.
	for _, tpr := range []float64{1.05, 1.5, 2.0, 3.0} {
		res := Solve(tpr, 0, HallYarborough, DefaultTolerance)
		if res.Z != MinZ {
			t.Errorf("HallYarborough(%v, 0) = %v (raw %v), want %v", tpr, res.Z, res.Raw, MinZ)
		}
		if got := ZFactor(tpr, 0, HallYarborough, DefaultTolerance); got != MinZ {
			t.Errorf("ZFactor(%v, 0) = %v, want %v", tpr, got, MinZ)
		}
	}
}

func TestZFactor_LowPressureApproachesIdealGas(t *testing.T) {
	t.Parallel()
	for _, c := range []Correlation{HallYarborough, DranchukAboukassem} {
		z := ZFactor(2.0, 0.01, c, 1e-10)
		if math.Abs(z-1.0) > 1e-2 {
			t.Errorf("%s: Z(2.0, 0.01) = %v, want close to 1", c, z)
		}
	}
}

func TestSolve_MatchesZFactor(t *testing.T) {
	t.Parallel()
	for _, tc := range referenceCases {
		for _, c := range []Correlation{HallYarborough, DranchukAboukassem} {
			res := Solve(tc.tpr, tc.ppr, c, DefaultTolerance)
			z := ZFactor(tc.tpr, tc.ppr, c, DefaultTolerance)
			if math.Float64bits(res.Z) != math.Float64bits(z) {
				t.Errorf("%s(%v, %v): Solve.Z = %.17g, ZFactor = %.17g", c, tc.tpr, tc.ppr, res.Z, z)
			}
			if !res.Converged {
				t.Errorf("%s(%v, %v): expected convergence, got %+v", c, tc.tpr, tc.ppr, res)
			}
			if res.Iterations < 1 || res.Iterations >= MaxIterations {
				t.Errorf("%s(%v, %v): Iterations = %d out of range", c, tc.tpr, tc.ppr, res.Iterations)
			}
			if res.Correlation != c {
				t.Errorf("Correlation = %v, want %v", res.Correlation, c)
			}
		}
	}
}

func TestSolve_ZeroToleranceExhaustsBudget(t *testing.T) {
	t.Parallel()
	for _, c := range []Correlation{HallYarborough, DranchukAboukassem} {
		res := Solve(1.6, 8.82, c, 0)
		if res.Iterations != MaxIterations {
			t.Errorf("%s: Iterations = %d, want %d", c, res.Iterations, MaxIterations)
		}
		if res.Converged {
			t.Errorf("%s: zero tolerance can never converge", c)
		}
		// The budget-exhausted value is still a usable Z.
		if math.Abs(res.Z-ZFactor(1.6, 8.82, c, DefaultTolerance)) > 1e-5 {
			t.Errorf("%s: exhausted Z = %v drifted from converged value", c, res.Z)
		}
	}
}

func TestFloor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative", -3.5, MinZ},
		{"zero", 0, MinZ},
		{"below floor", 0.005, MinZ},
		{"at floor", MinZ, MinZ},
		{"physical", 0.87, 0.87},
		{"positive infinity", math.Inf(1), math.Inf(1)},
		{"negative infinity", math.Inf(-1), MinZ},
	}
	for _, tt := range tests {
		if got := floor(tt.in); got != tt.want {
			t.Errorf("%s: floor(%v) = %v, want %v", tt.name, tt.in, got, tt.want)
		}
	}
	if got := floor(math.NaN()); got != MinZ {
		t.Errorf("floor(NaN) = %v, want %v", got, MinZ)
	}
}

func TestParseCorrelation(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		want    Correlation
		wantErr bool
	}{
		{"hy", HallYarborough, false},
		{"HY", HallYarborough, false},
		{"Hall-Yarborough", HallYarborough, false},
		{"hall_yarborough", HallYarborough, false},
		{"dak", DranchukAboukassem, false},
		{"Dranchuk-Abou-Kassem", DranchukAboukassem, false},
		{" dranchukaboukassem ", DranchukAboukassem, false},
		{"", 0, true},
		{"peng-robinson", 0, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCorrelation(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCorrelation(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseCorrelation(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCorrelation_StringAndKey(t *testing.T) {
	t.Parallel()
	if HallYarborough.String() != "Hall-Yarborough" || HallYarborough.Key() != "hy" {
		t.Errorf("unexpected HallYarborough naming: %q / %q", HallYarborough.String(), HallYarborough.Key())
	}
	if DranchukAboukassem.String() != "Dranchuk-Abou-Kassem" || DranchukAboukassem.Key() != "dak" {
		t.Errorf("unexpected DranchukAboukassem naming: %q / %q", DranchukAboukassem.String(), DranchukAboukassem.Key())
	}
	if got := Correlation(7).String(); got != "Correlation(7)" {
		t.Errorf("Correlation(7).String() = %q", got)
	}
	if got := Correlation(7).Key(); got != "" {
		t.Errorf("Correlation(7).Key() = %q, want empty", got)
	}
}

func BenchmarkZFactor(b *testing.B) {
	for _, c := range []Correlation{HallYarborough, DranchukAboukassem} {
		b.Run(c.Key(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = ZFactor(1.6, 8.82, c, DefaultTolerance)
			}
		})
	}
}
