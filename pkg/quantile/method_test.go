package quantile

import (
	"errors"
	"math"
	"testing"
)

const tol = 1e-12

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestQuantile_InvalidInput(t *testing.T) {
	sample := []float64{1, 2, 3}

	tests := []struct {
		name    string
		level   float64
		sample  []float64
		wantErr error
	}{
		{"level zero", 0, sample, ErrInvalidLevel},
		{"level one", 1, sample, ErrInvalidLevel},
		{"level negative", -0.5, sample, ErrInvalidLevel},
		{"level above one", 1.5, sample, ErrInvalidLevel},
		{"level NaN", math.NaN(), sample, ErrInvalidLevel},
		{"empty sample", 0.5, nil, ErrEmptySample},
		{"invalid level checked before sample", 2, nil, ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, m := range methods {
				if _, err := Quantile(m, tt.level, tt.sample); !errors.Is(err, tt.wantErr) {
					t.Errorf("%s: Quantile() error = %v, want %v", m.Name(), err, tt.wantErr)
				}
				if _, err := QuantileExtrapolated(m, tt.level, tt.sample); !errors.Is(err, tt.wantErr) {
					t.Errorf("%s: QuantileExtrapolated() error = %v, want %v", m.Name(), err, tt.wantErr)
				}
				if _, err := ExpectedShortfall(m, tt.level, tt.sample); !errors.Is(err, tt.wantErr) {
					t.Errorf("%s: ExpectedShortfall() error = %v, want %v", m.Name(), err, tt.wantErr)
				}
			}
		})
	}
}

func TestCheckIndex(t *testing.T) {
	tests := []struct {
		name        string
		rank        float64
		size        int
		extrapolate bool
		want        float64
		wantDir     RangeDirection
		wantErr     bool
	}{
		{name: "in range unchanged", rank: 2.5, size: 5, want: 2.5},
		{name: "lower boundary", rank: 1, size: 5, want: 1},
		{name: "upper boundary", rank: 5, size: 5, want: 5},
		{name: "below strict", rank: 0.4, size: 5, wantErr: true, wantDir: BelowLowest},
		{name: "above strict", rank: 5.2, size: 5, wantErr: true, wantDir: AboveHighest},
		{name: "below clamped", rank: 0.4, size: 5, extrapolate: true, want: 1},
		{name: "above clamped", rank: 5.2, size: 5, extrapolate: true, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checkIndex(tt.rank, tt.size, tt.extrapolate)
			if tt.wantErr {
				var rangeErr *RangeError
				if !errors.As(err, &rangeErr) {
					t.Fatalf("checkIndex() error = %v, want *RangeError", err)
				}
				if rangeErr.Direction != tt.wantDir {
					t.Errorf("Direction = %v, want %v", rangeErr.Direction, tt.wantDir)
				}
				return
			}
			if err != nil {
				t.Fatalf("checkIndex() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("checkIndex() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuantile_StrictFailsExactlyWhenClampingNeeded(t *testing.T) {
	sample := []float64{4, 8, 15, 16, 23, 42}
	levels := []float64{0.001, 0.05, 0.1, 0.25, 0.5, 0.75, 0.9, 0.95, 0.999}

	for _, m := range methods {
		for _, level := range levels {
			extr, err := QuantileExtrapolated(m, level, sample)
			if err != nil {
				t.Fatalf("%s: QuantileExtrapolated(%v) error = %v", m.Name(), level, err)
			}

			strict, err := Quantile(m, level, sample)
			if err != nil {
				var rangeErr *RangeError
				if !errors.As(err, &rangeErr) {
					t.Fatalf("%s: Quantile(%v) error = %v, want *RangeError", m.Name(), level, err)
				}
				// Strict failed, so the extrapolated path must have clamped
				// to one of the extremes.
				min, max := sample[0], sample[0]
				for _, v := range sample {
					min = math.Min(min, v)
					max = math.Max(max, v)
				}
				if extr.Value != min && extr.Value != max {
					t.Errorf("%s: strict failed at %v but extrapolated = %v, want an extreme",
						m.Name(), level, extr.Value)
				}
				continue
			}

			if strict != extr {
				t.Errorf("%s: strict and extrapolated disagree at %v: %+v vs %+v",
					m.Name(), level, strict, extr)
			}
		}
	}
}

func TestQuantile_WithinSampleRange(t *testing.T) {
	sample := []float64{-2.5, 10, 0.25, 7, -4, 3.5, 1}
	for _, m := range methods {
		for _, level := range []float64{0.01, 0.1, 0.5, 0.9, 0.99} {
			res, err := QuantileExtrapolated(m, level, sample)
			if err != nil {
				t.Fatalf("%s: error = %v", m.Name(), err)
			}
			if res.Value < -4 || res.Value > 10 {
				t.Errorf("%s: Quantile(%v) = %v outside [min, max]", m.Name(), level, res.Value)
			}
		}
	}
}

func TestQuantile_Monotonicity(t *testing.T) {
	sample := []float64{3, -1, 4, -1, 5, 9, -2, 6, 5, 3}
	for _, m := range methods {
		prev := math.Inf(-1)
		for level := 0.02; level < 1; level += 0.02 {
			res, err := QuantileExtrapolated(m, level, sample)
			if err != nil {
				t.Fatalf("%s: error = %v", m.Name(), err)
			}
			if res.Value < prev-tol {
				t.Errorf("%s: quantile decreased at level %v: %v < %v", m.Name(), level, res.Value, prev)
			}
			prev = res.Value
		}
	}
}

func TestQuantile_Idempotent(t *testing.T) {
	sample := []float64{0.3, -1.2, 5.5, 2.2, 0.3}
	for _, m := range methods {
		first, err := QuantileExtrapolated(m, 0.37, sample)
		if err != nil {
			t.Fatalf("%s: error = %v", m.Name(), err)
		}
		second, err := QuantileExtrapolated(m, 0.37, sample)
		if err != nil {
			t.Fatalf("%s: error = %v", m.Name(), err)
		}
		if first != second {
			t.Errorf("%s: repeated call differs: %+v vs %+v", m.Name(), first, second)
		}
	}
}

func TestQuantile_OrderInvariance(t *testing.T) {
	base := []float64{1, 2, 3, 4, 5}
	permuted := []float64{5, 1, 3, 2, 4}

	for _, m := range methods {
		for _, level := range []float64{0.3, 0.5, 0.7} {
			a, err := QuantileExtrapolated(m, level, base)
			if err != nil {
				t.Fatalf("%s: error = %v", m.Name(), err)
			}
			b, err := QuantileExtrapolated(m, level, permuted)
			if err != nil {
				t.Fatalf("%s: error = %v", m.Name(), err)
			}

			if !almostEqual(a.Value, b.Value, tol) {
				t.Errorf("%s: value changed under permutation at %v: %v vs %v",
					m.Name(), level, a.Value, b.Value)
			}
			// The indices must track the same underlying order statistics
			// through the permutation.
			if base[a.LowerIndex] != permuted[b.LowerIndex] {
				t.Errorf("%s: lower index tracks %v, want %v",
					m.Name(), permuted[b.LowerIndex], base[a.LowerIndex])
			}
			if base[a.UpperIndex] != permuted[b.UpperIndex] {
				t.Errorf("%s: upper index tracks %v, want %v",
					m.Name(), permuted[b.UpperIndex], base[a.UpperIndex])
			}
			if a.Weight != b.Weight {
				t.Errorf("%s: weight changed under permutation: %v vs %v",
					m.Name(), a.Weight, b.Weight)
			}
		}
	}
}

func TestQuantile_DoesNotMutateSample(t *testing.T) {
	sample := []float64{9, 1, 7, 3, 5}
	want := []float64{9, 1, 7, 3, 5}

	for _, m := range methods {
		if _, err := QuantileExtrapolated(m, 0.5, sample); err != nil {
			t.Fatalf("%s: error = %v", m.Name(), err)
		}
		if _, err := ExpectedShortfall(m, 0.5, sample); err != nil {
			t.Fatalf("%s: error = %v", m.Name(), err)
		}
	}
	for i := range sample {
		if sample[i] != want[i] {
			t.Fatalf("sample mutated: %v, want %v", sample, want)
		}
	}
}

func TestSortedSample_StableTies(t *testing.T) {
	s := newSortedSample([]float64{2, 1, 2, 1})
	// Ties keep caller order: the two 1s come from positions 1 and 3,
	// the two 2s from positions 0 and 2.
	wantSource := []int{1, 3, 0, 2}
	for i, want := range wantSource {
		if s.source[i] != want {
			t.Errorf("source[%d] = %d, want %d", i, s.source[i], want)
		}
	}
}

func TestMethodByName(t *testing.T) {
	for _, name := range MethodNames() {
		m, err := MethodByName(name)
		if err != nil {
			t.Fatalf("MethodByName(%q) error = %v", name, err)
		}
		if m.Name() != name {
			t.Errorf("Name() = %q, want %q", m.Name(), name)
		}
	}

	if _, err := MethodByName("no-such-method"); err == nil {
		t.Error("MethodByName() expected error for unknown name")
	}
}
