package dither

import (
	"math"
	"testing"
)

func TestNewQuantizer_Validation(t *testing.T) {
	for _, bits := range []int{0, 1, 33} {
		if _, err := NewQuantizer(bits); err == nil {
			t.Errorf("bits=%d: want error", bits)
		}
	}
	if _, err := NewQuantizer(16, WithType(Type(9))); err == nil {
		t.Error("invalid type accepted")
	}
}

func TestQuantize_NoneRounds(t *testing.T) {
	q, err := NewQuantizer(16, WithType(TypeNone))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{2, 32767},
		{-2, -32768},
		{0.5, 16384},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := q.Quantize(tt.in); got != tt.want {
			t.Errorf("Quantize(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestQuantize_TriangularErrorBounded(t *testing.T) {
	q, err := NewQuantizer(16, WithSeed(1))
	if err != nil {
		t.Fatal(err)
	}

	const n = 20000
	sum := 0.0
	for i := range n {
		x := 0.3 * math.Sin(float64(i)*0.01)
		e := float64(q.Quantize(x)) - x*32767
		if math.Abs(e) > 1.5 {
			t.Fatalf("sample %d: error %.3f LSB exceeds 1.5", i, e)
		}
		sum += e
	}

	if mean := sum / n; math.Abs(mean) > 0.05 {
		t.Fatalf("mean error %.3f LSB, want unbiased", mean)
	}
}

func TestQuantize_DitherDecorrelatesSilence(t *testing.T) {
	q, err := NewQuantizer(16, WithSeed(2))
	if err != nil {
		t.Fatal(err)
	}

	nonZero := 0
	for range 1000 {
		if q.Quantize(0) != 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Fatal("triangular dither produced no noise")
	}
}

func TestQuantize_SeedReproducible(t *testing.T) {
	a, _ := NewQuantizer(16, WithSeed(7), WithShaping(true))
	b, _ := NewQuantizer(16, WithSeed(7), WithShaping(true))

	src := make([]float32, 256)
	for i := range src {
		src[i] = float32(0.1 * math.Sin(float64(i)))
	}
	da := make([]int, len(src))
	db := make([]int, len(src))
	a.QuantizeBlock(da, src)
	b.QuantizeBlock(db, src)

	for i := range da {
		if da[i] != db[i] {
			t.Fatalf("sample %d differs: %d vs %d", i, da[i], db[i])
		}
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{TypeNone, TypeRectangular, TypeTriangular} {
		got, err := ParseType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseType(%q) = %v, %v", typ.String(), got, err)
		}
	}
	if _, err := ParseType("gaussian"); err == nil {
		t.Error("want error for unknown type")
	}
}
