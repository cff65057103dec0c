package window

import "fmt"

func ExampleGenerate_periodic() {
	w := Generate(TypeHann, 4, WithPeriodic())
	fmt.Printf("%.2f %.2f %.2f %.2f\n", w[0], w[1], w[2], w[3])
	// Output:
	// 0.00 0.50 1.00 0.50
}

func ExampleOverlapAddGain() {
	w := Generate(TypeHann, 1024, WithPeriodic())
	g, _ := OverlapAddGain(w, 256)
	fmt.Printf("%.2f\n", g)
	// Output:
	// 1.50
}
