package bank_test

import (
	"fmt"

	"github.com/cwbudde/algo-hifi/dsp/filter/bank"
)

func ExampleStandard10() {
	eq, err := bank.Standard10(48000)
	if err != nil {
		panic(err)
	}

	eq.SetGain(5, 6)
	eq.SetGain(9, 20)

	fmt.Println(eq.Gains())
	fmt.Printf("%.2f dB at 1 kHz\n", eq.MagnitudeDB(1000))
	// Output:
	// [0 0 0 0 0 6 0 0 0 12]
	// 5.99 dB at 1 kHz
}
