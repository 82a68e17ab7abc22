package addrgen

import (
	"fmt"
	"testing"
)

func BenchmarkAddressUnit(b *testing.B) {
	benchStep(ForwardNTT, b)
	benchStep(InverseNTT, b)
	benchStep(Add, b)
}

func benchStep(mode Mode, b *testing.B) {

	b.Run(fmt.Sprintf("Step/mode=%s", mode), func(b *testing.B) {

		u := NewAddressUnit()
		if _, err := u.Step(Input{Reset: true, Mode: mode}); err != nil {
			b.Fatal(err)
		}

		in := Input{Enable: true, Mode: mode, Mapping: Decode}

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			out, err := u.Step(in)
			if err != nil {
				b.Fatal(err)
			}
			if out.Done {
				if _, err = u.Step(Input{Reset: true, Mode: mode}); err != nil {
					b.Fatal(err)
				}
			}
		}
	})
}
