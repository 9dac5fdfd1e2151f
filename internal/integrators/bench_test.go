package integrators

import (
	"testing"
)

func BenchmarkSequentialStep(b *testing.B) {
	s, err := NewSequential(35, 35, 0.05)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Step(1.0 / 60)
	}
}

func BenchmarkParallelStep(b *testing.B) {
	p, err := NewParallel(35, 35, 0.05, nil)
	if err != nil {
		b.Fatal(err)
	}
	defer p.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		p.Step(1.0 / 60)
	}
}
