package transform

import "math/rand/v2"

// RandomSource источник случайных чисел для синтетических длительностей
type RandomSource interface {
	// IntN возвращает число из [0, n)
	IntN(n int) int
}

// NewRandomSource возвращает PCG-генератор. Нулевое зерно означает
// недетерминированный источник: повторные запуски дают разные длительности.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
