package pointer

func FromAny[T any](v T) *T {
	return &v
}

// ToFloat64 returns the value of p, or zero when p is nil.
func ToFloat64(p *float64) float64 {
	if p == nil {
		return 0
	}

	return *p
}
