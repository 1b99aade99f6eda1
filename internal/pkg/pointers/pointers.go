package pointers

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

func Float64(v float64) *float64 { return &v }
func Int(v int) *int             { return &v }
func String(v string) *string    { return &v }

// Float64From widens an optional int score to an optional float.
func Float64From(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
