package main

func toOption[T comparable](d T) *T {
	var def T
	if d == def {
		return nil
	}

	return &d
}
