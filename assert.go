package physics

import "fmt"

// assert panics when a programmer contract is violated. These are never recovered internally.
func assert(truth bool, msg ...interface{}) {
	if !truth {
		panic(fmt.Sprint(append([]interface{}{"Assertion failed: "}, msg...)...))
	}
}
