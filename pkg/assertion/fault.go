package assertion

import "fmt"

// Fault wraps a panic recovered while evaluating a comparison.
type Fault struct {
	Value any
}

func (f *Fault) Error() string {
	return fmt.Sprintf("panic: %v", f.Value)
}

// Unwrap returns the panic value when it is an error, such as
// a runtime.Error from an integer division by zero.
func (f *Fault) Unwrap() error {
	if err, ok := f.Value.(error); ok {
		return err
	}
	return nil
}

// capture runs fn and converts a panic into a *Fault.
func capture(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Fault{Value: r}
		}
	}()
	return fn()
}
