package types

// Tensor is a dense row-major array as returned by the simulator.
type Tensor struct {
	Shape []int
	Data  []float64
}

// NewTensor allocates a zero tensor of the given shape.
func NewTensor(shape ...int) *Tensor {
	size := 1
	for _, d := range shape {
		size *= d
	}
	return &Tensor{
		Shape: append([]int(nil), shape...),
		Data:  make([]float64, size),
	}
}

// Vector wraps values in a one dimensional tensor.
func Vector(values ...float64) *Tensor {
	return &Tensor{
		Shape: []int{len(values)},
		Data:  append([]float64(nil), values...),
	}
}

// Len is the number of elements.
func (t *Tensor) Len() int {
	return len(t.Data)
}

// Observations maps observation names to their values.
type Observations map[string]*Tensor
