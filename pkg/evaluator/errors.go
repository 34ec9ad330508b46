package evaluator

import (
	"github.com/oarkflow/errors"
)

var errNegativePower = errors.New("zero raised to a negative power")
