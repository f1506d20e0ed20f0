package policy

import "fmt"

func errThreshold(name string, v float64) error {
	return fmt.Errorf("policy: %s must be in [0,1], got %.3f", name, v)
}
