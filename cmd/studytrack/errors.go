package main

import "fmt"

// InvalidIDError indicates a task id argument that is not a positive integer.
type InvalidIDError struct {
	Value string
}

func (e InvalidIDError) Error() string {
	return fmt.Sprintf("invalid task id: %s (must be a positive integer)", e.Value)
}

// ConflictingFlagsError indicates two flags that cannot be combined.
type ConflictingFlagsError struct {
	First  string
	Second string
}

func (e ConflictingFlagsError) Error() string {
	return fmt.Sprintf("--%s and --%s cannot be used together", e.First, e.Second)
}
