package questionbank

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed data/questions.json
var seedJSON []byte

var (
	defaultOnce sync.Once
	defaultBank *Bank
)

// Default returns the built-in question bank. It panics if the embedded
// data is invalid, which is caught by the package tests.
func Default() *Bank {
	defaultOnce.Do(func() {
		b, err := Parse(seedJSON)
		if err != nil {
			panic(fmt.Sprintf("questionbank: invalid seed data: %v", err))
		}
		defaultBank = b
	})
	return defaultBank
}
