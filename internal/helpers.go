package internal

import (
	"fmt"
)

// AssertNoError panics if err is set. It is meant for errors that cannot occur by construction.
func AssertNoError(err error, because string) {
	if err != nil {
		panic(fmt.Errorf("error unexpected because %s: %w", because, err))
	}
}
