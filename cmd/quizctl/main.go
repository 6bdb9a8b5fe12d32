// Command quizctl administers the quiz database: schema, content import and
// score reports.
package main

import (
	"os"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
