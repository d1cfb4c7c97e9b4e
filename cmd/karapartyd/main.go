// Command karapartyd runs the karaparty daemon without the rest of the CLI,
// for service managers that expect a dedicated binary.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "karapartyd: %v\n", err)
		os.Exit(1)
	}
}
