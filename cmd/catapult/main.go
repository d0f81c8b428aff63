// Command catapult moves files between the local disk and object storage
// (S3, Azure Blob or a local directory) and publishes messages to NATS.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	a := &app{}
	if err := execute(context.Background(), a, newRootCmd(a)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
