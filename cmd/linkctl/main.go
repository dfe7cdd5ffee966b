// Command linkctl manages short links through the gRPC link directory.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	cobra.CheckErr(newRootCmd(os.Stdout, dialInsecure).Execute())
}
