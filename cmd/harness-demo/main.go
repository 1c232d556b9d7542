// Command harness-demo runs the bundled example programs against
// the harness and prints their progress and final summary.
package main

import "os"

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}
