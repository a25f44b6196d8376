// Package main provides a small command-line demo around the mtree
// storage engine: open a file as a volume and set/get/remove/seed keys
// against it from the shell.
package main

import (
	"fmt"
	"os"
)

func main() {
	os.Exit(run(os.Args))
}

// run executes the CLI and returns an exit code. Separated from main()
// to facilitate testing.
func run(args []string) int {
	if len(args) < 2 {
		printUsage(os.Stdout)
		return 1
	}

	switch args[1] {
	case "set":
		return setCmd(args[2:])
	case "get":
		return getCmd(args[2:])
	case "exist":
		return existCmd(args[2:])
	case "remove":
		return removeCmd(args[2:])
	case "seed":
		return seedCmd(args[2:])
	case "version":
		return versionCmd(args[2:])
	case "help", "-h", "--help":
		printUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[1])
		fmt.Fprintln(os.Stderr, "Run 'mtree help' for usage.")
		return 1
	}
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, "Usage: mtree <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  set <path> <key> <value>    set key to a string value")
	fmt.Fprintln(w, "  get <path> <key>            print the value stored under key")
	fmt.Fprintln(w, "  exist <path> <key>          print whether key is present")
	fmt.Fprintln(w, "  remove <path> <key>         remove key, print whether it was found")
	fmt.Fprintln(w, "  seed <path> <n>             insert n random key/value pairs")
	fmt.Fprintln(w, "  version                     print the mtree version")
}
