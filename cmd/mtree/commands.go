package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/oba-storage/mtree/btree"
	"github.com/oba-storage/mtree/codec"
	"github.com/oba-storage/mtree/internal/genutil"
	"github.com/oba-storage/mtree/volume"
)

const defaultDegree = 32

func openDemoVolume(path string) (*volume.Volume[int64, string], error) {
	return volume.Open[int64, string](
		path,
		codec.NewIntegerCodec[int64](),
		codec.NewStringCodec(),
		volume.SingleThreaded,
		volume.WithTreeOption(btree.WithDegree(defaultDegree)),
	)
}

func setCmd(args []string) int {
	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: mtree set <path> <key> <value>")
		return 1
	}
	key, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid key %q: %v\n", args[1], err)
		return 1
	}

	v, err := openDemoVolume(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", args[0], err)
		return 1
	}
	defer v.Close()

	if err := v.Set(key, args[2]); err != nil {
		fmt.Fprintf(os.Stderr, "set: %v\n", err)
		return 1
	}
	return 0
}

func getCmd(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: mtree get <path> <key>")
		return 1
	}
	key, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid key %q: %v\n", args[1], err)
		return 1
	}

	v, err := openDemoVolume(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", args[0], err)
		return 1
	}
	defer v.Close()

	value, ok, err := v.Get(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Println("(not found)")
		return 1
	}
	fmt.Println(value)
	return 0
}

func existCmd(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: mtree exist <path> <key>")
		return 1
	}
	key, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid key %q: %v\n", args[1], err)
		return 1
	}

	v, err := openDemoVolume(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", args[0], err)
		return 1
	}
	defer v.Close()

	ok, err := v.Exist(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "exist: %v\n", err)
		return 1
	}
	fmt.Println(ok)
	return 0
}

func removeCmd(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: mtree remove <path> <key>")
		return 1
	}
	key, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid key %q: %v\n", args[1], err)
		return 1
	}

	v, err := openDemoVolume(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", args[0], err)
		return 1
	}
	defer v.Close()

	removed, err := v.Remove(key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "remove: %v\n", err)
		return 1
	}
	fmt.Println(removed)
	return 0
}

func seedCmd(args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: mtree seed <path> <n>")
		return 1
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		fmt.Fprintf(os.Stderr, "invalid count %q\n", args[1])
		return 1
	}

	v, err := openDemoVolume(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", args[0], err)
		return 1
	}
	defer v.Close()

	keys := genutil.RandomInt32Keys(n)
	values := genutil.RandomWordValues(n)
	for i, k := range keys {
		if err := v.Set(int64(k), values[i]); err != nil {
			fmt.Fprintf(os.Stderr, "seed: %v\n", err)
			return 1
		}
	}
	fmt.Printf("seeded %d keys\n", n)
	return 0
}

func versionCmd(_ []string) int {
	fmt.Println("mtree dev")
	return 0
}
