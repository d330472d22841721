// Command ironclad is the CLI front end for the Ironclad dispersal scheme:
// write, read, insert, and delete operate on datasets rooted at storage/.
// Built the same way cmd/stitch/main.go is: one flag.FlagSet per subcommand,
// dispatched from a map, with structured logging on top of the teacher's
// bare log.Fatalln calls.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var (
	writeCmd    = flag.NewFlagSet("write", flag.ExitOnError)
	writeData   = writeCmd.Int("data", 4, "number of data shards")
	writeParity = writeCmd.Int("parity", 4, "number of parity shards")
	writeStripe = writeCmd.Int("stripe-size", 4096, "stripe size in bytes")
	writeName   = writeCmd.String("dataset", "default", "dataset name")

	readCmd  = flag.NewFlagSet("read", flag.ExitOnError)
	readName = readCmd.String("dataset", "default", "dataset name")

	insertCmd  = flag.NewFlagSet("insert", flag.ExitOnError)
	insertName = insertCmd.String("dataset", "default", "dataset name")

	deleteCmd  = flag.NewFlagSet("delete", flag.ExitOnError)
	deleteName = deleteCmd.String("dataset", "default", "dataset name")
)

var subcommands = map[string]*flag.FlagSet{
	writeCmd.Name():  writeCmd,
	readCmd.Name():   readCmd,
	insertCmd.Name(): insertCmd,
	deleteCmd.Name(): deleteCmd,
}

const storageRoot = "storage"

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ironclad: failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Sugar()

	if len(os.Args) < 2 {
		log.Fatalf("usage: ironclad <%s> [flags]", usageList())
	}

	cmd, ok := subcommands[os.Args[1]]
	if !ok {
		log.Fatalf("unknown command %q, expected one of <%s>", os.Args[1], usageList())
	}
	if err := cmd.Parse(os.Args[2:]); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	var runErr error
	switch os.Args[1] {
	case writeCmd.Name():
		runErr = runWrite(log, writeCmd.Args())
	case readCmd.Name():
		runErr = runRead(log, readCmd.Args())
	case insertCmd.Name():
		runErr = runInsert(log, insertCmd.Args())
	case deleteCmd.Name():
		runErr = runDelete(log, deleteCmd.Args())
	}
	if runErr != nil {
		log.Fatalf("%s failed: %v", os.Args[1], runErr)
	}
}

func usageList() string {
	return "write|read|insert|delete"
}

func datasetDir(name string) string {
	return filepath.Join(storageRoot, name)
}
