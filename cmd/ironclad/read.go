package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ironclad-io/ironclad/internal/dataset"
	"github.com/ironclad-io/ironclad/internal/ironerr"
)

func runRead(log *zap.SugaredLogger, args []string) error {
	if len(args) != 1 {
		return &ironerr.InvalidArgument{Msg: "read requires exactly one <output_file> argument"}
	}
	outputPath := args[0]

	dir := datasetDir(*readName)
	log.Infow("opening dataset", "dataset", *readName)
	d, err := dataset.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	d.OnShardCorrupt(func(c *ironerr.ShardCorrupt) {
		log.Warnw("shard failed integrity check, treating as erasure",
			"dataset", *readName, "stripe", c.Stripe, "shard", c.Shard, "cause", c.Cause)
	})

	log.Infow("reconstructing plaintext", "dataset", *readName, "stripes", d.Manifest().NumStripes)
	plaintext, err := d.ReadAll()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, plaintext, 0o644); err != nil {
		return &ironerr.IoError{Op: fmt.Sprintf("write output file %s", outputPath), Cause: err}
	}

	log.Infow("read complete", "dataset", *readName, "bytes", len(plaintext), "output", outputPath)
	return nil
}
