package main

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/ironclad-io/ironclad/internal/dataset"
	"github.com/ironclad-io/ironclad/internal/ironerr"
)

func runInsert(log *zap.SugaredLogger, args []string) error {
	if len(args) != 2 {
		return &ironerr.InvalidArgument{Msg: "insert requires <offset> and <text> arguments"}
	}

	offset, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return &ironerr.InvalidArgument{Msg: "offset must be a non-negative integer"}
	}
	text := args[1]

	dir := datasetDir(*insertName)
	d, err := dataset.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	d.OnShardCorrupt(func(c *ironerr.ShardCorrupt) {
		log.Warnw("shard failed integrity check, treating as erasure",
			"dataset", *insertName, "stripe", c.Stripe, "shard", c.Shard, "cause", c.Cause)
	})

	log.Infow("inserting", "dataset", *insertName, "offset", offset, "bytes", len(text))
	if err := d.Insert(offset, []byte(text)); err != nil {
		return err
	}

	log.Infow("insert complete", "dataset", *insertName, "plaintext_len", d.Manifest().PlaintextLen)
	return nil
}
