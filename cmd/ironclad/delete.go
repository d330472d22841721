package main

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/ironclad-io/ironclad/internal/dataset"
	"github.com/ironclad-io/ironclad/internal/ironerr"
)

func runDelete(log *zap.SugaredLogger, args []string) error {
	if len(args) != 2 {
		return &ironerr.InvalidArgument{Msg: "delete requires <offset> and <length> arguments"}
	}

	offset, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return &ironerr.InvalidArgument{Msg: "offset must be a non-negative integer"}
	}
	length, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return &ironerr.InvalidArgument{Msg: "length must be a non-negative integer"}
	}

	dir := datasetDir(*deleteName)
	d, err := dataset.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()

	d.OnShardCorrupt(func(c *ironerr.ShardCorrupt) {
		log.Warnw("shard failed integrity check, treating as erasure",
			"dataset", *deleteName, "stripe", c.Stripe, "shard", c.Shard, "cause", c.Cause)
	})

	log.Infow("deleting", "dataset", *deleteName, "offset", offset, "length", length)
	if err := d.Delete(offset, length); err != nil {
		return err
	}

	log.Infow("delete complete", "dataset", *deleteName, "plaintext_len", d.Manifest().PlaintextLen)
	return nil
}
