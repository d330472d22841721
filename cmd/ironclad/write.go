package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mitchellh/ioprogress"
	"go.uber.org/zap"

	"github.com/ironclad-io/ironclad/internal/dataset"
	"github.com/ironclad-io/ironclad/internal/ironerr"
	"github.com/ironclad-io/ironclad/internal/util"
)

func runWrite(log *zap.SugaredLogger, args []string) error {
	if len(args) != 1 {
		return &ironerr.InvalidArgument{Msg: "write requires exactly one <input_file> argument"}
	}
	inputPath := args[0]

	if *writeData < 1 || *writeParity < 1 {
		return &ironerr.InvalidArgument{Msg: "-data and -parity must each be >= 1"}
	}
	if *writeStripe < 1 {
		return &ironerr.InvalidArgument{Msg: "-stripe-size must be >= 1"}
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return &ironerr.IoError{Op: fmt.Sprintf("open input file %s", inputPath), Cause: err}
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return &ironerr.IoError{Op: fmt.Sprintf("stat input file %s", inputPath), Cause: err}
	}

	progress := &ioprogress.Reader{
		Reader: f,
		Size:   stat.Size(),
	}

	log.Infow("reading input file", "path", inputPath, "size", util.FormatSize(stat.Size()))
	plaintext := make([]byte, stat.Size())
	if _, err := io.ReadFull(progress, plaintext); err != nil {
		return &ironerr.IoError{Op: fmt.Sprintf("read input file %s", inputPath), Cause: err}
	}

	dir := datasetDir(*writeName)
	log.Infow("creating dataset",
		"dataset", *writeName, "data_shards", *writeData, "parity_shards", *writeParity, "stripe_size", *writeStripe)

	d, err := dataset.Create(dir, uint16(*writeData), uint16(*writeParity), uint32(*writeStripe), plaintext)
	if err != nil {
		return err
	}
	defer d.Close()

	m := d.Manifest()
	log.Infow("dataset created", "dataset", *writeName, "stripes", m.NumStripes, "plaintext_len", m.PlaintextLen)
	return nil
}
