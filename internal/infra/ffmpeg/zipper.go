package ffmpeg

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"go.uber.org/multierr"
)

type ZipCreator struct {
	level int
}

func NewZipCreator() *ZipCreator {
	return &ZipCreator{level: flate.BestCompression}
}

// ZipDirectory archives the regular files directly under sourceDir, in name order.
func (z *ZipCreator) ZipDirectory(ctx context.Context, sourceDir string, zipPath string) (err error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return fmt.Errorf("read %s: %w", sourceDir, err)
	}

	zipFile, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create zip file: %w", err)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(zipFile))

	zipWriter := zip.NewWriter(zipFile)
	zipWriter.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, z.level)
	})
	defer multierr.AppendInvoke(&err, multierr.Close(zipWriter))

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(sourceDir, entry.Name())
		if err := addFileToZip(zipWriter, path); err != nil {
			return fmt.Errorf("add %s to zip: %w", path, err)
		}
	}

	return nil
}

func addFileToZip(zw *zip.Writer, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}

	header.Name = filepath.Base(filename)
	header.Method = zip.Deflate

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	_, err = io.Copy(writer, file)
	return err
}
