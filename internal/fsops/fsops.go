// Package fsops provides the filesystem glue build tasks use: touching,
// deleting and incrementally copying files, every operation logged
// through the caller's task context.
//
// Import rules:
//   - CAN import: internal/errors, internal/logging, std lib
//   - MUST NOT import: internal/task, internal/tools
package fsops

import (
	"io"
	"os"
	"path/filepath"
	"time"

	masonerrors "github.com/masonbuild/mason/internal/errors"
	"github.com/masonbuild/mason/internal/logging"
)

// Flags modify how an operation treats edge conditions.
type Flags uint8

const (
	// NoFlags is the default behavior: missing inputs are errors.
	NoFlags Flags = 0

	// Optional tolerates a missing source or target: the operation
	// logs at trace level and succeeds without doing anything.
	Optional Flags = 1 << iota
)

func (f Flags) has(other Flags) bool { return f&other != 0 }

// Touch creates an empty file at p, or updates its modification time
// when it already exists. Parent directories are created as needed.
func Touch(cx *logging.Context, p string) error {
	cx.Trace().Str("path", p).Msg("touching file")

	if err := CreateDirectories(cx, filepath.Dir(p)); err != nil {
		return err
	}

	now := time.Now()
	if err := os.Chtimes(p, now, now); err == nil {
		return nil
	}

	f, err := os.Create(p) //#nosec G304 -- paths come from task definitions, not user input
	if err != nil {
		return masonerrors.Wrapf(masonerrors.ErrFileOperation, "touching %s: %v", p, err)
	}

	return masonerrors.Wrapf(f.Close(), "touching %s", p)
}

// CreateDirectories creates p and any missing parents.
func CreateDirectories(cx *logging.Context, p string) error {
	cx.Trace().Str("path", p).Msg("creating directories")

	if err := os.MkdirAll(p, 0o750); err != nil {
		return masonerrors.Wrapf(masonerrors.ErrFileOperation, "creating %s: %v", p, err)
	}

	return nil
}

// DeleteDirectory removes p and everything under it. With Optional, a
// missing directory succeeds silently.
func DeleteDirectory(cx *logging.Context, p string, flags Flags) error {
	if _, err := os.Stat(p); os.IsNotExist(err) {
		if flags.has(Optional) {
			cx.Trace().Str("path", p).Msg("not deleting directory, doesn't exist")
			return nil
		}
		return masonerrors.Wrapf(masonerrors.ErrFileOperation, "deleting %s: not found", p)
	}

	cx.Debug().Str("path", p).Msg("deleting directory")

	if err := os.RemoveAll(p); err != nil {
		return masonerrors.Wrapf(masonerrors.ErrFileOperation, "deleting %s: %v", p, err)
	}

	return nil
}

// DeleteFile removes the file at p. With Optional, a missing file
// succeeds silently.
func DeleteFile(cx *logging.Context, p string, flags Flags) error {
	if _, err := os.Stat(p); os.IsNotExist(err) {
		if flags.has(Optional) {
			cx.Trace().Str("path", p).Msg("not deleting file, doesn't exist")
			return nil
		}
		return masonerrors.Wrapf(masonerrors.ErrFileOperation, "deleting %s: not found", p)
	}

	cx.Debug().Str("path", p).Msg("deleting file")

	if err := os.Remove(p); err != nil {
		return masonerrors.Wrapf(masonerrors.ErrFileOperation, "deleting %s: %v", p, err)
	}

	return nil
}

// CopyFileToDirIfBetter copies file into destDir under its own name
// when the destination is missing or stale. See CopyFileToFileIfBetter.
func CopyFileToDirIfBetter(cx *logging.Context, file, destDir string, flags Flags) error {
	return CopyFileToFileIfBetter(cx, file, filepath.Join(destDir, filepath.Base(file)), flags)
}

// CopyFileToFileIfBetter copies src to dest only when dest is missing,
// smaller, or older than src, keeping repeated builds incremental. With
// Optional, a missing source succeeds silently.
func CopyFileToFileIfBetter(cx *logging.Context, src, dest string, flags Flags) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) && flags.has(Optional) {
			cx.Trace().Str("path", src).Msg("not copying, source doesn't exist")
			return nil
		}
		return masonerrors.Wrapf(masonerrors.ErrFileOperation, "copying %s: %v", src, err)
	}

	if !isBetter(srcInfo, dest) {
		cx.Trace().Str("src", src).Str("dest", dest).Msg("not copying, destination is up to date")
		return nil
	}

	cx.Debug().Str("src", src).Str("dest", dest).Msg("copying file")

	if err := CreateDirectories(cx, filepath.Dir(dest)); err != nil {
		return err
	}

	if err := copyFile(src, dest, srcInfo.ModTime()); err != nil {
		return masonerrors.Wrapf(masonerrors.ErrFileOperation, "copying %s to %s: %v", src, dest, err)
	}

	return nil
}

// isBetter reports whether src should replace dest: dest missing, a
// different size, or older than src.
func isBetter(src os.FileInfo, dest string) bool {
	destInfo, err := os.Stat(dest)
	if err != nil {
		return true
	}

	if src.Size() != destInfo.Size() {
		return true
	}

	return src.ModTime().After(destInfo.ModTime())
}

func copyFile(src, dest string, mtime time.Time) error {
	in, err := os.Open(src) //#nosec G304 -- paths come from task definitions, not user input
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dest) //#nosec G304 -- paths come from task definitions, not user input
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}

	if err := out.Close(); err != nil {
		return err
	}

	// Preserve the source's mtime so the better-than comparison stays
	// stable across runs.
	return os.Chtimes(dest, mtime, mtime)
}
