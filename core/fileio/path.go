// core/fileio/path.go
package fileio

import (
	"bytes"
	"io/fs"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"kmerio-core/codec"
)

var log = logging.Logger("kmerio/fileio")

const (
	anyRead  = unix.S_IRUSR | unix.S_IRGRP | unix.S_IROTH
	anyWrite = unix.S_IWUSR | unix.S_IWGRP | unix.S_IWOTH
	anyExec  = unix.S_IXUSR | unix.S_IXGRP | unix.S_IXOTH
)

// EnsureDir creates path if it is missing. It reports true when it created
// the directory and false when one was already there.
func EnsureDir(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err == nil {
		if fi.IsDir() {
			return false, nil
		}
		return false, &Error{Op: "mkdir", Path: path, Err: ErrNotDirectory}
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, osErr("stat", path, err)
	}
	if err := os.Mkdir(path, 0o777); err != nil && !errors.Is(err, fs.ErrExist) {
		return false, osErr("mkdir", path, err)
	}
	log.Debugf("created directory %s", path)
	return true, nil
}

// RemoveFile unlinks path. A missing file is not an error; the result says
// whether anything was removed.
func RemoveFile(path string) (bool, error) {
	if !Exists(path, false, false) {
		return false, nil
	}
	if err := unix.Unlink(path); err != nil {
		return false, &Error{Op: "unlink", Path: path, Err: err}
	}
	log.Debugf("removed %s", path)
	return true, nil
}

// Exists reports whether path exists with the permission bits needed for the
// requested use. Directories need read+exec (plus write when readWrite);
// files need read (plus write). Bits from any of user/group/other count.
func Exists(path string, isDir, readWrite bool) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	perm := uint32(fi.Mode().Perm())
	need := []uint32{anyRead}
	if readWrite {
		need = append(need, anyWrite)
	}
	if isDir {
		if !fi.IsDir() {
			return false
		}
		need = append(need, anyExec)
	}
	for _, bits := range need {
		if perm&bits == 0 {
			return false
		}
	}
	return true
}

// Sizer computes logical file sizes; gzip sizes come from the external tool.
type Sizer struct {
	Tools  codec.Tools
	Launch codec.Launcher
}

// Size reports the logical size of path using the environment's tool setup.
func Size(path string) (int64, error) {
	tools, err := codec.ToolsFromEnv()
	if err != nil {
		return 0, err
	}
	return Sizer{Tools: tools, Launch: codec.Exec}.Size(path)
}

// Size returns the uncompressed size of a .gz file as reported by "gzip -l",
// an estimate (compressed size * 1.4) for .bz2, and the on-disk size otherwise.
// The gzip trailer stores the size modulo 2^32, so inputs over 4 GiB wrap.
func (s Sizer) Size(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, osErr("stat", path, err)
	}
	var size int64
	switch codec.Detect(path) {
	case codec.Gzip:
		size, err = s.gzipSize(path)
		if err != nil {
			return 0, err
		}
	case codec.Bzip2:
		size = fi.Size() * 14 / 10
	default:
		size = fi.Size()
	}
	log.Debugf("size of %s: %s", path, humanize.IBytes(uint64(size)))
	return size, nil
}

//	compressed        uncompressed  ratio uncompressed_name
//	     14444               71680  79.9% up.tar
func (s Sizer) gzipSize(path string) (int64, error) {
	launch := s.Launch
	if launch == nil {
		launch = codec.Exec
	}
	cmd := launch(s.Tools.ListArgv(path))
	out, err := cmd.Output()
	if err != nil {
		return 0, &Error{Op: "gzip -l", Path: path, Err: err}
	}
	fields := bytes.Fields(out)
	if len(fields) < 6 {
		return 0, &Error{Op: "gzip -l", Path: path, Err: errors.Errorf("unexpected listing %q", out)}
	}
	size, err := strconv.ParseInt(string(fields[5]), 10, 64)
	if err != nil {
		return 0, &Error{Op: "gzip -l", Path: path, Err: errors.Wrap(err, "uncompressed column")}
	}
	return size, nil
}
