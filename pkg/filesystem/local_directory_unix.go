//go:build darwin || freebsd || linux
// +build darwin freebsd linux

package filesystem

import (
	"os"
	"runtime"
	"sort"
	"syscall"

	"github.com/buildbarn/bb-remote-node/pkg/filesystem/path"

	"golang.org/x/sys/unix"
)

type localDirectory struct {
	fd int
}

func newLocalDirectoryFromFileDescriptor(fd int) (*localDirectory, error) {
	d := &localDirectory{
		fd: fd,
	}
	runtime.SetFinalizer(d, (*localDirectory).Close)
	return d, nil
}

// NewLocalDirectory creates a directory handle that corresponds to a
// local path on the system.
func NewLocalDirectory(path string) (DirectoryCloser, error) {
	fd, err := unix.Openat(unix.AT_FDCWD, path, unix.O_DIRECTORY|unix.O_NOFOLLOW|unix.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	return newLocalDirectoryFromFileDescriptor(fd)
}

func (d *localDirectory) enter(name path.Component) (*localDirectory, error) {
	defer runtime.KeepAlive(d)

	fd, err := unix.Openat(d.fd, name.String(), unix.O_DIRECTORY|unix.O_NOFOLLOW|unix.O_RDONLY, 0)
	if err != nil {
		if runtime.GOOS == "freebsd" && err == syscall.EMLINK {
			// FreeBSD erroneously returns EMLINK.
			return nil, syscall.ENOTDIR
		} else if runtime.GOOS == "linux" && err == syscall.ELOOP {
			// Linux 3.10 returns ELOOP, while Linux 4.15 returns ENOTDIR. Prefer the latter.
			return nil, syscall.ENOTDIR
		}
		return nil, err
	}
	return newLocalDirectoryFromFileDescriptor(fd)
}

func (d *localDirectory) EnterDirectory(name path.Component) (DirectoryCloser, error) {
	return d.enter(name)
}

func (d *localDirectory) Close() error {
	fd := d.fd
	d.fd = -1
	runtime.SetFinalizer(d, nil)
	return unix.Close(fd)
}

func (d *localDirectory) open(name path.Component, creationMode CreationMode, flag int) (*os.File, error) {
	defer runtime.KeepAlive(d)

	fd, err := unix.Openat(d.fd, name.String(), flag|creationMode.flags|unix.O_NOFOLLOW, uint32(creationMode.permissions))
	if err != nil {
		if runtime.GOOS == "freebsd" && err == syscall.EMLINK {
			// FreeBSD erroneously returns EMLINK.
			return nil, syscall.ELOOP
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), name.String()), nil
}

func (d *localDirectory) OpenRead(name path.Component) (FileReader, error) {
	return d.open(name, DontCreate, os.O_RDONLY)
}

func (d *localDirectory) OpenWrite(name path.Component, creationMode CreationMode) (FileWriter, error) {
	return d.open(name, creationMode, os.O_WRONLY)
}

func (d *localDirectory) lstat(name path.Component) (FileType, bool, error) {
	defer runtime.KeepAlive(d)

	var stat unix.Stat_t
	if err := unix.Fstatat(d.fd, name.String(), &stat, unix.AT_SYMLINK_NOFOLLOW); err != nil {
		return FileTypeOther, false, err
	}
	fileType := FileTypeOther
	isExecutable := false
	switch stat.Mode & syscall.S_IFMT {
	case syscall.S_IFDIR:
		fileType = FileTypeDirectory
	case syscall.S_IFLNK:
		fileType = FileTypeSymlink
	case syscall.S_IFREG:
		fileType = FileTypeRegularFile
		isExecutable = stat.Mode&0o111 != 0
	case syscall.S_IFBLK:
		fileType = FileTypeBlockDevice
	case syscall.S_IFCHR:
		fileType = FileTypeCharacterDevice
	case syscall.S_IFIFO:
		fileType = FileTypeFIFO
	case syscall.S_IFSOCK:
		fileType = FileTypeSocket
	}
	return fileType, isExecutable, nil
}

func (d *localDirectory) Lstat(name path.Component) (FileInfo, error) {
	fileType, isExecutable, err := d.lstat(name)
	if err != nil {
		return FileInfo{}, err
	}
	return NewFileInfo(name, fileType, isExecutable), nil
}

func (d *localDirectory) Mkdir(name path.Component, perm os.FileMode) error {
	defer runtime.KeepAlive(d)

	return unix.Mkdirat(d.fd, name.String(), uint32(perm))
}

func (d *localDirectory) readdirnames() ([]string, error) {
	defer runtime.KeepAlive(d)

	// Obtain filenames in current directory.
	fd, err := unix.Openat(d.fd, ".", unix.O_DIRECTORY|unix.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	f := os.NewFile(uintptr(fd), ".")
	names, err := f.Readdirnames(-1)
	f.Close()
	return names, err
}

func (d *localDirectory) ReadDir() ([]FileInfo, error) {
	names, err := d.readdirnames()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	// Obtain file info.
	list := make([]FileInfo, 0, len(names))
	for _, name := range names {
		info, err := d.Lstat(path.MustNewComponent(name))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		list = append(list, info)
	}
	return list, nil
}

func (d *localDirectory) Readlink(name path.Component) (string, error) {
	defer runtime.KeepAlive(d)

	for l := 128; ; l *= 2 {
		b := make([]byte, l)
		n, err := unix.Readlinkat(d.fd, name.String(), b)
		if err != nil {
			return "", err
		}
		if n < l {
			return string(b[0:n]), nil
		}
	}
}

func (d *localDirectory) removeAllChildren() error {
	defer runtime.KeepAlive(d)

	names, err := d.readdirnames()
	if err != nil {
		return err
	}
	for _, name := range names {
		component := path.MustNewComponent(name)
		fileType, _, err := d.lstat(component)
		if err != nil {
			return err
		}
		if fileType == FileTypeDirectory {
			// A directory. Remove all children. Adjust permissions
			// to ensure we can delete directories with degenerate
			// permissions.
			// TODO(edsch): This could use AT_SYMLINK_NOFOLLOW.
			// Unfortunately, this is broken on Linux.
			// Details: https://github.com/golang/go/issues/20130
			unix.Fchmodat(d.fd, name, 0o700, 0)
			subdirectory, err := d.enter(component)
			if err != nil {
				return err
			}
			err = subdirectory.removeAllChildren()
			subdirectory.Close()
			if err != nil {
				return err
			}
			if err := unix.Unlinkat(d.fd, name, unix.AT_REMOVEDIR); err != nil {
				return err
			}
		} else {
			// Not a directory. Remove it immediately.
			if err := unix.Unlinkat(d.fd, name, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *localDirectory) RemoveAll(name path.Component) error {
	defer runtime.KeepAlive(d)

	if subdirectory, err := d.enter(name); err == nil {
		// A directory. Remove all children.
		err := subdirectory.removeAllChildren()
		subdirectory.Close()
		if err != nil {
			return err
		}
		return unix.Unlinkat(d.fd, name.String(), unix.AT_REMOVEDIR)
	} else if err == syscall.ENOTDIR {
		// Not a directory. Remove it immediately.
		return unix.Unlinkat(d.fd, name.String(), 0)
	} else {
		return err
	}
}

func (d *localDirectory) Symlink(oldName string, newName path.Component) error {
	defer runtime.KeepAlive(d)

	return unix.Symlinkat(oldName, d.fd, newName.String())
}
