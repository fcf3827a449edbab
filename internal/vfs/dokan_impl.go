//go:build windows

package vfs

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/stirante/dokan-go"
	"github.com/stirante/dokan-go/winacl"

	"github.com/greatbody/encoding-util/transcoder"
)

const (
	attrDirectory = 16
	attrNormal    = 128
)

// ProxyFS mirrors PhysicalPath and serves filtered files as UTF-8.
type ProxyFS struct {
	PhysicalPath string
	Filter       *Filter
	conv         Converter
}

func NewProxyFS(physicalPath string, filter *Filter, conv Converter) *ProxyFS {
	return &ProxyFS{
		PhysicalPath: physicalPath,
		Filter:       filter,
		conv:         conv,
	}
}

func (fs *ProxyFS) getPhysicalPath(path string) string {
	path = strings.TrimPrefix(path, "\\")
	return filepath.Join(fs.PhysicalPath, path)
}

func processLabel(fi *dokan.FileInfo) string {
	name, _ := getProcessName(uint32(fi.ProcessId()))
	if name == "" {
		name = fmt.Sprintf("PID:%d", fi.ProcessId())
	}
	return name
}

func (fs *ProxyFS) CreateFile(ctx context.Context, fi *dokan.FileInfo, cd *dokan.CreateData) (dokan.File, dokan.CreateStatus, error) {
	path := fi.Path()
	phys := fs.getPhysicalPath(path)
	proc := processLabel(fi)

	log.Printf("[%s] CreateFile: %s (IsDir: %v)", proc, path, fi.IsDirectory())

	if path == "\\" {
		return &ProxyFile{fs: fs, path: path, isDir: true, physicalPath: phys}, 0, nil
	}

	st, err := os.Stat(phys)
	if fi.IsDirectory() {
		if err != nil {
			if os.IsNotExist(err) {
				return nil, 0, os.ErrNotExist
			}
			return nil, 0, err
		}
		if !st.IsDir() {
			return nil, 0, fmt.Errorf("not a directory: %s", path)
		}
		return &ProxyFile{fs: fs, path: path, isDir: true, physicalPath: phys}, 0, nil
	}
	// Some clients open directories as files to probe for existence.
	if err == nil && st.IsDir() {
		return &ProxyFile{fs: fs, path: path, isDir: true, physicalPath: phys}, 0, nil
	}

	file := &ProxyFile{fs: fs, path: path, physicalPath: phys}

	if fs.Filter.ShouldProcess(proc, path) {
		raw, err := os.ReadFile(phys)
		switch {
		case err == nil:
			content, stored, convErr := decodeStored(fs.conv, raw)
			if convErr == nil {
				log.Printf("[%s] Transcoding %s (%s on disk)", proc, path, stored)
				file.transcoding = true
				file.stored = stored
				file.utf8Content = content
				return file, 0, nil
			}
			log.Printf("[%s] Passthrough %s: %v", proc, path, convErr)
		case os.IsNotExist(err):
			file.transcoding = true
			file.stored = transcoder.EncodingASCII
			return file, 0, nil
		default:
			return nil, 0, err
		}
	}

	h, err := os.OpenFile(phys, os.O_RDWR, 0)
	if err != nil {
		h, err = os.Open(phys)
	}
	if err == nil {
		file.handle = h
	} else if !os.IsNotExist(err) {
		return nil, 0, err
	}
	return file, 0, nil
}

func (fs *ProxyFS) GetDiskFreeSpace(ctx context.Context) (dokan.FreeSpace, error) {
	return dokan.FreeSpace{
		FreeBytesAvailable:     10 * 1024 * 1024 * 1024,
		TotalNumberOfBytes:     20 * 1024 * 1024 * 1024,
		TotalNumberOfFreeBytes: 10 * 1024 * 1024 * 1024,
	}, nil
}

func (fs *ProxyFS) GetVolumeInformation(ctx context.Context) (dokan.VolumeInformation, error) {
	return dokan.VolumeInformation{
		VolumeName:             "GBKtoUTF8",
		VolumeSerialNumber:     0x0936FDE9,
		MaximumComponentLength: 255,
		FileSystemName:         "NTFS",
	}, nil
}

func (fs *ProxyFS) Mounted(ctx context.Context) error   { return nil }
func (fs *ProxyFS) Unmounted(ctx context.Context) error { return nil }

func (fs *ProxyFS) WithContext(c context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(c)
}

func (fs *ProxyFS) ErrorPrint(err error) {
	log.Printf("Dokan Error: %v", err)
}

func (fs *ProxyFS) Printf(format string, v ...interface{}) {
	log.Printf("Dokan: "+format, v...)
}

func (fs *ProxyFS) MoveFile(ctx context.Context, sourceHandle dokan.File, sourceFileInfo *dokan.FileInfo, targetPath string, replaceExisting bool) error {
	return nil
}

// ProxyFile is an open file. Transcoded files are held in memory as UTF-8
// and written back on cleanup; others pass through to the physical file.
type ProxyFile struct {
	fs           *ProxyFS
	path         string
	physicalPath string
	isDir        bool

	mu          sync.Mutex
	transcoding bool
	stored      transcoder.Encoding
	utf8Content []byte
	isDirty     bool
	handle      *os.File
}

func (f *ProxyFile) ReadFile(ctx context.Context, fi *dokan.FileInfo, bs []byte, offset int64) (int, error) {
	if f.transcoding {
		f.mu.Lock()
		defer f.mu.Unlock()
		if offset >= int64(len(f.utf8Content)) {
			return 0, io.EOF
		}
		return copy(bs, f.utf8Content[offset:]), nil
	}
	if f.handle != nil {
		return f.handle.ReadAt(bs, offset)
	}
	return 0, io.EOF
}

func (f *ProxyFile) WriteFile(ctx context.Context, fi *dokan.FileInfo, bs []byte, offset int64) (int, error) {
	if f.transcoding {
		f.mu.Lock()
		defer f.mu.Unlock()
		end := offset + int64(len(bs))
		if end > int64(len(f.utf8Content)) {
			grown := make([]byte, end)
			copy(grown, f.utf8Content)
			f.utf8Content = grown
		}
		copy(f.utf8Content[offset:], bs)
		f.isDirty = true
		return len(bs), nil
	}
	if f.handle != nil {
		return f.handle.WriteAt(bs, offset)
	}
	return 0, fmt.Errorf("write not supported: %s", f.path)
}

func (f *ProxyFile) GetFileInformation(ctx context.Context, fi *dokan.FileInfo) (*dokan.Stat, error) {
	log.Printf("[%s] GetFileInformation: %s", processLabel(fi), f.path)
	st, err := os.Stat(f.physicalPath)
	if err != nil {
		if f.transcoding {
			f.mu.Lock()
			defer f.mu.Unlock()
			return &dokan.Stat{FileAttributes: attrNormal, FileSize: int64(len(f.utf8Content))}, nil
		}
		log.Printf("GetFileInformation Error: %s: %v", f.path, err)
		return &dokan.Stat{FileAttributes: attrNormal}, nil
	}
	s := &dokan.Stat{
		LastWrite:  st.ModTime(),
		LastAccess: st.ModTime(),
		Creation:   st.ModTime(),
		FileSize:   st.Size(),
	}
	if st.IsDir() {
		s.FileAttributes = attrDirectory
		return s, nil
	}
	s.FileAttributes = attrNormal
	if f.transcoding {
		f.mu.Lock()
		s.FileSize = int64(len(f.utf8Content))
		f.mu.Unlock()
	}
	return s, nil
}

func (f *ProxyFile) FindFiles(ctx context.Context, fi *dokan.FileInfo, pattern string, fill func(*dokan.NamedStat) error) error {
	log.Printf("[%s] FindFiles: %s (pattern: %s)", processLabel(fi), f.path, pattern)
	entries, err := os.ReadDir(f.physicalPath)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		ns := &dokan.NamedStat{
			Name: entry.Name(),
			Stat: dokan.Stat{
				FileSize:   info.Size(),
				LastWrite:  info.ModTime(),
				LastAccess: info.ModTime(),
				Creation:   info.ModTime(),
			},
		}
		if entry.IsDir() {
			ns.Stat.FileAttributes = attrDirectory
		} else {
			ns.Stat.FileAttributes = attrNormal
		}
		if err := fill(ns); err != nil {
			return err
		}
	}
	return nil
}

func (f *ProxyFile) Cleanup(ctx context.Context, fi *dokan.FileInfo) {
	proc := processLabel(fi)
	log.Printf("[%s] Cleanup: %s", proc, f.path)
	if f.transcoding {
		f.mu.Lock()
		if f.isDirty {
			if err := f.writeBack(); err != nil {
				log.Printf("[%s] Write back %s failed, file left unchanged: %v", proc, f.path, err)
			} else {
				f.isDirty = false
			}
		}
		f.mu.Unlock()
	}
	if f.handle != nil {
		f.handle.Close()
		f.handle = nil
	}
}

func (f *ProxyFile) writeBack() error {
	data, err := encodeForStore(f.fs.conv, f.stored, f.utf8Content)
	if err != nil {
		return err
	}
	return os.WriteFile(f.physicalPath, data, 0o644)
}

func (f *ProxyFile) CloseFile(ctx context.Context, fi *dokan.FileInfo) {}

func (f *ProxyFile) FlushFileBuffers(ctx context.Context, fi *dokan.FileInfo) error { return nil }

func (f *ProxyFile) SetEndOfFile(ctx context.Context, fi *dokan.FileInfo, length int64) error {
	if f.transcoding {
		f.mu.Lock()
		defer f.mu.Unlock()
		if length < int64(len(f.utf8Content)) {
			f.utf8Content = f.utf8Content[:length]
		} else if length > int64(len(f.utf8Content)) {
			grown := make([]byte, length)
			copy(grown, f.utf8Content)
			f.utf8Content = grown
		}
		f.isDirty = true
		return nil
	}
	if f.handle != nil {
		return f.handle.Truncate(length)
	}
	return nil
}

func (f *ProxyFile) SetAllocationSize(ctx context.Context, fi *dokan.FileInfo, length int64) error {
	return nil
}
func (f *ProxyFile) LockFile(ctx context.Context, fi *dokan.FileInfo, offset, length int64) error {
	return nil
}
func (f *ProxyFile) UnlockFile(ctx context.Context, fi *dokan.FileInfo, offset, length int64) error {
	return nil
}
func (f *ProxyFile) CanDeleteFile(ctx context.Context, fi *dokan.FileInfo) error      { return nil }
func (f *ProxyFile) CanDeleteDirectory(ctx context.Context, fi *dokan.FileInfo) error { return nil }

func (f *ProxyFile) GetFileSecurity(ctx context.Context, fi *dokan.FileInfo, si winacl.SecurityInformation, sd *winacl.SecurityDescriptor) error {
	return nil
}
func (f *ProxyFile) SetFileSecurity(ctx context.Context, fi *dokan.FileInfo, si winacl.SecurityInformation, sd *winacl.SecurityDescriptor) error {
	return nil
}
func (f *ProxyFile) SetFileAttributes(ctx context.Context, fi *dokan.FileInfo, attr dokan.FileAttribute) error {
	return nil
}
func (f *ProxyFile) SetFileTime(ctx context.Context, fi *dokan.FileInfo, ctime, atime, mtime time.Time) error {
	return nil
}
