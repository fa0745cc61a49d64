package views_test

import (
	"io"
	"io/fs"
	"time"
)

// recordingFS is an fs.FS backed by a map of file names to contents that
// remembers every name it was asked to open, in order.
type recordingFS struct {
	files  map[string]string
	opened []string
}

func newRecordingFS(files map[string]string) *recordingFS {
	return &recordingFS{files: files}
}

// Open opens the named file, recording the attempt whether or not the
// file exists.
func (s *recordingFS) Open(name string) (fs.File, error) {
	s.opened = append(s.opened, name)
	val, ok := s.files[name]
	if !ok {
		return nil, &fs.PathError{
			Op:   "open",
			Path: name,
			Err:  fs.ErrNotExist,
		}
	}
	return &staticFile{
		name:     name,
		contents: []byte(val),
	}, nil
}

type staticFile struct {
	name     string
	contents []byte
	offset   int
}

func (s *staticFile) Stat() (fs.FileInfo, error) {
	return s, nil
}

func (s *staticFile) Read(buf []byte) (int, error) {
	if s.offset >= len(s.contents) {
		return 0, io.EOF
	}
	n := copy(buf, s.contents[s.offset:])
	s.offset += n
	return n, nil
}

func (*staticFile) Close() error {
	return nil
}

func (s *staticFile) Name() string {
	return s.name
}

func (s *staticFile) Size() int64 {
	return int64(len(s.contents))
}

func (*staticFile) Mode() fs.FileMode {
	return 0400
}

func (*staticFile) ModTime() time.Time {
	return time.Now()
}

func (*staticFile) IsDir() bool {
	return false
}

func (*staticFile) Sys() any {
	return nil
}
