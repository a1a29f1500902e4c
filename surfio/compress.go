/*
 * compress.go, part of spindock.
 *
 * Copyright 2024 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package surfio

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

//Compression formats, chosen from the file name.
const (
	Plain = iota
	Gzip
	Zstd
)

//Format returns the compression format for the file name: names ending in
//.gz are gzip, names ending in .zst or .zstd are zstd, everything else is plain.
func Format(name string) int {
	n := strings.ToLower(name)
	switch {
	case strings.HasSuffix(n, ".gz"):
		return Gzip
	case strings.HasSuffix(n, ".zst"), strings.HasSuffix(n, ".zstd"):
		return Zstd
	}
	return Plain
}

//readCloser closes the decompressor and then the file.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	var err error
	for _, c := range r.closers {
		if e := c(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

//Open opens the file name for reading, decompressing it if needed.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(f, Format(name))
	if err != nil {
		f.Close()
		return nil, err
	}
	rc := r.(*readCloser)
	rc.closers = append(rc.closers, f.Close)
	return rc, nil
}

//NewReader returns a reader that decompresses in with the given format.
//Closing it does not close in.
func NewReader(in io.Reader, format int) (io.ReadCloser, error) {
	b := bufio.NewReader(in)
	switch format {
	case Gzip:
		z, err := gzip.NewReader(b)
		if err != nil {
			return nil, err
		}
		return &readCloser{Reader: z, closers: []func() error{z.Close}}, nil
	case Zstd:
		z, err := zstd.NewReader(b)
		if err != nil {
			return nil, err
		}
		zc := z.IOReadCloser()
		return &readCloser{Reader: zc, closers: []func() error{zc.Close}}, nil
	}
	return &readCloser{Reader: b}, nil
}

//writeCloser flushes and closes the compressor, then the buffer and the file.
type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w *writeCloser) Close() error {
	var err error
	for _, c := range w.closers {
		if e := c(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

//Create creates the file name, compressing what is written to it if the
//name asks for it. The file is complete only after Close.
func Create(name string) (io.WriteCloser, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	w, err := NewWriter(f, Format(name))
	if err != nil {
		f.Close()
		return nil, err
	}
	wc := w.(*writeCloser)
	wc.closers = append(wc.closers, f.Close)
	return wc, nil
}

//NewWriter returns a writer that compresses into out with the given format.
//Closing it does not close out.
func NewWriter(out io.Writer, format int) (io.WriteCloser, error) {
	b := bufio.NewWriter(out)
	switch format {
	case Gzip:
		z, err := gzip.NewWriterLevel(b, gzip.BestCompression)
		if err != nil {
			return nil, err
		}
		return &writeCloser{Writer: z, closers: []func() error{z.Close, b.Flush}}, nil
	case Zstd:
		z, err := zstd.NewWriter(b, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return nil, err
		}
		return &writeCloser{Writer: z, closers: []func() error{z.Close, b.Flush}}, nil
	}
	return &writeCloser{Writer: b, closers: []func() error{b.Flush}}, nil
}
