/*
Copyright © 2023 the BGCData authors.
This file is part of BGCData.

BGCData is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

BGCData is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with BGCData.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package abfile reads and writes the HYCOM ".a" and ".b" files holding
// model grids and archives. The ".a" file holds the binary fields and the
// ".b" file describes them.
package abfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sync"

	"github.com/golang/groupcache/lru"
)

const (
	// recordPadding is the number of values records are padded to.
	recordPadding = 4096

	// masked is the value written in place of missing values.
	masked = 0x1p100

	// maskThreshold is the value above which read values are missing.
	maskThreshold = 0x1p99
)

// Field is a 2D field of a grid or archive file. Data holds JDM rows of
// IDM values.
type Field struct {
	IDM, JDM int
	Data     []float64
}

// At returns the value at column i and row j.
func (f *Field) At(i, j int) float64 { return f.Data[j*f.IDM+i] }

// Copy returns a copy of f.
func (f *Field) Copy() *Field {
	return &Field{IDM: f.IDM, JDM: f.JDM, Data: append([]float64{}, f.Data...)}
}

// MinMax returns the extremes of the non missing values of f. Both are NaN
// when all values are missing.
func (f *Field) MinMax() (min, max float64) {
	return minMax(f.Data)
}

func minMax(data []float64) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if math.IsInf(min, 1) {
		return math.NaN(), math.NaN()
	}
	return min, max
}

func paddedSize(idm, jdm int) int {
	n := idm * jdm
	return (n + recordPadding - 1) / recordPadding * recordPadding
}

// afile reads records of a ".a" file. Records are cached.
type afile struct {
	path     string
	idm, jdm int

	mu    sync.Mutex
	cache *lru.Cache
}

// CacheSize is the number of records kept in memory for each open file.
var CacheSize = 16

func newAFile(path string, idm, jdm int) *afile {
	return &afile{path: path, idm: idm, jdm: jdm, cache: lru.New(CacheSize)}
}

// record returns record i of the file, with masked values set to NaN.
func (a *afile) record(i int) (*Field, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d, ok := a.cache.Get(i); ok {
		return d.(*Field).Copy(), nil
	}
	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("abfile: opening %s: %v", a.path, err)
	}
	defer f.Close()
	n := a.idm * a.jdm
	buf := make([]byte, 4*n)
	offset := int64(i) * int64(paddedSize(a.idm, a.jdm)) * 4
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("abfile: reading record %d of %s: %v", i, a.path, err)
	}
	field := &Field{IDM: a.idm, JDM: a.jdm, Data: make([]float64, n)}
	for j := range field.Data {
		v := float64(math.Float32frombits(binary.BigEndian.Uint32(buf[4*j:])))
		if v > maskThreshold {
			v = math.NaN()
		}
		field.Data[j] = v
	}
	a.cache.Add(i, field)
	return field.Copy(), nil
}

// aWriter writes records of a ".a" file.
type aWriter struct {
	w        *bufio.Writer
	idm, jdm int
}

// writeRecord writes data, NaN values being masked, followed by the record
// padding. It returns the extremes of the non missing values.
func (a *aWriter) writeRecord(data []float64) (min, max float64, err error) {
	if len(data) != a.idm*a.jdm {
		return 0, 0, fmt.Errorf("abfile: record has %d values instead of %dx%d", len(data), a.idm, a.jdm)
	}
	b := make([]byte, 4)
	write := func(v float64) error {
		binary.BigEndian.PutUint32(b, math.Float32bits(float32(v)))
		_, err := a.w.Write(b)
		return err
	}
	for _, v := range data {
		if math.IsNaN(v) {
			v = masked
		}
		if err := write(v); err != nil {
			return 0, 0, err
		}
	}
	for i := len(data); i < paddedSize(a.idm, a.jdm); i++ {
		if err := write(0); err != nil {
			return 0, 0, err
		}
	}
	min, max = minMax(data)
	return min, max, nil
}

// createAB creates the ".a" and ".b" files of basename.
func createAB(basename string) (a, b *os.File, err error) {
	if a, err = os.Create(basename + ".a"); err != nil {
		return nil, nil, fmt.Errorf("abfile: %v", err)
	}
	if b, err = os.Create(basename + ".b"); err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("abfile: %v", err)
	}
	return a, b, nil
}

func closeAll(w *bufio.Writer, c ...io.Closer) error {
	err := w.Flush()
	for _, cc := range c {
		if e := cc.Close(); err == nil {
			err = e
		}
	}
	return err
}
