// Copyright 2026 The gVisor Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package binary translates between fixed-width on-disk records and their
// in-memory Go representation.
//
// Records are plain structs made of fixed-size signed and unsigned integers,
// arrays of them, and nested records. Fields are laid out back to back with
// no implicit padding, which matches the packed C structs of the images this
// module reads. Blank (_) fields are skipped on decode and encoded as zeroes.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
)

// LittleEndian is the same as encoding/binary.LittleEndian.
var LittleEndian = binary.LittleEndian

// ErrShortBuffer is returned by UnmarshalAt when the requested record does
// not fit in the buffer.
var ErrShortBuffer = errors.New("record extends past end of buffer")

// Size returns the number of bytes occupied by the encoding of v.
//
// v must be a record or a pointer to one; Size panics for unsupported types.
func Size(v any) int {
	return sizeof(reflect.Indirect(reflect.ValueOf(v)))
}

func sizeof(v reflect.Value) int {
	switch v.Kind() {
	case reflect.Int8, reflect.Uint8:
		return 1
	case reflect.Int16, reflect.Uint16:
		return 2
	case reflect.Int32, reflect.Uint32:
		return 4
	case reflect.Int64, reflect.Uint64:
		return 8
	case reflect.Array:
		if v.Len() == 0 {
			return 0
		}
		return v.Len() * sizeof(v.Index(0))
	case reflect.Struct:
		n := 0
		for i := 0; i < v.NumField(); i++ {
			n += sizeof(v.Field(i))
		}
		return n
	default:
		panic("invalid type: " + v.Type().String())
	}
}

// Marshal appends the encoding of v to buf and returns the extended buffer.
func Marshal(buf []byte, order binary.ByteOrder, v any) []byte {
	return marshal(buf, order, reflect.Indirect(reflect.ValueOf(v)))
}

func marshal(buf []byte, order binary.ByteOrder, v reflect.Value) []byte {
	switch v.Kind() {
	case reflect.Int8:
		return append(buf, byte(v.Int()))
	case reflect.Uint8:
		return append(buf, byte(v.Uint()))
	case reflect.Int16:
		return appendUint16(buf, order, uint16(v.Int()))
	case reflect.Uint16:
		return appendUint16(buf, order, uint16(v.Uint()))
	case reflect.Int32:
		return appendUint32(buf, order, uint32(v.Int()))
	case reflect.Uint32:
		return appendUint32(buf, order, uint32(v.Uint()))
	case reflect.Int64:
		return appendUint64(buf, order, uint64(v.Int()))
	case reflect.Uint64:
		return appendUint64(buf, order, v.Uint())
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			buf = marshal(buf, order, v.Index(i))
		}
		return buf
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if t.Field(i).Name == "_" {
				buf = append(buf, make([]byte, sizeof(v.Field(i)))...)
				continue
			}
			buf = marshal(buf, order, v.Field(i))
		}
		return buf
	default:
		panic("invalid type: " + v.Type().String())
	}
}

func appendUint16(buf []byte, order binary.ByteOrder, n uint16) []byte {
	buf = append(buf, 0, 0)
	order.PutUint16(buf[len(buf)-2:], n)
	return buf
}

func appendUint32(buf []byte, order binary.ByteOrder, n uint32) []byte {
	buf = append(buf, 0, 0, 0, 0)
	order.PutUint32(buf[len(buf)-4:], n)
	return buf
}

func appendUint64(buf []byte, order binary.ByteOrder, n uint64) []byte {
	buf = append(buf, make([]byte, 8)...)
	order.PutUint64(buf[len(buf)-8:], n)
	return buf
}

// Unmarshal decodes buf into the record pointed to by v.
//
// buf must be exactly Size(v) bytes long. Unmarshal panics otherwise, or if
// v is not a pointer to a supported record.
func Unmarshal(buf []byte, order binary.ByteOrder, v any) {
	value := reflect.ValueOf(v)
	if value.Kind() != reflect.Ptr {
		panic("invalid type: " + value.Type().String())
	}
	value = value.Elem()
	if n := sizeof(value); n != len(buf) {
		panic(fmt.Sprintf("buffer is %d bytes, record is %d bytes", len(buf), n))
	}
	unmarshal(buf, order, value)
}

// UnmarshalAt decodes the record pointed to by v from buf[off:].
//
// Unlike Unmarshal, the range [off, off+Size(v)) is checked against buf and
// ErrShortBuffer is returned when it does not fit. Bytes after the record are
// ignored.
func UnmarshalAt(buf []byte, off int, order binary.ByteOrder, v any) error {
	value := reflect.ValueOf(v)
	if value.Kind() != reflect.Ptr {
		panic("invalid type: " + value.Type().String())
	}
	value = value.Elem()
	n := sizeof(value)
	if off < 0 || off > len(buf) || n > len(buf)-off {
		return fmt.Errorf("%w: %d bytes at offset %d, buffer is %d bytes", ErrShortBuffer, n, off, len(buf))
	}
	unmarshal(buf[off:off+n], order, value)
	return nil
}

// unmarshal fills v from the front of buf and returns the unconsumed tail.
func unmarshal(buf []byte, order binary.ByteOrder, v reflect.Value) []byte {
	switch v.Kind() {
	case reflect.Int8:
		v.SetInt(int64(int8(buf[0])))
		return buf[1:]
	case reflect.Uint8:
		v.SetUint(uint64(buf[0]))
		return buf[1:]
	case reflect.Int16:
		v.SetInt(int64(int16(order.Uint16(buf))))
		return buf[2:]
	case reflect.Uint16:
		v.SetUint(uint64(order.Uint16(buf)))
		return buf[2:]
	case reflect.Int32:
		v.SetInt(int64(int32(order.Uint32(buf))))
		return buf[4:]
	case reflect.Uint32:
		v.SetUint(uint64(order.Uint32(buf)))
		return buf[4:]
	case reflect.Int64:
		v.SetInt(int64(order.Uint64(buf)))
		return buf[8:]
	case reflect.Uint64:
		v.SetUint(order.Uint64(buf))
		return buf[8:]
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			buf = unmarshal(buf, order, v.Index(i))
		}
		return buf
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if f := v.Field(i); f.CanSet() {
				buf = unmarshal(buf, order, f)
			} else {
				buf = buf[sizeof(f):]
			}
		}
		return buf
	default:
		panic("invalid type: " + v.Type().String())
	}
}
