package ebml

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var typeMap = make(map[reflect.Type]*structInfo)
var typeLock sync.RWMutex

var timeType = reflect.TypeOf(time.Time{})

// Dates are nanoseconds relative to the EBML epoch.
var absTime = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

type structInfo struct {
	fields []*fieldInfo
}

type fieldInfo struct {
	path      []uint64
	index     int
	name      string
	omitEmpty bool
}

func getStructInfo(t reflect.Type) (*structInfo, error) {
	typeLock.RLock()
	s, ok := typeMap[t]
	typeLock.RUnlock()
	if ok {
		return s, nil
	}
	s, err := newStructInfo(t)
	if err != nil {
		return nil, err
	}
	typeLock.Lock()
	typeMap[t] = s
	typeLock.Unlock()
	return s, nil
}

func newStructInfo(t reflect.Type) (*structInfo, error) {
	n := t.NumField()
	s := &structInfo{fields: make([]*fieldInfo, 0, n)}
	for i := 0; i < n; i++ {
		f := t.Field(i)
		if f.PkgPath != "" || f.Anonymous {
			continue
		}
		tag := f.Tag.Get("ebml")
		if tag == "" || tag == "-" {
			continue
		}
		p := strings.Split(tag, ",")
		it := &fieldInfo{index: i, name: f.Name}
		for _, opt := range p[1:] {
			if opt == "omitempty" {
				it.omitEmpty = true
			}
		}
		for _, seg := range strings.Split(p[0], ">") {
			id, err := strconv.ParseUint(seg, 16, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "ebml: %s.%s: bad id %q", t.Name(), f.Name, seg)
			}
			it.path = append(it.path, id)
		}
		s.fields = append(s.fields, it)
	}
	return s, nil
}

func marshalStruct(v reflect.Value) (Master, error) {
	s, err := getStructInfo(v.Type())
	if err != nil {
		return nil, err
	}
	var m Master
	for _, f := range s.fields {
		ch, err := f.encode(v.Field(f.index))
		if err != nil {
			return nil, errors.Wrapf(err, "ebml: field %s", f.name)
		}
		m = append(m, ch...)
	}
	return m, nil
}

// encode returns the elements for one field, wrapped in the leading ids of its path.
func (f *fieldInfo) encode(v reflect.Value) ([]Child, error) {
	if f.omitEmpty && v.IsZero() {
		return nil, nil
	}
	id := f.path[len(f.path)-1]
	var ch []Child
	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() != reflect.Uint8 {
		for i := 0; i < v.Len(); i++ {
			p, err := encodeValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			if p != nil {
				ch = append(ch, Child{ID: id, Data: p})
			}
		}
	} else {
		p, err := encodeValue(v)
		if err != nil {
			return nil, err
		}
		if p != nil {
			ch = append(ch, Child{ID: id, Data: p})
		}
	}
	for i := len(f.path) - 2; i >= 0; i-- {
		ch = []Child{{ID: f.path[i], Data: Master(ch)}}
	}
	return ch, nil
}

// encodeValue returns nil for nil pointers.
func encodeValue(v reflect.Value) (Payload, error) {
	if v.Kind() == reflect.Ptr && v.IsNil() {
		return nil, nil
	}
	if v.CanInterface() {
		if m, ok := v.Interface().(Marshaler); ok {
			return m.MarshalEBML()
		}
		if v.Kind() != reflect.Ptr && v.CanAddr() {
			if m, ok := v.Addr().Interface().(Marshaler); ok {
				return m.MarshalEBML()
			}
		}
	}
	switch v.Kind() {
	case reflect.Ptr:
		return encodeValue(v.Elem())
	case reflect.Struct:
		if v.Type() == timeType {
			return SignedInt(v.Interface().(time.Time).Sub(absTime).Nanoseconds()), nil
		}
		return marshalStruct(v)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return Binary(v.Bytes()), nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return SignedInt(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return UnsignedInt(v.Uint()), nil
	case reflect.Bool:
		if v.Bool() {
			return UnsignedInt(1), nil
		}
		return UnsignedInt(0), nil
	case reflect.Float32, reflect.Float64:
		return Float(v.Float()), nil
	case reflect.String:
		return Text(v.String()), nil
	}
	return nil, &UnsupportedTypeError{v.Type()}
}
