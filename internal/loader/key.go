package loader

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/fatih/structtag"
	jsoniter "github.com/json-iterator/go"

	apperrors "github.com/louisbranch/loadguard/internal/platform/errors"
)

// MaxActionDepth bounds how deeply an action value may nest.
const MaxActionDepth = 32

const markerPrefix = "@@marker:"

// Action is a unit of work requested from the store. Actions are compared
// by value through KeyOf, never by identity, and must be acyclic,
// serializable-shaped values: scalars, strings, slices, arrays, maps,
// structs, pointers to those, and Markers.
type Action = any

// ActionKey is the canonical comparable form of an Action.
type ActionKey string

// Marker is a tag-like identifier embedded in an action. Markers fold into
// the action key as "@@marker:<name>", so actions that differ only in marker
// name are distinct and actions carrying equally named markers are equal.
type Marker struct {
	name string
}

// NewMarker returns a marker with the given name.
func NewMarker(name string) Marker {
	return Marker{name: name}
}

// Name returns the marker name.
func (m Marker) Name() string { return m.name }

func (m Marker) String() string { return "Marker(" + m.name + ")" }

// MarshalJSON encodes the marker as its key token.
func (m Marker) MarshalJSON() ([]byte, error) {
	return keyJSON.Marshal(markerPrefix + m.name)
}

// UnmarshalJSON decodes a key token produced by MarshalJSON.
func (m *Marker) UnmarshalJSON(data []byte) error {
	var token string
	if err := keyJSON.Unmarshal(data, &token); err != nil {
		return err
	}
	name, ok := strings.CutPrefix(token, markerPrefix)
	if !ok {
		return fmt.Errorf("marker token %q lacks %q prefix", token, markerPrefix)
	}
	m.name = name
	return nil
}

var (
	markerType        = reflect.TypeOf(Marker{})
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
	keyJSON    = jsoniter.Config{
		EscapeHTML:  false,
		SortMapKeys: true,
	}.Froze()
)

// KeyOf derives the canonical key of an action. Two actions have equal keys
// iff they are deep-equal after normalization:
//
//   - Markers become "@@marker:<name>" strings.
//   - Structs become objects of their exported fields, named by json tags;
//     `json:"-"` fields and zero `omitempty` fields are left out. Unexported
//     fields never participate.
//   - Values implementing json.Marshaler or encoding.TextMarshaler (such as
//     time.Time or *big.Int) are keyed by their encoded form.
//   - Nil and empty slices, and nil and empty maps, are equal.
//   - Numbers compare by value, so int(1) and float64(1) are equal.
//
// Cycles and nesting beyond MaxActionDepth are errors, as are funcs,
// channels, complex numbers and unsafe pointers.
func KeyOf(a Action) (ActionKey, error) {
	n := normalizer{path: map[visit]bool{}}
	tree, err := n.normalize(reflect.ValueOf(a), 0)
	if err != nil {
		return "", err
	}
	data, err := keyJSON.Marshal(tree)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeActionUnsupported, "encode action key", err)
	}
	return ActionKey(data), nil
}

type visit struct {
	ptr uintptr
	typ reflect.Type
	len int
}

// normalizer tracks the references on the current path only, so shared
// acyclic sub-values are fine.
type normalizer struct {
	path map[visit]bool
}

func (n *normalizer) enter(v visit) error {
	if n.path[v] {
		return apperrors.WithMetadata(apperrors.CodeActionCycle, "action contains a cycle",
			map[string]string{"Type": v.typ.String()})
	}
	n.path[v] = true
	return nil
}

func (n *normalizer) leave(v visit) {
	delete(n.path, v)
}

func (n *normalizer) normalize(v reflect.Value, depth int) (any, error) {
	if depth > MaxActionDepth {
		return nil, apperrors.New(apperrors.CodeActionTooDeep,
			fmt.Sprintf("action nests deeper than %d levels", MaxActionDepth))
	}
	if !v.IsValid() {
		return nil, nil
	}
	if v.Type() == markerType {
		return markerPrefix + v.Interface().(Marker).name, nil
	}
	if m, ok := marshalerOf(v); ok {
		return n.normalizeMarshaler(m, v.Type(), depth)
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.String:
		return v.String(), nil
	case reflect.Interface:
		if v.IsNil() {
			return nil, nil
		}
		return n.normalize(v.Elem(), depth)
	case reflect.Pointer:
		if v.IsNil() {
			return nil, nil
		}
		at := visit{ptr: v.Pointer(), typ: v.Type()}
		if err := n.enter(at); err != nil {
			return nil, err
		}
		defer n.leave(at)
		return n.normalize(v.Elem(), depth+1)
	case reflect.Map:
		return n.normalizeMap(v, depth)
	case reflect.Slice:
		if v.Len() == 0 {
			return []any{}, nil
		}
		at := visit{ptr: v.Pointer(), typ: v.Type(), len: v.Len()}
		if err := n.enter(at); err != nil {
			return nil, err
		}
		defer n.leave(at)
		return n.normalizeList(v, depth)
	case reflect.Array:
		return n.normalizeList(v, depth)
	case reflect.Struct:
		return n.normalizeStruct(v, depth)
	default:
		return nil, apperrors.WithMetadata(apperrors.CodeActionUnsupported, "action holds an unsupported value",
			map[string]string{"Kind": v.Kind().String()})
	}
}

// marshalerOf returns v as a json.Marshaler or encoding.TextMarshaler,
// taking an addressable copy for pointer-receiver implementations. Nil
// pointers and interfaces are left to normalize.
func marshalerOf(v reflect.Value) (any, bool) {
	switch v.Kind() {
	case reflect.Interface:
		return nil, false
	case reflect.Pointer:
		if v.IsNil() {
			return nil, false
		}
	}
	t := v.Type()
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return v.Interface(), true
	}
	if t.Kind() != reflect.Pointer {
		pt := reflect.PointerTo(t)
		if pt.Implements(jsonMarshalerType) || pt.Implements(textMarshalerType) {
			p := reflect.New(t)
			p.Elem().Set(v)
			return p.Interface(), true
		}
	}
	return nil, false
}

func (n *normalizer) normalizeMarshaler(m any, t reflect.Type, depth int) (any, error) {
	meta := map[string]string{"Type": t.String()}
	jm, ok := m.(json.Marshaler)
	if !ok {
		text, err := m.(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, apperrors.WrapWithMetadata(apperrors.CodeActionUnsupported, "encode action value", meta, err)
		}
		return string(text), nil
	}
	data, err := jm.MarshalJSON()
	if err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeActionUnsupported, "encode action value", meta, err)
	}
	var decoded any
	if err := keyJSON.Unmarshal(data, &decoded); err != nil {
		return nil, apperrors.WrapWithMetadata(apperrors.CodeActionUnsupported, "decode action value", meta, err)
	}
	return n.normalize(reflect.ValueOf(decoded), depth+1)
}

func (n *normalizer) normalizeList(v reflect.Value, depth int) (any, error) {
	out := make([]any, v.Len())
	for i := range out {
		item, err := n.normalize(v.Index(i), depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = item
	}
	return out, nil
}

func (n *normalizer) normalizeMap(v reflect.Value, depth int) (any, error) {
	if v.Len() == 0 {
		return map[string]any{}, nil
	}
	at := visit{ptr: v.Pointer(), typ: v.Type()}
	if err := n.enter(at); err != nil {
		return nil, err
	}
	defer n.leave(at)

	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, err := n.mapKey(iter.Key(), depth)
		if err != nil {
			return nil, err
		}
		value, err := n.normalize(iter.Value(), depth+1)
		if err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, nil
}

func (n *normalizer) mapKey(k reflect.Value, depth int) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	key, err := n.normalize(k, depth+1)
	if err != nil {
		return "", err
	}
	if s, ok := key.(string); ok {
		return s, nil
	}
	data, err := keyJSON.Marshal(key)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeActionUnsupported, "encode map key", err)
	}
	return string(data), nil
}

func (n *normalizer) normalizeStruct(v reflect.Value, depth int) (any, error) {
	t := v.Type()
	out := make(map[string]any, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, omitEmpty, skip := fieldName(field)
		if skip {
			continue
		}
		fv := v.Field(i)
		if omitEmpty && fv.IsZero() {
			continue
		}
		value, err := n.normalize(fv, depth+1)
		if err != nil {
			return nil, err
		}
		out[name] = value
	}
	return out, nil
}

// fieldName resolves a struct field's key name from its json tag.
func fieldName(field reflect.StructField) (name string, omitEmpty bool, skip bool) {
	name = field.Name
	tags, err := structtag.Parse(string(field.Tag))
	if err != nil {
		return name, false, false
	}
	tag, err := tags.Get("json")
	if err != nil {
		return name, false, false
	}
	if tag.Name == "-" && len(tag.Options) == 0 {
		return "", false, true
	}
	if tag.Name != "" {
		name = tag.Name
	}
	return name, tag.HasOption("omitempty"), false
}
