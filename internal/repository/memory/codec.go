package memory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var errInvalidSnapshot = errors.New("memory: invalid snapshot")

func marshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func indent(raw []byte) ([]byte, error) {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// encodeOrdered 以 keys 的顺序输出 {"key": value, ...}，缩进两个空格
func encodeOrdered[T any](keys []string, get func(key string) T) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalValue(k)
		if err != nil {
			return nil, err
		}
		vb, err := marshalValue(get(k))
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return indent(buf.Bytes())
}

// decodeOrdered 按文档中的键顺序回调，空内容视为空 store
func decodeOrdered[T any](data []byte, fn func(key string, v T)) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if !gjson.ValidBytes(data) {
		return errInvalidSnapshot
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return fmt.Errorf("%w: top level is not an object", errInvalidSnapshot)
	}

	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		var v T
		if e := json.Unmarshal([]byte(value.Raw), &v); e != nil {
			err = fmt.Errorf("decode %s: %w", key.String(), e)
			return false
		}
		fn(key.String(), v)
		return true
	})
	return err
}
