package printer

import (
	"encoding/json"
	"io"

	"github.com/joshuapare/regwalk/internal/regvalue"
	"github.com/joshuapare/regwalk/internal/store"
	"github.com/joshuapare/regwalk/pkg/types"
)

type jsonValue struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

type jsonKey struct {
	Path   string      `json:"path"`
	Values []jsonValue `json:"values"`
}

// JSON writes newline-delimited records: one per visited key, plus
// {"excluded": path} and {"diagnostic": line} records. Binary data is
// base64 encoded.
type JSON struct {
	enc     *json.Encoder
	current *jsonKey
	err     error
}

// NewJSON returns a JSON lines sink.
func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

func (j *JSON) encode(v any) error {
	if j.err == nil {
		j.err = j.enc.Encode(v)
	}
	return j.err
}

func (j *JSON) flush() error {
	if j.current == nil {
		return j.err
	}
	k := j.current
	j.current = nil
	return j.encode(k)
}

func (j *JSON) Key(root types.Root, path string) error {
	if err := j.flush(); err != nil {
		return err
	}
	j.current = &jsonKey{Path: store.JoinPath(root.String(), path), Values: []jsonValue{}}
	return nil
}

func (j *JSON) Value(v types.Value) error {
	if j.current == nil {
		return j.err
	}
	j.current.Values = append(j.current.Values, jsonValue{
		Name:  v.Name,
		Type:  v.Type.Label(),
		Value: regvalue.Native(v),
	})
	return j.err
}

func (j *JSON) Excluded(path string) error {
	if err := j.flush(); err != nil {
		return err
	}
	return j.encode(map[string]string{"excluded": path})
}

func (j *JSON) Diagnostic(line string) error {
	if line == "" {
		return j.err
	}
	if err := j.flush(); err != nil {
		return err
	}
	return j.encode(map[string]string{"diagnostic": line})
}

func (j *JSON) Close() error { return j.flush() }
