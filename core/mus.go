package core

import (
	"sort"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted domain types. Vectors are encoded as a
// length-prefixed sequence of raw float32 values; they are never stored as
// textual literals and never reconstructed by evaluating stored text.
var (
	IDMUS                = idMUS{}
	DocumentMUS          = documentMUS{}
	EmbeddingMUS         = embeddingMUS{}
	SearchLogMUS         = searchLogMUS{}
	WorkflowExecutionMUS = workflowExecutionMUS{}
	ExternalActionMUS    = externalActionMUS{}
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

// Timestamps are encoded as Unix microseconds, matching the precision the
// date index keys use.

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	micro, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micro).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

func marshalVector(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func unmarshalVector(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	v = make([]float32, length)
	for i := 0; i < length; i++ {
		var m int
		v[i], m, err = raw.Float32.Unmarshal(bs[n:])
		n += m
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func sizeVector(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

// String maps are encoded with sorted keys so identical maps produce
// identical bytes.

func marshalStringMap(m map[string]string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(m), bs)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(m[k], bs[n:])
	}
	return n
}

func unmarshalStringMap(bs []byte) (m map[string]string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil || length == 0 {
		return nil, n, err
	}
	m = make(map[string]string, length)
	for i := 0; i < length; i++ {
		var k, v string
		var j int
		k, j, err = ord.String.Unmarshal(bs[n:])
		n += j
		if err != nil {
			return nil, n, err
		}
		v, j, err = ord.String.Unmarshal(bs[n:])
		n += j
		if err != nil {
			return nil, n, err
		}
		m[k] = v
	}
	return m, n, nil
}

func sizeStringMap(m map[string]string) (size int) {
	size = varint.Int.Size(len(m))
	for k, v := range m {
		size += ord.String.Size(k)
		size += ord.String.Size(v)
	}
	return size
}

type documentMUS struct{}

func (documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += ord.String.Marshal(v.Filename, bs[n:])
	n += ord.String.Marshal(string(v.FileType), bs[n:])
	n += varint.Int64.Marshal(v.FileSize, bs[n:])
	n += ord.String.Marshal(v.Content, bs[n:])
	n += ord.Bool.Marshal(v.HasContent, bs[n:])
	n += ord.String.Marshal(v.ContentHash, bs[n:])
	n += ord.String.Marshal(string(v.Status), bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var (
		j  int
		u  uint64
		s  string
		i  int64
		b  bool
		ts time.Time
	)
	if u, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return v, n, err
	}
	v.Id = ID(u)
	if s, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.Filename = s
	if s, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.FileType = FileType(s)
	if i, j, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.FileSize = i
	if s, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.Content = s
	if b, j, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.HasContent = b
	if s, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.ContentHash = s
	if s, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.Status = DocumentStatus(s)
	if ts, j, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.CreatedAt = ts
	if ts, j, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.UpdatedAt = ts
	return v, n, nil
}

func (documentMUS) Size(v Document) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += ord.String.Size(v.Filename)
	size += ord.String.Size(string(v.FileType))
	size += varint.Int64.Size(v.FileSize)
	size += ord.String.Size(v.Content)
	size += ord.Bool.Size(v.HasContent)
	size += ord.String.Size(v.ContentHash)
	size += ord.String.Size(string(v.Status))
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.UpdatedAt)
	return size
}

type embeddingMUS struct{}

func (embeddingMUS) Marshal(v Embedding, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += varint.Uint64.Marshal(uint64(v.DocumentId), bs[n:])
	n += marshalVector(v.Vector, bs[n:])
	n += ord.String.Marshal(v.Model, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	return n
}

func (embeddingMUS) Unmarshal(bs []byte) (v Embedding, n int, err error) {
	var (
		j  int
		u  uint64
		ts time.Time
	)
	if u, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return v, n, err
	}
	v.Id = ID(u)
	if u, j, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.DocumentId = ID(u)
	if v.Vector, j, err = unmarshalVector(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	if v.Model, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	if ts, j, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.CreatedAt = ts
	return v, n, nil
}

func (embeddingMUS) Size(v Embedding) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += varint.Uint64.Size(uint64(v.DocumentId))
	size += sizeVector(v.Vector)
	size += ord.String.Size(v.Model)
	size += sizeTime(v.CreatedAt)
	return size
}

type searchLogMUS struct{}

func (searchLogMUS) Marshal(v SearchLog, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Query, bs[n:])
	n += ord.String.Marshal(string(v.Mode), bs[n:])
	n += varint.Int.Marshal(v.ResultCount, bs[n:])
	n += varint.Int64.Marshal(v.DurationMS, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	return n
}

func (searchLogMUS) Unmarshal(bs []byte) (v SearchLog, n int, err error) {
	var (
		j  int
		s  string
		ts time.Time
	)
	if v.Id, n, err = ord.String.Unmarshal(bs); err != nil {
		return v, n, err
	}
	if v.Query, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	if s, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.Mode = SearchMode(s)
	if v.ResultCount, j, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	if v.DurationMS, j, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	if ts, j, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.CreatedAt = ts
	return v, n, nil
}

func (searchLogMUS) Size(v SearchLog) (size int) {
	size = ord.String.Size(v.Id)
	size += ord.String.Size(v.Query)
	size += ord.String.Size(string(v.Mode))
	size += varint.Int.Size(v.ResultCount)
	size += varint.Int64.Size(v.DurationMS)
	size += sizeTime(v.CreatedAt)
	return size
}

type workflowExecutionMUS struct{}

func (workflowExecutionMUS) Marshal(v WorkflowExecution, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += varint.Uint64.Marshal(uint64(v.DocumentId), bs[n:])
	n += ord.String.Marshal(string(v.Status), bs[n:])
	n += marshalStringMap(v.Output, bs[n:])
	n += ord.String.Marshal(v.Error, bs[n:])
	n += marshalTime(v.StartedAt, bs[n:])
	n += marshalTime(v.CompletedAt, bs[n:])
	n += varint.Int64.Marshal(v.DurationMS, bs[n:])
	return n
}

func (workflowExecutionMUS) Unmarshal(bs []byte) (v WorkflowExecution, n int, err error) {
	var (
		j  int
		u  uint64
		s  string
		ts time.Time
	)
	if v.Id, n, err = ord.String.Unmarshal(bs); err != nil {
		return v, n, err
	}
	if v.Name, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	if u, j, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.DocumentId = ID(u)
	if s, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.Status = WorkflowStatus(s)
	if v.Output, j, err = unmarshalStringMap(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	if v.Error, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	if ts, j, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.StartedAt = ts
	if ts, j, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.CompletedAt = ts
	if v.DurationMS, j, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	return v, n, nil
}

func (workflowExecutionMUS) Size(v WorkflowExecution) (size int) {
	size = ord.String.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += varint.Uint64.Size(uint64(v.DocumentId))
	size += ord.String.Size(string(v.Status))
	size += sizeStringMap(v.Output)
	size += ord.String.Size(v.Error)
	size += sizeTime(v.StartedAt)
	size += sizeTime(v.CompletedAt)
	size += varint.Int64.Size(v.DurationMS)
	return size
}

type externalActionMUS struct{}

func (externalActionMUS) Marshal(v ExternalAction, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.WorkflowId, bs[n:])
	n += ord.String.Marshal(string(v.Type), bs[n:])
	n += marshalStringMap(v.Payload, bs[n:])
	n += ord.String.Marshal(string(v.Status), bs[n:])
	n += ord.String.Marshal(v.Response, bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.ExecutedAt, bs[n:])
	return n
}

func (externalActionMUS) Unmarshal(bs []byte) (v ExternalAction, n int, err error) {
	var (
		j  int
		s  string
		ts time.Time
	)
	if v.Id, n, err = ord.String.Unmarshal(bs); err != nil {
		return v, n, err
	}
	if v.WorkflowId, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	if s, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.Type = ActionType(s)
	if v.Payload, j, err = unmarshalStringMap(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	if s, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.Status = ActionStatus(s)
	if v.Response, j, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	if ts, j, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.CreatedAt = ts
	if ts, j, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + j, err
	}
	n += j
	v.ExecutedAt = ts
	return v, n, nil
}

func (externalActionMUS) Size(v ExternalAction) (size int) {
	size = ord.String.Size(v.Id)
	size += ord.String.Size(v.WorkflowId)
	size += ord.String.Size(string(v.Type))
	size += sizeStringMap(v.Payload)
	size += ord.String.Size(string(v.Status))
	size += ord.String.Size(v.Response)
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.ExecutedAt)
	return size
}
