package journal

import (
    "bytes"
    "encoding/json"
    "sort"
)

// Attrs is a small string map with a stable JSON encoding, stored alongside
// events by the SQL backends.
type Attrs map[string]string

// MarshalStableJSON returns a deterministic JSON representation with keys sorted.
func (a Attrs) MarshalStableJSON() ([]byte, error) {
    if len(a) == 0 { return []byte("{}"), nil }
    keys := make([]string, 0, len(a))
    for k := range a { keys = append(keys, k) }
    sort.Strings(keys)
    buf := &bytes.Buffer{}
    buf.WriteByte('{')
    for i, k := range keys {
        kb, _ := json.Marshal(k)
        vb, _ := json.Marshal(a[k])
        buf.Write(kb)
        buf.WriteByte(':')
        buf.Write(vb)
        if i < len(keys)-1 { buf.WriteByte(',') }
    }
    buf.WriteByte('}')
    return buf.Bytes(), nil
}

func (a Attrs) MarshalJSON() ([]byte, error) { return a.MarshalStableJSON() }

func (a *Attrs) UnmarshalJSON(b []byte) error {
    if len(b) == 0 || bytes.Equal(b, []byte("null")) { *a = Attrs{}; return nil }
    var tmp map[string]string
    if err := json.Unmarshal(b, &tmp); err != nil { return err }
    *a = Attrs(tmp)
    return nil
}
