package mutation

import (
	"github.com/matthewbaird/opsconsole/internal/form"
	"github.com/matthewbaird/opsconsole/internal/gateway"
)

// FieldMap maps dotted client field names in a draft to dotted server field
// names in a payload ("firstName" -> "first_name"). Draft fields without an
// entry are not sent.
type FieldMap map[string]string

// Payload builds the server request body from d.
func (m FieldMap) Payload(d form.Draft) gateway.Payload {
	out := form.Draft{}
	for client, server := range m {
		v, ok := d.Get(client)
		if !ok {
			continue
		}
		if sub, isTree := v.(form.Draft); isTree {
			v = sub.Map()
		}
		out = form.SetPath(out, form.ParsePath(server), v)
	}
	return gateway.Payload(out.Map())
}

// Draft seeds a client draft from a raw server document, the inverse of
// Payload. Server fields absent from doc are left out of the draft.
func (m FieldMap) Draft(doc map[string]any) form.Draft {
	src := form.Draft(doc)
	out := form.Draft{}
	for client, server := range m {
		v, ok := form.GetPath(src, form.ParsePath(server))
		if !ok || v == nil {
			continue
		}
		if sub, isMap := v.(map[string]any); isMap {
			v = form.Draft(sub).Clone()
		}
		out = form.SetPath(out, form.ParsePath(client), v)
	}
	return out
}
