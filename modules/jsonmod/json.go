// Package jsonmod implements the "json" built-in module: constructing,
// querying, and mutating JSON text as ordinary command arguments and
// stdout text. Grounded on original_source/repl/base/modules/json.py,
// plus json-pretty (new: pretty-print a JSON string via tidwall/pretty,
// supplementing the original module with the one capability it lacked).
package jsonmod

import (
	"encoding/json"
	"strings"

	"github.com/aledsdavies/shellrepl/internal/command"
	"github.com/tidwall/pretty"
)

func render(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		data, _ := json.Marshal(t)
		return string(data)
	}
}

// selectorLookup resolves one selector against cur: the selector text is
// itself decoded as JSON, so a map key is spelled as a quoted string
// ("name") and a list index as a bare integer (2) — matching the
// original's finger[json.loads(selector)].
func selectorLookup(cur any, selector string) (any, bool) {
	var key any
	if err := json.Unmarshal([]byte(selector), &key); err != nil {
		return nil, false
	}
	switch c := cur.(type) {
	case map[string]any:
		name, ok := key.(string)
		if !ok {
			return nil, false
		}
		v, ok := c[name]
		return v, ok
	case []any:
		f, ok := key.(float64)
		if !ok {
			return nil, false
		}
		idx := int(f)
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}

func decodeDoc(ctx *command.InvokeContext, text string) (any, bool) {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		ctx.Println("Malformed JSON")
		return nil, false
	}
	return doc, true
}

func asList(ctx *command.InvokeContext, doc any) ([]any, bool) {
	l, ok := doc.([]any)
	if !ok {
		ctx.Println("Not a list!")
		return nil, false
	}
	return l, true
}

func asObject(ctx *command.InvokeContext, doc any) (map[string]any, bool) {
	m, ok := doc.(map[string]any)
	if !ok {
		ctx.Println("Not an object!")
		return nil, false
	}
	return m, true
}

func dump(ctx *command.InvokeContext, v any) {
	data, _ := json.Marshal(v)
	ctx.Stdout.Write(data)
	ctx.Stdout.Write([]byte("\n"))
}

// Commands returns the json module's command set.
func Commands() []command.Command {
	return []command.Command{
		{
			Name:  "json-object",
			Usage: "json-object",
			Help:  "Print an empty JSON object.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				ctx.Println("{}")
				return 0, nil
			},
		},
		{
			Name:  "json-list",
			Usage: "json-list",
			Help:  "Print an empty JSON list.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				ctx.Println("[]")
				return 0, nil
			},
		},
		{
			Name:  "json-get",
			Usage: "json-get json-string selector [selectors...]",
			Help:  "Select a field from a JSON document by a chain of JSON-encoded selectors.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) < 2 {
					ctx.Println("usage: json-get json-string selector [selectors...]")
					return 2, nil
				}
				doc, ok := decodeDoc(ctx, args[0])
				if !ok {
					return 2, nil
				}
				cur := doc
				for _, selector := range args[1:] {
					next, ok := selectorLookup(cur, selector)
					if !ok {
						ctx.Println("Field", selector, "not found")
						return 2, nil
					}
					cur = next
				}
				dump(ctx, cur)
				return 0, nil
			},
		},
		{
			Name:  "json-set",
			Usage: "json-set json-string field value",
			Help:  "Set a field in a JSON object to a JSON-encoded value.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) != 3 {
					ctx.Println("usage: json-set json-string field value")
					return 2, nil
				}
				doc, ok := decodeDoc(ctx, args[0])
				if !ok {
					return 2, nil
				}
				obj, ok := asObject(ctx, doc)
				if !ok {
					return 3, nil
				}
				var value any
				if err := json.Unmarshal([]byte(args[2]), &value); err != nil {
					ctx.Println("Malformed JSON")
					return 2, nil
				}
				obj[args[1]] = value
				dump(ctx, obj)
				return 0, nil
			},
		},
		{
			Name:  "json-list-append",
			Usage: "json-list-append json-string value",
			Help:  "Append a JSON-encoded value to a JSON list.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) != 2 {
					ctx.Println("usage: json-list-append json-string value")
					return 2, nil
				}
				doc, ok := decodeDoc(ctx, args[0])
				if !ok {
					return 2, nil
				}
				list, ok := asList(ctx, doc)
				if !ok {
					return 3, nil
				}
				var value any
				if err := json.Unmarshal([]byte(args[1]), &value); err != nil {
					ctx.Println("Malformed JSON")
					return 2, nil
				}
				list = append(list, value)
				dump(ctx, list)
				return 0, nil
			},
		},
		{
			Name:  "json-list-pop",
			Usage: "json-list-pop json-string",
			Help:  "Pop the last value off a JSON list.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) != 1 {
					ctx.Println("usage: json-list-pop json-string")
					return 2, nil
				}
				doc, ok := decodeDoc(ctx, args[0])
				if !ok {
					return 2, nil
				}
				list, ok := asList(ctx, doc)
				if !ok {
					return 3, nil
				}
				if len(list) == 0 {
					ctx.Println("pop from empty list")
					return 2, nil
				}
				list = list[:len(list)-1]
				dump(ctx, list)
				return 0, nil
			},
		},
		{
			Name:  "json-list-get",
			Usage: "json-list-get json-string index",
			Help:  "Print the value at an index of a JSON list.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) != 2 {
					ctx.Println("usage: json-list-get json-string index")
					return 2, nil
				}
				doc, ok := decodeDoc(ctx, args[0])
				if !ok {
					return 2, nil
				}
				list, ok := asList(ctx, doc)
				if !ok {
					return 3, nil
				}
				v, ok := selectorLookup(list, args[1])
				if !ok {
					ctx.Println("JSON list does not have index", args[1])
					return 2, nil
				}
				ctx.Println(render(v))
				return 0, nil
			},
		},
		{
			Name:  "json-list-set",
			Usage: "json-list-set json-string index value",
			Help:  "Assign to an index in a JSON list.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) != 3 {
					ctx.Println("usage: json-list-set json-string index value")
					return 2, nil
				}
				doc, ok := decodeDoc(ctx, args[0])
				if !ok {
					return 2, nil
				}
				list, ok := asList(ctx, doc)
				if !ok {
					return 3, nil
				}
				var idx int
				if err := json.Unmarshal([]byte(args[1]), &idx); err != nil || idx < 0 || idx >= len(list) {
					ctx.Println("JSON list does not have index", args[1])
					return 2, nil
				}
				var value any
				if err := json.Unmarshal([]byte(args[2]), &value); err != nil {
					ctx.Println("Malformed JSON")
					return 2, nil
				}
				list[idx] = value
				dump(ctx, list)
				return 0, nil
			},
		},
		{
			Name:  "json-is-list",
			Usage: "json-is-list json-string",
			Help:  "Succeed (status 0) iff json-string decodes to a JSON list.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) != 1 {
					ctx.Println("usage: json-is-list json-string")
					return 2, nil
				}
				doc, ok := decodeDoc(ctx, args[0])
				if !ok {
					return 2, nil
				}
				if _, ok := doc.([]any); ok {
					return 0, nil
				}
				return 1, nil
			},
		},
		{
			Name:  "json-is-object",
			Usage: "json-is-object json-string",
			Help:  "Succeed (status 0) iff json-string decodes to a JSON object.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				if len(args) != 1 {
					ctx.Println("usage: json-is-object json-string")
					return 2, nil
				}
				doc, ok := decodeDoc(ctx, args[0])
				if !ok {
					return 2, nil
				}
				if _, ok := doc.(map[string]any); ok {
					return 0, nil
				}
				return 1, nil
			},
		},
		{
			Name:  "json-pretty",
			Usage: "json-pretty text...",
			Help:  "Reformat a JSON document with indentation.",
			Invoke: func(ctx *command.InvokeContext, args []string) (int, error) {
				data := []byte(strings.Join(args, " "))
				if !json.Valid(data) {
					ctx.Println("invalid JSON")
					return 3, nil
				}
				ctx.Stdout.Write(pretty.Pretty(data))
				return 0, nil
			},
		},
	}
}
