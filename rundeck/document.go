package rundeck

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
)

// ContentKey holds the text of an element that also carries attributes or
// children, e.g. <date-started unixtime="...">2014-08-14T15:06:28Z</date-started>.
const ContentKey = "content"

// groupTags collapses wrapper elements onto their single repeated child, so
// <options><option/><option/></options> decodes as options => [option, option].
var groupTags = map[string]string{
	"options": "option",
}

var errEmptyDocument = errors.New("rundeck: empty document")

// Document is a loosely typed view of a Rundeck XML response with the root
// element stripped. Attributes and child elements share one key space; a key
// seen more than once holds a []interface{}, otherwise a single value.
// Elements with only text decode to a string, everything else to a
// map[string]interface{}.
type Document map[string]interface{}

// ParseDocument decodes an XML body into a Document.
func ParseDocument(r io.Reader) (Document, error) {
	decoder := xml.NewDecoder(r)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil, errEmptyDocument
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		v, err := decodeElement(decoder, start)
		if err != nil {
			return nil, err
		}
		if m, ok := v.(map[string]interface{}); ok {
			return Document(m), nil
		}
		return Document{}, nil
	}
}

func decodeElement(decoder *xml.Decoder, start xml.StartElement) (interface{}, error) {
	m := make(map[string]interface{})
	for _, attr := range start.Attr {
		addValue(m, attr.Name.Local, attr.Value)
	}

	var text strings.Builder
	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(decoder, t)
			if err != nil {
				return nil, err
			}
			addValue(m, t.Name.Local, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			// whitespace-only text is indentation, anything else is kept as is
			content := text.String()
			if strings.TrimSpace(content) == "" {
				content = ""
			}
			if len(m) == 0 {
				return content, nil
			}
			if tag, ok := groupTags[start.Name.Local]; ok && len(m) == 1 {
				if v, ok := m[tag]; ok {
					return v, nil
				}
			}
			if content != "" {
				addValue(m, ContentKey, content)
			}
			return m, nil
		}
	}
}

func addValue(m map[string]interface{}, key string, v interface{}) {
	existing, ok := m[key]
	if !ok {
		m[key] = v
		return
	}
	if list, ok := existing.([]interface{}); ok {
		m[key] = append(list, v)
		return
	}
	m[key] = []interface{}{existing, v}
}

// EnsureList normalizes a value that is sometimes a single record and
// sometimes a list of records into a list of records. Non-record values
// (attribute strings, empty elements) are dropped.
func EnsureList(v interface{}) []map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{t}
	case Document:
		return []map[string]interface{}{t}
	case []interface{}:
		list := make([]map[string]interface{}, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]interface{}); ok {
				list = append(list, m)
			}
		}
		return list
	case []map[string]interface{}:
		return t
	}
	return nil
}

// Payload returns the first record stored under key. Rundeck reuses names
// between root attributes and child elements (success="true" next to
// <success>), so the record is picked out of whatever list the key holds.
func (d Document) Payload(key string) map[string]interface{} {
	return firstRecord(d[key])
}

func firstRecord(v interface{}) map[string]interface{} {
	list := EnsureList(v)
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

// str returns the text of key, reading ContentKey when the element also
// carries attributes. Missing or structured values yield "".
func str(m map[string]interface{}, key string) string {
	switch t := m[key].(type) {
	case string:
		return t
	case map[string]interface{}:
		if s, ok := t[ContentKey].(string); ok {
			return s
		}
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok {
				return s
			}
		}
	}
	return ""
}

// integer parses key as int64, 0 when absent or malformed.
func integer(m map[string]interface{}, key string) int64 {
	n, _ := strconv.ParseInt(str(m, key), 10, 64)
	return n
}
