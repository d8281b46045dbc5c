package rundeck

import (
	"strings"
	"testing"
)

func TestParseDocumentMergesAttributesAndChildren(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(`<result success="true"><success><message>hi</message></success></result>`))
	if err != nil {
		t.Fatal("parse failed", err)
	}
	list, ok := doc["success"].([]interface{})
	if !ok || len(list) != 2 {
		t.Fatal("attribute and child should share the key", doc["success"])
	}
	if doc.Payload("success")["message"] != "hi" {
		t.Fatal("payload not found", doc.Payload("success"))
	}
}

func TestParseDocumentRepeatedElements(t *testing.T) {
	single, err := ParseDocument(strings.NewReader(`<r><jobs><job id="1"/></jobs></r>`))
	if err != nil {
		t.Fatal("parse failed", err)
	}
	multi, err := ParseDocument(strings.NewReader(`<r><jobs><job id="1"/><job id="2"/></jobs></r>`))
	if err != nil {
		t.Fatal("parse failed", err)
	}

	if _, ok := single.Payload("jobs")["job"].(map[string]interface{}); !ok {
		t.Fatal("single element should decode as a record")
	}
	if _, ok := multi.Payload("jobs")["job"].([]interface{}); !ok {
		t.Fatal("repeated element should decode as a list")
	}
	if n := len(EnsureList(single.Payload("jobs")["job"])); n != 1 {
		t.Fatal("single record should coerce to one item", n)
	}
	if n := len(EnsureList(multi.Payload("jobs")["job"])); n != 2 {
		t.Fatal("list should coerce to two items", n)
	}
}

func TestParseDocumentContentAndGroupTags(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader(`<r>
  <date-started unixtime="1408028788000">2014-08-14T15:06:28Z</date-started>
  <options><option name="A" value="1"/></options>
  <group/>
</r>`))
	if err != nil {
		t.Fatal("parse failed", err)
	}
	started := doc.Payload("date-started")
	if str(started, "unixtime") != "1408028788000" || str(started, ContentKey) != "2014-08-14T15:06:28Z" {
		t.Fatal("mixed element", started)
	}
	if _, ok := doc["options"].(map[string]interface{}); !ok {
		t.Fatal("options wrapper should collapse onto its option", doc["options"])
	}
	if doc["group"] != "" {
		t.Fatal("empty element should be an empty string", doc["group"])
	}
}

func TestParseDocumentKeepsMessageText(t *testing.T) {
	doc, err := ParseDocument(strings.NewReader("<r><error code=\"x\"><message>bad\nvalue\n</message></error></r>"))
	if err != nil {
		t.Fatal("parse failed", err)
	}
	if msg := str(doc.Payload("error"), "message"); msg != "bad\nvalue\n" {
		t.Fatalf("message text changed: %q", msg)
	}
}

func TestParseDocumentErrors(t *testing.T) {
	if _, err := ParseDocument(strings.NewReader("")); err == nil {
		t.Fatal("empty body should fail")
	}
	if _, err := ParseDocument(strings.NewReader("<r><unclosed></r>")); err == nil {
		t.Fatal("broken markup should fail")
	}
}

func TestEnsureList(t *testing.T) {
	record := map[string]interface{}{"id": "1"}
	if n := len(EnsureList(record)); n != 1 {
		t.Fatal("record", n)
	}
	if n := len(EnsureList([]interface{}{"true", record, record})); n != 2 {
		t.Fatal("mixed list should keep records only", n)
	}
	if EnsureList(nil) != nil || EnsureList("text") != nil {
		t.Fatal("scalars should coerce to nothing")
	}
}

func TestMissingFieldsDefault(t *testing.T) {
	e := newExecution(map[string]interface{}{"id": "7"})
	if e.ID != "7" || e.Status != "" || e.Job != nil || e.StartUnixtime != 0 || e.SuccessfulNodes != nil {
		t.Fatal("missing fields should be zero", e)
	}
	if e.AverageSeconds() != 0 {
		t.Fatal("no job means no average")
	}
	j := newJob(map[string]interface{}{"id": "x", "averageDuration": "oops"})
	if j.AverageDuration != 0 || j.Options != nil {
		t.Fatal("malformed average should be zero", j)
	}
}
