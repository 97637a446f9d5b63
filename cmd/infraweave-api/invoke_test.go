package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/function61/gokit/assert"
)

func TestReadEvent(t *testing.T) {
	dir, err := ioutil.TempDir("", "invoke")
	assert.Ok(t, err)
	defer os.RemoveAll(dir)

	eventFile := filepath.Join(dir, "event.json")

	assert.Ok(t, ioutil.WriteFile(eventFile, []byte(`{
	"event": "insert_db",
	"table": "events",
	"data": {"deployment_id": "d-1", "epoch": 1580000000}
}`), 0600))

	event, err := readEvent(eventFile)
	assert.Ok(t, err)
	assert.EqualString(t, string(event.Event), "insert_db")
	assert.EqualString(t, event.Table, "events")
	assert.EqualString(t, string(event.Data), `{"deployment_id": "d-1", "epoch": 1580000000}`)
}

func TestReadEventRejectsUnknownFields(t *testing.T) {
	dir, err := ioutil.TempDir("", "invoke")
	assert.Ok(t, err)
	defer os.RemoveAll(dir)

	eventFile := filepath.Join(dir, "event.json")

	assert.Ok(t, ioutil.WriteFile(eventFile, []byte(`{"event": "read_db", "tabel": "modules"}`), 0600))

	_, err = readEvent(eventFile)
	assert.Assert(t, err != nil && strings.Contains(err.Error(), "tabel"))

	_, err = readEvent(filepath.Join(dir, "nonexistent.json"))
	assert.Assert(t, err != nil)
}
