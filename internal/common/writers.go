package common

import (
	"encoding/json"
	"io"
	"sort"
	"strings"

	"github.com/phuslu/log"
	"github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"
)

// discardWriter swallows every event. A logger holding only this writer
// never reaches the globally registered ones.
type discardWriter struct{}

func (w *discardWriter) Write(p []byte) (int, error)           { return len(p), nil }
func (w *discardWriter) WithLevel(_ log.Level) writers.IWriter { return w }
func (w *discardWriter) GetFilePath() string                   { return "" }
func (w *discardWriter) Close() error                          { return nil }

// lineWriter renders arbor's JSON events as "LVL message k=v ..." lines.
// Fields are sorted so output is stable.
type lineWriter struct {
	out   io.Writer
	level log.Level
}

func (w *lineWriter) Write(p []byte) (int, error) {
	var evt models.LogEvent
	if err := json.Unmarshal(p, &evt); err != nil {
		return w.out.Write(p)
	}
	if evt.Level < w.level {
		return len(p), nil
	}

	var b strings.Builder
	b.WriteString(strings.ToUpper(evt.Level.String()))
	b.WriteByte(' ')
	b.WriteString(evt.Message)

	keys := make([]string, 0, len(evt.Fields))
	for k := range evt.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, _ := json.Marshal(evt.Fields[k])
		b.WriteString(" " + k + "=" + string(v))
	}
	if evt.CorrelationID != "" {
		b.WriteString(" correlation_id=" + evt.CorrelationID)
	}
	if evt.Error != "" {
		b.WriteString(" error=" + evt.Error)
	}
	b.WriteByte('\n')

	if _, err := io.WriteString(w.out, b.String()); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *lineWriter) WithLevel(level log.Level) writers.IWriter {
	w.level = level
	return w
}

func (w *lineWriter) GetFilePath() string { return "" }
func (w *lineWriter) Close() error        { return nil }
