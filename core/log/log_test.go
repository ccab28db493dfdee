// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Rudiarius/ignite/core/log"
)

var testClock log.Clock

func init() {
	t, err := time.Parse("Mon Jan _2 15:04:05.999 2006", "Mon Jan 22 12:34:56.789 2000")
	if err != nil {
		panic(err)
	}
	testClock = log.FixedClock(t)
}

type testMessage struct {
	msg      string
	args     []interface{}
	values   log.V
	severity log.Severity
	tag      string

	raw      string
	brief    string
	normal   string
	detailed string
}

func (m testMessage) send(h log.Handler) {
	ctx := context.Background()
	ctx = log.PutHandler(ctx, h)
	ctx = log.PutTag(ctx, m.tag)
	ctx = log.PutClock(ctx, testClock)
	ctx = m.values.Bind(ctx)
	log.From(ctx).Logf(m.severity, false, m.msg, m.args...)
}

var testMessages = []testMessage{
	{
		msg:      "plain warning",
		severity: log.Warning,

		raw:      "plain warning",
		brief:    "W: plain warning",
		normal:   "12:34:56.789 W: plain warning",
		detailed: "12:34:56.789 Warning: plain warning",
	}, {
		msg:      "info with values",
		severity: log.Info,
		values:   log.V{"typeId": 7, "pos": 12},

		raw:      "info with values",
		brief:    "I: info with values",
		normal:   "12:34:56.789 I: info with values",
		detailed: "12:34:56.789 Info: info with values \n  pos: 12\n  typeId: 7",
	}, {
		msg:      "tagged %d",
		args:     []interface{}{3},
		severity: log.Error,
		tag:      "portdump",

		raw:      "tagged 3",
		brief:    "E: tagged 3",
		normal:   "12:34:56.789 E: [portdump] tagged 3",
		detailed: "12:34:56.789 Error: [portdump] tagged 3",
	},
}

func TestStyles(t *testing.T) {
	for _, test := range []struct {
		style  log.Style
		expect func(testMessage) string
	}{
		{log.Raw, func(m testMessage) string { return m.raw }},
		{log.Brief, func(m testMessage) string { return m.brief }},
		{log.Normal, func(m testMessage) string { return m.normal }},
		{log.Detailed, func(m testMessage) string { return m.detailed }},
	} {
		for _, m := range testMessages {
			w, buf := log.Buffer()
			m.send(test.style.Handler(w))
			if got := buf.String(); got != test.expect(m) {
				t.Errorf("%v style of %q: got %q expected %q", test.style, m.msg, got, test.expect(m))
			}
		}
	}
}

func TestFilter(t *testing.T) {
	w, buf := log.Buffer()
	ctx := log.PutHandler(context.Background(), log.Raw.Handler(w))
	ctx = log.PutFilter(ctx, log.SeverityFilter(log.Warning))
	log.D(ctx, "hidden")
	log.I(ctx, "hidden")
	log.W(ctx, "shown")
	if got := buf.String(); got != "shown" {
		t.Errorf("Filtered output was %q", got)
	}
}

func TestEnter(t *testing.T) {
	ctx := log.Enter(context.Background(), "outer")
	ctx = log.Enter(ctx, "inner")
	got := strings.Join(log.GetTrace(ctx), "/")
	if got != "outer/inner" {
		t.Errorf("Trace was %q", got)
	}
}

func TestErr(t *testing.T) {
	cause := errors.New("boom")
	ctx := log.V{"pos": 4}.Bind(context.Background())
	err := log.Err(ctx, cause, "decode failed")
	if !errors.Is(err, cause) {
		t.Errorf("Err does not unwrap to its cause")
	}
	if got := err.Error(); got != "decode failed (pos: 4)\n   Cause: boom" {
		t.Errorf("Err message was %q", got)
	}
}

func TestParseSeverity(t *testing.T) {
	for _, test := range []struct {
		name   string
		expect log.Severity
	}{
		{"Debug", log.Debug},
		{"debug", log.Debug},
		{"W", log.Warning},
		{"Fatal", log.Fatal},
	} {
		got, err := log.ParseSeverity(test.name)
		if err != nil || got != test.expect {
			t.Errorf("ParseSeverity(%q) = %v, %v", test.name, got, err)
		}
	}
	if _, err := log.ParseSeverity("loud"); err == nil {
		t.Errorf("ParseSeverity accepted an unknown name")
	}
}
