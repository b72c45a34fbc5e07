package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the logger package", t, func() {
		Convey("When initializing with defaults", func() {
			err := Init()

			Convey("Then a global logger should be available", func() {
				So(err, ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initializing with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "unknown log format")
			})
		})
	})
}

func TestLoggerJSONOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithFormat(FormatJSON), WithOutput(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("When logging with fields and a request id", func() {
			ctx := WithRequestID(context.Background(), "req-1")
			Get().Info(ctx, "signed up", String("activity", "Chess Club"), Int("count", 3), Bool("full", false))

			var record map[string]interface{}
			err := json.Unmarshal(buf.Bytes(), &record)

			Convey("Then the record should carry every field", func() {
				So(err, ShouldBeNil)
				So(record["msg"], ShouldEqual, "signed up")
				So(record["activity"], ShouldEqual, "Chess Club")
				So(record["count"], ShouldEqual, 3.0)
				So(record["full"], ShouldEqual, false)
				So(record["request_id"], ShouldEqual, "req-1")
				So(record["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging below the configured level", func() {
			So(SetLevelString("warn"), ShouldBeNil)
			Get().Info(context.Background(), "hidden")
			Get().Warn(context.Background(), "shown")
			So(SetLevelString("info"), ShouldBeNil)

			Convey("Then only the enabled record should be written", func() {
				out := buf.String()
				So(out, ShouldNotContainSubstring, "hidden")
				So(out, ShouldContainSubstring, "shown")
			})
		})
	})
}

func TestLoggerNamed(t *testing.T) {
	Convey("Given a text logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithOutput(&buf)), ShouldBeNil)
		defer func() { _ = Init() }()

		Convey("When logging through a named logger", func() {
			Named("directory").Info(context.Background(), "test message")

			Convey("Then the name should appear on the record", func() {
				So(buf.String(), ShouldContainSubstring, "logger=directory")
				So(buf.String(), ShouldContainSubstring, "test message")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, level := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
			So(SetLevelString(level), ShouldBeNil)
		}

		Convey("Then unknown levels should be rejected", func() {
			err := SetLevelString("verbose")
			So(err, ShouldNotBeNil)
			So(strings.Contains(err.Error(), "verbose"), ShouldBeTrue)
		})
	})
}

func TestRequestIDFrom(t *testing.T) {
	Convey("Given contexts with and without a request id", t, func() {
		_, ok := RequestIDFrom(context.Background())
		So(ok, ShouldBeFalse)

		_, ok = RequestIDFrom(WithRequestID(context.Background(), ""))
		So(ok, ShouldBeFalse)

		id, ok := RequestIDFrom(WithRequestID(context.Background(), "abc"))
		So(ok, ShouldBeTrue)
		So(id, ShouldEqual, "abc")
	})
}
