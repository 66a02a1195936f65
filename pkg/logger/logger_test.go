package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
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
		So(Init(WithFormat("json"), WithOutput(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Get().Info(ctx, "score recorded",
				String("player", "alice"),
				Float64("score", 50),
				Bool("recorded", true),
				Error(errors.New("boom")),
			)

			Convey("Then the line should carry every field and the caller", func() {
				var line map[string]interface{}
				So(json.Unmarshal(buf.Bytes(), &line), ShouldBeNil)
				So(line["msg"], ShouldEqual, "score recorded")
				So(line["player"], ShouldEqual, "alice")
				So(line["score"], ShouldEqual, 50.0)
				So(line["recorded"], ShouldEqual, true)
				So(line["source"], ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When logging through a named logger", func() {
			Named("store").Warn(ctx, "slow save")

			Convey("Then the component should be attached", func() {
				So(buf.String(), ShouldContainSubstring, `"component":"store"`)
			})
		})

		Convey("When the level is raised above the message", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Debug(ctx, "hidden")
			Get().Info(ctx, "hidden too")

			Convey("Then nothing should be written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(Init(WithOutput(&bytes.Buffer{})), ShouldBeNil)

		for _, lvl := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}

		err := SetLevelString("verbose")
		So(err, ShouldNotBeNil)
		So(strings.Contains(err.Error(), "verbose"), ShouldBeTrue)
	})
}
