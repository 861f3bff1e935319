package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/frahmantamala/library-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Logger", func() {
	It("parses levels case-insensitively", func() {
		Expect(logger.ParseLevel("DEBUG")).To(Equal(slog.LevelDebug))
		Expect(logger.ParseLevel("warning")).To(Equal(slog.LevelWarn))
		Expect(logger.ParseLevel("nonsense")).To(Equal(slog.LevelInfo))
	})

	It("writes json when asked", func() {
		var buf bytes.Buffer
		lg := logger.New(&buf, "info", "json")

		lg.Info("ready", "port", 8080)

		var line map[string]any
		Expect(json.Unmarshal(buf.Bytes(), &line)).To(Succeed())
		Expect(line["msg"]).To(Equal("ready"))
	})

	It("drops records below the configured level", func() {
		var buf bytes.Buffer
		lg := logger.New(&buf, "error", "text")

		lg.Info("quiet")

		Expect(buf.Len()).To(BeZero())
	})

	It("carries fields through the context", func() {
		var buf bytes.Buffer
		base := logger.New(&buf, "info", "text")
		ctx := logger.With(logger.Into(context.Background(), base), "trace_id", "abc")
		logger.From(ctx).Info("hello")

		Expect(buf.String()).To(ContainSubstring("trace_id=abc"))
	})
})
