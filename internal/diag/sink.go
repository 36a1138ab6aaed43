package diag

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TextSink writes one line per diagnostic to w, matching the
// teacher's (and the original semblance tool's) plain eprint! style —
// no logging framework, just formatted text on the error channel.
type TextSink struct {
	w io.Writer
}

// NewTextSink wraps w (typically os.Stderr).
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Emit writes d as a single line.
func (s *TextSink) Emit(d Diagnostic) {
	fmt.Fprintln(s.w, d.String())
}

// ZapSink backs -json-diagnostics: the same diagnostics, structured,
// for tooling that wants to consume them programmatically instead of
// scraping stderr text.
type ZapSink struct {
	log *zap.SugaredLogger
}

// NewZapSink builds a JSON-encoding sugared zap logger that writes
// one line per diagnostic to w.
func NewZapSink(w io.Writer) (*ZapSink, error) {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(w),
		zap.WarnLevel,
	)
	return &ZapSink{log: zap.New(core).Sugar()}, nil
}

// Emit logs d as a structured warning.
func (s *ZapSink) Emit(d Diagnostic) {
	s.log.Warnw(d.Kind.String(),
		"region", d.Region,
		"offset", d.Offset,
		"detail", d.Detail,
	)
}
