package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Log levels, ordered. Matching the levels accepted by log_cli_level.
const (
	LevelDebug    = "DEBUG"
	LevelInfo     = "INFO"
	LevelWarning  = "WARNING"
	LevelError    = "ERROR"
	LevelCritical = "CRITICAL"
)

var levelRank = map[string]int{
	LevelDebug:    10,
	LevelInfo:     20,
	LevelWarning:  30,
	LevelError:    40,
	LevelCritical: 50,
}

// LiveLog emits session log records during the run when log_cli is
// enabled. Records below the configured level are dropped. The record
// format uses %(asctime)s, %(levelname)s, and %(message)s placeholders;
// the date format uses strftime directives.
type LiveLog struct {
	mu         sync.Mutex
	writer     io.Writer
	threshold  int
	format     string
	dateLayout string
	now        func() time.Time
}

func NewLiveLog(w io.Writer, level, format, dateFormat string) *LiveLog {
	threshold, ok := levelRank[level]
	if !ok {
		threshold = levelRank[LevelInfo]
	}
	return &LiveLog{
		writer:     w,
		threshold:  threshold,
		format:     format,
		dateLayout: strftimeLayout(dateFormat),
		now:        time.Now,
	}
}

func (l *LiveLog) Log(level, message string) {
	rank, ok := levelRank[level]
	if !ok || rank < l.threshold {
		return
	}

	record := l.format
	record = strings.ReplaceAll(record, "%(asctime)s", l.now().Format(l.dateLayout))
	record = strings.ReplaceAll(record, "%(levelname)s", level)
	record = strings.ReplaceAll(record, "%(message)s", message)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.writer, record)
}

func (l *LiveLog) Debugf(format string, args ...any) {
	l.Log(LevelDebug, fmt.Sprintf(format, args...))
}

func (l *LiveLog) Infof(format string, args ...any) {
	l.Log(LevelInfo, fmt.Sprintf(format, args...))
}

func (l *LiveLog) Warningf(format string, args ...any) {
	l.Log(LevelWarning, fmt.Sprintf(format, args...))
}

func (l *LiveLog) Errorf(format string, args ...any) {
	l.Log(LevelError, fmt.Sprintf(format, args...))
}

var strftimeTable = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'M': "04",
	'S': "05",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'p': "PM",
	'z': "-0700",
	'Z': "MST",
	'%': "%",
}

// strftimeLayout translates an strftime format into a Go time layout.
// Unknown directives pass through verbatim.
func strftimeLayout(format string) string {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 == len(format) {
			b.WriteByte(format[i])
			continue
		}
		i++
		if layout, ok := strftimeTable[format[i]]; ok {
			b.WriteString(layout)
		} else {
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}
