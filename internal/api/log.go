package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"slices"
	"strings"
	"time"

	"hamprofile/pkg/logging"
)

// logRegex matches key=value and key="quoted value" pairs.
var logRegex = regexp.MustCompile(`([a-zA-Z0-9_\-.]+)=(?:"([^"]*)"|([^ ]+))`)

// handleLatestLog returns the last captured log line.
func handleLatestLog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"log": latestLogLine(),
	}); err != nil {
		slog.Error("Failed to write log response", "error", err)
	}
}

func latestLogLine() string {
	return formatLogLine(logging.GlobalLogCapture.LastLine())
}

// maxParamLen drops long values such as session ids from the summary line.
const maxParamLen = 20

// formatLogLine condenses a slog text line to "HH:MM:SS msg (k=v, k=v)".
// Params are sorted, values longer than maxParamLen are dropped and
// WARN/ERROR lines keep their level as a prefix.
func formatLogLine(raw string) string {
	matches := logRegex.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return raw
	}

	var clock, level, msg string
	var params []string
	for _, m := range matches {
		key, val := m[1], m[2]
		if val == "" {
			val = m[3]
		}
		val = strings.TrimSpace(val)

		switch key {
		case "time":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				clock = t.Format("15:04:05")
			}
		case "level":
			if val == "WARN" || val == "ERROR" {
				level = val
			}
		case "msg":
			msg = val
		default:
			if len(val) <= maxParamLen {
				params = append(params, key+"="+val)
			}
		}
	}
	if msg == "" {
		return raw
	}
	slices.Sort(params)

	var b strings.Builder
	for _, part := range []string{clock, level} {
		if part != "" {
			b.WriteString(part)
			b.WriteByte(' ')
		}
	}
	b.WriteString(msg)
	if len(params) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(params, ", "))
	}
	return b.String()
}
