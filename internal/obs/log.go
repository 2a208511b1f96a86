package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
)

// Портал пишет логи строками JSON в stdout, одна запись на строку.
// Сборщик (journald/Loki) разбирает их без дополнительной настройки.

var (
	initOnce  sync.Once
	portalLog *log.Logger
)

// Logger returns the process-wide JSON-lines logger. It writes to stdout
// with no prefix and no flags, so every line is exactly one JSON object.
func Logger() *log.Logger {
	initOnce.Do(func() {
		portalLog = log.New(os.Stdout, "", 0)
	})
	return portalLog
}

// LogRequest emits one request-scoped entry (method, path, status, timing)
// as a JSON line.
func LogRequest(entry map[string]any) {
	emit(entry)
}

func emit(entry map[string]any) {
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"ts":"error","level":"error","msg":"log marshal failed"}`)
		return
	}
	Logger().Println(string(data))
}
