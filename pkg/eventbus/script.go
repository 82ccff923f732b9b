package eventbus

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"os/exec"

	"github.com/fileup/fileupd/pkg/handler"
)

// ScriptRunner executes an executable named after the event type from a
// configured directory, in the manner of Git hooks: publishing
// UploadComplete runs <Directory>/UploadComplete, if it exists. The event
// is provided as JSON on stdin and as FILEUP_ID/FILEUP_FILE environment
// variables. A missing script means the deployment does not care about
// that event and is not an error.
type ScriptRunner struct {
	// Directory is where event scripts live.
	Directory string
	// Logger receives execution failures. Defaults to slog.Default().
	Logger *slog.Logger
}

// Handle implements Subscriber. The script runs on its own goroutine;
// its exit status is logged but never affects the upload that triggered
// the event.
func (s ScriptRunner) Handle(ev handler.Event) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	scriptPath := s.Directory + string(os.PathSeparator) + string(ev.Type)
	if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
		return
	}

	body, err := json.Marshal(webhookBody{
		Type:     string(ev.Type),
		ID:       ev.ID,
		File:     ev.File,
		MetaData: ev.MetaData,
	})
	if err != nil {
		logger.Error("ScriptEventEncodeError", "id", ev.ID, "error", err)
		return
	}

	cmd := exec.Command(scriptPath)
	cmd.Stdin = bytes.NewReader(body)
	cmd.Dir = s.Directory
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		"FILEUP_EVENT="+string(ev.Type),
		"FILEUP_ID="+ev.ID,
		"FILEUP_FILE="+ev.File,
	)

	go func() {
		if err := cmd.Run(); err != nil {
			logger.Error("ScriptEventError", "script", scriptPath, "id", ev.ID, "error", err)
		}
	}()
}
