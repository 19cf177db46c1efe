package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/papapumpkin/mcegar/internal/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry <events.jsonl>",
	Short: "View JSONL telemetry events written by generate --telemetry",
	Long: `Reads and formats a JSONL telemetry file.

With --run, only events of that run are shown.
With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.ExactArgs(1),
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().String("run", "", "only show events of this run ID")
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, args []string) error {
	runID, _ := cmd.Flags().GetString("run")
	follow, _ := cmd.Flags().GetBool("follow")
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	// Print all existing events.
	tail := &eventTail{r: bufio.NewReader(f), runID: runID}
	if err := tail.drain(cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}

	if !follow {
		tail.flush(cmd.OutOrStdout())
		return nil
	}

	return tailFollow(cmd.OutOrStdout(), tail, path)
}

// eventTail reads JSONL lines incrementally, holding back a trailing partial
// line until the rest of it has been written.
type eventTail struct {
	r       *bufio.Reader
	pending string
	runID   string
}

// drain prints every complete line currently available.
func (t *eventTail) drain(w io.Writer) error {
	for {
		chunk, err := t.r.ReadString('\n')
		t.pending += chunk
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		t.flush(w)
	}
}

// flush prints the pending line, complete or not.
func (t *eventTail) flush(w io.Writer) {
	line := strings.TrimSpace(t.pending)
	t.pending = ""
	if line != "" {
		printEvent(w, line, t.runID)
	}
}

// tailFollow watches the file for new data using fsnotify and prints new events.
func tailFollow(w io.Writer, tail *eventTail, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}

	for event := range watcher.Events {
		if event.Op&fsnotify.Write == 0 {
			continue
		}
		if err := tail.drain(w); err != nil {
			return fmt.Errorf("telemetry: read %s: %w", path, err)
		}
	}
	return nil
}

// printEvent decodes a JSONL line and prints a human-readable representation.
// Events of other runs are skipped when runID is set.
func printEvent(w io.Writer, line, runID string) {
	evt, err := telemetry.Decode([]byte(line))
	if err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}
	if runID != "" && evt.RunID != runID {
		return
	}

	ts := evt.Timestamp.Format(time.TimeOnly)
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", ts))
	parts = append(parts, evt.Kind)

	if evt.RunID != "" {
		parts = append(parts, fmt.Sprintf("run=%s", shortRunID(evt.RunID)))
	}
	if evt.Iteration != 0 {
		parts = append(parts, fmt.Sprintf("iter=%d", evt.Iteration))
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// shortRunID abbreviates a UUID to its first group.
func shortRunID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
