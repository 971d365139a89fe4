package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestLevel(t *testing.T) {
	cases := []struct {
		in  string
		exp slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, c := range cases {
		if got := Level(c.in); got != c.exp {
			t.Errorf("Level(%s) = %v expected:%v", c.in, got, c.exp)
		}
	}
}

func TestSetup(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	Setup("warn")

	ctx := context.Background()
	if slog.Default().Enabled(ctx, slog.LevelInfo) || !slog.Default().Enabled(ctx, slog.LevelWarn) {
		t.Errorf("default logger does not honor the warn level")
	}
}
