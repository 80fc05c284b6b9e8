package globals

import (
	"context"
	"log/slog"
	"path/filepath"

	"gibdrop/internal/components/telemetry"
	"gibdrop/internal/config"
	"gibdrop/lib/restyutil"
	libtelemetry "gibdrop/lib/telemetry"
)

type key struct{}

type Value struct {
	Config    config.Config
	Tel       telemetry.API
	Telemetry libtelemetry.Telemetry
	Verbose   bool
}

// Output returns where the http exchanges of `component` are dumped, nil
// unless running verbose.
func (v *Value) Output(component string) restyutil.InstrumentOutput {
	if !v.Verbose {
		return nil
	}
	dir := v.Config.Path(filepath.Join(".dev", "resty", component))
	output, err := restyutil.NewFilesystemOutput(dir)
	if err != nil {
		slog.Warn("failed to create resty output", "dir", dir, "err", err)
		return nil
	}
	return output
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}
