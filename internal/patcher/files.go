package patcher

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gibdrop/internal/components/telemetry"
	"gibdrop/internal/config"
	"gibdrop/lib/restyutil"
	libtelemetry "gibdrop/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const (
	report_patch_file    = "patch-file"
	report_ensure_script = "ensure-entry-script"
	report_fetch_example = "client.fetch-example"
)

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// PatchFile applies the patch to the script at `path`. The original is copied
// to `backupPath` unless a backup already exists there, so the backup always
// holds the script as it was before the first patch.
func PatchFile(path, backupPath string) (Result, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}

	result := Apply(string(original))
	if result.Text == string(original) {
		return result, nil
	}

	if !exists(backupPath) {
		err = os.WriteFile(backupPath, original, 0644)
		if err != nil {
			return result, fmt.Errorf("write backup: %w", err)
		}
	}
	err = os.WriteFile(path, []byte(result.Text), 0644)
	if err != nil {
		return result, err
	}
	return result, nil
}

type Origin int

const (
	OriginExisting Origin = iota
	OriginCopiedExample
	OriginDownloadedExample
)

func (o Origin) String() string {
	switch o {
	case OriginExisting:
		return "existing"
	case OriginCopiedExample:
		return "copied example"
	case OriginDownloadedExample:
		return "downloaded example"
	}
	return "unknown"
}

// Bootstrap makes sure the miner's entry script exists before patching it.
type Bootstrap struct {
	cfg  config.Config
	http *resty.Client
	tel  telemetry.API
}

func NewBootstrap(cfg config.Config, tel telemetry.API, output restyutil.InstrumentOutput) *Bootstrap {
	tel = telemetry.NewScopedAPI("patcher", tel)

	httpClient := resty.New()
	httpClient.SetTimeout(cfg.Vendor.Timeout())
	httpClient.SetHeader("user-agent", cfg.Vendor.UserAgent)

	telemetry.InstrumentResty(httpClient, tel)
	libtelemetry.InstrumentResty(httpClient, "gibdrop/patcher/http")
	restyutil.InstrumentClient(httpClient, output)

	return &Bootstrap{cfg: cfg, http: httpClient, tel: tel}
}

// EnsureEntryScript creates the entry script from the example script when it is
// missing, downloading the example first if that is missing too.
func (b *Bootstrap) EnsureEntryScript(ctx context.Context) (Origin, error) {
	entry := b.cfg.Path(b.cfg.Patch.EntryScript)
	example := b.cfg.Path(b.cfg.Patch.ExampleScript)

	if exists(entry) {
		return OriginExisting, nil
	}

	origin := OriginCopiedExample
	contents, err := os.ReadFile(example)
	if errors.Is(err, os.ErrNotExist) {
		b.tel.ReportWarning(report_ensure_script, "no entry or example script, downloading example", b.cfg.Patch.ExampleUrl)
		contents, err = b.fetchExample(ctx)
		if err != nil {
			return origin, err
		}
		err = os.WriteFile(example, contents, 0644)
		if err != nil {
			return origin, err
		}
		origin = OriginDownloadedExample
	} else if err != nil {
		return origin, err
	}

	err = os.WriteFile(entry, contents, 0644)
	if err != nil {
		return origin, err
	}
	b.tel.ReportDebug("created entry script", entry, origin.String())
	return origin, nil
}

func (b *Bootstrap) fetchExample(ctx context.Context) ([]byte, error) {
	res, err := b.http.R().
		SetContext(ctx).
		Get(b.cfg.Patch.ExampleUrl)
	if err != nil {
		b.tel.ReportBroken(report_fetch_example, fmt.Errorf("fetch: %w", err))
		return nil, err
	}
	if res.StatusCode() != 200 {
		err = fmt.Errorf("download example script: unexpected status %s", res.Status())
		b.tel.ReportBroken(report_fetch_example, err)
		return nil, err
	}
	return res.Body(), nil
}

// Patch ensures the entry script exists then patches it in place.
func (b *Bootstrap) Patch(ctx context.Context) (Result, error) {
	_, err := b.EnsureEntryScript(ctx)
	if err != nil {
		return Result{}, err
	}

	result, err := PatchFile(
		b.cfg.Path(b.cfg.Patch.EntryScript),
		b.cfg.Path(b.cfg.Patch.BackupPath),
	)
	if err != nil {
		return result, err
	}
	for _, problem := range result.Problems {
		b.tel.ReportWarning(report_patch_file, problem)
	}
	return result, nil
}
